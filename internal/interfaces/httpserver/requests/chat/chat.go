package chat

// ChatRequest is the inbound body for a chat turn. InteractionID is optional;
// the relay mints one when the client does not supply it.
type ChatRequest struct {
	Message       string `json:"message" binding:"required"`
	InteractionID string `json:"interactionId"`
}

// SDKRequest asks the generation proxy for a client SDK.
type SDKRequest struct {
	Language     string `json:"language" binding:"required"`
	Instructions string `json:"instructions"`
}
