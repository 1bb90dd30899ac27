package chat

import (
	"time"

	"justiniano-server/chat-gateway/internal/domain/conversation"
	"justiniano-server/chat-gateway/internal/infrastructure/inference"
)

// EvaluationResponse wraps the asynchronously computed quality metrics.
type EvaluationResponse struct {
	InteractionID string                      `json:"interaction_id"`
	Status        string                      `json:"status"`
	Metrics       *inference.EvaluationResult `json:"metrics,omitempty"`
}

// HistoryMessage is one stored turn in a transcript readback.
type HistoryMessage struct {
	Role      string                `json:"role"`
	Content   string                `json:"content"`
	CreatedAt time.Time             `json:"created_at"`
	Metadata  conversation.Metadata `json:"metadata"`
}

// HistoryResponse is the transcript readback payload.
type HistoryResponse struct {
	UserID   string           `json:"user_id"`
	Tier     string           `json:"tier,omitempty"`
	Messages []HistoryMessage `json:"messages"`
}

// SDKResponse carries generated client SDK source.
type SDKResponse struct {
	Language string `json:"language"`
	Code     string `json:"code"`
}
