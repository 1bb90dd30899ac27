package conversation

import (
	"context"
	"time"
)

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Tier labels map to upstream model classes; the gateway only passes them
// through and records the resulting label.
const (
	TierFree = "free"
	TierPro  = "pro"
)

// Metadata is the closed set of annotations attached to a message. New
// annotation kinds get a field here rather than a free-form map.
type Metadata struct {
	Model         string `json:"model,omitempty"`
	Tier          string `json:"tier,omitempty"`
	InteractionID string `json:"interaction_id,omitempty"`
	LatencyMS     int64  `json:"latency_ms,omitempty"`
}

// Message is a single immutable turn inside a conversation.
type Message struct {
	ID        uint
	Role      Role
	Content   string
	Metadata  Metadata
	CreatedAt time.Time
}

// Conversation is the per-user append-only transcript. Exactly one exists per
// user id; it is created lazily on the first message.
type Conversation struct {
	ID          uint
	UserID      string
	Tier        string
	Messages    []Message
	TotalTokens int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Turn is the role/content projection sent upstream as prior context.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Repository is the persistence contract for conversations.
type Repository interface {
	// FindOrCreate returns the conversation for userID, creating an empty one
	// when absent. Concurrent first calls for the same user converge on a
	// single row.
	FindOrCreate(ctx context.Context, userID, tier string) (*Conversation, error)

	// AddMessage appends a message with a server-assigned timestamp, creating
	// the conversation when absent. Concurrent appends for the same user are
	// both retained.
	AddMessage(ctx context.Context, userID, tier string, role Role, content string, metadata Metadata) (*Message, error)

	// GetHistory returns the conversation with its ordered messages, or nil
	// when the user has no conversation yet.
	GetHistory(ctx context.Context, userID string) (*Conversation, error)
}
