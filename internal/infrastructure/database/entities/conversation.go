package entities

import (
	"time"

	"gorm.io/datatypes"
)

// Conversation is the per-user transcript row. user_id carries a unique index
// so concurrent first-message races collapse onto one row.
type Conversation struct {
	ID           uint   `gorm:"primaryKey"`
	UserID       string `gorm:"type:varchar(128);uniqueIndex;not null"`
	Tier         string `gorm:"type:varchar(16);not null;default:'free'"`
	TotalTokens  int64
	AvgLatencyMS int64
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

func (Conversation) TableName() string {
	return "conversations"
}

// Message rows are append-only; there is no update path.
type Message struct {
	ID             uint           `gorm:"primaryKey"`
	ConversationID uint           `gorm:"index;not null"`
	Role           string         `gorm:"type:varchar(16);not null"`
	Content        string         `gorm:"type:text;not null"`
	Metadata       datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt      time.Time      `gorm:"autoCreateTime;index"`
}

func (Message) TableName() string {
	return "messages"
}
