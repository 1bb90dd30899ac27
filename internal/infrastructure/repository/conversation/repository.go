package conversation

import (
	"context"
	"encoding/json"
	"errors"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "justiniano-server/chat-gateway/internal/domain/conversation"
	"justiniano-server/chat-gateway/internal/infrastructure/database/entities"
	"justiniano-server/chat-gateway/internal/utils/platformerrors"
)

// Repository persists conversations and messages via GORM.
type Repository struct {
	db *gorm.DB
}

var _ domain.Repository = (*Repository)(nil)

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindOrCreate returns the conversation row for userID, creating it when
// absent. The insert uses ON CONFLICT DO NOTHING on user_id, so two racing
// first calls both end up reading the same row.
func (r *Repository) FindOrCreate(ctx context.Context, userID, tier string) (*domain.Conversation, error) {
	entity := entities.Conversation{UserID: userID, Tier: tier}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).
		Create(&entity).Error
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError, "failed to create conversation", err, "")
	}

	// A conflicting insert leaves entity.ID zero; fetch the winning row.
	if entity.ID == 0 {
		if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&entity).Error; err != nil {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository,
				platformerrors.ErrorTypeDatabaseError, "failed to load conversation after upsert", err, "")
		}
	}

	conv := mapConversation(entity, nil)
	return &conv, nil
}

// AddMessage appends a message row for the user's conversation, creating the
// conversation first when needed. Messages are separate rows, so concurrent
// appends for one user serialize in the database without losing either write.
func (r *Repository) AddMessage(ctx context.Context, userID, tier string, role domain.Role, content string, metadata domain.Metadata) (*domain.Message, error) {
	conv, err := r.FindOrCreate(ctx, userID, tier)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(metadata)
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository,
			platformerrors.ErrorTypeInternal, "failed to encode message metadata", err, "")
	}

	entity := entities.Message{
		ConversationID: conv.ID,
		Role:           string(role),
		Content:        content,
		Metadata:       datatypes.JSON(raw),
	}
	if err := r.db.WithContext(ctx).Create(&entity).Error; err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError, "failed to append message", err, "")
	}

	msg := mapMessage(entity)
	return &msg, nil
}

// GetHistory returns the conversation with messages in chronological order,
// or nil when the user has never chatted.
func (r *Repository) GetHistory(ctx context.Context, userID string) (*domain.Conversation, error) {
	var entity entities.Conversation
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError, "failed to load conversation", err, "")
	}

	var rows []entities.Message
	err = r.db.WithContext(ctx).
		Where("conversation_id = ?", entity.ID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError, "failed to load messages", err, "")
	}

	conv := mapConversation(entity, rows)
	return &conv, nil
}

func mapConversation(entity entities.Conversation, rows []entities.Message) domain.Conversation {
	conv := domain.Conversation{
		ID:          entity.ID,
		UserID:      entity.UserID,
		Tier:        entity.Tier,
		TotalTokens: entity.TotalTokens,
		CreatedAt:   entity.CreatedAt,
		UpdatedAt:   entity.UpdatedAt,
	}
	if len(rows) > 0 {
		conv.Messages = make([]domain.Message, 0, len(rows))
		for _, row := range rows {
			conv.Messages = append(conv.Messages, mapMessage(row))
		}
	}
	return conv
}

func mapMessage(entity entities.Message) domain.Message {
	msg := domain.Message{
		ID:        entity.ID,
		Role:      domain.Role(entity.Role),
		Content:   entity.Content,
		CreatedAt: entity.CreatedAt,
	}
	if len(entity.Metadata) > 0 {
		// Rows written by this gateway always carry the closed metadata shape.
		_ = json.Unmarshal(entity.Metadata, &msg.Metadata)
	}
	return msg
}
