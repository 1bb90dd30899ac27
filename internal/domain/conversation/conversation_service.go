package conversation

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"justiniano-server/chat-gateway/internal/utils/platformerrors"
)

// Service owns transcript reads and writes for the chat relay.
type Service struct {
	repo Repository
	log  zerolog.Logger
}

func NewService(repo Repository, log zerolog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log.With().Str("component", "conversation-service").Logger(),
	}
}

// RecordUserMessage persists the inbound user turn tagged with the interaction
// id. A failure here must abort the chat turn before any upstream call.
func (s *Service) RecordUserMessage(ctx context.Context, userID, tier, content, interactionID string) (*Message, error) {
	msg, err := s.repo.AddMessage(ctx, userID, tier, RoleUser, content, Metadata{
		Tier:          tier,
		InteractionID: interactionID,
	})
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to record user message")
	}
	return msg, nil
}

// RecordAssistantMessage persists the completed assistant turn after the
// stream has been fully relayed.
func (s *Service) RecordAssistantMessage(ctx context.Context, userID, tier, content, interactionID, model string, latency time.Duration) (*Message, error) {
	msg, err := s.repo.AddMessage(ctx, userID, tier, RoleAssistant, content, Metadata{
		Model:         model,
		Tier:          tier,
		InteractionID: interactionID,
		LatencyMS:     latency.Milliseconds(),
	})
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to record assistant message")
	}
	return msg, nil
}

// HistoryBefore returns the prior turns for userID as role/content pairs,
// excluding any message belonging to interactionID. The current turn is sent
// upstream as the query, not as history; including it twice would duplicate
// context for the model.
func (s *Service) HistoryBefore(ctx context.Context, userID, interactionID string) ([]Turn, error) {
	conv, err := s.repo.GetHistory(ctx, userID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to load history")
	}
	if conv == nil {
		return nil, nil
	}

	turns := make([]Turn, 0, len(conv.Messages))
	for _, msg := range conv.Messages {
		if msg.Metadata.InteractionID == interactionID {
			continue
		}
		turns = append(turns, Turn{Role: string(msg.Role), Content: msg.Content})
	}
	return turns, nil
}

// Transcript returns the full stored conversation for readback endpoints.
func (s *Service) Transcript(ctx context.Context, userID string) (*Conversation, error) {
	conv, err := s.repo.GetHistory(ctx, userID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to load transcript")
	}
	return conv, nil
}
