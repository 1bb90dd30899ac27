package conversation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"justiniano-server/chat-gateway/internal/utils/platformerrors"
)

type fakeRepository struct {
	conv    *Conversation
	err     error
	lastMsg *Message
}

func (f *fakeRepository) FindOrCreate(context.Context, string, string) (*Conversation, error) {
	return f.conv, f.err
}

func (f *fakeRepository) AddMessage(_ context.Context, _, _ string, role Role, content string, metadata Metadata) (*Message, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.lastMsg = &Message{Role: role, Content: content, Metadata: metadata, CreatedAt: time.Now()}
	return f.lastMsg, nil
}

func (f *fakeRepository) GetHistory(context.Context, string) (*Conversation, error) {
	return f.conv, f.err
}

func TestHistoryBeforeExcludesInteraction(t *testing.T) {
	repo := &fakeRepository{conv: &Conversation{
		UserID: "user-1",
		Messages: []Message{
			{Role: RoleUser, Content: "primera", Metadata: Metadata{InteractionID: "turn-1"}},
			{Role: RoleAssistant, Content: "respuesta", Metadata: Metadata{InteractionID: "turn-1"}},
			{Role: RoleUser, Content: "segunda", Metadata: Metadata{InteractionID: "turn-2"}},
		},
	}}
	service := NewService(repo, zerolog.Nop())

	turns, err := service.HistoryBefore(context.Background(), "user-1", "turn-2")
	require.NoError(t, err)
	require.Len(t, turns, 2)
	require.Equal(t, "primera", turns[0].Content)
	require.Equal(t, "respuesta", turns[1].Content)
}

func TestHistoryBeforeNoConversation(t *testing.T) {
	service := NewService(&fakeRepository{}, zerolog.Nop())

	turns, err := service.HistoryBefore(context.Background(), "nobody", "turn-1")
	require.NoError(t, err)
	require.Nil(t, turns)
}

func TestRecordUserMessageMetadata(t *testing.T) {
	repo := &fakeRepository{}
	service := NewService(repo, zerolog.Nop())

	msg, err := service.RecordUserMessage(context.Background(), "user-1", TierPro, "hola", "turn-1")
	require.NoError(t, err)
	require.Equal(t, RoleUser, msg.Role)
	require.Equal(t, TierPro, msg.Metadata.Tier)
	require.Equal(t, "turn-1", msg.Metadata.InteractionID)
	require.Empty(t, msg.Metadata.Model)
}

func TestRecordAssistantMessageMetadata(t *testing.T) {
	repo := &fakeRepository{}
	service := NewService(repo, zerolog.Nop())

	msg, err := service.RecordAssistantMessage(context.Background(), "user-1", TierFree, "buenas", "turn-1", "llama-3.1-8b", 1500*time.Millisecond)
	require.NoError(t, err)
	require.Equal(t, RoleAssistant, msg.Role)
	require.Equal(t, "llama-3.1-8b", msg.Metadata.Model)
	require.EqualValues(t, 1500, msg.Metadata.LatencyMS)
}

func TestRecordUserMessageWrapsRepositoryError(t *testing.T) {
	repo := &fakeRepository{err: errors.New("connection refused")}
	service := NewService(repo, zerolog.Nop())

	_, err := service.RecordUserMessage(context.Background(), "user-1", TierFree, "hola", "turn-1")
	require.Error(t, err)

	var platformErr *platformerrors.PlatformError
	require.ErrorAs(t, err, &platformErr)
	require.Equal(t, platformerrors.LayerDomain, platformErr.Layer)
}
