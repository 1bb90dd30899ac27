package chathandler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"justiniano-server/chat-gateway/internal/domain/conversation"
	"justiniano-server/chat-gateway/internal/infrastructure/inference"
	"justiniano-server/chat-gateway/internal/infrastructure/metrics"
	"justiniano-server/chat-gateway/internal/infrastructure/observability"
	"justiniano-server/chat-gateway/internal/interfaces/httpserver/middlewares"
	chatrequests "justiniano-server/chat-gateway/internal/interfaces/httpserver/requests/chat"
	"justiniano-server/chat-gateway/internal/interfaces/httpserver/responses"
	chatresponses "justiniano-server/chat-gateway/internal/interfaces/httpserver/responses/chat"
	"justiniano-server/chat-gateway/internal/utils/platformerrors"
)

const (
	userIDHeader        = "X-User-Id"
	tierHeader          = "X-User-Tier"
	interactionIDHeader = "X-Interaction-Id"

	defaultUserID = "anonymous"

	relayBufferSize = 4 * 1024
)

// tierModels is the fixed tier -> model label mapping recorded against each
// assistant turn. The gateway never selects models itself; upstream does.
var tierModels = map[string]string{
	conversation.TierFree: "llama-3.1-8b",
	conversation.TierPro:  "mistral-nemo-12b",
}

// Inferencer is the upstream contract the relay depends on.
type Inferencer interface {
	StreamChat(ctx context.Context, query string, history []conversation.Turn, tier, interactionID string) (io.ReadCloser, error)
	PollEvaluation(ctx context.Context, interactionID string) (*inference.EvaluationResult, error)
}

// ChatHandler orchestrates a chat turn: persist the user message, relay the
// upstream stream to the client while accumulating it, then persist the
// assistant message.
type ChatHandler struct {
	conversations *conversation.Service
	upstream      Inferencer
	log           zerolog.Logger
}

func NewChatHandler(conversations *conversation.Service, upstream Inferencer, log zerolog.Logger) *ChatHandler {
	return &ChatHandler{
		conversations: conversations,
		upstream:      upstream,
		log:           log.With().Str("component", "chat-handler").Logger(),
	}
}

// CreateChat handles POST /chat.
func (h *ChatHandler) CreateChat(c *gin.Context) {
	var req chatrequests.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "message cannot be empty")
		return
	}
	message := strings.TrimSpace(req.Message)
	if message == "" {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "message cannot be empty")
		return
	}

	userID := identityFromHeaders(c)
	tier := tierFromHeaders(c)
	interactionID := strings.TrimSpace(req.InteractionID)
	if interactionID == "" {
		interactionID = uuid.NewString()
	}

	ctx, span := observability.StartSpan(c.Request.Context(), "ChatHandler.CreateChat")
	defer span.End()
	observability.AddSpanAttributes(ctx,
		attribute.String("chat.tier", tier),
		attribute.String("chat.interaction_id", interactionID),
	)

	start := time.Now()

	// The user turn must be durably recorded before any upstream call; a
	// storage failure aborts the whole turn.
	if _, err := h.conversations.RecordUserMessage(ctx, userID, tier, message, interactionID); err != nil {
		observability.RecordError(ctx, err)
		metrics.ChatTurnsTotal.WithLabelValues(tier, "storage_failed").Inc()
		responses.HandleError(c, err, "failed to record message")
		return
	}

	// History excludes the turn just persisted; it travels as the query.
	history, err := h.conversations.HistoryBefore(ctx, userID, interactionID)
	if err != nil {
		observability.RecordError(ctx, err)
		metrics.ChatTurnsTotal.WithLabelValues(tier, "storage_failed").Inc()
		responses.HandleError(c, err, "failed to load history")
		return
	}

	stream, err := h.upstream.StreamChat(ctx, message, history, tier, interactionID)
	if err != nil {
		// No bytes written yet, so a plain JSON error is still possible.
		observability.RecordError(ctx, err)
		metrics.UpstreamErrorsTotal.WithLabelValues("unavailable").Inc()
		metrics.ChatTurnsTotal.WithLabelValues(tier, "upstream_unavailable").Inc()
		responses.HandleError(c, err, "inference service unavailable")
		return
	}
	defer stream.Close()

	c.Writer.Header().Set(interactionIDHeader, interactionID)
	flusher, ok := middlewares.PrepareSSE(c)
	if !ok {
		responses.HandleNewError(c, platformerrors.ErrorTypeInternal, "streaming unsupported by connection")
		return
	}
	c.Writer.WriteHeaderNow()

	full, relayErr := h.relay(c, stream, flusher, tier)
	if relayErr != nil {
		// Mid-stream failure or client disconnect: the partial text is not
		// persisted. An upstream interruption additionally severs the client
		// connection; finishing the chunked body normally would look like a
		// completed turn.
		h.logRelayFailure(relayErr, interactionID)
		observability.RecordError(ctx, relayErr)
		if errors.Is(relayErr, inference.ErrStreamInterrupted) {
			abortConnection(c)
		}
		return
	}

	// Persist the assistant turn after forwarding finished; the client has
	// its bytes either way, so a failure here is logged, not surfaced.
	model := tierModels[tier]
	if _, err := h.conversations.RecordAssistantMessage(ctx, userID, tier, full, interactionID, model, time.Since(start)); err != nil {
		h.log.Warn().
			Err(err).
			Str("interaction_id", interactionID).
			Msg("failed to persist assistant message")
	}
	metrics.ChatTurnsTotal.WithLabelValues(tier, "completed").Inc()
}

// relay forwards upstream chunks to the client as they arrive, flushing each
// one, and returns the accumulated text on a clean end-of-stream. Each chunk
// is written downstream before it is appended to the accumulator.
func (h *ChatHandler) relay(c *gin.Context, stream io.Reader, flusher interface{ Flush() }, tier string) (string, error) {
	var builder strings.Builder
	buf := make([]byte, relayBufferSize)

	for {
		n, readErr := stream.Read(buf)
		if n > 0 {
			if _, writeErr := c.Writer.Write(buf[:n]); writeErr != nil {
				return "", writeErr
			}
			flusher.Flush()
			builder.Write(buf[:n])
			metrics.RelayedBytesTotal.WithLabelValues(tier).Add(float64(n))
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				return builder.String(), nil
			}
			metrics.UpstreamErrorsTotal.WithLabelValues("interrupted").Inc()
			metrics.ChatTurnsTotal.WithLabelValues(tier, "interrupted").Inc()
			return "", readErr
		}
	}
}

// abortConnection drops the TCP connection without the terminating chunk, so
// the client reads an abnormal end-of-stream instead of a clean one. Hijacking
// is an HTTP/1 facility; on other transports the stream reset reaches the
// client through the write path.
func abortConnection(c *gin.Context) {
	if c.Request.ProtoMajor != 1 {
		return
	}
	hijacker, ok := c.Writer.(http.Hijacker)
	if !ok {
		return
	}
	conn, _, err := hijacker.Hijack()
	if err != nil {
		return
	}
	conn.Close()
}

func (h *ChatHandler) logRelayFailure(err error, interactionID string) {
	event := h.log.Error()
	if errors.Is(err, context.Canceled) {
		event = h.log.Warn()
	}
	event.
		Err(err).
		Str("interaction_id", interactionID).
		Msg("chat stream terminated before completion")
}

// GetEvaluation handles GET /chat/evaluation/:interactionId. A result that is
// not computed yet is reported as pending, distinct from an upstream failure.
func (h *ChatHandler) GetEvaluation(c *gin.Context) {
	interactionID := strings.TrimSpace(c.Param("interactionId"))
	if interactionID == "" {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "interaction id is required")
		return
	}

	result, err := h.upstream.PollEvaluation(c.Request.Context(), interactionID)
	if err != nil {
		responses.HandleError(c, err, "failed to poll evaluation")
		return
	}
	if result == nil {
		c.JSON(http.StatusAccepted, chatresponses.EvaluationResponse{
			InteractionID: interactionID,
			Status:        "pending",
		})
		return
	}

	c.JSON(http.StatusOK, chatresponses.EvaluationResponse{
		InteractionID: interactionID,
		Status:        "completed",
		Metrics:       result,
	})
}

// GetHistory handles GET /chat/history: transcript readback for the caller.
func (h *ChatHandler) GetHistory(c *gin.Context) {
	userID := identityFromHeaders(c)

	conv, err := h.conversations.Transcript(c.Request.Context(), userID)
	if err != nil {
		responses.HandleError(c, err, "failed to load transcript")
		return
	}

	resp := chatresponses.HistoryResponse{
		UserID:   userID,
		Messages: []chatresponses.HistoryMessage{},
	}
	if conv != nil {
		resp.Tier = conv.Tier
		for _, msg := range conv.Messages {
			resp.Messages = append(resp.Messages, chatresponses.HistoryMessage{
				Role:      string(msg.Role),
				Content:   msg.Content,
				CreatedAt: msg.CreatedAt,
				Metadata:  msg.Metadata,
			})
		}
	}
	c.JSON(http.StatusOK, resp)
}

// identityFromHeaders trusts the caller-supplied identity header. Verification
// belongs to an auth collaborator in front of this gateway.
func identityFromHeaders(c *gin.Context) string {
	userID := strings.TrimSpace(c.GetHeader(userIDHeader))
	if userID == "" {
		return defaultUserID
	}
	return userID
}

func tierFromHeaders(c *gin.Context) string {
	tier := strings.ToLower(strings.TrimSpace(c.GetHeader(tierHeader)))
	if _, known := tierModels[tier]; !known {
		return conversation.TierFree
	}
	return tier
}
