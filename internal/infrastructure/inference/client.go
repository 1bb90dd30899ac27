package inference

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"resty.dev/v3"

	"justiniano-server/chat-gateway/internal/config"
	"justiniano-server/chat-gateway/internal/domain/conversation"
	"justiniano-server/chat-gateway/internal/utils/httpclients"
	"justiniano-server/chat-gateway/internal/utils/platformerrors"
)

const tierHeader = "X-User-Tier"

// ErrStreamInterrupted marks an upstream stream that died after partial data
// was delivered, as opposed to a clean end-of-stream.
var ErrStreamInterrupted = errors.New("upstream stream interrupted")

// ChatRequest is the upstream wire format for a chat turn.
type ChatRequest struct {
	Query     string              `json:"query"`
	History   []conversation.Turn `json:"history"`
	MessageID string              `json:"message_id"`
}

// EvaluationResult carries the quality scores the upstream judge computes
// asynchronously for a completed turn.
type EvaluationResult struct {
	Faithfulness    float64 `json:"faithfulness"`
	AnswerRelevancy float64 `json:"answer_relevancy"`
}

// Client issues streaming chat calls and evaluation polls against the
// upstream inference service. Stateless per call.
type Client struct {
	client  *resty.Client
	baseURL string
	log     zerolog.Logger
}

func NewClient(cfg *config.Config, log zerolog.Logger) *Client {
	client := httpclients.NewClient("inference", log)
	client.SetTimeout(cfg.InferenceTimeout)
	return &Client{
		client:  client,
		baseURL: strings.TrimRight(cfg.InferenceBaseURL, "/"),
		log:     log.With().Str("component", "inference-client").Logger(),
	}
}

// StreamChat opens a streaming chat call and returns the raw response body.
// The body is a lazy, forward-only chunk sequence; the caller must consume it
// incrementally and close it. Failures before any data arrives surface as an
// EXTERNAL platform error; read errors after that are wrapped in
// ErrStreamInterrupted by the returned reader.
func (c *Client) StreamChat(ctx context.Context, query string, history []conversation.Turn, tier, interactionID string) (io.ReadCloser, error) {
	body := ChatRequest{
		Query:     query,
		History:   history,
		MessageID: interactionID,
	}
	if body.History == nil {
		body.History = []conversation.Turn{}
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept-Encoding", "identity").
		SetHeader(tierHeader, tier).
		SetBody(body).
		SetDoNotParseResponse(true).
		Post(c.baseURL + "/chat")
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeExternal, "inference service unavailable", err, "")
	}
	if resp.IsError() {
		defer resp.RawResponse.Body.Close()
		payload, _ := io.ReadAll(io.LimitReader(resp.RawResponse.Body, 4096))
		msg := fmt.Sprintf("inference service returned status %d", resp.StatusCode())
		if trimmed := strings.TrimSpace(string(payload)); trimmed != "" {
			msg = fmt.Sprintf("%s: %s", msg, trimmed)
		}
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeExternal, msg, nil, "")
	}
	if resp.RawResponse == nil || resp.RawResponse.Body == nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeExternal, "inference service returned empty stream", nil, "")
	}

	return &chunkStream{body: resp.RawResponse.Body}, nil
}

// PollEvaluation fetches the quality metrics for an interaction. A missing
// result is the normal not-yet-computed outcome and returns (nil, nil).
func (c *Client) PollEvaluation(ctx context.Context, interactionID string) (*EvaluationResult, error) {
	var result EvaluationResult
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&result).
		Get(c.baseURL + "/chat/evaluation/" + interactionID)
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeExternal, "inference service unavailable", err, "")
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, nil
	}
	if resp.IsError() {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeExternal,
			fmt.Sprintf("evaluation poll returned status %d", resp.StatusCode()), nil, "")
	}
	return &result, nil
}

// chunkStream distinguishes an abrupt upstream termination from a clean EOF.
type chunkStream struct {
	body io.ReadCloser
}

func (s *chunkStream) Read(p []byte) (int, error) {
	n, err := s.body.Read(p)
	if err != nil && !errors.Is(err, io.EOF) {
		return n, fmt.Errorf("%w: %v", ErrStreamInterrupted, err)
	}
	return n, err
}

func (s *chunkStream) Close() error {
	return s.body.Close()
}
