package sdkgen

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"justiniano-server/chat-gateway/internal/config"
	"justiniano-server/chat-gateway/internal/utils/platformerrors"
)

const systemPrompt = "You are a code generator. Produce a complete, idiomatic client SDK " +
	"for the chat gateway HTTP API in the requested language. Output only source code, " +
	"no prose and no markdown fences."

// Client proxies SDK generation prompts to a third-party completion API.
// It is independent of the chat relay path.
type Client struct {
	api   *openai.Client
	model string
	log   zerolog.Logger
}

func NewClient(cfg *config.Config, log zerolog.Logger) *Client {
	clientCfg := openai.DefaultConfig(cfg.SDKGenAPIKey)
	if cfg.SDKGenBaseURL != "" {
		clientCfg.BaseURL = cfg.SDKGenBaseURL
	}
	return &Client{
		api:   openai.NewClientWithConfig(clientCfg),
		model: cfg.SDKGenModel,
		log:   log.With().Str("component", "sdkgen-client").Logger(),
	}
}

// Generate issues a single non-streaming completion call and returns the
// cleaned source text.
func (c *Client) Generate(ctx context.Context, language, instructions string) (string, error) {
	prompt := fmt.Sprintf("Target language: %s.", language)
	if strings.TrimSpace(instructions) != "" {
		prompt += "\nAdditional instructions: " + instructions
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", platformerrors.NewError(ctx, platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeExternal, "completion API call failed", err, "")
	}
	if len(resp.Choices) == 0 {
		return "", platformerrors.NewError(ctx, platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeExternal, "completion API returned no choices",
			errors.New("empty choices"), "")
	}

	return cleanSource(resp.Choices[0].Message.Content), nil
}

// cleanSource strips markdown code fences the model may emit despite the
// prompt asking for bare source.
func cleanSource(raw string) string {
	out := strings.TrimSpace(raw)
	if strings.HasPrefix(out, "```") {
		if idx := strings.Index(out, "\n"); idx >= 0 {
			out = out[idx+1:]
		} else {
			out = strings.TrimPrefix(out, "```")
		}
	}
	out = strings.TrimSuffix(strings.TrimSpace(out), "```")
	return strings.TrimSpace(out)
}
