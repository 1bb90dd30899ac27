package sdkhandler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	chatrequests "justiniano-server/chat-gateway/internal/interfaces/httpserver/requests/chat"
	"justiniano-server/chat-gateway/internal/interfaces/httpserver/responses"
	chatresponses "justiniano-server/chat-gateway/internal/interfaces/httpserver/responses/chat"
	"justiniano-server/chat-gateway/internal/utils/platformerrors"
)

// Generator produces client SDK source for a target language.
type Generator interface {
	Generate(ctx context.Context, language, instructions string) (string, error)
}

// SDKHandler exposes the one-shot SDK generation proxy.
type SDKHandler struct {
	generator Generator
	log       zerolog.Logger
}

func NewSDKHandler(generator Generator, log zerolog.Logger) *SDKHandler {
	return &SDKHandler{
		generator: generator,
		log:       log.With().Str("component", "sdk-handler").Logger(),
	}
}

// GenerateSDK handles POST /sdk/generate.
func (h *SDKHandler) GenerateSDK(c *gin.Context) {
	var req chatrequests.SDKRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "language is required")
		return
	}

	code, err := h.generator.Generate(c.Request.Context(), req.Language, req.Instructions)
	if err != nil {
		h.log.Error().Err(err).Str("language", req.Language).Msg("sdk generation failed")
		responses.HandleError(c, err, "sdk generation failed")
		return
	}

	c.JSON(http.StatusOK, chatresponses.SDKResponse{
		Language: req.Language,
		Code:     code,
	})
}
