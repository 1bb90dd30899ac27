package handlers

import (
	"github.com/rs/zerolog"

	"justiniano-server/chat-gateway/internal/domain/conversation"
	"justiniano-server/chat-gateway/internal/interfaces/httpserver/handlers/chathandler"
	"justiniano-server/chat-gateway/internal/interfaces/httpserver/handlers/sdkhandler"
)

// Provider wires HTTP handlers.
type Provider struct {
	Chat *chathandler.ChatHandler
	SDK  *sdkhandler.SDKHandler
}

func NewProvider(conversations *conversation.Service, upstream chathandler.Inferencer, generator sdkhandler.Generator, log zerolog.Logger) *Provider {
	return &Provider{
		Chat: chathandler.NewChatHandler(conversations, upstream, log),
		SDK:  sdkhandler.NewSDKHandler(generator, log),
	}
}
