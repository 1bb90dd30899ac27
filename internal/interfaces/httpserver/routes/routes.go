package routes

import (
	"github.com/gin-gonic/gin"

	"justiniano-server/chat-gateway/internal/interfaces/httpserver/handlers"
)

// Routes encapsulates route registration.
type Routes struct {
	handlers *handlers.Provider
}

func NewRoutes(provider *handlers.Provider) *Routes {
	return &Routes{handlers: provider}
}

// Register attaches all application routes.
func (r *Routes) Register(router gin.IRouter) {
	router.POST("/chat", r.handlers.Chat.CreateChat)
	router.GET("/chat/history", r.handlers.Chat.GetHistory)
	router.GET("/chat/evaluation/:interactionId", r.handlers.Chat.GetEvaluation)
	router.POST("/sdk/generate", r.handlers.SDK.GenerateSDK)
}
