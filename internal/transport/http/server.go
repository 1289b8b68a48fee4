package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/pushchat/pushchat-server/internal/auth"
	"github.com/pushchat/pushchat-server/internal/config"
	"github.com/pushchat/pushchat-server/internal/core"
)

// NewServer builds the HTTP server with all API routes.
func NewServer(authService *auth.Service, coordinator *core.Coordinator, cfg config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery(), LoggerMiddleware(logger))

	authHandlers := NewAuthHandlers(authService, logger)
	chatHandlers := NewChatHandlers(coordinator, logger)

	router.GET("/health", healthHandler)

	router.POST("/register", authHandlers.Register)
	router.POST("/login", authHandlers.Login)
	router.POST("/submit_push_token", chatHandlers.SubmitPushToken)
	router.POST("/send_message_and_notify", chatHandlers.SendMessageAndNotify)
	router.GET("/get_chat_rooms", chatHandlers.GetChatRooms)
	router.GET("/get_messages/:room_id", chatHandlers.GetMessages)

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}
