package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"catmatch/internal/api/handlers"
	"catmatch/internal/middleware"
	"catmatch/internal/service"
	"catmatch/internal/utils"
)

// RouterOptions 是路由需要的外部元件
type RouterOptions struct {
	Tokens         *utils.TokenManager
	AllowedOrigins []string
	Log            zerolog.Logger
}

func SetupRoutes(r *gin.Engine, services *service.Services, opts RouterOptions) {
	// 初始化 handlers
	interestHandler := handlers.NewInterestHandler(services.Interest, services.Match, services.Dispatcher)
	matchHandler := handlers.NewMatchHandler(services.Match, services.Dispatcher)
	messageHandler := handlers.NewMessageHandler(services.Conversation, services.Dispatcher)
	wsHandler := handlers.NewWebSocketHandler(services.Dispatcher, opts.Tokens, opts.AllowedOrigins, opts.Log.With().Str("component", "ws").Logger())

	// API 路由群組
	api := r.Group("/api")

	// 處理 404 錯誤
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "找不到該路徑",
		})
	})

	// 公開路由
	{
		// 基本的健康檢查
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status": "ok",
			})
		})

		// WebSocket 在握手時自行驗證，瀏覽器無法帶 Authorization 標頭
		api.GET("/ws", wsHandler.HandleWebSocket)
	}

	// 需要驗證的路由
	authorized := api.Group("/")
	authorized.Use(middleware.AuthMiddleware(opts.Tokens))
	{
		// 滑動
		interests := authorized.Group("/interests")
		{
			interests.POST("", interestHandler.Create)
			interests.GET("/sent/:entityId", interestHandler.ListSent)
			interests.GET("/received/:entityId", interestHandler.ListReceived)
		}

		authorized.GET("/cats/:id/candidates", interestHandler.Candidates)

		// 配對
		matches := authorized.Group("/matches")
		{
			matches.GET("", matchHandler.List)
			matches.GET("/:id", matchHandler.Get)
			matches.DELETE("/:id", matchHandler.Delete)
		}

		// 訊息
		messages := authorized.Group("/messages")
		{
			messages.GET("/:matchId", messageHandler.List)
			messages.POST("", messageHandler.Create)
			messages.GET("/:matchId/unread", messageHandler.Unread)
			messages.PUT("/:matchId/read", messageHandler.MarkRead)
		}
	}
}
