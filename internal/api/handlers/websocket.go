package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"catmatch/internal/middleware"
	"catmatch/internal/service"
	"catmatch/internal/utils"
)

// WebSocketHandler 處理 WebSocket 連接
type WebSocketHandler struct {
	dispatcher *service.Dispatcher
	tokens     *utils.TokenManager
	upgrader   websocket.Upgrader
	log        zerolog.Logger
}

// NewWebSocketHandler 創建一個新的 WebSocketHandler 實例，allowedOrigins 含 "*" 時接受任何來源
func NewWebSocketHandler(dispatcher *service.Dispatcher, tokens *utils.TokenManager, allowedOrigins []string, log zerolog.Logger) *WebSocketHandler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &WebSocketHandler{
		dispatcher: dispatcher,
		tokens:     tokens,
		log:        log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowed["*"] || allowed[origin]
			},
		},
	}
}

// HandleWebSocket 在握手時驗證憑證，失敗時不升級連線
func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	token, ok := middleware.BearerToken(c)
	if !ok {
		token = c.Query("token")
	}
	claims, err := h.tokens.ParseToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}

	// 升級 HTTP 連接為 WebSocket 連接
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn().Err(err).Uint("account_id", claims.AccountID).Msg("websocket upgrade failed")
		return
	}

	client := h.dispatcher.NewClient(claims.AccountID, conn)
	h.log.Debug().Uint("account_id", claims.AccountID).Str("client_id", client.ID).Msg("websocket connected")

	// 斷線後仍讓進行中的寫入完成
	h.dispatcher.Serve(context.WithoutCancel(c.Request.Context()), client)

	h.log.Debug().Uint("account_id", claims.AccountID).Str("client_id", client.ID).Msg("websocket disconnected")
}
