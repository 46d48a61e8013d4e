package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"catmatch/internal/middleware"
	"catmatch/internal/service"
)

// MatchHandler 處理配對相關的請求
type MatchHandler struct {
	matches    *service.MatchService
	dispatcher *service.Dispatcher
}

func NewMatchHandler(matches *service.MatchService, dispatcher *service.Dispatcher) *MatchHandler {
	return &MatchHandler{matches: matches, dispatcher: dispatcher}
}

// List 列出目前帳號的配對
func (h *MatchHandler) List(c *gin.Context) {
	matches, err := h.matches.ListMatches(c.Request.Context(), middleware.AccountID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, matches)
}

// Get 取得單一配對
func (h *MatchHandler) Get(c *gin.Context) {
	matchID, ok := parseID(c, "id")
	if !ok {
		return
	}
	match, err := h.matches.GetMatch(c.Request.Context(), matchID, middleware.AccountID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, match)
}

// Delete 取消配對，訊息一併刪除
func (h *MatchHandler) Delete(c *gin.Context) {
	matchID, ok := parseID(c, "id")
	if !ok {
		return
	}
	if _, err := h.matches.Unmatch(c.Request.Context(), matchID, middleware.AccountID(c)); err != nil {
		respondError(c, err)
		return
	}
	h.dispatcher.DropMatch(matchID)
	c.JSON(http.StatusOK, gin.H{"message": "已取消配對"})
}
