package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"catmatch/internal/middleware"
	"catmatch/internal/service"
)

// MessageHandler 是即時通道之外的訊息 REST 介面
type MessageHandler struct {
	conversations *service.ConversationService
	dispatcher    *service.Dispatcher
}

func NewMessageHandler(conversations *service.ConversationService, dispatcher *service.Dispatcher) *MessageHandler {
	return &MessageHandler{conversations: conversations, dispatcher: dispatcher}
}

// List 分頁取得訊息，before 可以是 RFC3339 時間
func (h *MessageHandler) List(c *gin.Context) {
	matchID, ok := parseID(c, "matchId")
	if !ok {
		return
	}

	var opts service.ListOptions
	if v := c.Query("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			badRequest(c, "無效的 limit")
			return
		}
		opts.Limit = limit
	}
	if v := c.Query("before"); v != "" {
		before, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			badRequest(c, "無效的 before")
			return
		}
		before = before.UTC()
		opts.Before = &before
	}

	messages, err := h.conversations.ListMessages(c.Request.Context(), matchID, middleware.AccountID(c), opts)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, messages)
}

// CreateMessageInput 定義送出訊息的結構
type CreateMessageInput struct {
	MatchID uint   `json:"matchId" binding:"required"`
	Text    string `json:"text"`
}

// Create 寫入訊息並推送給在線的連線
func (h *MessageHandler) Create(c *gin.Context) {
	var input CreateMessageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err.Error())
		return
	}

	msg, match, err := h.conversations.AppendMessage(c.Request.Context(), input.MatchID, middleware.AccountID(c), input.Text)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.dispatcher.PublishMessage(match, msg); err != nil {
		_ = c.Error(err)
	}
	c.JSON(http.StatusCreated, msg)
}

// MarkRead 將對方的訊息標為已讀
func (h *MessageHandler) MarkRead(c *gin.Context) {
	matchID, ok := parseID(c, "matchId")
	if !ok {
		return
	}
	accountID := middleware.AccountID(c)

	n, _, err := h.conversations.MarkRead(c.Request.Context(), matchID, accountID)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.dispatcher.PublishReadReceipt(matchID, accountID, n); err != nil {
		_ = c.Error(err)
	}
	c.JSON(http.StatusOK, gin.H{"count": n})
}

// Unread 回傳對方送出但尚未讀取的訊息數
func (h *MessageHandler) Unread(c *gin.Context) {
	matchID, ok := parseID(c, "matchId")
	if !ok {
		return
	}
	n, err := h.conversations.Unread(c.Request.Context(), matchID, middleware.AccountID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": n})
}
