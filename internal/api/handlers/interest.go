package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"catmatch/internal/middleware"
	"catmatch/internal/models"
	"catmatch/internal/service"
)

// InterestHandler 處理滑動與配對偵測的請求
type InterestHandler struct {
	interests  *service.InterestService
	matches    *service.MatchService
	dispatcher *service.Dispatcher
}

func NewInterestHandler(interests *service.InterestService, matches *service.MatchService, dispatcher *service.Dispatcher) *InterestHandler {
	return &InterestHandler{interests: interests, matches: matches, dispatcher: dispatcher}
}

// CreateInterestInput 定義滑動請求的結構
type CreateInterestInput struct {
	ActorEntityID  uint                `json:"actorEntityId" binding:"required"`
	TargetEntityID uint                `json:"targetEntityId" binding:"required"`
	ActionKind     models.InterestKind `json:"actionKind" binding:"required"`
}

// Create 記錄一次滑動，互相喜歡時建立配對並通知雙方
func (h *InterestHandler) Create(c *gin.Context) {
	var input CreateInterestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err.Error())
		return
	}

	entry, err := h.interests.Record(c.Request.Context(), service.RecordInput{
		AccountID:   middleware.AccountID(c),
		CatID:       input.ActorEntityID,
		TargetCatID: input.TargetEntityID,
		Kind:        input.ActionKind,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	resp := gin.H{"entry": entry, "matched": false}
	if match, created := h.matches.CheckAndCreateMatch(c.Request.Context(), entry); match != nil {
		resp["matched"] = true
		resp["match"] = match
		if created {
			h.dispatcher.NotifyNewMatch(match.Match)
		}
	}

	c.JSON(http.StatusCreated, resp)
}

// ListSent 列出送出的超級喜歡
func (h *InterestHandler) ListSent(c *gin.Context) {
	catID, ok := parseID(c, "entityId")
	if !ok {
		return
	}
	interests, err := h.interests.ListSent(c.Request.Context(), middleware.AccountID(c), catID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, interests)
}

// ListReceived 列出收到的超級喜歡
func (h *InterestHandler) ListReceived(c *gin.Context) {
	catID, ok := parseID(c, "entityId")
	if !ok {
		return
	}
	interests, err := h.interests.ListReceived(c.Request.Context(), middleware.AccountID(c), catID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, interests)
}

// Candidates 列出可滑動的候選貓咪
func (h *InterestHandler) Candidates(c *gin.Context) {
	catID, ok := parseID(c, "id")
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))

	cats, err := h.interests.Candidates(c.Request.Context(), middleware.AccountID(c), catID, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cats)
}
