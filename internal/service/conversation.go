package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"catmatch/internal/models"
	"catmatch/internal/repository"
	"catmatch/internal/utils"
)

const (
	defaultPageSize = 50
	maxPageSize     = 100
	maxMessageRunes = 2000
)

// ListOptions 是訊息分頁參數，Before 為不包含的時間游標
type ListOptions struct {
	Limit  int
	Before *time.Time
}

// ConversationService 管理配對內的訊息
type ConversationService struct {
	repos   *repository.Repositories
	matches *MatchService
	clock   utils.Clock
	log     zerolog.Logger
}

func NewConversationService(repos *repository.Repositories, matches *MatchService, clock utils.Clock, log zerolog.Logger) *ConversationService {
	return &ConversationService{repos: repos, matches: matches, clock: clock, log: log}
}

// Authorize 檢查帳號能否存取這個配對的對話
func (s *ConversationService) Authorize(ctx context.Context, matchID, accountID uint) (*models.Match, error) {
	return s.matches.Authorize(ctx, matchID, accountID)
}

// ListMessages 由舊到新回傳 Before 之前的最新一頁訊息
func (s *ConversationService) ListMessages(ctx context.Context, matchID, requesterID uint, opts ListOptions) ([]models.Message, error) {
	if _, err := s.Authorize(ctx, matchID, requesterID); err != nil {
		return nil, err
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	messages, err := s.repos.Message.ListPage(ctx, matchID, opts.Before, limit)
	if err != nil {
		return nil, internalError(err)
	}
	return messages, nil
}

// AppendMessage 寫入訊息並更新配對的最後訊息時間
func (s *ConversationService) AppendMessage(ctx context.Context, matchID, senderID uint, text string) (*models.Message, *models.Match, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil, validationError("message text is required")
	}
	if len([]rune(text)) > maxMessageRunes {
		return nil, nil, validationError("message text is too long")
	}

	match, err := s.Authorize(ctx, matchID, senderID)
	if err != nil {
		return nil, nil, err
	}

	msg := &models.Message{
		MatchID:         matchID,
		SenderAccountID: senderID,
		Text:            text,
		SentAt:          s.clock.Now(),
	}
	err = s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		if err := tx.Message.Create(ctx, msg); err != nil {
			return err
		}
		return tx.Match.Touch(ctx, matchID, msg.SentAt)
	})
	if err != nil {
		// 配對在驗證後被刪除
		return nil, nil, wrapLookup(err, "match")
	}

	sentAt := msg.SentAt
	match.LastMessageAt = &sentAt
	return msg, match, nil
}

// MarkRead 將對方送出的未讀訊息標為已讀，回傳更新筆數
func (s *ConversationService) MarkRead(ctx context.Context, matchID, readerID uint) (int64, *models.Match, error) {
	match, err := s.Authorize(ctx, matchID, readerID)
	if err != nil {
		return 0, nil, err
	}
	n, err := s.repos.Message.MarkRead(ctx, matchID, readerID)
	if err != nil {
		return 0, nil, internalError(err)
	}
	return n, match, nil
}

// Unread 回傳帳號在配對中的未讀數
func (s *ConversationService) Unread(ctx context.Context, matchID, readerID uint) (int64, error) {
	if _, err := s.Authorize(ctx, matchID, readerID); err != nil {
		return 0, err
	}
	n, err := s.repos.Message.CountUnread(ctx, matchID, readerID)
	if err != nil {
		return 0, internalError(err)
	}
	return n, nil
}
