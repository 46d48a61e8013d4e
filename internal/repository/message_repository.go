package repository

import (
	"context"
	"time"

	"catmatch/internal/models"
	"catmatch/internal/storage"
)

type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	// ListPage 回傳 sent_at 早於 before 的最新 limit 筆，結果由舊到新排序
	ListPage(ctx context.Context, matchID uint, before *time.Time, limit int) ([]models.Message, error)
	MarkRead(ctx context.Context, matchID, readerAccountID uint) (int64, error)
	CountUnread(ctx context.Context, matchID, readerAccountID uint) (int64, error)
}

type messageRepository struct {
	baseRepository
}

func NewMessageRepository(db *storage.DB) MessageRepository {
	return &messageRepository{baseRepository{db: db}}
}

func (r *messageRepository) Create(ctx context.Context, message *models.Message) error {
	return r.create(ctx, message)
}

func (r *messageRepository) ListPage(ctx context.Context, matchID uint, before *time.Time, limit int) ([]models.Message, error) {
	q := r.db.WithContext(ctx).Where("match_id = ?", matchID)
	if before != nil {
		q = q.Where("sent_at < ?", *before)
	}

	var messages []models.Message
	if err := q.Order("sent_at DESC").Order("id DESC").Limit(limit).Find(&messages).Error; err != nil {
		return nil, translate(err)
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func (r *messageRepository) MarkRead(ctx context.Context, matchID, readerAccountID uint) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Message{}).
		Where("match_id = ? AND sender_account_id <> ? AND read = ?", matchID, readerAccountID, false).
		Update("read", true)
	return res.RowsAffected, translate(res.Error)
}

func (r *messageRepository) CountUnread(ctx context.Context, matchID, readerAccountID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Message{}).
		Where("match_id = ? AND sender_account_id <> ? AND read = ?", matchID, readerAccountID, false).
		Count(&n).Error
	return n, translate(err)
}
