package repository

import (
	"context"
	"errors"
	"time"

	"catmatch/internal/models"
	"catmatch/internal/storage"
)

type MatchRepository interface {
	// CreateOrGet 嘗試插入配對，違反唯一鍵時回傳既有的配對，created 表示本次是否新建
	CreateOrGet(ctx context.Context, match *models.Match) (result *models.Match, created bool, err error)
	FindByID(ctx context.Context, id uint) (*models.Match, error)
	FindByPair(ctx context.Context, x, y models.PairSide) (*models.Match, error)
	ListByAccount(ctx context.Context, accountID uint) ([]models.Match, error)
	Touch(ctx context.Context, id uint, at time.Time) error
	DeleteWithMessages(ctx context.Context, id uint) error
}

type matchRepository struct {
	baseRepository
}

func NewMatchRepository(db *storage.DB) MatchRepository {
	return &matchRepository{baseRepository{db: db}}
}

func (r *matchRepository) CreateOrGet(ctx context.Context, match *models.Match) (*models.Match, bool, error) {
	// 一律以正規順序寫入
	a, b := models.CanonicalPair(
		models.PairSide{CatID: match.CatAID, AccountID: match.AccountAID},
		models.PairSide{CatID: match.CatBID, AccountID: match.AccountBID},
	)
	match.CatAID, match.AccountAID = a.CatID, a.AccountID
	match.CatBID, match.AccountBID = b.CatID, b.AccountID

	err := r.create(ctx, match)
	if err == nil {
		return match, true, nil
	}
	if !errors.Is(err, ErrDuplicate) {
		return nil, false, err
	}

	existing, err := r.FindByPair(ctx, a, b)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (r *matchRepository) FindByID(ctx context.Context, id uint) (*models.Match, error) {
	var match models.Match
	if err := r.findByID(ctx, id, &match); err != nil {
		return nil, err
	}
	return &match, nil
}

func (r *matchRepository) FindByPair(ctx context.Context, x, y models.PairSide) (*models.Match, error) {
	a, b := models.CanonicalPair(x, y)

	var match models.Match
	err := r.db.WithContext(ctx).
		Where("cat_a_id = ? AND cat_b_id = ?", a.CatID, b.CatID).
		First(&match).Error
	if err != nil {
		return nil, translate(err)
	}
	return &match, nil
}

// ListByAccount 依最近活動時間排序，最近聊過的配對在前
func (r *matchRepository) ListByAccount(ctx context.Context, accountID uint) ([]models.Match, error) {
	var matches []models.Match
	err := r.db.WithContext(ctx).
		Where("account_a_id = ? OR account_b_id = ?", accountID, accountID).
		Order("COALESCE(last_message_at, created_at) DESC").
		Order("id DESC").
		Find(&matches).Error
	return matches, translate(err)
}

func (r *matchRepository) Touch(ctx context.Context, id uint, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&models.Match{}).Where("id = ?", id).Update("last_message_at", at)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteWithMessages 刪除配對與其所有訊息，呼叫端應在交易中使用
func (r *matchRepository) DeleteWithMessages(ctx context.Context, id uint) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("match_id = ?", id).Delete(&models.Message{}).Error; err != nil {
		return translate(err)
	}
	res := db.Delete(&models.Match{}, id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
