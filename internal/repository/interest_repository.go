package repository

import (
	"context"

	"catmatch/internal/models"
	"catmatch/internal/storage"
)

type InterestRepository interface {
	Create(ctx context.Context, interest *models.Interest) error
	FindByPair(ctx context.Context, catID, targetCatID uint) (*models.Interest, error)
	ListSent(ctx context.Context, catID uint, kind models.InterestKind) ([]models.Interest, error)
	ListReceived(ctx context.Context, catID uint, kind models.InterestKind) ([]models.Interest, error)
}

type interestRepository struct {
	baseRepository
}

func NewInterestRepository(db *storage.DB) InterestRepository {
	return &interestRepository{baseRepository{db: db}}
}

// Create 新增興趣紀錄，(cat_id, target_cat_id) 重複時回傳 ErrDuplicate
func (r *interestRepository) Create(ctx context.Context, interest *models.Interest) error {
	return r.create(ctx, interest)
}

func (r *interestRepository) FindByPair(ctx context.Context, catID, targetCatID uint) (*models.Interest, error) {
	var interest models.Interest
	err := r.db.WithContext(ctx).
		Where("cat_id = ? AND target_cat_id = ?", catID, targetCatID).
		First(&interest).Error
	if err != nil {
		return nil, translate(err)
	}
	return &interest, nil
}

func (r *interestRepository) ListSent(ctx context.Context, catID uint, kind models.InterestKind) ([]models.Interest, error) {
	var interests []models.Interest
	err := r.db.WithContext(ctx).
		Where("cat_id = ? AND kind = ?", catID, kind).
		Order("created_at DESC").
		Find(&interests).Error
	return interests, translate(err)
}

func (r *interestRepository) ListReceived(ctx context.Context, catID uint, kind models.InterestKind) ([]models.Interest, error) {
	var interests []models.Interest
	err := r.db.WithContext(ctx).
		Where("target_cat_id = ? AND kind = ?", catID, kind).
		Order("created_at DESC").
		Find(&interests).Error
	return interests, translate(err)
}
