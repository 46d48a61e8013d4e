package repository

import (
	"context"

	"gorm.io/gorm"

	"catmatch/internal/models"
	"catmatch/internal/storage"
)

type CatRepository interface {
	Create(ctx context.Context, cat *models.Cat) error
	FindByID(ctx context.Context, id uint) (*models.Cat, error)
	FindByIDs(ctx context.Context, ids []uint) (map[uint]*models.Cat, error)
	// ConsumeSuperLike 以單一條件式 UPDATE 扣除當日額度，成功時回傳當日已使用次數
	ConsumeSuperLike(ctx context.Context, catID uint, day string, limit int) (bool, int, error)
	SuperLikesUsed(ctx context.Context, catID uint, day string) (int, error)
	ResetSuperLike(ctx context.Context, catID uint) (int64, error)
	ResetSuperLikesForAccount(ctx context.Context, accountID uint) (int64, error)
	Candidates(ctx context.Context, cat *models.Cat, limit int) ([]models.Cat, error)
}

type catRepository struct {
	baseRepository
}

func NewCatRepository(db *storage.DB) CatRepository {
	return &catRepository{baseRepository{db: db}}
}

func (r *catRepository) Create(ctx context.Context, cat *models.Cat) error {
	return r.create(ctx, cat)
}

func (r *catRepository) FindByID(ctx context.Context, id uint) (*models.Cat, error) {
	var cat models.Cat
	if err := r.findByID(ctx, id, &cat); err != nil {
		return nil, err
	}
	return &cat, nil
}

func (r *catRepository) FindByIDs(ctx context.Context, ids []uint) (map[uint]*models.Cat, error) {
	var cats []models.Cat
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&cats).Error; err != nil {
		return nil, translate(err)
	}
	out := make(map[uint]*models.Cat, len(cats))
	for i := range cats {
		out[cats[i].ID] = &cats[i]
	}
	return out, nil
}

func (r *catRepository) ConsumeSuperLike(ctx context.Context, catID uint, day string, limit int) (bool, int, error) {
	// 日期不是今天時視為 0，SET 中的運算式都使用更新前的值
	res := r.db.WithContext(ctx).Model(&models.Cat{}).
		Where("id = ? AND (COALESCE(super_like_date, '') <> ? OR super_like_count < ?)", catID, day, limit).
		Updates(map[string]interface{}{
			"super_like_count": gorm.Expr("CASE WHEN COALESCE(super_like_date, '') = ? THEN super_like_count + 1 ELSE 1 END", day),
			"super_like_date":  day,
		})
	if res.Error != nil {
		return false, 0, translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return false, limit, nil
	}

	used, err := r.SuperLikesUsed(ctx, catID, day)
	if err != nil {
		return false, 0, err
	}
	return true, used, nil
}

func (r *catRepository) SuperLikesUsed(ctx context.Context, catID uint, day string) (int, error) {
	var cat models.Cat
	err := r.db.WithContext(ctx).Select("id", "super_like_date", "super_like_count").First(&cat, catID).Error
	if err != nil {
		return 0, translate(err)
	}
	if cat.SuperLikeDate != day {
		return 0, nil
	}
	return cat.SuperLikeCount, nil
}

func (r *catRepository) ResetSuperLike(ctx context.Context, catID uint) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Cat{}).Where("id = ?", catID).
		Updates(map[string]interface{}{"super_like_date": "", "super_like_count": 0})
	return res.RowsAffected, translate(res.Error)
}

func (r *catRepository) ResetSuperLikesForAccount(ctx context.Context, accountID uint) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Cat{}).Where("account_id = ?", accountID).
		Updates(map[string]interface{}{"super_like_date": "", "super_like_count": 0})
	return res.RowsAffected, translate(res.Error)
}

// Candidates 查詢可以滑動的候選貓咪：啟用中、屬於其他帳號、不同性別、尚未評價過
func (r *catRepository) Candidates(ctx context.Context, cat *models.Cat, limit int) ([]models.Cat, error) {
	evaluated := r.db.WithContext(ctx).Model(&models.Interest{}).
		Select("target_cat_id").Where("cat_id = ?", cat.ID)

	var cats []models.Cat
	err := r.db.WithContext(ctx).
		Where("active = ? AND account_id <> ? AND gender <> ?", true, cat.AccountID, cat.Gender).
		Where("id NOT IN (?)", evaluated).
		Order("id ASC").
		Limit(limit).
		Find(&cats).Error
	return cats, translate(err)
}
