package repository

import (
	"context"

	"catmatch/internal/models"
	"catmatch/internal/storage"
)

type AccountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	FindByID(ctx context.Context, id uint) (*models.Account, error)
	FindByIDs(ctx context.Context, ids []uint) (map[uint]*models.Account, error)
}

type accountRepository struct {
	baseRepository
}

func NewAccountRepository(db *storage.DB) AccountRepository {
	return &accountRepository{baseRepository{db: db}}
}

func (r *accountRepository) Create(ctx context.Context, account *models.Account) error {
	return r.create(ctx, account)
}

func (r *accountRepository) FindByID(ctx context.Context, id uint) (*models.Account, error) {
	var account models.Account
	if err := r.findByID(ctx, id, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *accountRepository) FindByIDs(ctx context.Context, ids []uint) (map[uint]*models.Account, error) {
	var accounts []models.Account
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&accounts).Error; err != nil {
		return nil, translate(err)
	}
	out := make(map[uint]*models.Account, len(accounts))
	for i := range accounts {
		out[accounts[i].ID] = &accounts[i]
	}
	return out, nil
}
