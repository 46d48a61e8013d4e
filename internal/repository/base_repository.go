package repository

import (
	"context"
	"errors"

	"catmatch/internal/storage"
)

// ErrNotFound 表示查無資料
var ErrNotFound = errors.New("record not found")

// ErrDuplicate 表示違反唯一鍵
var ErrDuplicate = errors.New("duplicate record")

// translate 把 gorm 與驅動層的錯誤統一成 repository 的錯誤
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case storage.IsNotFound(err):
		return ErrNotFound
	case storage.IsUniqueViolation(err):
		return errors.Join(ErrDuplicate, err)
	default:
		return err
	}
}

type baseRepository struct {
	db *storage.DB
}

func (r *baseRepository) create(ctx context.Context, model interface{}) error {
	return translate(r.db.WithContext(ctx).Create(model).Error)
}

func (r *baseRepository) findByID(ctx context.Context, id uint, model interface{}) error {
	return translate(r.db.WithContext(ctx).First(model, id).Error)
}
