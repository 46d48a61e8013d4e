package repository

import (
	"context"

	"gorm.io/gorm"

	"catmatch/internal/models"
	"catmatch/internal/storage"
)

type Repositories struct {
	db       *storage.DB
	Account  AccountRepository
	Cat      CatRepository
	Interest InterestRepository
	Match    MatchRepository
	Message  MessageRepository
}

func NewRepositories(db *storage.DB) *Repositories {
	return &Repositories{
		db:       db,
		Account:  NewAccountRepository(db),
		Cat:      NewCatRepository(db),
		Interest: NewInterestRepository(db),
		Match:    NewMatchRepository(db),
		Message:  NewMessageRepository(db),
	}
}

// Transaction 在同一個資料庫交易中執行 fn，fn 回傳錯誤時整個交易回滾
func (r *Repositories) Transaction(ctx context.Context, fn func(tx *Repositories) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(r.db.WithTx(tx)))
	})
}

// Models 回傳需要遷移的所有模型
func Models() []interface{} {
	return []interface{}{
		&models.Account{},
		&models.Cat{},
		&models.Interest{},
		&models.Match{},
		&models.Message{},
	}
}
