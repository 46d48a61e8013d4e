// Package repositorytest 提供以暫存 sqlite 資料庫建立 repository 的測試輔助。
package repositorytest

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"catmatch/internal/models"
	"catmatch/internal/repository"
	"catmatch/internal/storage"
)

// Fixture 是一個已遷移的獨立資料庫
type Fixture struct {
	DB    *storage.DB
	Repos *repository.Repositories
	seq   int
}

// New 在 t.TempDir() 建立資料庫，測試結束時自動關閉
func New(t testing.TB) *Fixture {
	t.Helper()

	db, err := storage.NewSQLiteDB(filepath.Join(t.TempDir(), "catmatch.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := db.AutoMigrate(repository.Models()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return &Fixture{DB: db, Repos: repository.NewRepositories(db)}
}

// Account 建立一個帳號
func (f *Fixture) Account(t testing.TB) *models.Account {
	t.Helper()
	f.seq++
	account := &models.Account{
		Username: fmt.Sprintf("owner-%d", f.seq),
		Contact:  fmt.Sprintf("owner-%d@example.test", f.seq),
	}
	if err := f.Repos.Account.Create(context.Background(), account); err != nil {
		t.Fatalf("create account: %v", err)
	}
	return account
}

// Cat 為帳號建立一隻啟用中的貓
func (f *Fixture) Cat(t testing.TB, owner *models.Account, gender models.Gender) *models.Cat {
	t.Helper()
	f.seq++
	cat := &models.Cat{
		AccountID: owner.ID,
		Name:      fmt.Sprintf("cat-%d", f.seq),
		Gender:    gender,
		Photos:    []string{fmt.Sprintf("https://img.example.test/%d.jpg", f.seq)},
		Active:    true,
	}
	if err := f.Repos.Cat.Create(context.Background(), cat); err != nil {
		t.Fatalf("create cat: %v", err)
	}
	return cat
}
