package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"catmatch/internal/repository"
	"catmatch/internal/utils"
)

// QuotaResult 是一次扣除額度的結果
type QuotaResult struct {
	Allowed   bool `json:"allowed"`
	Remaining int  `json:"remaining"`
}

// QuotaService 追蹤每隻貓每日的超級喜歡額度
// 狀態只存在資料庫中，日期不是今天時視為尚未使用，不需要排程重置
type QuotaService struct {
	repos *repository.Repositories
	limit int
	log   zerolog.Logger
}

func NewQuotaService(repos *repository.Repositories, limit int, log zerolog.Logger) *QuotaService {
	if limit <= 0 {
		limit = 1
	}
	return &QuotaService{repos: repos, limit: limit, log: log}
}

// Limit 回傳每日上限
func (s *QuotaService) Limit() int { return s.limit }

func (s *QuotaService) withRepos(repos *repository.Repositories) *QuotaService {
	cp := *s
	cp.repos = repos
	return &cp
}

// TryConsume 嘗試使用 today 當天的一次額度，併發呼叫時只有額度內的請求會成功
func (s *QuotaService) TryConsume(ctx context.Context, catID uint, today time.Time) (QuotaResult, error) {
	day := utils.Day(today)
	ok, used, err := s.repos.Cat.ConsumeSuperLike(ctx, catID, day, s.limit)
	if err != nil {
		return QuotaResult{}, internalError(err)
	}
	if !ok {
		return QuotaResult{Allowed: false, Remaining: 0}, nil
	}
	return QuotaResult{Allowed: true, Remaining: remaining(s.limit, used)}, nil
}

// Remaining 查詢當天剩餘次數，不會扣除額度
func (s *QuotaService) Remaining(ctx context.Context, catID uint, today time.Time) (int, error) {
	used, err := s.repos.Cat.SuperLikesUsed(ctx, catID, utils.Day(today))
	if err != nil {
		return 0, wrapLookup(err, "cat")
	}
	return remaining(s.limit, used), nil
}

// ResetForCat 無條件清除一隻貓的額度狀態
func (s *QuotaService) ResetForCat(ctx context.Context, catID uint) error {
	n, err := s.repos.Cat.ResetSuperLike(ctx, catID)
	if err != nil {
		return internalError(err)
	}
	if n == 0 {
		return notFoundError("cat not found")
	}
	s.log.Info().Uint("cat_id", catID).Msg("super like quota reset")
	return nil
}

// ResetForAccount 清除帳號底下所有貓的額度狀態，回傳受影響的貓數
func (s *QuotaService) ResetForAccount(ctx context.Context, accountID uint) (int64, error) {
	n, err := s.repos.Cat.ResetSuperLikesForAccount(ctx, accountID)
	if err != nil {
		return 0, internalError(err)
	}
	s.log.Info().Uint("account_id", accountID).Int64("cats", n).Msg("super like quota reset for account")
	return n, nil
}

func remaining(limit, used int) int {
	if used >= limit {
		return 0
	}
	return limit - used
}
