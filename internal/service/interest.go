package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"catmatch/internal/models"
	"catmatch/internal/repository"
	"catmatch/internal/utils"
)

const (
	defaultCandidateLimit = 20
	maxCandidateLimit     = 100
)

// RecordInput 是一次滑動動作
type RecordInput struct {
	AccountID   uint
	CatID       uint
	TargetCatID uint
	Kind        models.InterestKind
}

// InterestService 記錄貓咪之間有方向性的興趣
type InterestService struct {
	repos *repository.Repositories
	quota *QuotaService
	clock utils.Clock
	log   zerolog.Logger
}

func NewInterestService(repos *repository.Repositories, quota *QuotaService, clock utils.Clock, log zerolog.Logger) *InterestService {
	return &InterestService{repos: repos, quota: quota, clock: clock, log: log}
}

// Record 寫入一筆興趣紀錄
// 超級喜歡會先扣除額度，額度與紀錄在同一個交易內，重複評價時額度一併回滾
func (s *InterestService) Record(ctx context.Context, in RecordInput) (*models.Interest, error) {
	if !in.Kind.Valid() {
		return nil, validationError("invalid action kind")
	}
	if in.CatID == 0 || in.TargetCatID == 0 {
		return nil, validationError("cat id and target cat id are required")
	}
	if in.CatID == in.TargetCatID {
		return nil, forbiddenError("cannot evaluate your own cat")
	}

	actor, err := s.ownedCat(ctx, in.AccountID, in.CatID)
	if err != nil {
		return nil, err
	}

	target, err := s.repos.Cat.FindByID(ctx, in.TargetCatID)
	if err != nil {
		return nil, wrapLookup(err, "target cat")
	}
	if !target.Active {
		return nil, forbiddenError("target cat is not active")
	}
	if target.AccountID == actor.AccountID {
		return nil, forbiddenError("cannot evaluate a cat of your own account")
	}

	now := s.clock.Now()
	interest := &models.Interest{
		AccountID:   in.AccountID,
		CatID:       actor.ID,
		TargetCatID: target.ID,
		Kind:        in.Kind,
		CreatedAt:   now,
	}

	err = s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		if in.Kind == models.InterestSuperLike {
			res, err := s.quota.withRepos(tx).TryConsume(ctx, actor.ID, now)
			if err != nil {
				return err
			}
			if !res.Allowed {
				return newError(KindQuotaExceeded, CodeQuotaExceeded, "daily super like limit reached")
			}
		}

		if err := tx.Interest.Create(ctx, interest); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return newError(KindConflict, CodeAlreadyEvaluate, "already evaluated")
			}
			return internalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Debug().
		Uint("cat_id", interest.CatID).
		Uint("target_cat_id", interest.TargetCatID).
		Str("kind", string(interest.Kind)).
		Msg("interest recorded")
	return interest, nil
}

// ListSent 列出貓咪送出的超級喜歡
func (s *InterestService) ListSent(ctx context.Context, accountID, catID uint) ([]models.Interest, error) {
	if _, err := s.ownedCat(ctx, accountID, catID); err != nil {
		return nil, err
	}
	interests, err := s.repos.Interest.ListSent(ctx, catID, models.InterestSuperLike)
	if err != nil {
		return nil, internalError(err)
	}
	return interests, nil
}

// ListReceived 列出貓咪收到的超級喜歡
func (s *InterestService) ListReceived(ctx context.Context, accountID, catID uint) ([]models.Interest, error) {
	if _, err := s.ownedCat(ctx, accountID, catID); err != nil {
		return nil, err
	}
	interests, err := s.repos.Interest.ListReceived(ctx, catID, models.InterestSuperLike)
	if err != nil {
		return nil, internalError(err)
	}
	return interests, nil
}

// Candidates 列出可以滑動的候選貓咪
func (s *InterestService) Candidates(ctx context.Context, accountID, catID uint, limit int) ([]models.Cat, error) {
	cat, err := s.ownedCat(ctx, accountID, catID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultCandidateLimit
	}
	if limit > maxCandidateLimit {
		limit = maxCandidateLimit
	}

	cats, err := s.repos.Cat.Candidates(ctx, cat, limit)
	if err != nil {
		return nil, internalError(err)
	}
	return cats, nil
}

func (s *InterestService) ownedCat(ctx context.Context, accountID, catID uint) (*models.Cat, error) {
	cat, err := s.repos.Cat.FindByID(ctx, catID)
	if err != nil {
		return nil, wrapLookup(err, "cat")
	}
	if cat.AccountID != accountID {
		return nil, forbiddenError("cat does not belong to this account")
	}
	return cat, nil
}
