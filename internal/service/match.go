package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"catmatch/internal/models"
	"catmatch/internal/repository"
	"catmatch/internal/utils"
)

// MatchService 偵測互相喜歡並管理配對
type MatchService struct {
	repos *repository.Repositories
	clock utils.Clock
	log   zerolog.Logger
}

func NewMatchService(repos *repository.Repositories, clock utils.Clock, log zerolog.Logger) *MatchService {
	return &MatchService{repos: repos, clock: clock, log: log}
}

// CheckAndCreateMatch 在新的喜歡寫入後檢查反方向是否也喜歡，是的話建立配對
// 偵測失敗只會記錄並視為沒有配對，興趣紀錄本身已經寫入
// created 表示配對是由本次呼叫建立
func (s *MatchService) CheckAndCreateMatch(ctx context.Context, entry *models.Interest) (detail *models.MatchDetail, created bool) {
	if entry == nil || !entry.Kind.Favorable() {
		return nil, false
	}
	log := s.log.With().Uint("cat_id", entry.CatID).Uint("target_cat_id", entry.TargetCatID).Logger()

	mirror, err := s.repos.Interest.FindByPair(ctx, entry.TargetCatID, entry.CatID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			log.Warn().Err(err).Msg("match detection: mirror lookup failed")
		}
		return nil, false
	}
	if !mirror.Kind.Favorable() {
		return nil, false
	}

	// 以目前資料為準，避免使用已被刪除的貓
	cats, err := s.repos.Cat.FindByIDs(ctx, []uint{entry.CatID, entry.TargetCatID})
	if err != nil || cats[entry.CatID] == nil || cats[entry.TargetCatID] == nil {
		log.Warn().Err(err).Msg("match detection: cat lookup failed")
		return nil, false
	}

	candidate := models.NewMatch(
		models.PairSide{CatID: entry.CatID, AccountID: cats[entry.CatID].AccountID},
		models.PairSide{CatID: entry.TargetCatID, AccountID: cats[entry.TargetCatID].AccountID},
	)
	candidate.CreatedAt = s.clock.Now()

	match, created, err := s.repos.Match.CreateOrGet(ctx, candidate)
	if err != nil {
		log.Error().Err(err).Msg("match detection: create failed")
		return nil, false
	}

	detail, err = s.describe(ctx, match)
	if err != nil {
		log.Warn().Err(err).Uint("match_id", match.ID).Msg("match detection: summary lookup failed")
		return nil, false
	}
	if created {
		log.Info().Uint("match_id", match.ID).Msg("match created")
	}
	return detail, created
}

// Authorize 檢查帳號是否為配對的一方
func (s *MatchService) Authorize(ctx context.Context, matchID, accountID uint) (*models.Match, error) {
	match, err := s.repos.Match.FindByID(ctx, matchID)
	if err != nil {
		return nil, wrapLookup(err, "match")
	}
	if !match.HasAccount(accountID) {
		return nil, forbiddenError("not a participant of this match")
	}
	return match, nil
}

// ListMatches 列出帳號的所有配對，最近活動的在前
func (s *MatchService) ListMatches(ctx context.Context, accountID uint) ([]models.MatchDetail, error) {
	matches, err := s.repos.Match.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, internalError(err)
	}

	catIDs := make([]uint, 0, len(matches)*2)
	accountIDs := make([]uint, 0, len(matches)*2)
	for _, m := range matches {
		catIDs = append(catIDs, m.CatAID, m.CatBID)
		accountIDs = append(accountIDs, m.AccountAID, m.AccountBID)
	}
	cats, accounts, err := s.lookup(ctx, catIDs, accountIDs)
	if err != nil {
		return nil, internalError(err)
	}

	out := make([]models.MatchDetail, 0, len(matches))
	for i := range matches {
		m := &matches[i]
		out = append(out, summarize(m, cats, accounts))
	}
	return out, nil
}

// GetMatch 取得單一配對
func (s *MatchService) GetMatch(ctx context.Context, matchID, accountID uint) (*models.MatchDetail, error) {
	match, err := s.Authorize(ctx, matchID, accountID)
	if err != nil {
		return nil, err
	}
	detail, err := s.describe(ctx, match)
	if err != nil {
		return nil, internalError(err)
	}
	return detail, nil
}

// Unmatch 刪除配對與所有訊息，回傳被刪除的配對
func (s *MatchService) Unmatch(ctx context.Context, matchID, accountID uint) (*models.Match, error) {
	match, err := s.Authorize(ctx, matchID, accountID)
	if err != nil {
		return nil, err
	}
	err = s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		return tx.Match.DeleteWithMessages(ctx, matchID)
	})
	if err != nil {
		return nil, wrapLookup(err, "match")
	}
	s.log.Info().Uint("match_id", matchID).Uint("account_id", accountID).Msg("match removed")
	return match, nil
}

func (s *MatchService) describe(ctx context.Context, m *models.Match) (*models.MatchDetail, error) {
	cats, accounts, err := s.lookup(ctx,
		[]uint{m.CatAID, m.CatBID},
		[]uint{m.AccountAID, m.AccountBID},
	)
	if err != nil {
		return nil, err
	}
	if cats[m.CatAID] == nil || cats[m.CatBID] == nil {
		return nil, repository.ErrNotFound
	}
	detail := summarize(m, cats, accounts)
	return &detail, nil
}

func (s *MatchService) lookup(ctx context.Context, catIDs, accountIDs []uint) (map[uint]*models.Cat, map[uint]*models.Account, error) {
	if len(catIDs) == 0 {
		return map[uint]*models.Cat{}, map[uint]*models.Account{}, nil
	}
	cats, err := s.repos.Cat.FindByIDs(ctx, catIDs)
	if err != nil {
		return nil, nil, err
	}
	accounts, err := s.repos.Account.FindByIDs(ctx, accountIDs)
	if err != nil {
		return nil, nil, err
	}
	return cats, accounts, nil
}

func summarize(m *models.Match, cats map[uint]*models.Cat, accounts map[uint]*models.Account) models.MatchDetail {
	detail := models.MatchDetail{Match: m}
	if c := cats[m.CatAID]; c != nil {
		detail.CatA = c.Summarize(accounts[m.AccountAID])
	} else {
		detail.CatA = models.CatSummary{ID: m.CatAID, OwnerID: m.AccountAID, Photos: []string{}}
	}
	if c := cats[m.CatBID]; c != nil {
		detail.CatB = c.Summarize(accounts[m.AccountBID])
	} else {
		detail.CatB = models.CatSummary{ID: m.CatBID, OwnerID: m.AccountBID, Photos: []string{}}
	}
	return detail
}
