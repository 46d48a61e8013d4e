package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"catmatch/internal/models"
	"catmatch/internal/repository"
	"catmatch/internal/repository/repositorytest"
)

func TestInterestPairIsUnique(t *testing.T) {
	f := repositorytest.New(t)
	ctx := context.Background()
	owner, other := f.Account(t), f.Account(t)
	tom, kitty := f.Cat(t, owner, models.GenderMale), f.Cat(t, other, models.GenderFemale)

	first := &models.Interest{AccountID: owner.ID, CatID: tom.ID, TargetCatID: kitty.ID, Kind: models.InterestLike}
	require.NoError(t, f.Repos.Interest.Create(ctx, first))

	second := &models.Interest{AccountID: owner.ID, CatID: tom.ID, TargetCatID: kitty.ID, Kind: models.InterestPass}
	err := f.Repos.Interest.Create(ctx, second)
	assert.True(t, errors.Is(err, repository.ErrDuplicate))

	// 反方向是另一筆
	reverse := &models.Interest{AccountID: other.ID, CatID: kitty.ID, TargetCatID: tom.ID, Kind: models.InterestLike}
	require.NoError(t, f.Repos.Interest.Create(ctx, reverse))

	got, err := f.Repos.Interest.FindByPair(ctx, tom.ID, kitty.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InterestLike, got.Kind)
}

func TestConsumeSuperLikeLazyReset(t *testing.T) {
	f := repositorytest.New(t)
	ctx := context.Background()
	cat := f.Cat(t, f.Account(t), models.GenderMale)

	ok, used, err := f.Repos.Cat.ConsumeSuperLike(ctx, cat.ID, "2026-10-18", 1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, used)

	ok, _, err = f.Repos.Cat.ConsumeSuperLike(ctx, cat.ID, "2026-10-18", 1)
	require.NoError(t, err)
	assert.False(t, ok)

	// 換日後舊的計數不再有效
	ok, used, err = f.Repos.Cat.ConsumeSuperLike(ctx, cat.ID, "2026-10-19", 1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, used)

	n, err := f.Repos.Cat.ResetSuperLike(ctx, cat.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	used, err = f.Repos.Cat.SuperLikesUsed(ctx, cat.ID, "2026-10-19")
	require.NoError(t, err)
	assert.Zero(t, used)
}

func TestConsumeSuperLikeConcurrent(t *testing.T) {
	f := repositorytest.New(t)
	cat := f.Cat(t, f.Account(t), models.GenderFemale)

	results := make([]bool, 8)
	var g errgroup.Group
	for i := range results {
		i := i
		g.Go(func() error {
			ok, _, err := f.Repos.Cat.ConsumeSuperLike(context.Background(), cat.ID, "2026-10-18", 1)
			results[i] = ok
			return err
		})
	}
	require.NoError(t, g.Wait())

	granted := 0
	for _, ok := range results {
		if ok {
			granted++
		}
	}
	assert.Equal(t, 1, granted)
}

func TestMatchCreateOrGetCanonical(t *testing.T) {
	f := repositorytest.New(t)
	ctx := context.Background()
	a, b := f.Account(t), f.Account(t)
	x, y := f.Cat(t, a, models.GenderMale), f.Cat(t, b, models.GenderFemale)
	sx := models.PairSide{CatID: x.ID, AccountID: a.ID}
	sy := models.PairSide{CatID: y.ID, AccountID: b.ID}

	m1, created, err := f.Repos.Match.CreateOrGet(ctx, models.NewMatch(sy, sx))
	require.NoError(t, err)
	assert.True(t, created)

	// 以相反方向手動建立也會命中唯一鍵
	m2, created, err := f.Repos.Match.CreateOrGet(ctx, &models.Match{
		CatAID: y.ID, AccountAID: b.ID, CatBID: x.ID, AccountBID: a.ID,
	})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, m1.ID, m2.ID)
	assert.Less(t, m2.CatAID, m2.CatBID)

	found, err := f.Repos.Match.FindByPair(ctx, sy, sx)
	require.NoError(t, err)
	assert.Equal(t, m1.ID, found.ID)
}

func TestMatchListOrderAndDelete(t *testing.T) {
	f := repositorytest.New(t)
	ctx := context.Background()
	me := f.Account(t)
	mine := f.Cat(t, me, models.GenderMale)

	var ids []uint
	for i := 0; i < 3; i++ {
		other := f.Account(t)
		cat := f.Cat(t, other, models.GenderFemale)
		m, _, err := f.Repos.Match.CreateOrGet(ctx, models.NewMatch(
			models.PairSide{CatID: mine.ID, AccountID: me.ID},
			models.PairSide{CatID: cat.ID, AccountID: other.ID},
		))
		require.NoError(t, err)
		ids = append(ids, m.ID)
	}

	// 最早建立的配對最近有訊息，應排在最前面
	require.NoError(t, f.Repos.Match.Touch(ctx, ids[0], time.Now().Add(time.Hour)))
	list, err := f.Repos.Match.ListByAccount(ctx, me.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, ids[0], list[0].ID)

	require.NoError(t, f.Repos.Message.Create(ctx, &models.Message{
		MatchID: ids[0], SenderAccountID: me.ID, Text: "hi", SentAt: time.Now(),
	}))
	require.NoError(t, f.Repos.Transaction(ctx, func(tx *repository.Repositories) error {
		return tx.Match.DeleteWithMessages(ctx, ids[0])
	}))

	_, err = f.Repos.Match.FindByID(ctx, ids[0])
	assert.True(t, errors.Is(err, repository.ErrNotFound))
	page, err := f.Repos.Message.ListPage(ctx, ids[0], nil, 10)
	require.NoError(t, err)
	assert.Empty(t, page)
}

func TestTransactionRollsBack(t *testing.T) {
	f := repositorytest.New(t)
	ctx := context.Background()
	cat := f.Cat(t, f.Account(t), models.GenderMale)

	boom := errors.New("boom")
	err := f.Repos.Transaction(ctx, func(tx *repository.Repositories) error {
		if _, _, err := tx.Cat.ConsumeSuperLike(ctx, cat.ID, "2026-10-18", 1); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	used, err := f.Repos.Cat.SuperLikesUsed(ctx, cat.ID, "2026-10-18")
	require.NoError(t, err)
	assert.Zero(t, used)
}

func TestCandidatesExcludeEvaluatedAndSameAccount(t *testing.T) {
	f := repositorytest.New(t)
	ctx := context.Background()
	me, other := f.Account(t), f.Account(t)
	mine := f.Cat(t, me, models.GenderMale)
	f.Cat(t, me, models.GenderFemale) // 同帳號
	f.Cat(t, other, models.GenderMale) // 同性別
	seen := f.Cat(t, other, models.GenderFemale)
	fresh := f.Cat(t, other, models.GenderFemale)

	require.NoError(t, f.Repos.Interest.Create(ctx, &models.Interest{
		AccountID: me.ID, CatID: mine.ID, TargetCatID: seen.ID, Kind: models.InterestPass,
	}))

	cats, err := f.Repos.Cat.Candidates(ctx, mine, 10)
	require.NoError(t, err)
	require.Len(t, cats, 1)
	assert.Equal(t, fresh.ID, cats[0].ID)
}
