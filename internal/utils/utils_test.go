package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)

	token, err := m.GenerateToken(42)
	require.NoError(t, err)

	claims, err := m.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.AccountID)
}

func TestTokenRejectsWrongSecret(t *testing.T) {
	token, err := NewTokenManager("a", time.Hour).GenerateToken(1)
	require.NoError(t, err)

	_, err = NewTokenManager("b", time.Hour).ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = NewTokenManager("a", time.Hour).ParseToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestDayUsesUTCMidnight(t *testing.T) {
	taipei := time.FixedZone("UTC+8", 8*3600)
	// 台北 10/19 早上 7 點仍是 UTC 10/18
	assert.Equal(t, "2026-10-18", Day(time.Date(2026, 10, 19, 7, 0, 0, 0, taipei)))
	assert.Equal(t, "2026-10-19", Day(time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2026-10-18", Day(time.Date(2026, 10, 18, 23, 59, 59, 0, time.UTC)))
}

func TestManualClockSteps(t *testing.T) {
	start := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	c := NewManualClock(start)
	c.Step = time.Second

	assert.Equal(t, start, c.Now())
	assert.Equal(t, start.Add(time.Second), c.Now())

	c.Advance(24 * time.Hour)
	assert.Equal(t, start.Add(24*time.Hour+2*time.Second), c.Now())
}
