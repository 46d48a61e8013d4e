package service_test

import (
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"catmatch/internal/models"
	"catmatch/internal/repository/repositorytest"
	"catmatch/internal/service"
	"catmatch/internal/utils"
)

type env struct {
	f     *repositorytest.Fixture
	svc   *service.Services
	clock *utils.ManualClock
}

var testStart = time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

func newEnv(t *testing.T) *env {
	t.Helper()
	f := repositorytest.New(t)
	clock := utils.NewManualClock(testStart)
	clock.Step = time.Second
	svc := service.NewServices(f.Repos, service.Options{
		SuperLikesPerDay: 1,
		Clock:            clock,
		Realtime:         service.RealtimeOptions{SendBuffer: 16},
	}, zerolog.New(io.Discard))
	return &env{f: f, svc: svc, clock: clock}
}

type owner struct {
	account *models.Account
	cat     *models.Cat
}

func (e *env) owner(t *testing.T, gender models.Gender) owner {
	t.Helper()
	a := e.f.Account(t)
	return owner{account: a, cat: e.f.Cat(t, a, gender)}
}

func nextEvent(t *testing.T, c *service.Client) *models.Event {
	t.Helper()
	select {
	case ev := <-c.Outbox():
		return ev
	case <-time.After(time.Second):
		t.Fatalf("no event for account %d", c.AccountID)
		return nil
	}
}

func requireNoEvent(t *testing.T, c *service.Client) {
	t.Helper()
	select {
	case ev := <-c.Outbox():
		t.Fatalf("unexpected event %s for account %d: %s", ev.Event, c.AccountID, ev.Data)
	default:
	}
}

func decode(t *testing.T, ev *models.Event, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(ev.Data, v))
}

func mustJSON(t *testing.T, name string, payload interface{}) []byte {
	t.Helper()
	ev, err := models.NewEvent(name, payload)
	require.NoError(t, err)
	raw, err := json.Marshal(ev)
	require.NoError(t, err)
	return raw
}
