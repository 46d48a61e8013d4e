package service_test

import (
	"context"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catmatch/internal/models"
	"catmatch/internal/service"
)

func TestRegisterLastConnectionWins(t *testing.T) {
	e := newEnv(t)
	reg := e.svc.Registry

	old := service.NewClient(7, nil, 4)
	assert.Nil(t, reg.Register(old))

	fresh := service.NewClient(7, nil, 4)
	assert.Same(t, old, reg.Register(fresh))

	// 舊連線斷線不會移除新的對應
	reg.Unregister(old)
	got, ok := reg.Lookup(7)
	require.True(t, ok)
	assert.Same(t, fresh, got)

	reg.Unregister(fresh)
	_, ok = reg.Lookup(7)
	assert.False(t, ok)
}

func TestJoinRoomRequiresParticipant(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	tom, kitty := e.owner(t, models.GenderMale), e.owner(t, models.GenderFemale)
	stranger := e.owner(t, models.GenderMale)
	match := matchOwners(t, e, tom, kitty)

	outsider := service.NewClient(stranger.account.ID, nil, 4)
	e.svc.Registry.Register(outsider)
	_, err := e.svc.Registry.JoinRoom(ctx, outsider, match.ID)
	assert.True(t, service.IsKind(err, service.KindForbidden))
	assert.False(t, outsider.Joined(match.ID))
	assert.Zero(t, e.svc.Registry.RoomSize(match.ID))

	_, err = e.svc.Registry.JoinRoom(ctx, outsider, 9999)
	assert.True(t, service.IsKind(err, service.KindNotFound))

	member := service.NewClient(tom.account.ID, nil, 4)
	e.svc.Registry.Register(member)
	_, err = e.svc.Registry.JoinRoom(ctx, member, match.ID)
	require.NoError(t, err)
	assert.True(t, e.svc.Registry.InRoom(tom.account.ID, match.ID))

	// 斷線時房間成員資格一併消失
	e.svc.Registry.Unregister(member)
	assert.Zero(t, e.svc.Registry.RoomSize(match.ID))
	assert.Empty(t, member.Rooms())
}

func TestBroadcastAndNotify(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	tom, kitty := e.owner(t, models.GenderMale), e.owner(t, models.GenderFemale)
	match := matchOwners(t, e, tom, kitty)
	reg := e.svc.Registry

	a := service.NewClient(tom.account.ID, nil, 4)
	b := service.NewClient(kitty.account.ID, nil, 4)
	reg.Register(a)
	reg.Register(b)
	_, err := reg.JoinRoom(ctx, a, match.ID)
	require.NoError(t, err)
	_, err = reg.JoinRoom(ctx, b, match.ID)
	require.NoError(t, err)

	ev := &models.Event{Event: "ping"}
	assert.Equal(t, 2, reg.Broadcast(match.ID, ev, 0))
	assert.Same(t, ev, nextEvent(t, a))
	assert.Same(t, ev, nextEvent(t, b))

	assert.Equal(t, 1, reg.Broadcast(match.ID, ev, tom.account.ID))
	requireNoEvent(t, a)
	nextEvent(t, b)

	assert.True(t, reg.NotifyAccount(kitty.account.ID, ev))
	nextEvent(t, b)
	assert.False(t, reg.NotifyAccount(424242, ev))

	reg.DropRoom(match.ID)
	assert.False(t, a.Joined(match.ID))
	assert.Zero(t, reg.Broadcast(match.ID, ev, 0))
}

func TestSlowClientIsClosed(t *testing.T) {
	e := newEnv(t)
	slow := service.NewClient(5, nil, 1)
	e.svc.Registry.Register(slow)

	ev := &models.Event{Event: "ping"}
	assert.True(t, e.svc.Registry.NotifyAccount(5, ev))
	assert.False(t, e.svc.Registry.NotifyAccount(5, ev))

	select {
	case <-slow.Done():
	default:
		t.Fatal("slow client should be closed")
	}
	code, _ := slow.CloseStatus()
	assert.Equal(t, websocket.ClosePolicyViolation, code)
}
