package service

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"catmatch/internal/models"
)

const registryShards = 32

// RoomAuthorizer 檢查帳號能否加入某個配對房間
type RoomAuthorizer interface {
	Authorize(ctx context.Context, matchID, accountID uint) (*models.Match, error)
}

// Client 代表一個已驗證的 WebSocket 連線
type Client struct {
	ID        string
	AccountID uint

	conn *websocket.Conn
	send chan *models.Event // 消息發送通道，由 writePump 消化
	done chan struct{}

	closeOnce   sync.Once
	closeCode   int
	closeReason string

	mu    sync.Mutex
	rooms map[uint]struct{}
}

// NewClient 建立連線物件，conn 可以為 nil（只透過 Outbox 取得事件）
func NewClient(accountID uint, conn *websocket.Conn, buffer int) *Client {
	if buffer <= 0 {
		buffer = 256
	}
	return &Client{
		ID:        uuid.NewString(),
		AccountID: accountID,
		conn:      conn,
		send:      make(chan *models.Event, buffer),
		done:      make(chan struct{}),
		rooms:     make(map[uint]struct{}),
	}
}

// Outbox 回傳待送出的事件
func (c *Client) Outbox() <-chan *models.Event { return c.send }

// Done 在連線關閉後被關閉
func (c *Client) Done() <-chan struct{} { return c.done }

// Close 標記連線關閉，writePump 會以 code 和 reason 送出關閉訊框
func (c *Client) Close(code int, reason string) {
	c.closeOnce.Do(func() {
		c.closeCode = code
		c.closeReason = reason
		close(c.done)
	})
}

// CloseStatus 回傳關閉代碼與原因
func (c *Client) CloseStatus() (int, string) {
	select {
	case <-c.done:
		return c.closeCode, c.closeReason
	default:
		return 0, ""
	}
}

// Joined 檢查連線是否在房間內
func (c *Client) Joined(matchID uint) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.rooms[matchID]
	return ok
}

// Rooms 回傳目前加入的房間
func (c *Client) Rooms() []uint {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]uint, 0, len(c.rooms))
	for id := range c.rooms {
		out = append(out, id)
	}
	return out
}

// enqueue 非阻塞地放入事件，佇列已滿或連線已關閉時回傳 false
func (c *Client) enqueue(ev *models.Event) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- ev:
		return true
	default:
		return false
	}
}

type registryShard struct {
	mu       sync.RWMutex
	accounts map[uint]*Client
	rooms    map[uint]map[*Client]struct{} // matchID -> client
}

// Registry 是行程內的在線與房間索引
// 帳號依 accountID、房間依 matchID 分散到不同分片，廣播時只鎖住單一分片
type Registry struct {
	shards [registryShards]*registryShard
	auth   RoomAuthorizer
	log    zerolog.Logger
}

func NewRegistry(auth RoomAuthorizer, log zerolog.Logger) *Registry {
	r := &Registry{auth: auth, log: log}
	for i := range r.shards {
		r.shards[i] = &registryShard{
			accounts: make(map[uint]*Client),
			rooms:    make(map[uint]map[*Client]struct{}),
		}
	}
	return r
}

func (r *Registry) shard(id uint) *registryShard {
	return r.shards[id%registryShards]
}

// Register 記錄帳號目前的連線，回傳被取代的舊連線（沒有則為 nil）
func (r *Registry) Register(client *Client) *Client {
	s := r.shard(client.AccountID)
	s.mu.Lock()
	prev := s.accounts[client.AccountID]
	s.accounts[client.AccountID] = client
	s.mu.Unlock()

	if prev == client {
		return nil
	}
	return prev
}

// Unregister 移除連線與它所有的房間，帳號已改用新連線時不會動到新的對應
func (r *Registry) Unregister(client *Client) {
	s := r.shard(client.AccountID)
	s.mu.Lock()
	if s.accounts[client.AccountID] == client {
		delete(s.accounts, client.AccountID)
	}
	s.mu.Unlock()

	for _, matchID := range client.Rooms() {
		r.LeaveRoom(client, matchID)
	}
}

// Lookup 取得帳號目前的連線
func (r *Registry) Lookup(accountID uint) (*Client, bool) {
	s := r.shard(accountID)
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.accounts[accountID]
	return c, ok
}

// JoinRoom 驗證帳號為配對的一方後加入房間，未授權時回傳錯誤
func (r *Registry) JoinRoom(ctx context.Context, client *Client, matchID uint) (*models.Match, error) {
	match, err := r.auth.Authorize(ctx, matchID, client.AccountID)
	if err != nil {
		return nil, err
	}

	s := r.shard(matchID)
	s.mu.Lock()
	members := s.rooms[matchID]
	if members == nil {
		members = make(map[*Client]struct{})
		s.rooms[matchID] = members
	}
	members[client] = struct{}{}
	s.mu.Unlock()

	client.mu.Lock()
	client.rooms[matchID] = struct{}{}
	client.mu.Unlock()
	return match, nil
}

// LeaveRoom 離開房間，回傳連線原本是否在房間內
func (r *Registry) LeaveRoom(client *Client, matchID uint) bool {
	s := r.shard(matchID)
	s.mu.Lock()
	members, ok := s.rooms[matchID]
	if ok {
		_, ok = members[client]
		delete(members, client)
		// 如果房間空了，刪除房間
		if len(members) == 0 {
			delete(s.rooms, matchID)
		}
	}
	s.mu.Unlock()

	client.mu.Lock()
	delete(client.rooms, matchID)
	client.mu.Unlock()
	return ok
}

// DropRoom 清空房間，用於配對被刪除時
func (r *Registry) DropRoom(matchID uint) {
	s := r.shard(matchID)
	s.mu.Lock()
	members := s.rooms[matchID]
	delete(s.rooms, matchID)
	s.mu.Unlock()

	for c := range members {
		c.mu.Lock()
		delete(c.rooms, matchID)
		c.mu.Unlock()
	}
}

// InRoom 檢查帳號目前的連線是否在房間內
func (r *Registry) InRoom(accountID, matchID uint) bool {
	c, ok := r.Lookup(accountID)
	return ok && c.Joined(matchID)
}

// RoomSize 回傳房間內的連線數
func (r *Registry) RoomSize(matchID uint) int {
	s := r.shard(matchID)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms[matchID])
}

// Broadcast 送給房間內所有連線（包含送出者），exceptAccount 非 0 時略過該帳號
// 回傳成功放入佇列的連線數
func (r *Registry) Broadcast(matchID uint, ev *models.Event, exceptAccount uint) int {
	s := r.shard(matchID)
	s.mu.RLock()
	members := make([]*Client, 0, len(s.rooms[matchID]))
	for c := range s.rooms[matchID] {
		members = append(members, c)
	}
	s.mu.RUnlock()

	delivered := 0
	for _, c := range members {
		if exceptAccount != 0 && c.AccountID == exceptAccount {
			continue
		}
		if r.deliver(c, ev) {
			delivered++
		}
	}
	return delivered
}

// NotifyAccount 直接送給帳號的連線，帳號不在線時直接丟棄
func (r *Registry) NotifyAccount(accountID uint, ev *models.Event) bool {
	c, ok := r.Lookup(accountID)
	if !ok {
		return false
	}
	return r.deliver(c, ev)
}

func (r *Registry) deliver(c *Client, ev *models.Event) bool {
	if c.enqueue(ev) {
		return true
	}
	select {
	case <-c.done:
	default:
		// 客戶端消息隊列已滿，關閉連接
		r.log.Warn().Uint("account_id", c.AccountID).Str("client_id", c.ID).Msg("dropping slow websocket client")
		c.Close(websocket.ClosePolicyViolation, "slow consumer")
	}
	return false
}
