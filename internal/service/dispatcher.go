package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"catmatch/internal/models"
)

// RealtimeOptions 是即時通道的心跳與緩衝設定
type RealtimeOptions struct {
	PingInterval   time.Duration
	PongWait       time.Duration
	WriteWait      time.Duration
	SendBuffer     int
	MaxMessageSize int64
}

func (o RealtimeOptions) withDefaults() RealtimeOptions {
	if o.PongWait <= 0 {
		o.PongWait = 60 * time.Second
	}
	if o.PingInterval <= 0 || o.PingInterval >= o.PongWait {
		o.PingInterval = o.PongWait * 9 / 10
	}
	if o.WriteWait <= 0 {
		o.WriteWait = 10 * time.Second
	}
	if o.SendBuffer <= 0 {
		o.SendBuffer = 256
	}
	if o.MaxMessageSize <= 0 {
		o.MaxMessageSize = 4096
	}
	return o
}

// Dispatcher 是所有即時事件的入口
// 先寫入資料庫再廣播，寫入失敗時只回傳錯誤事件給送出者
type Dispatcher struct {
	registry      *Registry
	conversations *ConversationService
	opts          RealtimeOptions
	log           zerolog.Logger
}

func NewDispatcher(registry *Registry, conversations *ConversationService, opts RealtimeOptions, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		registry:      registry,
		conversations: conversations,
		opts:          opts.withDefaults(),
		log:           log,
	}
}

// Registry 回傳在線索引
func (d *Dispatcher) Registry() *Registry { return d.registry }

// NewClient 為帳號建立一個連線物件
func (d *Dispatcher) NewClient(accountID uint, conn *websocket.Conn) *Client {
	return NewClient(accountID, conn, d.opts.SendBuffer)
}

// Handle 處理客戶端送來的一個事件，任何錯誤都只會回傳 error 事件，不會中斷連線
func (d *Dispatcher) Handle(ctx context.Context, client *Client, raw []byte) {
	var ev models.Event
	if err := json.Unmarshal(raw, &ev); err != nil || ev.Event == "" {
		d.replyError(client, validationError("malformed event"))
		return
	}

	var err error
	switch ev.Event {
	case models.EventMatchJoin:
		err = d.join(ctx, client, ev.Data)
	case models.EventMatchLeave:
		err = d.leave(client, ev.Data)
	case models.EventMessageSend:
		err = d.sendMessage(ctx, client, ev.Data)
	case models.EventTypingStart:
		err = d.typing(client, ev.Data, true)
	case models.EventTypingStop:
		err = d.typing(client, ev.Data, false)
	case models.EventMessageRead:
		err = d.markRead(ctx, client, ev.Data)
	default:
		err = validationError("unknown event: " + ev.Event)
	}

	if err != nil {
		if KindOf(err) == KindInternal {
			d.log.Error().Err(err).Str("event", ev.Event).Uint("account_id", client.AccountID).Msg("realtime event failed")
		}
		d.replyError(client, err)
	}
}

func decodeMatchRef(data json.RawMessage) (uint, error) {
	var ref models.MatchRef
	if len(data) == 0 || json.Unmarshal(data, &ref) != nil || ref.MatchID == 0 {
		return 0, validationError("matchId is required")
	}
	return ref.MatchID, nil
}

func (d *Dispatcher) join(ctx context.Context, client *Client, data json.RawMessage) error {
	matchID, err := decodeMatchRef(data)
	if err != nil {
		return err
	}
	if _, err := d.registry.JoinRoom(ctx, client, matchID); err != nil {
		return err
	}
	return d.reply(client, models.EventMatchJoined, models.MatchRef{MatchID: matchID})
}

func (d *Dispatcher) leave(client *Client, data json.RawMessage) error {
	matchID, err := decodeMatchRef(data)
	if err != nil {
		return err
	}
	d.registry.LeaveRoom(client, matchID)
	return d.reply(client, models.EventMatchLeft, models.MatchRef{MatchID: matchID})
}

func (d *Dispatcher) sendMessage(ctx context.Context, client *Client, data json.RawMessage) error {
	var p models.SendMessagePayload
	if len(data) == 0 || json.Unmarshal(data, &p) != nil || p.MatchID == 0 {
		return validationError("matchId and text are required")
	}

	msg, match, err := d.conversations.AppendMessage(ctx, p.MatchID, client.AccountID, p.Text)
	if err != nil {
		return err
	}
	return d.publishMessage(match, msg, client)
}

func (d *Dispatcher) typing(client *Client, data json.RawMessage, isTyping bool) error {
	matchID, err := decodeMatchRef(data)
	if err != nil {
		return err
	}
	if !client.Joined(matchID) {
		return newError(KindForbidden, CodeNotInRoom, "join the match room first")
	}

	ev, err := models.NewEvent(models.EventTypingUser, models.TypingPayload{
		UserID:   client.AccountID,
		MatchID:  matchID,
		IsTyping: isTyping,
	})
	if err != nil {
		return internalError(err)
	}
	d.registry.Broadcast(matchID, ev, client.AccountID)
	return nil
}

func (d *Dispatcher) markRead(ctx context.Context, client *Client, data json.RawMessage) error {
	matchID, err := decodeMatchRef(data)
	if err != nil {
		return err
	}
	n, _, err := d.conversations.MarkRead(ctx, matchID, client.AccountID)
	if err != nil {
		return err
	}
	return d.PublishReadReceipt(matchID, client.AccountID, n)
}

// PublishMessage 廣播一則已寫入的訊息，供 REST 路徑使用
func (d *Dispatcher) PublishMessage(match *models.Match, msg *models.Message) error {
	return d.publishMessage(match, msg, nil)
}

func (d *Dispatcher) publishMessage(match *models.Match, msg *models.Message, origin *Client) error {
	ev, err := models.NewEvent(models.EventMessageReceived, models.MessageReceivedPayload{
		Message: msg,
		MatchID: match.ID,
	})
	if err != nil {
		return internalError(err)
	}

	d.registry.Broadcast(match.ID, ev, 0)

	// 送出者沒有加入房間時仍以同一個事件更新畫面
	if origin != nil && !origin.Joined(match.ID) {
		d.registry.deliver(origin, ev)
	}

	if other, ok := match.OtherAccount(msg.SenderAccountID); ok && !d.registry.InRoom(other, match.ID) {
		d.registry.NotifyAccount(other, ev)
	}
	return nil
}

// PublishReadReceipt 通知房間內除了讀者之外的連線
func (d *Dispatcher) PublishReadReceipt(matchID, readerID uint, count int64) error {
	ev, err := models.NewEvent(models.EventMessageReadUpdate, models.ReadUpdatePayload{
		MatchID: matchID,
		ReadBy:  readerID,
		Count:   count,
	})
	if err != nil {
		return internalError(err)
	}
	d.registry.Broadcast(matchID, ev, readerID)
	return nil
}

// NotifyNewMatch 直接通知配對雙方，離線的一方會在下次拉取時看到
func (d *Dispatcher) NotifyNewMatch(match *models.Match) {
	ev, err := models.NewEvent(models.EventMatchNew, models.MatchRef{MatchID: match.ID})
	if err != nil {
		d.log.Error().Err(err).Msg("encode match:new")
		return
	}
	d.registry.NotifyAccount(match.AccountAID, ev)
	d.registry.NotifyAccount(match.AccountBID, ev)
}

// DropMatch 在配對刪除後清空房間
func (d *Dispatcher) DropMatch(matchID uint) {
	d.registry.DropRoom(matchID)
}

func (d *Dispatcher) reply(client *Client, name string, payload interface{}) error {
	ev, err := models.NewEvent(name, payload)
	if err != nil {
		return internalError(err)
	}
	d.registry.deliver(client, ev)
	return nil
}

func (d *Dispatcher) replyError(client *Client, err error) {
	ev, encErr := models.NewEvent(models.EventError, models.ErrorPayload{
		Message: PublicMessage(err),
		Code:    CodeOf(err),
	})
	if encErr != nil {
		return
	}
	d.registry.deliver(client, ev)
}
