package models

import "encoding/json"

// 即時通道的事件名稱
const (
	EventMatchJoin         = "match:join"
	EventMatchJoined       = "match:joined"
	EventMatchLeave        = "match:leave"
	EventMatchLeft         = "match:left"
	EventMatchNew          = "match:new"
	EventMessageSend       = "message:send"
	EventMessageReceived   = "message:received"
	EventMessageRead       = "message:read"
	EventMessageReadUpdate = "message:read_update"
	EventTypingStart       = "typing:start"
	EventTypingStop        = "typing:stop"
	EventTypingUser        = "typing:user"
	EventError             = "error"
)

// Event 是 WebSocket 上雙向傳遞的訊息封包
type Event struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// NewEvent 將 payload 編碼成事件
func NewEvent(name string, payload interface{}) (*Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Event{Event: name, Data: data}, nil
}

// MatchRef 是只帶有配對 ID 的 payload
type MatchRef struct {
	MatchID uint `json:"matchId"`
}

// SendMessagePayload 是 message:send 的 payload
type SendMessagePayload struct {
	MatchID uint   `json:"matchId"`
	Text    string `json:"text"`
}

// MessageReceivedPayload 是 message:received 的 payload
type MessageReceivedPayload struct {
	Message *Message `json:"message"`
	MatchID uint     `json:"matchId"`
}

// TypingPayload 是 typing:user 的 payload
type TypingPayload struct {
	UserID   uint `json:"userId"`
	MatchID  uint `json:"matchId"`
	IsTyping bool `json:"isTyping"`
}

// ReadUpdatePayload 是 message:read_update 的 payload
type ReadUpdatePayload struct {
	MatchID uint  `json:"matchId"`
	ReadBy  uint  `json:"readBy"`
	Count   int64 `json:"count"`
}

// ErrorPayload 是 error 事件的 payload
type ErrorPayload struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}
