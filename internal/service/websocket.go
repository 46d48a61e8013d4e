package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
)

// CloseSuperseded 是同一帳號在別處登入時，舊連線收到的關閉代碼
const CloseSuperseded = 4001

// Serve 接管一個已驗證的連線直到斷線
// 同一帳號只保留最新的連線，舊連線會以 CloseSuperseded 關閉
func (d *Dispatcher) Serve(ctx context.Context, client *Client) {
	if prev := d.registry.Register(client); prev != nil {
		d.log.Info().Uint("account_id", client.AccountID).Str("client_id", prev.ID).Msg("closing superseded websocket connection")
		prev.Close(CloseSuperseded, "superseded")
	}

	// 確保連接關閉時清理資源
	defer func() {
		d.registry.Unregister(client)
		client.Close(websocket.CloseNormalClosure, "")
	}()

	// 啟動讀寫處理
	go d.writePump(client)
	d.readPump(ctx, client)
}

// readPump 持續監聽並處理從客戶端接收的消息
func (d *Dispatcher) readPump(ctx context.Context, client *Client) {
	conn := client.conn
	conn.SetReadLimit(d.opts.MaxMessageSize)
	conn.SetReadDeadline(time.Now().Add(d.opts.PongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(d.opts.PongWait))
	})

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				d.log.Warn().Err(err).Uint("account_id", client.AccountID).Msg("websocket unexpected close error")
			}
			return
		}

		// 事件在本連線的 goroutine 中依序處理
		d.Handle(ctx, client, message)
	}
}

// writePump 處理向客戶端發送消息的邏輯
func (d *Dispatcher) writePump(client *Client) {
	conn := client.conn
	// 設置心跳檢查計時器
	ticker := time.NewTicker(d.opts.PingInterval)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case event := <-client.send:
			messageBytes, err := json.Marshal(event)
			if err != nil {
				d.log.Error().Err(err).Msg("message encoding error")
				continue
			}
			conn.SetWriteDeadline(time.Now().Add(d.opts.WriteWait))
			if err := conn.WriteMessage(websocket.TextMessage, messageBytes); err != nil {
				client.Close(websocket.CloseGoingAway, "write failed")
				return
			}

		case <-ticker.C:
			// 發送心跳包
			conn.SetWriteDeadline(time.Now().Add(d.opts.WriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				client.Close(websocket.CloseGoingAway, "ping failed")
				return
			}

		case <-client.done:
			code, reason := client.CloseStatus()
			deadline := time.Now().Add(d.opts.WriteWait)
			_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), deadline)
			return
		}
	}
}
