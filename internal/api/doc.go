// Package api 處理 HTTP 請求路由。
//
// handlers 子包把 HTTP 請求轉換為服務調用，並把服務錯誤對應到狀態碼。
// /api/ws 是即時通道的入口，其他路由都需要 Bearer token。
package api
