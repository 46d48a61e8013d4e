// Package middleware 提供了 HTTP 請求處理的中間件。
//
// 包含 JWT 身份驗證與請求日誌。
package middleware
