package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"catmatch/internal/utils"
)

// AccountIDKey 是 gin context 中存放已驗證帳號 ID 的鍵
const AccountIDKey = "accountID"

// BearerToken 從 Authorization 頭取出 token
func BearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if !(len(parts) == 2 && parts[0] == "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// AuthMiddleware 是一個 Gin 中間件，用於驗證請求的 JWT token
func AuthMiddleware(tokens *utils.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			return
		}

		// 檢查 Authorization 頭的格式
		token, ok := BearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Bearer {token}"})
			return
		}

		claims, err := tokens.ParseToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(AccountIDKey, claims.AccountID)
		c.Next()
	}
}

// AccountID 取出已驗證的帳號 ID
func AccountID(c *gin.Context) uint {
	return c.GetUint(AccountIDKey)
}
