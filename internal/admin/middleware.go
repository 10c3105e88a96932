package admin

import (
	"net/http"

	"github.com/CtrlC703/himamikuji-bot/pkg/token"
	"github.com/gin-gonic/gin"
)

const (
	// NonceHeader 携带管理请求的一次性标识（建议使用UUID）
	NonceHeader = "X-Admin-Nonce"

	// SignatureHeader 携带对 {action, nonce} 的HMAC签名
	SignatureHeader = "X-Admin-Signature"
)

// RequireSignature 验证管理请求的HMAC签名。
// 签名覆盖动作名和随机数，不同端点的签名不能互换使用。
func RequireSignature(action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		nonce := c.GetHeader(NonceHeader)
		signature := c.GetHeader(SignatureHeader)
		if nonce == "" || signature == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "缺少管理签名"})
			return
		}

		payload := token.AdminPayload{Action: action, Nonce: nonce}
		if !token.ValidateAdminSignature(payload, signature) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "管理签名无效"})
			return
		}

		c.Next()
	}
}
