package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
)

// secretKey 存储管理接口使用的HMAC密钥，在启动时由配置注入。
var secretKey []byte

// AdminPayload 定义了管理请求中需要被签名的数据结构。
// Nonce 由调用方生成（例如一个UUID），用于区分不同的管理请求。
type AdminPayload struct {
	Action string `json:"a"`
	Nonce  string `json:"n"`
}

// SetSecret 注入管理接口的HMAC密钥。
// 密钥来自配置而不是进程内随机生成，这样外部脚本可以跨重启地签发管理请求。
func SetSecret(secret string) error {
	if len(secret) < 16 {
		return errors.New("管理密钥长度不足16字节")
	}
	secretKey = []byte(secret)
	return nil
}

// GenerateAdminSignature 为一个给定的AdminPayload生成HMAC-SHA256签名。
// 返回签名的Base64编码字符串。
func GenerateAdminSignature(payload AdminPayload) (string, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return "", errors.New("无法序列化管理请求payload")
	}

	mac := hmac.New(sha256.New, secretKey)
	mac.Write(payloadBytes)
	signature := mac.Sum(nil)

	return base64.RawURLEncoding.EncodeToString(signature), nil
}

// ValidateAdminSignature 验证一个给定的payload和签名是否匹配。
func ValidateAdminSignature(payload AdminPayload, signatureB64 string) bool {
	// 重新序列化payload，确保与签名时的数据格式完全一致
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, secretKey)
	mac.Write(payloadBytes)
	expectedSignature := mac.Sum(nil)

	actualSignature, err := base64.RawURLEncoding.DecodeString(signatureB64)
	if err != nil {
		return false
	}

	// 使用 hmac.Equal 进行时间恒定的比较，防止时序攻击
	return hmac.Equal(expectedSignature, actualSignature)
}
