package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	InitDataHeader = "X-Telegram-Init-Data"
	InitDataQuery  = "tgWebAppData"
	InitDataKey    = "initData"
)

// CaptureInitData picks up mini-app init data forwarded by the webview,
// from the header first and then the tgWebAppData query parameter.
func CaptureInitData() gin.HandlerFunc {
	return func(c *gin.Context) {
		value := strings.TrimSpace(c.GetHeader(InitDataHeader))
		if value == "" {
			value = strings.TrimSpace(c.Query(InitDataQuery))
		}
		if value != "" {
			c.Set(InitDataKey, value)
		}
		c.Next()
	}
}

// InitData returns what CaptureInitData found, if anything.
func InitData(c *gin.Context) string {
	return c.GetString(InitDataKey)
}
