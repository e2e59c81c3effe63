package middleware

import (
	"FoodieHub/session"
	"github.com/gin-gonic/gin"
	"net/http"
	"time"
)

const SessionKey = "Session"

// 工作階段Cookie設定，MaxAge為0時為瀏覽器關閉即失效的Cookie
type SessionCookie struct {
	Name   string
	MaxAge time.Duration
	Secure bool
}

// 依Cookie取得購物者工作階段，沒有或已過期則建立新的。
// 每次請求都重設Cookie，讓有效期限跟著閒置時間延長
func SessionMiddleware(registry *session.Registry, cookie SessionCookie) gin.HandlerFunc {
	return func(c *gin.Context) {
		var current *session.Session
		if existing, err := c.Request.Cookie(cookie.Name); err == nil {
			current, _ = registry.Get(existing.Value)
		}
		if current == nil {
			current = registry.Start()
		}

		http.SetCookie(c.Writer, &http.Cookie{
			Name:     cookie.Name,
			Value:    current.ID,
			Path:     "/",
			MaxAge:   int(cookie.MaxAge / time.Second),
			Secure:   cookie.Secure,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})

		c.Set(SessionKey, current)
		c.Next()
	}
}

// 取得目前的工作階段，需先經過SessionMiddleware
func CurrentSession(c *gin.Context) (*session.Session, bool) {
	value, exists := c.Get(SessionKey)
	if !exists {
		return nil, false
	}
	current, ok := value.(*session.Session)
	return current, ok
}
