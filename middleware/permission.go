package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"net/http"
)

const AdminRole = "admin"

// 檢查是否有admin權限，沒有則中止請求
func CheckAdminPermissionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("Role")
		if !exists {
			logrus.Warn("無法取得Role")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": "錯誤",
			})
			return
		}
		if role != AdminRole {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "沒有權限",
			})
			return
		}

		c.Next()
	}
}
