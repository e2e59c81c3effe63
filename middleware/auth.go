package middleware

import (
	"FoodieHub/jwt"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"strings"
)

func AuthMiddleware(db *gorm.DB, keys *jwt.Keys) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		token := strings.TrimPrefix(authHeader, "Bearer ")

		if token == "" {
			c.Header("Authorization", "")
			c.Next()
			return
		}

		//如Token不合法或錯誤則視為未登入
		claims, err := keys.VerifyToken(token, db)
		if err != nil {
			logrus.WithError(err).Debug("無法驗證Token")
			c.Header("Authorization", "")
			c.Next()
			return
		}

		c.Header("Authorization", authHeader)
		c.Set("Token", token)
		c.Set("UserID", claims.UserID)
		c.Set("Role", claims.Role)
		c.Next()
	}
}
