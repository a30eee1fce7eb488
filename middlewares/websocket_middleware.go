package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Thiahho/Resto-Bar-sub001/utils"
)

// WebSocketAuthMiddleware authenticates the upgrade request with a staff
// token from the query string (browsers cannot set headers on websockets)
// or the Authorization header.
func WebSocketAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			token = bearerToken(c)
		}
		if token == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		claims, err := utils.ParseToken(token)
		if err != nil {
			utils.ErrorLogger.WithField("ip", c.ClientIP()).Warn("websocket rejected: invalid token")
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		setStaff(c, token, claims)
		c.Next()
	}
}
