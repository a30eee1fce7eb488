package middlewares

import (
	"github.com/gin-gonic/gin"

	"github.com/Thiahho/Resto-Bar-sub001/utils"
)

// RequireRoles lets through staff whose role is one of roles. It must run
// after AuthMiddleware.
func RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole, exists := c.Get(CtxRole)
		if !exists {
			utils.RespondAppError(c, utils.Unauthorized("unauthorized"))
			c.Abort()
			return
		}

		for _, r := range roles {
			if userRole == r {
				c.Next()
				return
			}
		}
		utils.RespondAppError(c, utils.Forbidden("%v access required", roles))
		c.Abort()
	}
}
