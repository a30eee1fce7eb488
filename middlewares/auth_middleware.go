package middlewares

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Thiahho/Resto-Bar-sub001/utils"
)

// Context keys set by the auth middlewares.
const (
	CtxUserID      = "userID"
	CtxRole        = "role"
	CtxBranchID    = "branchID"
	CtxToken       = "token"
	CtxStaffClaims = "staffClaims"
	CtxTableClaims = "tableClaims"
)

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
}

func setStaff(c *gin.Context, token string, claims *utils.CustomClaims) {
	c.Set(CtxToken, token)
	c.Set(CtxStaffClaims, claims)
	c.Set(CtxUserID, claims.UserID)
	c.Set(CtxRole, claims.Role)
	if claims.BranchID != nil {
		c.Set(CtxBranchID, *claims.BranchID)
	}
}

// AuthMiddleware requires a staff bearer token.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			utils.RespondAppError(c, utils.Unauthorized("authorization header missing"))
			c.Abort()
			return
		}

		claims, err := utils.ParseToken(tokenString)
		if err != nil {
			utils.RespondAppError(c, utils.Unauthorized("invalid or expired token"))
			c.Abort()
			return
		}

		setStaff(c, tokenString, claims)
		c.Next()
	}
}

// StaffOrTableAuth accepts a staff bearer token or a table ordering token.
// The table token may come from the X-Table-Token header, the bearer header
// or the token query parameter.
func StaffOrTableAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		bearer := bearerToken(c)
		if bearer != "" {
			if claims, err := utils.ParseToken(bearer); err == nil {
				setStaff(c, bearer, claims)
				c.Next()
				return
			}
		}

		tableToken := c.GetHeader("X-Table-Token")
		if tableToken == "" {
			tableToken = bearer
		}
		if tableToken == "" {
			tableToken = c.Query("token")
		}
		if tableToken == "" {
			utils.RespondAppError(c, utils.Unauthorized("staff or table token required"))
			c.Abort()
			return
		}

		claims, err := utils.ParseTableToken(tableToken)
		if err != nil {
			utils.RespondAppError(c, utils.Unauthorized("invalid or expired token"))
			c.Abort()
			return
		}
		c.Set(CtxTableClaims, claims)
		c.Next()
	}
}

// OptionalTableToken validates a table token when one is sent.
func OptionalTableToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("X-Table-Token")
		if token == "" {
			token = c.Query("token")
		}
		if token == "" {
			c.Next()
			return
		}
		claims, err := utils.ParseTableToken(token)
		if err != nil {
			utils.RespondAppError(c, utils.Unauthorized("invalid or expired table token"))
			c.Abort()
			return
		}
		c.Set(CtxTableClaims, claims)
		c.Next()
	}
}

// TableClaimsFrom returns the table token claims stored by the middlewares, if any.
func TableClaimsFrom(c *gin.Context) *utils.TableClaims {
	v, ok := c.Get(CtxTableClaims)
	if !ok {
		return nil
	}
	claims, _ := v.(*utils.TableClaims)
	return claims
}

// StaffClaimsFrom returns the staff claims stored by the middlewares, if any.
func StaffClaimsFrom(c *gin.Context) *utils.CustomClaims {
	v, ok := c.Get(CtxStaffClaims)
	if !ok {
		return nil
	}
	claims, _ := v.(*utils.CustomClaims)
	return claims
}
