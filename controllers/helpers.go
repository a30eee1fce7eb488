package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Thiahho/Resto-Bar-sub001/middlewares"
	"github.com/Thiahho/Resto-Bar-sub001/models"
	"github.com/Thiahho/Resto-Bar-sub001/utils"
)

func paramID(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, utils.Validation("invalid %s", name)
	}
	return uint(id), nil
}

// currentUserID is nil for unauthenticated requests and table tokens.
func currentUserID(c *gin.Context) *uint {
	v, ok := c.Get(middlewares.CtxUserID)
	if !ok {
		return nil
	}
	id, ok := v.(uint)
	if !ok || id == 0 {
		return nil
	}
	return &id
}

func currentRole(c *gin.Context) string {
	return c.GetString(middlewares.CtxRole)
}

// branchScope limits non-admin staff to their own branch.
func branchScope(c *gin.Context) *uint {
	if currentRole(c) == models.RoleAdmin {
		if raw := c.Query("branchId"); raw != "" {
			if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
				b := uint(id)
				return &b
			}
		}
		return nil
	}
	v, ok := c.Get(middlewares.CtxBranchID)
	if !ok {
		return nil
	}
	id, ok := v.(uint)
	if !ok {
		return nil
	}
	return &id
}

// bindJSON binds an optional JSON body; an empty body leaves dst untouched.
func bindJSON(c *gin.Context, dst interface{}) error {
	if c.Request.ContentLength == 0 {
		return nil
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		return utils.Validation("invalid request body: %v", err)
	}
	return nil
}
