package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"approvalflow/internal/model"
	"approvalflow/pkg/util"
)

// Context keys set by the auth middleware.
const (
	CtxClaims  = "claims"
	CtxProfile = "profile"
)

func claimsFrom(c *gin.Context) *util.TokenClaims {
	v, ok := c.Get(CtxClaims)
	if !ok {
		return nil
	}
	return v.(*util.TokenClaims)
}

func profileFrom(c *gin.Context) *model.UserProfile {
	v, ok := c.Get(CtxProfile)
	if !ok {
		return nil
	}
	return v.(*model.UserProfile)
}

func parseID(c *gin.Context, param string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
