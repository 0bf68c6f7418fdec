package middleware

import (
	"slices"

	"github.com/gin-gonic/gin"
	initdata "github.com/telegram-mini-apps/init-data-golang"

	"github.com/open-builders/giveaway-bot/internal/common/errors"
	"github.com/open-builders/giveaway-bot/internal/common/logger"
)

// CurrentUser returns the Telegram user authenticated for this request.
func CurrentUser(c *gin.Context) (initdata.User, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return initdata.User{}, false
	}
	user, ok := v.(initdata.User)
	return user, ok && user.ID != 0
}

func RequireAuth() gin.HandlerFunc {
	log := logger.Component("auth")
	return func(c *gin.Context) {
		if _, ok := CurrentUser(c); !ok {
			sendErrorResponse(c, errors.NewUnauthorizedError("Telegram init data required"), log)
			return
		}
		c.Next()
	}
}

// RequireAdmin only lets through callers listed in adminIDs.
func RequireAdmin(adminIDs []int64) gin.HandlerFunc {
	log := logger.Component("auth")
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			sendErrorResponse(c, errors.NewUnauthorizedError("Telegram init data required"), log)
			return
		}
		if !slices.Contains(adminIDs, user.ID) {
			sendErrorResponse(c, errors.NewForbiddenError("admin access required"), log)
			return
		}
		c.Next()
	}
}
