package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	initdata "github.com/telegram-mini-apps/init-data-golang"

	"github.com/open-builders/giveaway-bot/internal/common/errors"
	"github.com/open-builders/giveaway-bot/internal/common/logger"
)

const userKey = "user"

// TelegramInitDataMiddleware authenticates Mini App callers by the signed
// init data in the "init_data" header. A zero ttl disables the expiry check.
func TelegramInitDataMiddleware(botToken string, ttl time.Duration) gin.HandlerFunc {
	log := logger.Component("auth")
	return func(c *gin.Context) {
		raw := c.GetHeader("init_data")
		if raw == "" {
			sendErrorResponse(c, errors.NewUnauthorizedError("Telegram init data required"), log)
			return
		}

		if err := initdata.Validate(raw, botToken, ttl); err != nil {
			log.Debug().Err(err).Msg("Init data validation failed")
			sendErrorResponse(c, errors.NewUnauthorizedError("invalid init data"), log)
			return
		}

		parsed, err := initdata.Parse(raw)
		if err != nil {
			sendErrorResponse(c, errors.New(errors.ErrCodeBadRequest, "Failed to parse init data"), log)
			return
		}

		c.Set(userKey, parsed.User)
		c.Next()
	}
}
