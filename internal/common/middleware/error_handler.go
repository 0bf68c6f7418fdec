package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/open-builders/giveaway-bot/internal/common/errors"
	"github.com/open-builders/giveaway-bot/internal/common/logger"
)

const requestIDKey = "request_id"

// ErrorHandler recovers panics and renders them as INTERNAL_ERROR responses.
func ErrorHandler() gin.HandlerFunc {
	log := logger.Component("http")
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		requestID := getRequestID(c)

		log.Error().
			Str("request_id", requestID).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Interface("panic", recovered).
			Str("stack", string(debug.Stack())).
			Msg("Panic recovered")

		appErr := errors.New(errors.ErrCodeInternal, "Internal server error").
			WithDetail("panic", fmt.Sprintf("%v", recovered))
		sendErrorResponse(c, appErr, log)
	})
}

// HandleErrors renders the last error a handler attached with c.Error.
func HandleErrors() gin.HandlerFunc {
	log := logger.Component("http")
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		appErr, ok := errors.AsAppError(err)
		if !ok {
			appErr = errors.Wrap(err, errors.ErrCodeInternal, "Handler error occurred")
		}
		sendErrorResponse(c, appErr, log)
	}
}

// RequestID propagates X-Request-ID or generates one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set(requestIDKey, requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

type ErrorResponse struct {
	Success   bool             `json:"success"`
	Error     *errors.AppError `json:"error"`
	Timestamp time.Time        `json:"timestamp"`
	RequestID string           `json:"request_id"`
	Path      string           `json:"path,omitempty"`
	Method    string           `json:"method,omitempty"`
}

func sendErrorResponse(c *gin.Context, appErr *errors.AppError, log zerolog.Logger) {
	requestID := getRequestID(c)
	appErr.WithRequestID(requestID)

	statusCode := HTTPStatus(appErr)
	logError(appErr, statusCode, log, c)

	c.AbortWithStatusJSON(statusCode, ErrorResponse{
		Success:   false,
		Error:     appErr,
		Timestamp: time.Now(),
		RequestID: requestID,
		Path:      c.Request.URL.Path,
		Method:    c.Request.Method,
	})
}

// HTTPStatus maps an error code to the response status.
func HTTPStatus(appErr *errors.AppError) int {
	switch appErr.Code {
	case errors.ErrCodeValidation, errors.ErrCodeBadRequest,
		errors.ErrCodeInvalidDuration, errors.ErrCodeInvalidQuota:
		return http.StatusBadRequest
	case errors.ErrCodeGiveawayNotFound:
		return http.StatusNotFound
	case errors.ErrCodeNoParticipants:
		return http.StatusConflict
	case errors.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case errors.ErrCodeForbidden:
		return http.StatusForbidden
	case errors.ErrCodeTransport:
		return http.StatusBadGateway
	case errors.ErrCodePersistence:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func logError(appErr *errors.AppError, status int, log zerolog.Logger, c *gin.Context) {
	var event *zerolog.Event
	switch {
	case status >= http.StatusInternalServerError:
		event = log.Error()
	case appErr.Code == errors.ErrCodeUnauthorized:
		event = log.Warn()
	default:
		event = log.Info()
	}

	event = event.
		Str("request_id", appErr.RequestID).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Str("error_code", string(appErr.Code)).
		Str("error_message", appErr.Message)
	if userID := getUserID(c); userID != 0 {
		event = event.Int64("user_id", userID)
	}
	if len(appErr.Details) > 0 {
		event = event.Interface("details", appErr.Details)
	}
	if appErr.Cause != nil {
		event = event.Err(appErr.Cause)
	}
	event.Msg("Request failed")
}

func getRequestID(c *gin.Context) string {
	if id := c.GetString(requestIDKey); id != "" {
		return id
	}
	return "unknown"
}

func getUserID(c *gin.Context) int64 {
	if user, ok := CurrentUser(c); ok {
		return user.ID
	}
	return 0
}
