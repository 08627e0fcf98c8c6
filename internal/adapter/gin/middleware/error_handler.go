package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "user-crud-service/pkg/errors"
	"user-crud-service/pkg/logger"
)

// ErrorResponse is the JSON envelope of every failed request.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody carries the machine readable code, a message and, for
// validation failures only, the violated fields.
type ErrorBody struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details []apperrors.FieldError `json:"details,omitempty"`
}

// MapError converts any error into the HTTP status and envelope sent to the client.
// Unknown and technical errors never leak their cause.
func MapError(err error) (int, ErrorResponse) {
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) || appErr.Kind == apperrors.KindTechnical {
		return http.StatusInternalServerError, ErrorResponse{Error: ErrorBody{
			Code:    apperrors.CodeInternal,
			Message: apperrors.MessageInternal,
		}}
	}

	body := ErrorBody{Code: appErr.Code, Message: appErr.Message}
	if appErr.Kind == apperrors.KindValidation {
		body.Details = appErr.Details
		if body.Details == nil {
			body.Details = []apperrors.FieldError{}
		}
	}
	return appErr.Status, ErrorResponse{Error: body}
}

// ErrorHandler renders the last error a handler attached with c.Error.
// It must be registered before the handlers whose errors it renders.
func ErrorHandler(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		respondError(c, log, c.Errors.Last().Err)
	}
}

// NotFound handles requests that match no route.
func NotFound(c *gin.Context) {
	_ = c.Error(apperrors.NewBusinessError(http.StatusNotFound, apperrors.CodeRouteNotFound, apperrors.MessageRouteNotFound))
}

func respondError(c *gin.Context, log *zap.Logger, err error) {
	status, resp := MapError(err)

	l := logger.WithContext(c.Request.Context(), log).With(
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Int("status", status),
	)
	if status >= http.StatusInternalServerError {
		l.Error("request failed", zap.Error(err))
	} else {
		l.Debug("request rejected", zap.String("code", resp.Error.Code), zap.Error(err))
	}

	c.AbortWithStatusJSON(status, resp)
}
