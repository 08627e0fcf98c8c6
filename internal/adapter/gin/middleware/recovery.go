package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "user-crud-service/pkg/errors"
)

// Recovery turns a panic in any later handler into the 500 error envelope.
func Recovery(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic recovered", zap.Any("panic", r), zap.Stack("stack"))
				respondError(c, log, apperrors.NewTechnicalError("panic recovered", fmt.Errorf("%v", r)))
			}
		}()
		c.Next()
	}
}
