package api

import (
	"net/http"

	"bitwise74/vidshare/apperr"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// writeError maps an error to its HTTP response. Every body carries a
// machine-readable code next to the human-readable message.
func writeError(c *gin.Context, requestID string, err error) {
	kind := apperr.KindOf(err)

	var status int
	message := "Internal server error"

	switch kind {
	case apperr.Validation:
		status = http.StatusBadRequest
		if apperr.CodeOf(err) == apperr.CodePayloadTooLarge {
			status = http.StatusRequestEntityTooLarge
		}
		if apperr.CodeOf(err) == apperr.CodeUnsupportedMediaType {
			status = http.StatusUnsupportedMediaType
		}
		message = err.Error()
	case apperr.NotFound:
		status = http.StatusNotFound
		message = "Not found"
	case apperr.TransientStore:
		status = http.StatusServiceUnavailable
		message = "Temporarily unavailable, try again"
		zap.L().Error("Store unavailable", zap.String("requestID", requestID), zap.Error(err))
	default:
		status = http.StatusInternalServerError
		zap.L().Error("Unhandled error", zap.String("requestID", requestID), zap.Error(err))
	}

	c.AbortWithStatusJSON(status, gin.H{
		"error":     message,
		"code":      apperr.CodeOf(err),
		"requestID": requestID,
	})
}
