package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lalith-99/heartfelt/internal/apperr"
	"go.uber.org/zap"
)

// respondError writes err as {"error": "..."} with the status its kind maps
// to. Only messages carried by apperr errors reach the client; anything
// else is replaced by fallback and logged.
func respondError(c *gin.Context, logger *zap.Logger, err error, fallback string) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logger.Error(fallback,
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", status),
			zap.Error(err),
		)
	}
	c.JSON(status, gin.H{"error": apperr.PublicMessage(err, fallback)})
}

// paramID parses the :id path parameter, answering 400 itself on failure.
func paramID(c *gin.Context, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + what + " ID"})
		return uuid.Nil, false
	}
	return id, true
}
