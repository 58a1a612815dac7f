package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/heartfelt/internal/middleware"
	"github.com/lalith-99/heartfelt/internal/service"
	"go.uber.org/zap"
)

type MotivationHandler struct {
	motivations *service.MotivationService
	logger      *zap.Logger
}

func NewMotivationHandler(motivations *service.MotivationService, logger *zap.Logger) *MotivationHandler {
	return &MotivationHandler{motivations: motivations, logger: logger}
}

type saveMotivationRequest struct {
	Content string `json:"content" binding:"required,max=500"`
}

// List handles GET /v1/motivations
func (h *MotivationHandler) List(c *gin.Context) {
	list, err := h.motivations.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "failed to load motivations")
		return
	}
	c.JSON(http.StatusOK, gin.H{"motivations": list})
}

// Mine handles GET /v1/motivations/me. A user without one gets null.
func (h *MotivationHandler) Mine(c *gin.Context) {
	m, err := h.motivations.Mine(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.logger, err, "failed to load motivation")
		return
	}
	c.JSON(http.StatusOK, gin.H{"motivation": m})
}

// Save handles PUT /v1/motivations/me
func (h *MotivationHandler) Save(c *gin.Context) {
	var req saveMotivationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	m, err := h.motivations.Save(c.Request.Context(), middleware.GetUserID(c), req.Content)
	if err != nil {
		respondError(c, h.logger, err, "failed to save motivation")
		return
	}
	c.JSON(http.StatusOK, m)
}

// RemoveMine handles DELETE /v1/motivations/me
func (h *MotivationHandler) RemoveMine(c *gin.Context) {
	if err := h.motivations.RemoveMine(c.Request.Context(), middleware.GetUserID(c)); err != nil {
		respondError(c, h.logger, err, "failed to remove motivation")
		return
	}
	c.Status(http.StatusNoContent)
}

// Remove handles DELETE /v1/motivations/:id
func (h *MotivationHandler) Remove(c *gin.Context) {
	id, ok := paramID(c, "motivation")
	if !ok {
		return
	}
	if err := h.motivations.Remove(c.Request.Context(), id, middleware.GetUserID(c)); err != nil {
		respondError(c, h.logger, err, "failed to remove motivation")
		return
	}
	c.Status(http.StatusNoContent)
}
