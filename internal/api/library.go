package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/heartfelt/internal/middleware"
	"github.com/lalith-99/heartfelt/internal/models"
	"github.com/lalith-99/heartfelt/internal/service"
	"go.uber.org/zap"
)

type LibraryHandler struct {
	library *service.LibraryService
	logger  *zap.Logger
}

func NewLibraryHandler(library *service.LibraryService, logger *zap.Logger) *LibraryHandler {
	return &LibraryHandler{library: library, logger: logger}
}

type saveLibraryRequest struct {
	Content            string  `json:"message_content" binding:"required,max=500"`
	MessageType        string  `json:"message_type" binding:"required"`
	OriginalSenderName *string `json:"original_sender_name"`
}

// List handles GET /v1/library
func (h *LibraryHandler) List(c *gin.Context) {
	entries, err := h.library.List(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.logger, err, "failed to load library")
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// Save handles POST /v1/library
func (h *LibraryHandler) Save(c *gin.Context) {
	var req saveLibraryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	msgType, _ := models.ParseMessageType(req.MessageType)

	entry, err := h.library.Save(c.Request.Context(), middleware.GetUserID(c), req.Content, msgType, req.OriginalSenderName)
	if err != nil {
		respondError(c, h.logger, err, "failed to save to library")
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// Remove handles DELETE /v1/library/:id
func (h *LibraryHandler) Remove(c *gin.Context) {
	id, ok := paramID(c, "library entry")
	if !ok {
		return
	}
	if err := h.library.Remove(c.Request.Context(), id, middleware.GetUserID(c)); err != nil {
		respondError(c, h.logger, err, "failed to remove library entry")
		return
	}
	c.Status(http.StatusNoContent)
}

// Stats handles GET /v1/library/stats
func (h *LibraryHandler) Stats(c *gin.Context) {
	counts, err := h.library.Stats(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.logger, err, "failed to load library stats")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"thanks":  counts.Thanks,
		"honesty": counts.Honesty,
		"total":   counts.Total(),
	})
}
