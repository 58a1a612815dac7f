package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lalith-99/heartfelt/internal/middleware"
	"github.com/lalith-99/heartfelt/internal/models"
	"github.com/lalith-99/heartfelt/internal/service"
	"go.uber.org/zap"
)

type MessageHandler struct {
	ledger *service.LedgerService
	logger *zap.Logger
}

func NewMessageHandler(ledger *service.LedgerService, logger *zap.Logger) *MessageHandler {
	return &MessageHandler{ledger: ledger, logger: logger}
}

// Content length is capped here; the ledger itself only requires non-empty
// trimmed text.
type sendMessageRequest struct {
	RecipientID string `json:"recipient_id" binding:"required"`
	Type        string `json:"type" binding:"required"`
	Content     string `json:"content" binding:"required,max=500"`
}

type messageListResponse struct {
	Messages    []models.MessageView `json:"messages"`
	UnreadCount int                  `json:"unread_count"`
}

// Send handles POST /v1/messages
func (h *MessageHandler) Send(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	recipientID, err := uuid.Parse(req.RecipientID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipient"})
		return
	}
	msgType, _ := models.ParseMessageType(req.Type)

	msg, err := h.ledger.Append(c.Request.Context(), middleware.GetUserID(c), recipientID, msgType, req.Content)
	if err != nil {
		respondError(c, h.logger, err, "failed to send message")
		return
	}
	c.JSON(http.StatusCreated, msg)
}

// Received handles GET /v1/messages/received?type=thanks&unread=true
//
// Filtering happens over the full inbox; unread_count always reflects the
// whole inbox so the badge does not change with the filter.
func (h *MessageHandler) Received(c *gin.Context) {
	var filter service.MessageFilter
	if t := c.Query("type"); t != "" {
		msgType, ok := models.ParseMessageType(t)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'type' parameter"})
			return
		}
		filter.Type = msgType
	}
	if u := c.Query("unread"); u != "" {
		unread, err := strconv.ParseBool(u)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'unread' parameter"})
			return
		}
		filter.Unread = unread
	}

	msgs, err := h.ledger.ListReceived(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.logger, err, "failed to list messages")
		return
	}

	c.JSON(http.StatusOK, messageListResponse{
		Messages:    service.FilterMessages(msgs, filter),
		UnreadCount: service.UnreadCount(msgs),
	})
}

// Sent handles GET /v1/messages/sent
func (h *MessageHandler) Sent(c *gin.Context) {
	msgs, err := h.ledger.ListSent(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.logger, err, "failed to list messages")
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// MarkRead handles POST /v1/messages/:id/read
func (h *MessageHandler) MarkRead(c *gin.Context) {
	id, ok := paramID(c, "message")
	if !ok {
		return
	}
	if err := h.ledger.MarkRead(c.Request.Context(), id, middleware.GetUserID(c)); err != nil {
		respondError(c, h.logger, err, "failed to mark message read")
		return
	}
	c.Status(http.StatusNoContent)
}

// Delete handles DELETE /v1/messages/:id
func (h *MessageHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "message")
	if !ok {
		return
	}
	if err := h.ledger.Delete(c.Request.Context(), id, middleware.GetUserID(c)); err != nil {
		respondError(c, h.logger, err, "failed to delete message")
		return
	}
	c.Status(http.StatusNoContent)
}
