package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/heartfelt/internal/models"
	"github.com/lalith-99/heartfelt/internal/notify"
	"github.com/lalith-99/heartfelt/internal/repository"
	"go.uber.org/zap"
)

// SlackTester sends a one-off message to a webhook. *notify.SlackNotifier
// satisfies it.
type SlackTester interface {
	Test(ctx context.Context, webhookURL, channel string) error
}

type SettingsHandler struct {
	repo   repository.SlackSettingsRepository
	slack  SlackTester
	logger *zap.Logger
}

func NewSettingsHandler(repo repository.SlackSettingsRepository, slack SlackTester, logger *zap.Logger) *SettingsHandler {
	return &SettingsHandler{repo: repo, slack: slack, logger: logger}
}

type slackSettingsRequest struct {
	WebhookURL string `json:"webhook_url"`
	Channel    string `json:"channel" binding:"max=80"`
	IsEnabled  bool   `json:"is_enabled"`
}

type slackTestRequest struct {
	WebhookURL string `json:"webhook_url"`
	Channel    string `json:"channel"`
}

// GetSlack handles GET /v1/settings/slack. Unsaved settings come back as
// the disabled zero value.
func (h *SettingsHandler) GetSlack(c *gin.Context) {
	settings, err := h.repo.Get(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "failed to load slack settings")
		return
	}
	if settings == nil {
		settings = &models.SlackSettings{}
	}
	c.JSON(http.StatusOK, settings)
}

// PutSlack handles PUT /v1/settings/slack
func (h *SettingsHandler) PutSlack(c *gin.Context) {
	var req slackSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	webhookURL := strings.TrimSpace(req.WebhookURL)
	if webhookURL != "" && !notify.ValidWebhookURL(webhookURL) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "webhook_url must start with https://hooks.slack.com/"})
		return
	}
	if req.IsEnabled && webhookURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "webhook_url is required to enable slack"})
		return
	}

	saved, err := h.repo.Save(c.Request.Context(), models.SlackSettings{
		WebhookURL: webhookURL,
		Channel:    strings.TrimSpace(req.Channel),
		IsEnabled:  req.IsEnabled,
	})
	if err != nil {
		respondError(c, h.logger, err, "failed to save slack settings")
		return
	}

	h.logger.Info("slack settings updated", zap.Bool("enabled", saved.IsEnabled))
	c.JSON(http.StatusOK, saved)
}

// TestSlack handles POST /v1/settings/slack/test. An empty body tests the
// saved webhook.
func (h *SettingsHandler) TestSlack(c *gin.Context) {
	var req slackTestRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	webhookURL, channel := strings.TrimSpace(req.WebhookURL), strings.TrimSpace(req.Channel)
	if webhookURL == "" {
		saved, err := h.repo.Get(c.Request.Context())
		if err != nil {
			respondError(c, h.logger, err, "failed to load slack settings")
			return
		}
		if saved == nil || saved.WebhookURL == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no webhook_url configured"})
			return
		}
		webhookURL = saved.WebhookURL
		if channel == "" {
			channel = saved.Channel
		}
	}

	if err := h.slack.Test(c.Request.Context(), webhookURL, channel); err != nil {
		if errors.Is(err, notify.ErrInvalidWebhook) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "webhook_url must start with https://hooks.slack.com/"})
			return
		}
		h.logger.Warn("slack test failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "slack rejected the test message"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "sent"})
}
