package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/heartfelt/internal/middleware"
	"github.com/lalith-99/heartfelt/internal/models"
	"github.com/lalith-99/heartfelt/internal/repository"
	"go.uber.org/zap"
)

// UserHandler handles user-related operations.
type UserHandler struct {
	repo   repository.UserRepository
	logger *zap.Logger
}

func NewUserHandler(repo repository.UserRepository, logger *zap.Logger) *UserHandler {
	return &UserHandler{repo: repo, logger: logger}
}

// List handles GET /v1/users, the recipient picker. The caller is included;
// clients hide themselves.
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.repo.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "failed to list users")
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// GetMe handles GET /v1/users/me
func (h *UserHandler) GetMe(c *gin.Context) {
	user, err := h.repo.GetByID(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.logger, err, "failed to get user")
		return
	}

	// A valid token for a user that no longer exists.
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	c.JSON(http.StatusOK, user)
}

type updateProfileRequest struct {
	Name       *string `json:"name" binding:"omitempty,max=100"`
	Department *string `json:"department" binding:"omitempty,max=100"`
	AvatarURL  *string `json:"avatar_url" binding:"omitempty,max=500"`
	LineUserID *string `json:"line_user_id" binding:"omitempty,max=64"`
}

// UpdateMe handles PATCH /v1/users/me. Omitted fields are left unchanged.
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	upd := models.ProfileUpdate{
		Name:       trimmed(req.Name),
		Department: trimmed(req.Department),
		AvatarURL:  trimmed(req.AvatarURL),
		LineUserID: trimmed(req.LineUserID),
	}
	if upd.Name != nil && *upd.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name must not be empty"})
		return
	}

	user, err := h.repo.UpdateProfile(c.Request.Context(), middleware.GetUserID(c), upd)
	if err != nil {
		respondError(c, h.logger, err, "failed to update profile")
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, user)
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}
