package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/heartfelt/internal/apperr"
	"github.com/lalith-99/heartfelt/internal/auth"
	"github.com/lalith-99/heartfelt/internal/models"
	"github.com/lalith-99/heartfelt/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AuthHandler serves signup and login, the only endpoints besides health
// that run without a token.
type AuthHandler struct {
	users     repository.UserRepository
	jwtSecret string
	jwtTTL    time.Duration
	logger    *zap.Logger
}

func NewAuthHandler(users repository.UserRepository, jwtSecret string, jwtTTL time.Duration, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		users:     users,
		jwtSecret: jwtSecret,
		jwtTTL:    jwtTTL,
		logger:    logger,
	}
}

type signupRequest struct {
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=8"`
	Name       string `json:"name" binding:"required,max=100"`
	Department string `json:"department" binding:"max=100"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// authResponse is returned by both signup and login. Clients send the token
// back as "Authorization: Bearer <token>".
type authResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Signup handles POST /v1/auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	email := strings.TrimSpace(req.Email)

	existing, err := h.users.GetByEmail(c.Request.Context(), email)
	if err != nil {
		respondError(c, h.logger, err, "signup failed")
		return
	}
	if existing != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
		return
	}

	// bcrypt salts per password; DefaultCost keeps a login around 100ms.
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(c, h.logger, err, "signup failed")
		return
	}

	user, err := h.users.Create(c.Request.Context(), email, strings.TrimSpace(req.Name), strings.TrimSpace(req.Department), string(hash))
	if err != nil {
		// Lost a race with a concurrent signup for the same email.
		if errors.Is(err, apperr.ErrInvalidState) {
			c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
			return
		}
		respondError(c, h.logger, err, "signup failed")
		return
	}

	token, err := auth.GenerateToken(user.ID, user.Email, h.jwtSecret, h.jwtTTL)
	if err != nil {
		respondError(c, h.logger, err, "signup failed")
		return
	}

	c.JSON(http.StatusCreated, authResponse{Token: token, User: user})
}

// Login handles POST /v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.GetByEmail(c.Request.Context(), strings.TrimSpace(req.Email))
	if err != nil {
		respondError(c, h.logger, err, "login failed")
		return
	}

	// Same answer for unknown email and wrong password so the endpoint
	// cannot be used to discover accounts.
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
		return
	}

	token, err := auth.GenerateToken(user.ID, user.Email, h.jwtSecret, h.jwtTTL)
	if err != nil {
		respondError(c, h.logger, err, "login failed")
		return
	}

	c.JSON(http.StatusOK, authResponse{Token: token, User: user})
}
