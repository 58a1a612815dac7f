package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/lalith-99/heartfelt/internal/middleware"
	"go.uber.org/zap"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Health      *HealthHandler
	Auth        *AuthHandler
	Messages    *MessageHandler
	Goals       *GoalHandler
	Library     *LibraryHandler
	Motivations *MotivationHandler
	Users       *UserHandler
	Settings    *SettingsHandler
	WS          *WSHandler
}

type RouterConfig struct {
	JWTSecret   string
	CORSOrigins []string
	Logger      *zap.Logger
}

// NewRouter builds the gin engine. Health, signup, login and the WebSocket
// upgrade are public; everything else under /v1 requires a bearer token.
func NewRouter(cfg RouterConfig, h Handlers) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestLogger(cfg.Logger), gin.Recovery())

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.CORSOrigins) == 0 || (len(cfg.CORSOrigins) == 1 && cfg.CORSOrigins[0] == "*") {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = cfg.CORSOrigins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/v1/health", h.Health.Check)
	r.POST("/v1/auth/signup", h.Auth.Signup)
	r.POST("/v1/auth/login", h.Auth.Login)
	if h.WS != nil {
		r.GET("/v1/ws", h.WS.Serve)
	}

	v1 := r.Group("/v1")
	v1.Use(middleware.AuthMiddleware(cfg.JWTSecret))

	v1.GET("/users", h.Users.List)
	v1.GET("/users/me", h.Users.GetMe)
	v1.PATCH("/users/me", h.Users.UpdateMe)

	v1.POST("/messages", h.Messages.Send)
	v1.GET("/messages/received", h.Messages.Received)
	v1.GET("/messages/sent", h.Messages.Sent)
	v1.POST("/messages/:id/read", h.Messages.MarkRead)
	v1.DELETE("/messages/:id", h.Messages.Delete)

	v1.GET("/goals/active", h.Goals.Active)
	v1.GET("/goals/history", h.Goals.History)
	v1.POST("/goals", h.Goals.Create)
	v1.POST("/goals/:id/achieve", h.Goals.Achieve)
	v1.GET("/progress", h.Goals.Progress)

	v1.GET("/library", h.Library.List)
	v1.POST("/library", h.Library.Save)
	v1.GET("/library/stats", h.Library.Stats)
	v1.DELETE("/library/:id", h.Library.Remove)

	v1.GET("/motivations", h.Motivations.List)
	v1.GET("/motivations/me", h.Motivations.Mine)
	v1.PUT("/motivations/me", h.Motivations.Save)
	v1.DELETE("/motivations/me", h.Motivations.RemoveMine)
	v1.DELETE("/motivations/:id", h.Motivations.Remove)

	v1.GET("/settings/slack", h.Settings.GetSlack)
	v1.PUT("/settings/slack", h.Settings.PutSlack)
	v1.POST("/settings/slack/test", h.Settings.TestSlack)

	return r
}
