package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/heartfelt/internal/growth"
	"github.com/lalith-99/heartfelt/internal/models"
	"github.com/lalith-99/heartfelt/internal/service"
	"go.uber.org/zap"
)

type GoalHandler struct {
	goals    *service.GoalService
	progress *service.ProgressService
	logger   *zap.Logger
}

func NewGoalHandler(goals *service.GoalService, progress *service.ProgressService, logger *zap.Logger) *GoalHandler {
	return &GoalHandler{goals: goals, progress: progress, logger: logger}
}

// Field validation is left to GoalService so the messages match the CLI.
type createGoalRequest struct {
	Name           string `json:"name"`
	RequiredPoints int    `json:"required_points"`
}

// progressResponse flattens progress and adds the growth stage.
type progressResponse struct {
	models.Progress
	Stage growth.Stage `json:"stage"`
}

// Active handles GET /v1/goals/active. "goal" is null when none is active.
func (h *GoalHandler) Active(c *gin.Context) {
	goal, err := h.goals.Active(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "failed to load goal")
		return
	}
	c.JSON(http.StatusOK, gin.H{"goal": goal})
}

// Create handles POST /v1/goals
func (h *GoalHandler) Create(c *gin.Context) {
	var req createGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	goal, err := h.goals.CreateNew(c.Request.Context(), req.Name, req.RequiredPoints)
	if err != nil {
		respondError(c, h.logger, err, "failed to create goal")
		return
	}
	c.JSON(http.StatusCreated, goal)
}

// Achieve handles POST /v1/goals/:id/achieve
func (h *GoalHandler) Achieve(c *gin.Context) {
	id, ok := paramID(c, "goal")
	if !ok {
		return
	}
	goal, err := h.goals.MarkAchieved(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err, "failed to mark goal achieved")
		return
	}
	c.JSON(http.StatusOK, goal)
}

// History handles GET /v1/goals/history?limit=10
func (h *GoalHandler) History(c *gin.Context) {
	limit := 0
	if l := c.Query("limit"); l != "" {
		var err error
		limit, err = strconv.Atoi(l)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'limit' parameter"})
			return
		}
	}

	goals, err := h.goals.History(c.Request.Context(), limit)
	if err != nil {
		respondError(c, h.logger, err, "failed to load goal history")
		return
	}
	c.JSON(http.StatusOK, gin.H{"goals": goals})
}

// Progress handles GET /v1/progress
func (h *GoalHandler) Progress(c *gin.Context) {
	p, err := h.progress.Current(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "failed to load progress")
		return
	}
	c.JSON(http.StatusOK, progressResponse{
		Progress: p,
		Stage:    growth.StageFor(p.TotalPoints, p.Percentage),
	})
}
