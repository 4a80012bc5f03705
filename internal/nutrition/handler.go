package nutrition

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler exposes the calculators over HTTP.
type Handler struct {
	logger *zap.Logger
}

func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{logger: logger}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	n := rg.Group("/nutrition")
	{
		n.POST("/targets", h.Targets)
		n.POST("/score", h.Score)
	}
}

type targetsRequest struct {
	Profile Profile `json:"profile"`
	Goal    Goal    `json:"goal"`
}

type scoreRequest struct {
	Profile Profile `json:"profile"`
	Goal    Goal    `json:"goal"`
	Meals   []Meal  `json:"meals"`
}

func (h *Handler) Targets(c *gin.Context) {
	var req targetsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	targets, err := DailyTargets(req.Profile, req.Goal)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, targets)
}

func (h *Handler) Score(c *gin.Context) {
	var req scoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	targets, err := DailyTargets(req.Profile, req.Goal)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	meals := make([]float64, len(req.Meals))
	for i, meal := range req.Meals {
		meals[i] = MealScore(meal, targets)
	}

	h.logger.Debug("Nutrition score computed", zap.Int("meals", len(req.Meals)))

	c.JSON(http.StatusOK, gin.H{
		"targets":     targets,
		"meal_scores": meals,
		"daily_score": DailyScore(req.Meals, targets),
	})
}
