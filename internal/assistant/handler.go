package assistant

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"nutriguide/onboarding-backend/internal/auth"
)

type Handler struct {
	service *Service
	logger  *zap.Logger
}

func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes expects rg to be behind auth.RequireAuth.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	a := rg.Group("/assistant")
	{
		a.POST("/ask", h.Ask)
		a.GET("/usage", h.Usage)
	}
}

type askRequest struct {
	Question string `json:"question" binding:"required"`
	Context  string `json:"context"`
}

func (h *Handler) Ask(c *gin.Context) {
	userID, ok := auth.UserIDFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	answer, err := h.service.Ask(c.Request.Context(), userID.String(), req.Question, req.Context)
	switch {
	case errors.Is(err, ErrEmptyQuestion):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ErrQuotaExceeded):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error(), "remaining": 0})
	case errors.Is(err, ErrUpstream):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	case err != nil:
		h.logger.Error("Assistant request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong, please retry"})
	default:
		c.JSON(http.StatusOK, answer)
	}
}

func (h *Handler) Usage(c *gin.Context) {
	userID, ok := auth.UserIDFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	usage, err := h.service.Usage(c.Request.Context(), userID.String())
	if err != nil {
		h.logger.Error("Reading assistant usage failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong, please retry"})
		return
	}
	c.JSON(http.StatusOK, usage)
}
