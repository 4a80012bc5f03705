package referral

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"nutriguide/onboarding-backend/internal/auth"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts validation publicly and redemption behind requireAuth.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	r := rg.Group("/referrals")
	{
		r.POST("/validate", h.Validate)
		r.POST("/redeem", requireAuth, h.Redeem)
	}
}

type codeRequest struct {
	Code string `json:"code"`
}

func (h *Handler) Validate(c *gin.Context) {
	var req codeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.Validate(c.Request.Context(), req.Code)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not validate code, please retry"})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) Redeem(c *gin.Context) {
	userID, ok := auth.UserIDFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req codeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.Redeem(c.Request.Context(), req.Code, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not redeem code, please retry"})
		return
	}
	c.JSON(http.StatusOK, result)
}
