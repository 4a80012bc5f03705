package onboarding

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	ob := rg.Group("/onboarding")
	{
		ob.GET("/flow", h.GetFlow)
		ob.GET("/steps/:id", h.GetStepInfo)
		ob.GET("/steps/:id/next", h.GetNextStep)
		ob.GET("/steps/:id/previous", h.GetPreviousStep)
		ob.GET("/steps/:id/progress", h.GetProgress)

		ob.GET("/answers/:owner", h.GetAnswers)
		ob.PUT("/answers/:owner", h.PutAnswers)
		ob.DELETE("/answers/:owner", h.DeleteAnswers)
	}
}

func (h *Handler) GetFlow(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Flow())
}

// GetStepInfo always answers 200; unknown ids get the fallback values.
func (h *Handler) GetStepInfo(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.StepInfo(c.Param("id")))
}

func (h *Handler) GetNextStep(c *gin.Context) {
	step, ok := h.service.NextStep(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no next step"})
		return
	}
	c.JSON(http.StatusOK, step)
}

func (h *Handler) GetPreviousStep(c *gin.Context) {
	step, ok := h.service.PreviousStep(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no previous step"})
		return
	}
	c.JSON(http.StatusOK, step)
}

func (h *Handler) GetProgress(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Progress(c.Param("id")))
}

func (h *Handler) GetAnswers(c *gin.Context) {
	answers, err := h.service.GetAnswers(c.Request.Context(), c.Param("owner"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, answers)
}

func (h *Handler) PutAnswers(c *gin.Context) {
	var payload map[string]any
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.SaveAnswers(c.Request.Context(), c.Param("owner"), payload); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

func (h *Handler) DeleteAnswers(c *gin.Context) {
	if err := h.service.ClearAnswers(c.Request.Context(), c.Param("owner")); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) writeError(c *gin.Context, err error) {
	if errors.Is(err, ErrInvalidOwnerKey) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.logger.Error("Onboarding answers request failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "could not process answers, please retry"})
}
