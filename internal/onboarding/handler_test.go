package onboarding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"nutriguide/onboarding-backend/pkg/workflows"
)

func newTestRouter(repo AnswersRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewHandler(NewService(testFlow(), repo, zap.NewNop()), zap.NewNop())
	handler.RegisterRoutes(router.Group("/api/v1"))
	return router
}

func TestHandlerStepInfoUnknownStep(t *testing.T) {
	router := newTestRouter(new(MockAnswersRepository))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/onboarding/steps/missing", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var info workflows.StepInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, 1, info.CurrentStepNumber)
	assert.Nil(t, info.Step)
	assert.Nil(t, info.NextStep)
}

func TestHandlerNavigation(t *testing.T) {
	router := newTestRouter(new(MockAnswersRepository))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/onboarding/steps/c/previous", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var step workflows.StepDefinition
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &step))
	assert.Equal(t, "a", step.ID)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/onboarding/steps/c/next", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/onboarding/flow", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var flow FlowResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &flow))
	assert.Equal(t, 2, flow.TotalNavigableSteps)
}

func TestHandlerPutAnswers(t *testing.T) {
	mockRepo := new(MockAnswersRepository)
	router := newTestRouter(mockRepo)

	mockRepo.On("Put", mock.Anything, mock.AnythingOfType("*onboarding.Answers")).Return(nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/v1/onboarding/answers/device-9", strings.NewReader(`{"goal":"maintain"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockRepo.AssertExpectations(t)
}

func TestHandlerPutAnswersRejectsBadJSON(t *testing.T) {
	router := newTestRouter(new(MockAnswersRepository))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/v1/onboarding/answers/device-9", strings.NewReader(`[1,2`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandlerGetAnswersFailure(t *testing.T) {
	mockRepo := new(MockAnswersRepository)
	router := newTestRouter(mockRepo)

	mockRepo.On("Get", mock.Anything, "device-9").Return(nil, context.DeadlineExceeded)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/onboarding/answers/device-9", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "please retry")
}
