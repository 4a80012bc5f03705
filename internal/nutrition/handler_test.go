package nutrition

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(zap.NewNop()).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func TestTargetsEndpoint(t *testing.T) {
	body := `{"profile":{"sex":"male","age_years":30,"weight_kg":80,"height_cm":180,"activity_level":"moderate"},"goal":"lose"}`

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/nutrition/targets", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	newRouter().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var targets Targets
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &targets))
	assert.Equal(t, 2259.0, targets.Calories)
}

func TestTargetsEndpointInvalidProfile(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/nutrition/targets", strings.NewReader(`{"profile":{},"goal":"lose"}`))
	req.Header.Set("Content-Type", "application/json")
	newRouter().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScoreEndpoint(t *testing.T) {
	body := `{
		"profile":{"sex":"male","age_years":30,"weight_kg":80,"height_cm":180,"activity_level":"moderate"},
		"goal":"lose",
		"meals":[{"calories":753,"protein_g":56,"carbs_g":75,"fat_g":25}]
	}`

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/nutrition/score", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	newRouter().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		MealScores []float64 `json:"meal_scores"`
		DailyScore float64   `json:"daily_score"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.MealScores, 1)
	assert.Greater(t, resp.MealScores[0], 95.0)
	assert.Equal(t, resp.MealScores[0], resp.DailyScore)
}
