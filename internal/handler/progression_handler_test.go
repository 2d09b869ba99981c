package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zelia-app/internal/models"
	"zelia-app/internal/services"
	"zelia-app/internal/utils"
)

const testSecret = "test-secret"

type stubService struct {
	lastUserID     string
	lastAuthHeader string
	lastXPReward   *float64
	lastAmount     int
	lastLevel      int
	err            error
	progression    models.Progression
}

func (s *stubService) Status(_ context.Context, userID, authHeader string) services.ProgressionStatus {
	s.lastUserID, s.lastAuthHeader = userID, authHeader
	return services.ProgressionStatus{
		Progression:     s.progression,
		Quests:          models.QuestChecklist(s.progression),
		SuggestedQuests: models.SuggestedQuests(s.progression, false),
	}
}

func (s *stubService) AdvanceLevel(_ context.Context, userID, authHeader string, xpReward *float64) (services.LevelUpResult, error) {
	s.lastUserID, s.lastAuthHeader, s.lastXPReward = userID, authHeader, xpReward
	if s.err != nil {
		return services.LevelUpResult{}, s.err
	}
	return services.LevelUpResult{PreviousLevel: 3, NewLevel: 4, XP: 400, QuestsCompleted: []string{"strengths_quiz"}, PerksUnlocked: []string{}}, nil
}

func (s *stubService) CompleteLevel(_ context.Context, userID, authHeader string, level int, _ *float64) (services.LevelUpResult, error) {
	s.lastUserID, s.lastAuthHeader, s.lastLevel = userID, authHeader, level
	if s.err != nil {
		return services.LevelUpResult{}, s.err
	}
	return services.LevelUpResult{PreviousLevel: level, NewLevel: level + 1}, nil
}

func (s *stubService) EarnXP(_ context.Context, userID, authHeader string, amount int) (services.LevelUpResult, error) {
	s.lastUserID, s.lastAuthHeader, s.lastAmount = userID, authHeader, amount
	if s.err != nil {
		return services.LevelUpResult{}, s.err
	}
	return services.LevelUpResult{PreviousLevel: 1, NewLevel: 1, XP: amount}, nil
}

func (s *stubService) CheckAccess(_ context.Context, userID, authHeader string, target int) models.AccessDecision {
	s.lastUserID, s.lastLevel = userID, target
	return models.AccessDecision{TargetLevel: target, CurrentLevel: 3, Accessible: target <= 4}
}

func (s *stubService) NextPlayableLevel(_ context.Context, userID, _ string) int {
	s.lastUserID = userID
	return 7
}

func setupRouter(t *testing.T, svc *stubService) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	jwtUtil := utils.NewJWTUtil(testSecret)
	token, err := jwtUtil.GenerateToken("user-42", nil)
	require.NoError(t, err)

	router := NewPublicRouter(NewProgressionHandler(svc), utils.AuthMiddleware(jwtUtil, ""), []string{"http://localhost:3000"})
	return router, "Bearer " + token
}

func doRequest(router http.Handler, method, path, auth, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestProgressionRoutes_RequireToken(t *testing.T) {
	router, _ := setupRouter(t, &stubService{})

	for _, auth := range []string{"", "Bearer", "Basic abc", "Bearer not-a-jwt"} {
		w := doRequest(router, http.MethodGet, "/api/progression/me", auth, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, "auth header %q", auth)
	}

	other, err := utils.NewJWTUtil("other-secret").GenerateToken("user-42", nil)
	require.NoError(t, err)
	w := doRequest(router, http.MethodGet, "/api/progression/me", "Bearer "+other, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetMe(t *testing.T) {
	svc := &stubService{progression: models.DefaultProgression()}
	router, auth := setupRouter(t, svc)

	w := doRequest(router, http.MethodGet, "/api/progression/me", auth, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-42", svc.lastUserID)
	assert.Equal(t, auth, svc.lastAuthHeader)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	progression := body["progression"].(map[string]interface{})
	assert.Equal(t, 1.0, progression["level"])
}

func TestLevelUp(t *testing.T) {
	svc := &stubService{}
	router, auth := setupRouter(t, svc)

	w := doRequest(router, http.MethodPost, "/api/progression/level-up", auth, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, svc.lastXPReward)
	assert.Equal(t, auth, svc.lastAuthHeader)

	var res services.LevelUpResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, 4, res.NewLevel)
	assert.Equal(t, []string{"strengths_quiz"}, res.QuestsCompleted)

	w = doRequest(router, http.MethodPost, "/api/progression/level-up", auth, `{"xp_reward":25}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, svc.lastXPReward)
	assert.Equal(t, 25.0, *svc.lastXPReward)

	w = doRequest(router, http.MethodPost, "/api/progression/level-up", auth, `{"min_level":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLevelUp_ServiceErrors(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("save progression: %w", models.ErrStaleRevision), http.StatusConflict},
		{fmt.Errorf("%w: level 12", models.ErrLevelLocked), http.StatusForbidden},
		{models.ErrValidation, http.StatusBadRequest},
		{assert.AnError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		router, auth := setupRouter(t, &stubService{err: tt.err})
		w := doRequest(router, http.MethodPost, "/api/progression/level-up", auth, "")
		assert.Equal(t, tt.want, w.Code, "error %v", tt.err)
	}
}

func TestCompleteLevel(t *testing.T) {
	svc := &stubService{}
	router, auth := setupRouter(t, svc)

	w := doRequest(router, http.MethodPost, "/api/progression/levels/3/complete", auth, `{"xp_reward":80}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, svc.lastLevel)
	assert.Equal(t, auth, svc.lastAuthHeader)

	for _, level := range []string{"0", "51", "abc"} {
		w = doRequest(router, http.MethodPost, "/api/progression/levels/"+level+"/complete", auth, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, "level %s", level)
	}

	svc.err = models.ErrLevelLocked
	w = doRequest(router, http.MethodPost, "/api/progression/levels/9/complete", auth, "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestEarnXP(t *testing.T) {
	svc := &stubService{}
	router, auth := setupRouter(t, svc)

	w := doRequest(router, http.MethodPost, "/api/progression/xp", auth, `{"xp":30}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 30, svc.lastAmount)
	assert.Equal(t, auth, svc.lastAuthHeader)

	w = doRequest(router, http.MethodPost, "/api/progression/xp", auth, `{"xp":9223372036854775807}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(router, http.MethodPost, "/api/progression/xp", auth, `{"xp":0}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(router, http.MethodPost, "/api/progression/xp", auth, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	svc.err = models.ErrLevelLocked
	w = doRequest(router, http.MethodPost, "/api/progression/xp", auth, `{"xp":30}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAccessAndNextPlayable(t *testing.T) {
	svc := &stubService{}
	router, auth := setupRouter(t, svc)

	w := doRequest(router, http.MethodGet, "/api/progression/levels/4/access", auth, "")
	require.Equal(t, http.StatusOK, w.Code)
	var d models.AccessDecision
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &d))
	assert.True(t, d.Accessible)

	w = doRequest(router, http.MethodGet, "/api/progression/next-playable", auth, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"level":7}`, w.Body.String())
}

func TestGetQuests(t *testing.T) {
	p := models.DefaultProgression()
	p.Quests = []string{"explore_interests"}
	router, auth := setupRouter(t, &stubService{progression: p})

	w := doRequest(router, http.MethodGet, "/api/progression/quests", auth, "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Quests    []models.QuestStatus `json:"quests"`
		Suggested []models.QuestStatus `json:"suggested"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Quests, models.MaxLevel+1)
	assert.Equal(t, models.CompleteTestQuestID, body.Suggested[0].ID)
	assert.Equal(t, "watch_intro", body.Suggested[1].ID)
}

func TestGetCatalog_IsPublic(t *testing.T) {
	router, _ := setupRouter(t, &stubService{})

	w := doRequest(router, http.MethodGet, "/api/quests/catalog", "", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Quests     []models.QuestCatalogEntry `json:"quests"`
		Perks      []models.PerkCatalogEntry  `json:"perks"`
		MaxLevel   int                        `json:"max_level"`
		XPPerLevel int                        `json:"xp_per_level"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Quests, models.MaxLevel)
	assert.Len(t, body.Perks, 10)
	assert.Equal(t, models.MaxLevel, body.MaxLevel)
	assert.Equal(t, models.XPPerLevel, body.XPPerLevel)
}
