package handler

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zelia-app/internal/models"
	"zelia-app/internal/services"
	"zelia-app/internal/utils"
)

// recordStore keeps progression records in memory with the same revision
// check as the mongo repository.
type recordStore struct {
	mu      sync.Mutex
	records map[string]models.Progression
}

func (r *recordStore) FindByUserID(_ context.Context, userID string) (map[string]interface{}, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.records[userID]
	if !ok {
		return nil, models.ErrNotFound
	}
	return p.Record(), nil
}

func (r *recordStore) Save(_ context.Context, userID string, p models.Progression) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.records[userID].Revision != p.Revision {
		return 0, models.ErrStaleRevision
	}
	p.Revision++
	r.records[userID] = p.Clone()
	return p.Revision, nil
}

type noSubscriptions struct{}

func (noSubscriptions) GetMySubscriptions(context.Context, string) ([]models.Subscription, error) {
	return nil, nil
}

func setupGatedRouter(t *testing.T, level, xp int) (*recordStore, http.Handler, string) {
	t.Helper()
	p := models.DefaultProgression()
	p.Level = level
	p.XP = xp
	repo := &recordStore{records: map[string]models.Progression{"user-42": p}}

	store := services.NewProgressionStore(repo, nil)
	access := services.NewAccessService(noSubscriptions{}, nil, time.Minute, models.DefaultPaidGateLevel)
	svc := services.NewProgressionService(store, access, nil, nil)

	gin.SetMode(gin.TestMode)
	jwtUtil := utils.NewJWTUtil(testSecret)
	token, err := jwtUtil.GenerateToken("user-42", nil)
	require.NoError(t, err)

	router := NewPublicRouter(NewProgressionHandler(svc), utils.AuthMiddleware(jwtUtil, ""), []string{"http://localhost:3000"})
	return repo, router, "Bearer " + token
}

func TestPublicLevelUp_IgnoresMinLevel(t *testing.T) {
	repo, router, auth := setupGatedRouter(t, 3, 250)

	w := doRequest(router, http.MethodPost, "/api/progression/level-up", auth, `{"min_level":50}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 4, repo.records["user-42"].Level)
}

func TestPublicLevelUp_UnpaidUserStopsAtPaywall(t *testing.T) {
	repo, router, auth := setupGatedRouter(t, 11, 1000)

	w := doRequest(router, http.MethodPost, "/api/progression/level-up", auth, "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, 11, repo.records["user-42"].Level)
	assert.EqualValues(t, 0, repo.records["user-42"].Revision)
}

func TestPublicXP_CannotJumpLevels(t *testing.T) {
	repo, router, auth := setupGatedRouter(t, 2, 150)

	w := doRequest(router, http.MethodPost, "/api/progression/xp", auth, `{"xp":5000}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, repo.records["user-42"].Level)

	repo.records["user-42"] = models.Progression{Level: 11, XP: 1000, Quests: []string{}, Perks: []string{}}
	w = doRequest(router, http.MethodPost, "/api/progression/xp", auth, `{"xp":50}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, 11, repo.records["user-42"].Level)
}
