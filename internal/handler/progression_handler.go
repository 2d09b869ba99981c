package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"zelia-app/internal/models"
	"zelia-app/internal/services"
	"zelia-app/internal/utils"
)

type ProgressionService interface {
	Status(ctx context.Context, userID, authHeader string) services.ProgressionStatus
	AdvanceLevel(ctx context.Context, userID, authHeader string, xpReward *float64) (services.LevelUpResult, error)
	CompleteLevel(ctx context.Context, userID, authHeader string, level int, xpReward *float64) (services.LevelUpResult, error)
	EarnXP(ctx context.Context, userID, authHeader string, amount int) (services.LevelUpResult, error)
	CheckAccess(ctx context.Context, userID, authHeader string, targetLevel int) models.AccessDecision
	NextPlayableLevel(ctx context.Context, userID, authHeader string) int
}

type ProgressionHandler struct {
	service ProgressionService
}

func NewProgressionHandler(s ProgressionService) *ProgressionHandler {
	return &ProgressionHandler{service: s}
}

func caller(c *gin.Context) (userID, authHeader string) {
	return c.GetString(utils.ContextUserID), c.GetString(utils.ContextAuthHeader)
}

// GET /api/progression/me
func (h *ProgressionHandler) GetMe(c *gin.Context) {
	userID, authHeader := caller(c)
	c.JSON(http.StatusOK, h.service.Status(c.Request.Context(), userID, authHeader))
}

// POST /api/progression/level-up
func (h *ProgressionHandler) LevelUp(c *gin.Context) {
	var input models.LevelUpRequest
	if !bindOptionalJSON(c, &input) {
		return
	}

	userID, authHeader := caller(c)
	result, err := h.service.AdvanceLevel(c.Request.Context(), userID, authHeader, input.XPReward)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// POST /api/progression/levels/:level/complete
func (h *ProgressionHandler) CompleteLevel(c *gin.Context) {
	level, ok := levelParam(c)
	if !ok {
		return
	}

	var input models.CompleteLevelRequest
	if !bindOptionalJSON(c, &input) {
		return
	}

	userID, authHeader := caller(c)
	result, err := h.service.CompleteLevel(c.Request.Context(), userID, authHeader, level, input.XPReward)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// POST /api/progression/xp
func (h *ProgressionHandler) EarnXP(c *gin.Context) {
	var input models.AwardXPRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := models.Validate(input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, authHeader := caller(c)
	result, err := h.service.EarnXP(c.Request.Context(), userID, authHeader, input.XP)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GET /api/progression/levels/:level/access
func (h *ProgressionHandler) CheckAccess(c *gin.Context) {
	level, ok := levelParam(c)
	if !ok {
		return
	}
	userID, authHeader := caller(c)
	c.JSON(http.StatusOK, h.service.CheckAccess(c.Request.Context(), userID, authHeader, level))
}

// GET /api/progression/next-playable
func (h *ProgressionHandler) NextPlayable(c *gin.Context) {
	userID, authHeader := caller(c)
	level := h.service.NextPlayableLevel(c.Request.Context(), userID, authHeader)
	c.JSON(http.StatusOK, gin.H{"level": level})
}

// GET /api/progression/quests
func (h *ProgressionHandler) GetQuests(c *gin.Context) {
	userID, authHeader := caller(c)
	status := h.service.Status(c.Request.Context(), userID, authHeader)
	c.JSON(http.StatusOK, gin.H{
		"quests":    status.Quests,
		"suggested": status.SuggestedQuests,
	})
}

// GET /api/quests/catalog
func (h *ProgressionHandler) GetCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"orientation_test": gin.H{
			"id":    models.CompleteTestQuestID,
			"label": models.QuestLabel(models.CompleteTestQuestID),
		},
		"quests":       models.QuestCatalog(),
		"perks":        models.PerkCatalog(),
		"max_level":    models.MaxLevel,
		"xp_per_level": models.XPPerLevel,
	})
}

func levelParam(c *gin.Context) (int, bool) {
	level, err := strconv.Atoi(c.Param("level"))
	if err != nil || level < 1 || level > models.MaxLevel {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid level"})
		return 0, false
	}
	return level, true
}

// bindOptionalJSON accepts an empty body; a present body must be valid.
func bindOptionalJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	if err := models.Validate(dest); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

func handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrValidation), errors.Is(err, models.ErrInvalidID):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrLevelLocked):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrStaleRevision):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update progression"})
	}
}
