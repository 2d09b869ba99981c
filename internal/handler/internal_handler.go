package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"zelia-app/internal/models"
	"zelia-app/internal/services"
)

type InternalProgressionService interface {
	Get(ctx context.Context, userID string) models.Progression
	Replace(ctx context.Context, userID string, p models.Progression) (models.Progression, error)
	AwardXP(ctx context.Context, userID string, amount int) (services.LevelUpResult, error)
	LevelUp(ctx context.Context, userID string, opts services.LevelUpOptions) (services.LevelUpResult, error)
}

// HealthCheck reports the state of one dependency.
type HealthCheck func(ctx context.Context) error

// InternalHandler serves the service-to-service API.
type InternalHandler struct {
	service InternalProgressionService
	checks  map[string]HealthCheck
}

func NewInternalHandler(service InternalProgressionService, checks map[string]HealthCheck) *InternalHandler {
	return &InternalHandler{service: service, checks: checks}
}

// GetProgression returns the stored record, defaults when absent.
func (h *InternalHandler) GetProgression(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userID"]
	if userID == "" {
		respondWithError(w, http.StatusBadRequest, models.ErrInvalidID)
		return
	}

	respondWithJSON(w, http.StatusOK, h.service.Get(r.Context(), userID))
}

// PutProgression replaces the stored record.
func (h *InternalHandler) PutProgression(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userID"]
	if userID == "" {
		respondWithError(w, http.StatusBadRequest, models.ErrInvalidID)
		return
	}

	p := new(models.Progression)
	if err := json.NewDecoder(r.Body).Decode(p); err != nil {
		respondWithError(w, http.StatusBadRequest, err)
		return
	}

	saved, err := h.service.Replace(r.Context(), userID, *p)
	if err != nil {
		handleInternalError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, saved)
}

// AddXP credits XP earned in another service.
func (h *InternalHandler) AddXP(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userID"]
	if userID == "" {
		respondWithError(w, http.StatusBadRequest, models.ErrInvalidID)
		return
	}

	input := new(models.AwardXPRequest)
	if err := json.NewDecoder(r.Body).Decode(input); err != nil {
		respondWithError(w, http.StatusBadRequest, err)
		return
	}
	if err := models.Validate(input); err != nil {
		respondWithError(w, http.StatusBadRequest, err)
		return
	}

	result, err := h.service.AwardXP(r.Context(), userID, input.XP)
	if err != nil {
		handleInternalError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

// LevelUp advances a user on behalf of another service, optionally straight
// to min_level. An empty body is a plain one-level step.
func (h *InternalHandler) LevelUp(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userID"]
	if userID == "" {
		respondWithError(w, http.StatusBadRequest, models.ErrInvalidID)
		return
	}

	input := new(models.InternalLevelUpRequest)
	if err := json.NewDecoder(r.Body).Decode(input); err != nil && !errors.Is(err, io.EOF) {
		respondWithError(w, http.StatusBadRequest, err)
		return
	}
	if err := models.Validate(input); err != nil {
		respondWithError(w, http.StatusBadRequest, err)
		return
	}

	result, err := h.service.LevelUp(r.Context(), userID, services.LevelUpOptions{
		MinLevel: input.MinLevel,
		XPReward: input.XPReward,
	})
	if err != nil {
		handleInternalError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

func (h *InternalHandler) Health(w http.ResponseWriter, r *http.Request) {
	status := make(map[string]string, len(h.checks))
	code := http.StatusOK
	for name, check := range h.checks {
		if err := check(r.Context()); err != nil {
			status[name] = err.Error()
			code = http.StatusServiceUnavailable
			continue
		}
		status[name] = "ok"
	}

	respondWithJSON(w, code, status)
}

// Helper functions
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, code int, err error) {
	respondWithJSON(w, code, map[string]string{"error": err.Error()})
}

func handleInternalError(w http.ResponseWriter, err error) {
	if errors.Is(err, models.ErrInvalidID) || errors.Is(err, models.ErrValidation) {
		respondWithError(w, http.StatusBadRequest, err)
		return
	}

	if errors.Is(err, models.ErrStaleRevision) {
		respondWithError(w, http.StatusConflict, err)
		return
	}

	respondWithError(w, http.StatusInternalServerError, err)
}
