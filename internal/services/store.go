package services

import (
	"context"
	"errors"
	"log"

	"zelia-app/internal/models"
)

type ProgressionRepository interface {
	FindByUserID(ctx context.Context, userID string) (map[string]interface{}, error)
	Save(ctx context.Context, userID string, p models.Progression) (int64, error)
}

type ProgressionCache interface {
	Get(ctx context.Context, userID string) (models.Progression, error)
	// Add stores p only when nothing is cached for userID yet.
	Add(ctx context.Context, userID string, p models.Progression) error
	Set(ctx context.Context, userID string, p models.Progression) error
	Invalidate(ctx context.Context, userID string) error
}

// ProgressionStore reads and writes progression records. Reads never fail:
// any problem degrades to the default progression.
type ProgressionStore struct {
	repo  ProgressionRepository
	cache ProgressionCache
}

// NewProgressionStore builds a store; cache may be nil.
func NewProgressionStore(repo ProgressionRepository, cache ProgressionCache) *ProgressionStore {
	return &ProgressionStore{repo: repo, cache: cache}
}

func (s *ProgressionStore) Fetch(ctx context.Context, userID string) models.Progression {
	if s.cache != nil {
		if p, err := s.cache.Get(ctx, userID); err == nil {
			return p.Clone()
		}
	}

	rec, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			log.Printf("[STORE] No progression stored for user %s, using defaults", userID)
		} else {
			log.Printf("[STORE] Failed to load progression for user %s: %v, using defaults", userID, err)
		}
		return models.DefaultProgression()
	}

	// A save racing with this read has already cached a newer revision, so
	// the record read here only fills an empty slot.
	p := models.ProgressionFromRecord(rec)
	if s.cache != nil {
		if err := s.cache.Add(ctx, userID, p); err != nil {
			log.Printf("[CACHE] Failed to cache progression for user %s: %v", userID, err)
		}
	}
	return p
}

// Save persists p and returns it with its new revision. The saved record
// replaces the cached one.
func (s *ProgressionStore) Save(ctx context.Context, userID string, p models.Progression) (models.Progression, error) {
	rev, err := s.repo.Save(ctx, userID, p)
	if err != nil {
		if errors.Is(err, models.ErrStaleRevision) {
			s.invalidate(ctx, userID)
		}
		return models.Progression{}, err
	}

	saved := p.Clone()
	saved.Revision = rev
	if s.cache != nil {
		if err := s.cache.Set(ctx, userID, saved); err != nil {
			log.Printf("[CACHE] Failed to cache progression for user %s: %v", userID, err)
			s.invalidate(ctx, userID)
		}
	}
	return saved, nil
}

func (s *ProgressionStore) invalidate(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		log.Printf("[CACHE] Failed to invalidate progression of user %s: %v", userID, err)
	}
}
