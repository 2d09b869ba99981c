package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"zelia-app/internal/models"
)

var errBoom = errors.New("boom")

// memoryRepo mimics the revision check of the mongo repository.
type memoryRepo struct {
	mu      sync.Mutex
	records map[string]map[string]interface{}
	findErr error
	saves   int
	// afterFind runs once a read has released the lock.
	afterFind func()
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{records: map[string]map[string]interface{}{}}
}

func (r *memoryRepo) seed(userID string, rec map[string]interface{}) {
	r.records[userID] = rec
}

func (r *memoryRepo) FindByUserID(_ context.Context, userID string) (map[string]interface{}, error) {
	rec, err := r.find(userID)
	if r.afterFind != nil {
		r.afterFind()
	}
	return rec, err
}

func (r *memoryRepo) find(userID string) (map[string]interface{}, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	rec, ok := r.records[userID]
	if !ok {
		return nil, models.ErrNotFound
	}
	out := make(map[string]interface{}, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	return out, nil
}

func (r *memoryRepo) Save(_ context.Context, userID string, p models.Progression) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var stored int64
	if rec, ok := r.records[userID]; ok {
		stored = models.ProgressionFromRecord(rec).Revision
	}
	if stored != p.Revision {
		return 0, models.ErrStaleRevision
	}
	rec := p.Record()
	rec["revision"] = p.Revision + 1
	r.records[userID] = rec
	r.saves++
	return p.Revision + 1, nil
}

func (r *memoryRepo) stored(userID string) models.Progression {
	r.mu.Lock()
	defer r.mu.Unlock()
	return models.ProgressionFromRecord(r.records[userID])
}

type memoryCache struct {
	entries     map[string]models.Progression
	invalidated int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string]models.Progression{}}
}

func (c *memoryCache) Get(_ context.Context, userID string) (models.Progression, error) {
	p, ok := c.entries[userID]
	if !ok {
		return models.Progression{}, errors.New("cache miss")
	}
	return p.Clone(), nil
}

func (c *memoryCache) Add(_ context.Context, userID string, p models.Progression) error {
	if _, ok := c.entries[userID]; !ok {
		c.entries[userID] = p.Clone()
	}
	return nil
}

func (c *memoryCache) Set(_ context.Context, userID string, p models.Progression) error {
	c.entries[userID] = p.Clone()
	return nil
}

func (c *memoryCache) Invalidate(_ context.Context, userID string) error {
	delete(c.entries, userID)
	c.invalidated++
	return nil
}

type stubSubscriptions struct {
	subs  []models.Subscription
	err   error
	calls int
}

func (s *stubSubscriptions) GetMySubscriptions(context.Context, string) ([]models.Subscription, error) {
	s.calls++
	return s.subs, s.err
}

func paidSubscriptions() *stubSubscriptions {
	return &stubSubscriptions{subs: []models.Subscription{{ID: "sub-1", Status: models.StatusActive}}}
}

type memoryEntitlements struct {
	values map[string]bool
}

func newMemoryEntitlements() *memoryEntitlements {
	return &memoryEntitlements{values: map[string]bool{}}
}

func (e *memoryEntitlements) Get(_ context.Context, key string, dest interface{}) error {
	v, ok := e.values[key]
	if !ok {
		return errors.New("cache miss")
	}
	*dest.(*bool) = v
	return nil
}

func (e *memoryEntitlements) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	e.values[key] = value.(bool)
	return nil
}

type stubQuestionnaires struct {
	answered bool
	err      error
}

func (q stubQuestionnaires) HasResponse(context.Context, string, string) (bool, error) {
	return q.answered, q.err
}

type levelEvent struct {
	userID string
	level  int
	perks  []string
}

type recordingNotifier struct {
	events []levelEvent
}

func (n *recordingNotifier) LevelReached(_ context.Context, userID string, level int, perks []string) {
	n.events = append(n.events, levelEvent{userID: userID, level: level, perks: perks})
}

type recordingPublisher struct {
	channel  string
	messages []interface{}
	err      error
}

func (p *recordingPublisher) Publish(_ context.Context, channel string, message interface{}) error {
	p.channel = channel
	p.messages = append(p.messages, message)
	return p.err
}

type fixture struct {
	repo     *memoryRepo
	cache    *memoryCache
	subs     *stubSubscriptions
	notifier *recordingNotifier
	svc      *ProgressionService
}

func newFixture(subs *stubSubscriptions, questionnaires QuestionnaireRepository) *fixture {
	if subs == nil {
		subs = &stubSubscriptions{}
	}
	f := &fixture{
		repo:     newMemoryRepo(),
		cache:    newMemoryCache(),
		subs:     subs,
		notifier: &recordingNotifier{},
	}
	store := NewProgressionStore(f.repo, f.cache)
	access := NewAccessService(subs, nil, time.Minute, models.DefaultPaidGateLevel)
	f.svc = NewProgressionService(store, access, questionnaires, f.notifier)
	return f
}
