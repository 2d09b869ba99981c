package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"zelia-app/internal/models"
)

type SubscriptionClient interface {
	GetMySubscriptions(ctx context.Context, authHeader string) ([]models.Subscription, error)
}

type EntitlementCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
}

// AccessService answers paywall questions for a user. Payment status comes
// from the subscription service and is cached briefly.
type AccessService struct {
	subs          SubscriptionClient
	cache         EntitlementCache
	ttl           time.Duration
	paidGateLevel int
	now           func() time.Time
}

// NewAccessService builds the service; cache may be nil.
func NewAccessService(subs SubscriptionClient, cache EntitlementCache, ttl time.Duration, paidGateLevel int) *AccessService {
	if paidGateLevel <= 0 {
		paidGateLevel = models.DefaultPaidGateLevel
	}
	return &AccessService{
		subs:          subs,
		cache:         cache,
		ttl:           ttl,
		paidGateLevel: paidGateLevel,
		now:           time.Now,
	}
}

func (s *AccessService) PaidGateLevel() int {
	return s.paidGateLevel
}

func entitlementKey(userID string) string {
	return fmt.Sprintf("entitlement:%s", userID)
}

// HasPaid reports whether the user holds an active subscription. An
// unreachable subscription service counts as unpaid.
func (s *AccessService) HasPaid(ctx context.Context, userID, authHeader string) bool {
	if s.cache != nil {
		var paid bool
		if err := s.cache.Get(ctx, entitlementKey(userID), &paid); err == nil {
			return paid
		}
	}

	subs, err := s.subs.GetMySubscriptions(ctx, authHeader)
	if err != nil {
		log.Printf("[ACCESS] Could not check subscriptions for user %s: %v", userID, err)
		return false
	}
	paid := models.HasActiveSubscription(subs, s.now())

	if s.cache != nil {
		if err := s.cache.Set(ctx, entitlementKey(userID), paid, s.ttl); err != nil {
			log.Printf("[CACHE] Failed to cache entitlement for user %s: %v", userID, err)
		}
	}
	return paid
}

func (s *AccessService) Evaluate(p models.Progression, targetLevel int, hasPaid bool) models.AccessDecision {
	return models.EvaluateAccess(models.AccessRequest{
		TargetLevel:   targetLevel,
		Progression:   p,
		HasPaid:       hasPaid,
		PaidGateLevel: s.paidGateLevel,
	})
}

func (s *AccessService) NextPlayableLevel(p models.Progression, hasPaid bool) int {
	return models.ComputeNextPlayableLevel(p, hasPaid, s.paidGateLevel)
}

func (s *AccessService) AccessibleLevels(p models.Progression, hasPaid bool) []int {
	return models.AccessibleLevels(p, hasPaid, s.paidGateLevel)
}
