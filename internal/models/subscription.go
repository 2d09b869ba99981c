package models

import "time"

type SubscriptionStatus string

const (
	StatusActive   SubscriptionStatus = "active"
	StatusExpired  SubscriptionStatus = "expired"
	StatusCanceled SubscriptionStatus = "canceled"
)

// Subscription is the subset of the subscription service record needed to
// decide whether a user has paid.
type Subscription struct {
	ID      string             `json:"id"`
	UserID  string             `json:"user_id"`
	EndDate time.Time          `json:"end_date"`
	Status  SubscriptionStatus `json:"status"`
}

// HasActiveSubscription reports whether one of subs is active and not past
// its end date at now.
func HasActiveSubscription(subs []Subscription, now time.Time) bool {
	for _, sub := range subs {
		if sub.Status != StatusActive {
			continue
		}
		if sub.EndDate.IsZero() || sub.EndDate.After(now) {
			return true
		}
	}
	return false
}
