package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"zelia-app/internal/models"
)

type NotificationPayload struct {
	UserID  string `json:"user_id"`
	Role    string `json:"role"`
	Title   string `json:"title"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) error
}

type Notifier interface {
	LevelReached(ctx context.Context, userID string, level int, perks []string)
}

// RedisNotifier publishes level-up messages on the channel the notification
// service listens to.
type RedisNotifier struct {
	publisher Publisher
	channel   string
}

func NewRedisNotifier(publisher Publisher, channel string) *RedisNotifier {
	return &RedisNotifier{publisher: publisher, channel: channel}
}

func (n *RedisNotifier) LevelReached(ctx context.Context, userID string, level int, perks []string) {
	payload := levelUpPayload(userID, level, perks)
	if err := n.publisher.Publish(ctx, n.channel, payload); err != nil {
		log.Printf("[NOTIFY] Failed to publish level-up for user %s: %v", userID, err)
	}
}

func levelUpPayload(userID string, level int, perks []string) NotificationPayload {
	msg := fmt.Sprintf("Bravo ! Tu as atteint le niveau %d.", level)
	if len(perks) > 0 {
		labels := make([]string, 0, len(perks))
		for _, id := range perks {
			labels = append(labels, models.PerkLabel(id))
		}
		msg += " Débloqué : " + strings.Join(labels, ", ") + "."
	}
	return NotificationPayload{
		UserID:  userID,
		Role:    "user",
		Title:   "Niveau supérieur",
		Message: msg,
		Type:    "level_up",
	}
}

type nopNotifier struct{}

func (nopNotifier) LevelReached(context.Context, string, int, []string) {}
