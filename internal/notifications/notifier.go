// Package notifications fans engagement events out over Redis pub/sub.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"time"

	"bridgefeed/internal/models"
	"bridgefeed/internal/observability"

	"github.com/redis/go-redis/v9"
)

const (
	ReactionsChannel = "bridgefeed:reactions"
	ScoresChannel    = "bridgefeed:scores"
)

// ReactionEvent is published for every recorded reaction.
type ReactionEvent struct {
	UserID         uint                `json:"user_id"`
	TargetType     models.TargetType   `json:"target_type"`
	TargetID       uint                `json:"target_id"`
	ReactionType   models.ReactionType `json:"reaction_type"`
	TargetResolved bool                `json:"target_resolved"`
	Timestamp      time.Time           `json:"timestamp"`
}

// ScoreEvent is published when a target's diversity score is recomputed.
type ScoreEvent struct {
	TargetType     models.TargetType `json:"target_type"`
	TargetID       uint              `json:"target_id"`
	DiversityScore float64           `json:"diversity_score"`
	UsersDrifted   int               `json:"users_drifted"`
}

// Notifier provides helpers to publish events into Redis channels
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
// A nil client makes every publish a no-op.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishReaction sends a reaction event to the reactions channel.
func (n *Notifier) PublishReaction(ctx context.Context, ev ReactionEvent) error {
	return n.publish(ctx, ReactionsChannel, ev)
}

// PublishScore sends a score update to the scores channel.
func (n *Notifier) PublishScore(ctx context.Context, ev ScoreEvent) error {
	return n.publish(ctx, ScoresChannel, ev)
}

func (n *Notifier) publish(ctx context.Context, channel string, v interface{}) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", channel, err)
	}
	return n.rdb.Publish(ctx, channel, payload).Err()
}

// StartSubscriber subscribes to both event channels and calls onMessage for
// each incoming message until ctx is cancelled. The subscription is confirmed
// before it returns.
func (n *Notifier) StartSubscriber(
	ctx context.Context, onMessage func(channel string, payload string),
) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	sub := n.rdb.Subscribe(ctx, ReactionsChannel, ScoresChannel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe: %w", err)
	}
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							observability.Logger.Error("panic in event subscriber",
								"panic", r, "stack", string(debug.Stack()))
						}
					}()
					onMessage(msg.Channel, msg.Payload)
				}()
			}
		}
	}()

	return nil
}
