package notifications

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"bridgefeed/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifier_NilClientIsNoop(t *testing.T) {
	n := NewNotifier(nil)
	assert.NoError(t, n.PublishReaction(context.Background(), ReactionEvent{UserID: 1}))
	assert.NoError(t, n.PublishScore(context.Background(), ScoreEvent{TargetID: 1}))
	assert.NoError(t, n.StartSubscriber(context.Background(), func(string, string) {}))
}

func TestNotifier_PublishAndSubscribe(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	n := NewNotifier(rdb)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		mu       sync.Mutex
		received = map[string]string{}
	)
	require.NoError(t, n.StartSubscriber(ctx, func(channel, payload string) {
		mu.Lock()
		defer mu.Unlock()
		received[channel] = payload
	}))

	require.NoError(t, n.PublishReaction(ctx, ReactionEvent{
		UserID:         3,
		TargetType:     models.TargetPost,
		TargetID:       7,
		ReactionType:   models.ReactionLove,
		TargetResolved: true,
	}))
	require.NoError(t, n.PublishScore(ctx, ScoreEvent{
		TargetType:     models.TargetPost,
		TargetID:       7,
		DiversityScore: 16.67,
	}))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(received) == 2
	}, time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()

	var ev ReactionEvent
	require.NoError(t, json.Unmarshal([]byte(received[ReactionsChannel]), &ev))
	assert.Equal(t, uint(3), ev.UserID)
	assert.Equal(t, models.ReactionLove, ev.ReactionType)

	var score ScoreEvent
	require.NoError(t, json.Unmarshal([]byte(received[ScoresChannel]), &score))
	assert.Equal(t, 16.67, score.DiversityScore)
}

func TestNotifier_SubscriberSurvivesPanics(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	n := NewNotifier(rdb)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		mu    sync.Mutex
		calls int
	)
	require.NoError(t, n.StartSubscriber(ctx, func(string, string) {
		mu.Lock()
		calls++
		first := calls == 1
		mu.Unlock()
		if first {
			panic("boom")
		}
	}))

	require.NoError(t, n.PublishScore(ctx, ScoreEvent{TargetID: 1}))
	require.NoError(t, n.PublishScore(ctx, ScoreEvent{TargetID: 2}))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return calls == 2
	}, time.Second, 10*time.Millisecond)
}
