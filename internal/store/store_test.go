package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"bridgefeed/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestState_IDsAreSeparateNamespaces(t *testing.T) {
	t.Parallel()

	now := time.Now()
	st := NewState()
	u1 := st.AddUser("a", models.Profile{}, now)
	u2 := st.AddUser("b", models.Profile{}, now)
	p1 := st.AddPost(u1.ID, "p", models.BiasLeft, now)
	c1 := st.AddComment(p1.ID, u2.ID, "c", now)
	p2 := st.AddPost(u2.ID, "q", "", now)

	assert.Equal(t, uint(1), u1.ID)
	assert.Equal(t, uint(2), u2.ID)
	assert.Equal(t, uint(1), p1.ID)
	assert.Equal(t, uint(2), p2.ID)
	assert.Equal(t, uint(1), c1.ID)
}

func TestState_AddUserClampsProfile(t *testing.T) {
	t.Parallel()

	st := NewState()
	u := st.AddUser("x", models.Profile{3, -2, 0.5}, time.Now())
	assert.Equal(t, models.NewProfile(1, -1, 0.5), u.Profile)
}

func TestState_DanglingAuthorsAreAccepted(t *testing.T) {
	t.Parallel()

	st := NewState()
	p := st.AddPost(9, "orphan", "", time.Now())
	c := st.AddComment(40, 9, "orphan comment", time.Now())

	author, ok := st.TargetAuthor(models.TargetPost, p.ID)
	require.True(t, ok)
	assert.Equal(t, uint(9), author)
	assert.Equal(t, "", st.AuthorName(author))

	_, ok = st.TargetAuthor(models.TargetComment, c.ID)
	assert.True(t, ok)
	_, ok = st.TargetAuthor(models.TargetComment, 77)
	assert.False(t, ok)
	_, ok = st.TargetAuthor("bogus", p.ID)
	assert.False(t, ok)
}

func TestState_CommentsForPostAndReactionsFor(t *testing.T) {
	t.Parallel()

	now := time.Now()
	st := NewState()
	u := st.AddUser("u", models.Profile{}, now)
	p1 := st.AddPost(u.ID, "one", "", now)
	p2 := st.AddPost(u.ID, "two", "", now)
	st.AddComment(p1.ID, u.ID, "a", now)
	st.AddComment(p2.ID, u.ID, "b", now)
	st.AddComment(p1.ID, u.ID, "c", now)

	comments := st.CommentsForPost(p1.ID)
	require.Len(t, comments, 2)
	assert.Equal(t, "a", comments[0].Content)
	assert.Equal(t, "c", comments[1].Content)

	st.AppendReaction(models.Reaction{UserID: u.ID, TargetType: models.TargetPost, TargetID: 1, Type: models.ReactionLike})
	st.AppendReaction(models.Reaction{UserID: u.ID, TargetType: models.TargetComment, TargetID: 1, Type: models.ReactionLove})
	st.AppendReaction(models.Reaction{UserID: u.ID, TargetType: models.TargetPost, TargetID: 1, Type: models.ReactionAngry})

	got := st.ReactionsFor(models.TargetPost, 1)
	require.Len(t, got, 2)
	assert.Equal(t, models.ReactionLike, got[0].Type)
	assert.Equal(t, models.ReactionAngry, got[1].Type)
	assert.Len(t, st.Reactions(), 3)
}

func TestState_Stats(t *testing.T) {
	t.Parallel()

	st := NewState()
	assert.Equal(t, models.Stats{}, st.Stats())

	now := time.Now()
	u := st.AddUser("u", models.Profile{}, now)
	p1 := st.AddPost(u.ID, "one", "", now)
	p2 := st.AddPost(u.ID, "two", "", now)
	p1.DiversityScore = 20
	p2.DiversityScore = 5
	st.AddComment(p1.ID, u.ID, "c", now)
	st.AppendReaction(models.Reaction{UserID: u.ID, TargetType: models.TargetPost, TargetID: p1.ID, Type: models.ReactionLike})

	assert.Equal(t, models.Stats{
		TotalUsers:        1,
		TotalPosts:        2,
		TotalComments:     1,
		TotalReactions:    1,
		AvgDiversityScore: 12.5,
	}, st.Stats())
}

func TestStore_UpdateDoesNotRollBack(t *testing.T) {
	t.Parallel()

	s := New()
	boom := errors.New("boom")
	err := s.Update(func(st *State) error {
		st.AddUser("kept", models.Profile{}, time.Now())
		return boom
	})
	require.ErrorIs(t, err, boom)

	var n int
	require.NoError(t, s.View(func(st *State) error {
		n = len(st.Users())
		return nil
	}))
	assert.Equal(t, 1, n)
}

func TestStore_SwapAndReset(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := New()
	require.NoError(t, s.Update(func(st *State) error {
		st.AddUser("old", models.Profile{}, time.Now())
		return nil
	}))

	next := NewState()
	next.AddUser("n1", models.Profile{}, time.Now())
	next.AddUser("n2", models.Profile{}, time.Now())
	genBefore := s.Generation()
	prev, counts := s.Swap(ctx, next)
	assert.Len(t, prev.Users(), 1)
	assert.Equal(t, 2, counts.TotalUsers)
	assert.Greater(t, s.Generation(), genBefore)

	_ = s.View(func(st *State) error {
		assert.Len(t, st.Users(), 2)
		return nil
	})

	genBefore = s.Generation()
	s.Reset(ctx)
	assert.Greater(t, s.Generation(), genBefore)
	_ = s.View(func(st *State) error {
		assert.Equal(t, models.Stats{}, st.Stats())
		assert.Empty(t, st.Users())
		assert.Empty(t, st.Posts())
		return nil
	})

	// ids restart at 1 after a reset
	_ = s.Update(func(st *State) error {
		u := st.AddUser("fresh", models.Profile{}, time.Now())
		assert.Equal(t, uint(1), u.ID)
		return nil
	})
}

func TestStore_ConcurrentUpdatesAreSerialized(t *testing.T) {
	t.Parallel()

	s := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Update(func(st *State) error {
				st.AddUser("u", models.Profile{}, time.Now())
				return nil
			})
			_ = s.View(func(st *State) error {
				_ = st.Stats()
				return nil
			})
		}()
	}
	wg.Wait()

	_ = s.View(func(st *State) error {
		users := st.Users()
		require.Len(t, users, 50)
		for i, u := range users {
			assert.Equal(t, uint(i+1), u.ID)
		}
		return nil
	})
}
