package drift

import (
	"math"
	"testing"
	"time"

	"bridgefeed/internal/models"
	"bridgefeed/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func react(st *store.State, userID uint, kind models.TargetType, id uint, rt models.ReactionType) {
	st.AppendReaction(models.Reaction{UserID: userID, TargetType: kind, TargetID: id, Type: rt})
}

func profileOf(t *testing.T, st *store.State, id uint) models.Profile {
	t.Helper()
	u, ok := st.User(id)
	require.True(t, ok)
	return u.Profile
}

func TestPass_NoPositiveReactionsLeavesProfile(t *testing.T) {
	t.Parallel()

	now := time.Now()
	st := store.NewState()
	author := st.AddUser("author", models.UniformProfile(1), now)
	reader := st.AddUser("reader", models.NewProfile(-0.4, 0.2, 0.0), now)
	post := st.AddPost(author.ID, "p", "", now)
	react(st, reader.ID, models.TargetPost, post.ID, models.ReactionAngry)
	react(st, reader.ID, models.TargetPost, post.ID, models.ReactionLaugh)

	res := NewEngine().Pass(st)

	assert.Equal(t, 0, res.Moved)
	assert.Equal(t, models.NewProfile(-0.4, 0.2, 0.0), profileOf(t, st, reader.ID))
	assert.Equal(t, models.UniformProfile(1), profileOf(t, st, author.ID))
}

func TestPass_MovesTenPercentTowardMean(t *testing.T) {
	t.Parallel()

	now := time.Now()
	st := store.NewState()
	right := st.AddUser("right", models.UniformProfile(1), now)
	center := st.AddUser("center", models.NewProfile(0, 0.5, -0.5), now)
	reader := st.AddUser("reader", models.UniformProfile(-1), now)

	p1 := st.AddPost(right.ID, "r", "", now)
	c1 := st.AddComment(p1.ID, center.ID, "c", now)
	react(st, reader.ID, models.TargetPost, p1.ID, models.ReactionLike)
	react(st, reader.ID, models.TargetComment, c1.ID, models.ReactionEmpathy)

	res := NewEngine().Pass(st)
	require.Equal(t, 1, res.Moved)

	// mean of authors: (0.5, 0.75, 0.25)
	got := profileOf(t, st, reader.ID)
	assert.InDelta(t, -1*0.9+0.5*0.1, got.LeftRight(), 1e-12)
	assert.InDelta(t, -1*0.9+0.75*0.1, got.LiberalConservative(), 1e-12)
	assert.InDelta(t, -1*0.9+0.25*0.1, got.ZionistAnti(), 1e-12)
}

func TestPass_ConvergesMonotonically(t *testing.T) {
	t.Parallel()

	now := time.Now()
	st := store.NewState()
	author := st.AddUser("author", models.UniformProfile(0.8), now)
	reader := st.AddUser("reader", models.UniformProfile(-0.6), now)
	post := st.AddPost(author.ID, "p", "", now)
	react(st, reader.ID, models.TargetPost, post.ID, models.ReactionLove)

	e := NewEngine()
	prevGap := math.Abs(0.8 - -0.6)
	for i := 0; i < 25; i++ {
		e.Pass(st)
		gap := math.Abs(0.8 - profileOf(t, st, reader.ID).LeftRight())
		assert.InDelta(t, prevGap*0.9, gap, 1e-12, "pass %d", i)
		assert.Less(t, gap, prevGap)
		prevGap = gap
	}
	// the author never reacted, so they do not move
	assert.Equal(t, models.UniformProfile(0.8), profileOf(t, st, author.ID))
}

func TestPass_UsesSnapshotForMutualReactions(t *testing.T) {
	t.Parallel()

	now := time.Now()
	st := store.NewState()
	a := st.AddUser("a", models.UniformProfile(1), now)
	b := st.AddUser("b", models.UniformProfile(-1), now)
	pa := st.AddPost(a.ID, "a", "", now)
	pb := st.AddPost(b.ID, "b", "", now)
	react(st, a.ID, models.TargetPost, pb.ID, models.ReactionLike)
	react(st, b.ID, models.TargetPost, pa.ID, models.ReactionLike)

	NewEngine().Pass(st)

	// b reads a's pre-pass profile (1), not the freshly written 0.8
	assert.InDelta(t, 0.8, profileOf(t, st, a.ID).LeftRight(), 1e-12)
	assert.InDelta(t, -0.8, profileOf(t, st, b.ID).LeftRight(), 1e-12)
}

func TestPass_SkipsDanglingReferences(t *testing.T) {
	t.Parallel()

	now := time.Now()
	st := store.NewState()
	reader := st.AddUser("reader", models.UniformProfile(0.5), now)
	orphan := st.AddPost(42, "no author", "", now)
	react(st, reader.ID, models.TargetPost, 77, models.ReactionLike)
	react(st, reader.ID, models.TargetPost, orphan.ID, models.ReactionInterested)

	res := NewEngine().Pass(st)

	assert.Equal(t, 0, res.Moved)
	assert.Equal(t, 2, res.Skipped)
	assert.Equal(t, models.UniformProfile(0.5), profileOf(t, st, reader.ID))
}

func TestPass_SelfReactionPullsTowardSelf(t *testing.T) {
	t.Parallel()

	now := time.Now()
	st := store.NewState()
	u := st.AddUser("u", models.NewProfile(0.3, -0.2, 0.9), now)
	post := st.AddPost(u.ID, "mine", "", now)
	react(st, u.ID, models.TargetPost, post.ID, models.ReactionLike)

	NewEngine().Pass(st)

	got := profileOf(t, st, u.ID)
	assert.InDelta(t, 0.3, got.LeftRight(), 1e-12)
	assert.InDelta(t, -0.2, got.LiberalConservative(), 1e-12)
	assert.InDelta(t, 0.9, got.ZionistAnti(), 1e-12)
}
