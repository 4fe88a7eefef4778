package simulation

import (
	"math/rand"
	"testing"

	"bridgefeed/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedRand replays fixed draws so tests can pin every branch.
type scriptedRand struct {
	floats []float64
	ints   []int
}

func (r *scriptedRand) Float64() float64 {
	v := r.floats[0]
	r.floats = r.floats[1:]
	return v
}

func (r *scriptedRand) Intn(n int) int {
	v := r.ints[0] % n
	r.ints = r.ints[1:]
	return v
}

func TestAlignment(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1.0, Alignment(models.UniformProfile(0.8), models.UniformProfile(0.8)))
	assert.Equal(t, 0.0, Alignment(models.UniformProfile(1), models.UniformProfile(-1)))
	// distance 1.8 per axis: 1 - 3*3.24/12 = 0.19
	assert.InDelta(t, 0.19, Alignment(models.UniformProfile(1), models.UniformProfile(-0.8)), 1e-12)
	// floor never goes negative
	assert.GreaterOrEqual(t, Alignment(models.UniformProfile(-1), models.UniformProfile(1)), 0.0)
}

func TestReactionProbability(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 0.9, ReactionProbability(1), 1e-12)
	assert.InDelta(t, 0.3, ReactionProbability(0), 1e-12)
	assert.InDelta(t, 0.6, ReactionProbability(0.5), 1e-12)
}

func TestReferenceProfile(t *testing.T) {
	t.Parallel()

	assert.Equal(t, models.UniformProfile(-0.8), ReferenceProfile(models.BiasLeft))
	assert.Equal(t, models.UniformProfile(0.8), ReferenceProfile(models.BiasRight))
	assert.Equal(t, models.UniformProfile(0), ReferenceProfile(models.BiasCenter))
	assert.Equal(t, models.UniformProfile(0), ReferenceProfile("unknown"))
}

func TestMaybeReact_Tiers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		profile models.Profile
		bias    models.Bias
		rng     *scriptedRand
		want    models.ReactionType
		reacts  bool
	}{
		{
			name:    "aligned user below threshold reacts with love",
			profile: models.UniformProfile(0.8),
			bias:    models.BiasRight,
			rng:     &scriptedRand{floats: []float64{0.89}, ints: []int{1}},
			want:    models.ReactionLove,
			reacts:  true,
		},
		{
			name:    "aligned user above threshold scrolls past",
			profile: models.UniformProfile(0.8),
			bias:    models.BiasRight,
			rng:     &scriptedRand{floats: []float64{0.91}},
			reacts:  false,
		},
		{
			// alignment 1 - 3*0.64/12 = 0.84
			name:    "centrist on right post is strong tier",
			profile: models.UniformProfile(0),
			bias:    models.BiasRight,
			rng:     &scriptedRand{floats: []float64{0.1}, ints: []int{2}},
			want:    models.ReactionInterested,
			reacts:  true,
		},
		{
			// 1 - 3*1.21/12 = 0.6975
			name:    "moderate tier",
			profile: models.UniformProfile(-0.3),
			bias:    models.BiasRight,
			rng:     &scriptedRand{floats: []float64{0.1}, ints: []int{2}},
			want:    models.ReactionEmpathy,
			reacts:  true,
		},
		{
			// 1 - 3*2.25/12 = 0.4375
			name:    "weak tier",
			profile: models.UniformProfile(-0.7),
			bias:    models.BiasRight,
			rng:     &scriptedRand{floats: []float64{0.1}, ints: []int{2}},
			want:    models.ReactionLaugh,
			reacts:  true,
		},
		{
			// 1 - 3*3.24/12 = 0.19
			name:    "hostile branch",
			profile: models.UniformProfile(-1),
			bias:    models.BiasRight,
			rng:     &scriptedRand{floats: []float64{0.1, 0.69}, ints: []int{0}},
			want:    models.ReactionAngry,
			reacts:  true,
		},
		{
			name:    "civil branch",
			profile: models.UniformProfile(-1),
			bias:    models.BiasRight,
			rng:     &scriptedRand{floats: []float64{0.1, 0.7}, ints: []int{1}},
			want:    models.ReactionEmpathy,
			reacts:  true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NewSimulator(tt.rng).MaybeReact(models.User{Profile: tt.profile}, tt.bias)
			require.Equal(t, tt.reacts, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMaybeReact_FullAlignmentNeverAngry(t *testing.T) {
	t.Parallel()

	sim := NewSimulator(rand.New(rand.NewSource(11)))
	user := models.User{Profile: ReferenceProfile(models.BiasLeft)}

	reacted := 0
	const draws = 5000
	for i := 0; i < draws; i++ {
		kind, ok := sim.MaybeReact(user, models.BiasLeft)
		if !ok {
			continue
		}
		reacted++
		assert.Contains(t, strongKinds, kind)
		assert.NotEqual(t, models.ReactionAngry, kind)
	}
	rate := float64(reacted) / draws
	assert.InDelta(t, 0.9, rate, 0.03)
}

func TestMaybeReact_ZeroAlignmentNeverLikeOrLove(t *testing.T) {
	t.Parallel()

	sim := NewSimulator(rand.New(rand.NewSource(5)))
	user := models.User{Profile: models.UniformProfile(1)}
	opposite := models.UniformProfile(-1)
	require.Equal(t, 0.0, Alignment(user.Profile, opposite))

	for i := 0; i < 5000; i++ {
		// left reference is -0.8, not -1; use kindsFor directly for exact zero
		kinds := kindsFor(0, sim.rng)
		assert.NotContains(t, kinds, models.ReactionLike)
		assert.NotContains(t, kinds, models.ReactionLove)
	}

	for i := 0; i < 2000; i++ {
		kind, ok := sim.MaybeReact(user, models.BiasLeft)
		if ok {
			assert.NotEqual(t, models.ReactionLike, kind)
			assert.NotEqual(t, models.ReactionLove, kind)
		}
	}
}

func TestMaybeReact_DeterministicWithSeed(t *testing.T) {
	t.Parallel()

	run := func() []models.ReactionType {
		sim := NewSimulator(rand.New(rand.NewSource(99)))
		var out []models.ReactionType
		for _, v := range []float64{-1, -0.5, 0, 0.5, 1} {
			kind, _ := sim.MaybeReact(models.User{Profile: models.UniformProfile(v)}, models.BiasCenter)
			out = append(out, kind)
		}
		return out
	}
	assert.Equal(t, run(), run())
}
