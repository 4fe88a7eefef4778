// Package simulation decides, probabilistically, whether and how a synthetic
// user reacts to a post of a given political lean.
package simulation

import (
	"math"

	"bridgefeed/internal/models"
)

// Rand is the source of randomness the simulator draws from. *rand.Rand
// satisfies it; tests inject scripted sources.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

// Probability bounds: a fully misaligned user reacts with BaseProbability,
// a fully aligned one with BaseProbability+AlignmentProbability.
const (
	BaseProbability      = 0.3
	AlignmentProbability = 0.6

	// HostileShare is the chance that a low-alignment reaction is hostile.
	HostileShare = 0.7
)

// Alignment tier thresholds, compared with strict greater-than.
const (
	TierStrong   = 0.7
	TierModerate = 0.5
	TierWeak     = 0.3
)

var referenceProfiles = map[models.Bias]models.Profile{
	models.BiasLeft:   models.UniformProfile(-0.8),
	models.BiasCenter: models.UniformProfile(0),
	models.BiasRight:  models.UniformProfile(0.8),
}

var (
	strongKinds   = []models.ReactionType{models.ReactionLike, models.ReactionLove, models.ReactionInterested}
	moderateKinds = []models.ReactionType{models.ReactionLike, models.ReactionInterested, models.ReactionEmpathy}
	weakKinds     = []models.ReactionType{models.ReactionInterested, models.ReactionEmpathy, models.ReactionLaugh}
	hostileKinds  = []models.ReactionType{models.ReactionAngry, models.ReactionLaugh}
	civilKinds    = []models.ReactionType{models.ReactionInterested, models.ReactionEmpathy}
)

// ReferenceProfile returns the canonical position of a bias label. Unknown
// labels fall back to the center.
func ReferenceProfile(bias models.Bias) models.Profile {
	if p, ok := referenceProfiles[bias]; ok {
		return p
	}
	return referenceProfiles[models.BiasCenter]
}

// Alignment is 1 minus the normalized squared distance between two profiles,
// floored at 0.
func Alignment(a, b models.Profile) float64 {
	var sq float64
	for _, d := range models.Dimensions() {
		diff := a.Get(d) - b.Get(d)
		sq += diff * diff
	}
	return math.Max(0, 1-sq/(models.DimensionCount*4))
}

// ReactionProbability maps an alignment in [0, 1] to a chance to react.
func ReactionProbability(alignment float64) float64 {
	return BaseProbability + alignment*AlignmentProbability
}

// Simulator draws reactions from an injected random source. It is not safe
// for concurrent use.
type Simulator struct {
	rng Rand
}

// NewSimulator returns a simulator drawing from rng.
func NewSimulator(rng Rand) *Simulator {
	return &Simulator{rng: rng}
}

// MaybeReact returns the reaction user gives to a post with the given bias,
// or false when the user scrolls past.
func (s *Simulator) MaybeReact(user models.User, bias models.Bias) (models.ReactionType, bool) {
	alignment := Alignment(user.Profile, ReferenceProfile(bias))
	if s.rng.Float64() > ReactionProbability(alignment) {
		return "", false
	}
	return s.pick(kindsFor(alignment, s.rng)), true
}

// kindsFor picks the reaction set for an alignment tier. Only the lowest tier
// consumes randomness.
func kindsFor(alignment float64, rng Rand) []models.ReactionType {
	switch {
	case alignment > TierStrong:
		return strongKinds
	case alignment > TierModerate:
		return moderateKinds
	case alignment > TierWeak:
		return weakKinds
	}
	if rng.Float64() < HostileShare {
		return hostileKinds
	}
	return civilKinds
}

func (s *Simulator) pick(kinds []models.ReactionType) models.ReactionType {
	return kinds[s.rng.Intn(len(kinds))]
}
