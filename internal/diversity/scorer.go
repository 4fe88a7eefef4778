// Package diversity computes how politically varied the audience of a post or
// comment is.
package diversity

import (
	"math"
	"sort"

	"bridgefeed/internal/models"
	"bridgefeed/internal/store"
)

// MaxVariancePerDimension is the normalizer applied per dimension. Together
// with the dimension count it maps summed variance into [0, 100].
const MaxVariancePerDimension = 4.0

// Score returns the normalized sum of per-dimension population variance of
// profiles, in [0, 100], rounded to two decimals. Fewer than two profiles
// score 0. The result does not depend on the order of profiles.
func Score(profiles []models.Profile) float64 {
	if len(profiles) < 2 {
		return 0
	}

	var total float64
	values := make([]float64, len(profiles))
	for _, d := range models.Dimensions() {
		for i, p := range profiles {
			values[i] = p.Get(d)
		}
		total += variance(values)
	}

	score := total / (models.DimensionCount * MaxVariancePerDimension) * 100
	return round2(math.Min(math.Max(score, 0), 100))
}

// ReactingProfiles collects the current profile of each reacting user of one
// target, one entry per reaction in log order. Users that do not resolve are
// skipped; the second return value counts them.
func ReactingProfiles(st *store.State, kind models.TargetType, id uint) ([]models.Profile, int) {
	var (
		profiles []models.Profile
		missing  int
	)
	for _, r := range st.ReactionsFor(kind, id) {
		u, ok := st.User(r.UserID)
		if !ok {
			missing++
			continue
		}
		profiles = append(profiles, u.Profile)
	}
	return profiles, missing
}

// ScoreTarget scores the audience of one post or comment.
func ScoreTarget(st *store.State, kind models.TargetType, id uint) float64 {
	profiles, _ := ReactingProfiles(st, kind, id)
	return Score(profiles)
}

// variance is the population variance of values. Values are summed in sorted
// order so permutations of the input give bit-identical results.
func variance(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	n := float64(len(sorted))
	var sum float64
	for _, v := range sorted {
		sum += v
	}
	mean := sum / n

	var sq float64
	for _, v := range sorted {
		diff := v - mean
		sq += diff * diff
	}
	return sq / n
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
