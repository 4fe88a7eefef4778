// Package drift moves user profiles toward the authors they engage with
// positively.
package drift

import (
	"bridgefeed/internal/models"
	"bridgefeed/internal/store"
)

// Damping constants of the exponential moving average. A pass moves a
// profile RetainWeight of the way from its old value and PullWeight toward
// the mean of the engaged authors.
const (
	RetainWeight = 0.9
	PullWeight   = 0.1
)

// Engine runs drift passes over a store state.
type Engine struct {
	retain float64
	pull   float64
}

// NewEngine returns an engine with the standard 0.9/0.1 weighting.
func NewEngine() *Engine {
	return &Engine{retain: RetainWeight, pull: PullWeight}
}

// Result summarizes one pass.
type Result struct {
	// Moved counts users whose profile was recomputed.
	Moved int
	// Skipped counts positive reactions whose target or author did not resolve.
	Skipped int
}

// Pass recomputes every user's profile from the full reaction log.
//
// All profiles are snapshotted before any is written, users are visited in
// id order, and author profiles are always read from the snapshot. A pass is
// therefore deterministic and independent of visiting order. Users with no
// resolvable positive reaction keep their profile.
func (e *Engine) Pass(st *store.State) Result {
	users := st.Users()
	snapshot := make(map[uint]models.Profile, len(users))
	for _, u := range users {
		snapshot[u.ID] = u.Profile
	}

	byUser := make(map[uint][]models.Reaction)
	for _, r := range st.Reactions() {
		if r.Type.IsPositive() {
			byUser[r.UserID] = append(byUser[r.UserID], r)
		}
	}

	var res Result
	for _, u := range users {
		var (
			sum   models.Profile
			count int
		)
		for _, r := range byUser[u.ID] {
			authorID, ok := st.TargetAuthor(r.TargetType, r.TargetID)
			if !ok {
				res.Skipped++
				continue
			}
			author, ok := snapshot[authorID]
			if !ok {
				res.Skipped++
				continue
			}
			for _, d := range models.Dimensions() {
				sum[d] += author.Get(d)
			}
			count++
		}
		if count == 0 {
			continue
		}

		old := snapshot[u.ID]
		var next models.Profile
		for _, d := range models.Dimensions() {
			mean := sum[d] / float64(count)
			next.Set(d, old.Get(d)*e.retain+mean*e.pull)
		}
		u.Profile = next
		res.Moved++
	}
	return res
}
