// Package engagement applies a reaction to a store state: the single path
// shared by live requests and the demo generator.
package engagement

import (
	"context"

	"bridgefeed/internal/diversity"
	"bridgefeed/internal/drift"
	"bridgefeed/internal/models"
	"bridgefeed/internal/observability"
	"bridgefeed/internal/store"
)

// Reaction sources, used as a metric label.
const (
	SourceLive      = "live"
	SourceSimulated = "simulated"
)

// Outcome reports what applying one reaction changed.
type Outcome struct {
	// TargetResolved is false when the post or comment does not exist. The
	// reaction is still in the log.
	TargetResolved bool
	// UserResolved is false when the reacting user does not exist.
	UserResolved bool
	// Score is the target's recomputed diversity score.
	Score float64
	// Drift summarizes the pass that followed.
	Drift drift.Result
}

// Applier records reactions and keeps scores and profiles in step with the
// reaction log.
type Applier struct {
	engine *drift.Engine
	logger *observability.StoreLogger
}

// NewApplier returns an applier that uses engine for drift passes.
func NewApplier(engine *drift.Engine) *Applier {
	return &Applier{
		engine: engine,
		logger: observability.NewStoreLogger("engagement"),
	}
}

// Apply appends r to the log and the user's history, appends a summary to
// the target, rescores it and then runs one drift pass over every user.
// Unresolved users or targets are recorded and skipped by the dependent
// computations. The caller must hold the store's write lock.
func (a *Applier) Apply(ctx context.Context, st *store.State, r models.Reaction, source string) Outcome {
	var out Outcome

	st.AppendReaction(r)
	observability.ReactionsRecorded.WithLabelValues(string(r.TargetType), string(r.Type), source).Inc()

	if u, ok := st.User(r.UserID); ok {
		u.Reactions = append(u.Reactions, r)
		out.UserResolved = true
	} else {
		a.dangling(ctx, "user", r)
	}

	summary := models.ReactionSummary{UserID: r.UserID, Type: r.Type}
	switch r.TargetType {
	case models.TargetPost:
		if p, ok := st.Post(r.TargetID); ok {
			p.Reactions = append(p.Reactions, summary)
			p.DiversityScore = diversity.ScoreTarget(st, models.TargetPost, p.ID)
			out.TargetResolved, out.Score = true, p.DiversityScore
		}
	case models.TargetComment:
		if c, ok := st.Comment(r.TargetID); ok {
			c.Reactions = append(c.Reactions, summary)
			c.DiversityScore = diversity.ScoreTarget(st, models.TargetComment, c.ID)
			out.TargetResolved, out.Score = true, c.DiversityScore
		}
	}

	if out.TargetResolved {
		observability.DiversityScores.WithLabelValues(string(r.TargetType)).Observe(out.Score)
		authorID, _ := st.TargetAuthor(r.TargetType, r.TargetID)
		if _, ok := st.User(authorID); !ok {
			a.dangling(ctx, "author", r)
		}
	} else {
		a.dangling(ctx, "target", r)
	}

	done := observability.TrackDriftPass()
	out.Drift = a.engine.Pass(st)
	done(out.Drift.Moved)
	return out
}

func (a *Applier) dangling(ctx context.Context, kind string, r models.Reaction) {
	observability.DanglingReferences.WithLabelValues(kind).Inc()
	a.logger.LogDangling(ctx, "reaction", map[string]interface{}{
		"missing":     kind,
		"user_id":     r.UserID,
		"target_type": r.TargetType,
		"target_id":   r.TargetID,
	})
}
