package service

import (
	"context"

	"bridgefeed/internal/engagement"
	"bridgefeed/internal/featureflags"
	"bridgefeed/internal/models"
	"bridgefeed/internal/notifications"
	"bridgefeed/internal/observability"
	"bridgefeed/internal/store"

	"go.opentelemetry.io/otel/attribute"
)

type RecordReactionInput struct {
	UserID       uint
	TargetType   string
	TargetID     uint
	ReactionType string
}

// ReactionResult reports what a recorded reaction changed.
type ReactionResult struct {
	Status         string          `json:"status"`
	Reaction       models.Reaction `json:"reaction"`
	TargetResolved bool            `json:"target_resolved"`
	DiversityScore float64         `json:"diversity_score"`
	UsersDrifted   int             `json:"users_drifted"`
}

// RecordReaction appends a reaction, rescores its target and runs a drift
// pass over every user. A target or user that does not exist is recorded
// but affects no score.
func (s *EngagementService) RecordReaction(ctx context.Context, in RecordReactionInput) (*ReactionResult, error) {
	if in.UserID == 0 {
		return nil, models.NewValidationError("user_id is required")
	}
	if in.TargetID == 0 {
		return nil, models.NewValidationError("target_id is required")
	}
	targetType, err := models.ParseTargetType(in.TargetType)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	reactionType, err := models.ParseReactionType(in.ReactionType)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	span, ctx := observability.StartSpan(ctx, "engagement.record_reaction",
		attribute.String("target_type", string(targetType)),
		attribute.Int64("target_id", int64(in.TargetID)),
		attribute.String("reaction_type", string(reactionType)),
	)
	defer span.End()

	r := models.Reaction{
		UserID:     in.UserID,
		TargetType: targetType,
		TargetID:   in.TargetID,
		Type:       reactionType,
		CreatedAt:  s.now(),
	}

	var outcome engagement.Outcome
	_ = s.store.Update(func(st *store.State) error {
		outcome = s.applier.Apply(ctx, st, r, engagement.SourceLive)
		return nil
	})
	span.AddAttributes(
		attribute.Bool("target_resolved", outcome.TargetResolved),
		attribute.Float64("diversity_score", outcome.Score),
		attribute.Int("users_drifted", outcome.Drift.Moved),
	)

	s.publish(ctx, r, outcome)

	return &ReactionResult{
		Status:         "success",
		Reaction:       r,
		TargetResolved: outcome.TargetResolved,
		DiversityScore: outcome.Score,
		UsersDrifted:   outcome.Drift.Moved,
	}, nil
}

// publish fans the event out. Failures are logged and never fail the request.
func (s *EngagementService) publish(ctx context.Context, r models.Reaction, outcome engagement.Outcome) {
	if s.notifier == nil || !s.flags.EnabledFor(featureflags.ReactionEvents, r.UserID) {
		return
	}
	if err := s.notifier.PublishReaction(ctx, notifications.ReactionEvent{
		UserID:         r.UserID,
		TargetType:     r.TargetType,
		TargetID:       r.TargetID,
		ReactionType:   r.Type,
		TargetResolved: outcome.TargetResolved,
		Timestamp:      r.CreatedAt,
	}); err != nil {
		s.logger.LogError(ctx, err, "reaction", "publish")
	}
	if !outcome.TargetResolved {
		return
	}
	if err := s.notifier.PublishScore(ctx, notifications.ScoreEvent{
		TargetType:     r.TargetType,
		TargetID:       r.TargetID,
		DiversityScore: outcome.Score,
		UsersDrifted:   outcome.Drift.Moved,
	}); err != nil {
		s.logger.LogError(ctx, err, "score", "publish")
	}
}
