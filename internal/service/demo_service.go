package service

import (
	"context"
	"fmt"

	"bridgefeed/internal/archive"
	"bridgefeed/internal/featureflags"
	"bridgefeed/internal/models"
	"bridgefeed/internal/observability"
	"bridgefeed/internal/seed"
	"bridgefeed/internal/store"

	"go.opentelemetry.io/otel/attribute"
)

type GenerateDemoInput struct {
	ExtraUsers int
}

const maxExtraUsers = 500

// GenerateDemo replaces the whole store with a freshly simulated demo
// population. On failure the previous state is kept.
func (s *EngagementService) GenerateDemo(ctx context.Context, in GenerateDemoInput) (models.Stats, error) {
	if !s.flags.Enabled(featureflags.DemoTools) {
		return models.Stats{}, models.NewForbiddenError("Demo tools are disabled")
	}
	if in.ExtraUsers < 0 || in.ExtraUsers > maxExtraUsers {
		return models.Stats{}, models.NewValidationError(fmt.Sprintf("extra_users must be between 0 and %d", maxExtraUsers))
	}

	span, ctx := observability.StartSpan(ctx, "demo.generate", attribute.Int("extra_users", in.ExtraUsers))
	defer span.End()

	pop := s.pop
	if pop == nil {
		var err error
		if pop, err = seed.DefaultPopulation(); err != nil {
			observability.PopulationGenerations.WithLabelValues("error").Inc()
			span.SetError(err)
			return models.Stats{}, models.NewInternalError(err)
		}
	}

	s.rngMu.Lock()
	gen := seed.NewGenerator(pop, s.rng, s.applier, seed.Options{ExtraUsers: in.ExtraUsers, Now: s.now})
	next, err := gen.Generate(ctx)
	s.rngMu.Unlock()
	if err != nil {
		observability.PopulationGenerations.WithLabelValues("error").Inc()
		span.SetError(err)
		s.logger.LogError(ctx, err, "population", "generate")
		return models.Stats{}, models.NewInternalError(err)
	}

	_, stats := s.store.Swap(ctx, next)
	observability.PopulationGenerations.WithLabelValues("ok").Inc()

	span.AddAttributes(
		attribute.Int("users", stats.TotalUsers),
		attribute.Int("reactions", stats.TotalReactions),
	)
	return stats, nil
}

// ArchiveSnapshot copies the current store into the archive database.
func (s *EngagementService) ArchiveSnapshot(ctx context.Context) (*archive.Run, error) {
	if s.archiver == nil {
		return nil, models.NewForbiddenError("Archive is not configured")
	}

	var snap archive.Snapshot
	_ = s.store.View(func(st *store.State) error {
		snap = archive.SnapshotOf(st, s.now())
		return nil
	})

	run, err := s.archiver.Write(ctx, snap)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return run, nil
}

// ArchiveEnabled reports whether an archive database is wired.
func (s *EngagementService) ArchiveEnabled() bool {
	return s.archiver != nil
}
