// Package bootstrap assembles the runtime dependencies shared by the server
// and the simulate command.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"bridgefeed/internal/archive"
	"bridgefeed/internal/cache"
	"bridgefeed/internal/config"
	"bridgefeed/internal/database"
	"bridgefeed/internal/drift"
	"bridgefeed/internal/engagement"
	"bridgefeed/internal/featureflags"
	"bridgefeed/internal/notifications"
	"bridgefeed/internal/observability"
	"bridgefeed/internal/service"
	"bridgefeed/internal/store"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Runtime holds the optional external connections. DB, Archiver and Redis are
// nil when the matching feature is not configured.
type Runtime struct {
	DB       *gorm.DB
	Archiver *archive.Archiver
	Redis    *redis.Client
}

// InitRuntime connects to the archive database and Redis. A disabled archive
// or an unreachable Redis is not an error.
func InitRuntime(ctx context.Context, cfg *config.Config) (*Runtime, error) {
	rt := &Runtime{}

	db, err := database.Connect(cfg)
	switch {
	case errors.Is(err, database.ErrDisabled):
	case err != nil:
		return nil, fmt.Errorf("archive database connection failed: %w", err)
	default:
		rt.DB = db
		rt.Archiver = archive.New(db)
		if err := rt.Archiver.Migrate(ctx); err != nil {
			_ = rt.Close()
			return nil, fmt.Errorf("archive migration failed: %w", err)
		}
	}

	rt.Redis = cache.Connect(cfg.RedisURL)
	return rt, nil
}

// Close releases every open connection.
func (rt *Runtime) Close() error {
	var errs []error
	if rt.DB != nil {
		if sqlDB, err := rt.DB.DB(); err == nil {
			errs = append(errs, sqlDB.Close())
		}
	}
	if rt.Redis != nil {
		errs = append(errs, rt.Redis.Close())
	}
	return errors.Join(errs...)
}

// NewRand returns the simulation source. A zero seed means time based.
func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	observability.Logger.Info("random source seeded", "seed", seed)
	return rand.New(rand.NewSource(seed))
}

// NewFlags builds the feature flags from FEATURE_FLAGS over the environment
// defaults.
func NewFlags(cfg *config.Config) *featureflags.Manager {
	return featureflags.NewManager(cfg.FeatureFlags, featureflags.Defaults(cfg.IsProduction()))
}

// NewService wires the engagement service over a fresh store.
func NewService(cfg *config.Config, rt *Runtime, flags *featureflags.Manager) *service.EngagementService {
	var notifier *notifications.Notifier
	if rt.Redis != nil {
		notifier = notifications.NewNotifier(rt.Redis)
	}
	return service.NewEngagementService(service.Deps{
		Store:    store.New(),
		Applier:  engagement.NewApplier(drift.NewEngine()),
		Rand:     NewRand(cfg.RandomSeed),
		Stats:    cache.NewStatsCache(rt.Redis, time.Duration(cfg.StatsCacheTTLSeconds)*time.Second),
		Notifier: notifier,
		Flags:    flags,
		Archiver: rt.Archiver,
	})
}

// NewArchiveScheduler returns nil when no schedule is configured or there is
// no archive to write to.
func NewArchiveScheduler(cfg *config.Config, svc *service.EngagementService) (*archive.Scheduler, error) {
	if cfg.ArchiveSchedule == "" || !svc.ArchiveEnabled() {
		return nil, nil
	}
	return archive.NewScheduler(cfg.ArchiveSchedule, func(ctx context.Context) error {
		_, err := svc.ArchiveSnapshot(ctx)
		return err
	})
}
