// Package archive exports store snapshots into a relational database. The
// archive is write-only: the live store never reads it back.
package archive

import (
	"context"
	"fmt"
	"time"

	"bridgefeed/internal/models"
	"bridgefeed/internal/observability"
	"bridgefeed/internal/store"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

const batchSize = 200

// Snapshot is a detached copy of the store taken under its read lock.
type Snapshot struct {
	TakenAt   time.Time
	Users     []models.User
	Posts     []models.Post
	Comments  []models.Comment
	Reactions []models.Reaction
	Stats     models.Stats
}

// SnapshotOf copies st. The caller must hold at least the read lock.
func SnapshotOf(st *store.State, at time.Time) Snapshot {
	snap := Snapshot{TakenAt: at, Stats: st.Stats()}
	for _, u := range st.Users() {
		snap.Users = append(snap.Users, *u.Clone())
	}
	for _, p := range st.Posts() {
		snap.Posts = append(snap.Posts, *p.Clone())
	}
	for _, c := range st.Comments() {
		snap.Comments = append(snap.Comments, *c.Clone())
	}
	snap.Reactions = append([]models.Reaction(nil), st.Reactions()...)
	return snap
}

// Archiver writes snapshots to a gorm database.
type Archiver struct {
	db     *gorm.DB
	logger *observability.StoreLogger
}

// New returns an archiver over db. Call Migrate once before Write.
func New(db *gorm.DB) *Archiver {
	return &Archiver{db: db, logger: observability.NewStoreLogger("archive")}
}

// Migrate creates or updates the archive tables.
func (a *Archiver) Migrate(ctx context.Context) error {
	if err := a.db.WithContext(ctx).AutoMigrate(Tables()...); err != nil {
		return fmt.Errorf("migrate archive tables: %w", err)
	}
	return nil
}

// Write stores snap under a fresh run id in one transaction.
func (a *Archiver) Write(ctx context.Context, snap Snapshot) (*Run, error) {
	span, ctx := observability.StartSpan(ctx, "archive.write",
		attribute.Int("users", len(snap.Users)),
		attribute.Int("posts", len(snap.Posts)),
		attribute.Int("reactions", len(snap.Reactions)),
	)
	defer span.End()

	run := &Run{
		ID:                uuid.NewString(),
		TakenAt:           snap.TakenAt,
		Users:             snap.Stats.TotalUsers,
		Posts:             snap.Stats.TotalPosts,
		Comments:          snap.Stats.TotalComments,
		Reactions:         snap.Stats.TotalReactions,
		AvgDiversityScore: snap.Stats.AvgDiversityScore,
	}

	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(run).Error; err != nil {
			return fmt.Errorf("create run: %w", err)
		}
		if rows := usersOf(run.ID, snap); len(rows) > 0 {
			if err := tx.CreateInBatches(rows, batchSize).Error; err != nil {
				return fmt.Errorf("archive users: %w", err)
			}
		}
		if rows := postsOf(run.ID, snap); len(rows) > 0 {
			if err := tx.CreateInBatches(rows, batchSize).Error; err != nil {
				return fmt.Errorf("archive posts: %w", err)
			}
		}
		if rows := commentsOf(run.ID, snap); len(rows) > 0 {
			if err := tx.CreateInBatches(rows, batchSize).Error; err != nil {
				return fmt.Errorf("archive comments: %w", err)
			}
		}
		if rows := reactionsOf(run.ID, snap); len(rows) > 0 {
			if err := tx.CreateInBatches(rows, batchSize).Error; err != nil {
				return fmt.Errorf("archive reactions: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		observability.ArchiveRuns.WithLabelValues("error").Inc()
		span.SetError(err)
		a.logger.LogError(ctx, err, "archive_run", "write")
		return nil, err
	}

	observability.ArchiveRuns.WithLabelValues("ok").Inc()
	a.logger.LogCreate(ctx, "archive_run", map[string]interface{}{
		"run_id":    run.ID,
		"users":     run.Users,
		"posts":     run.Posts,
		"reactions": run.Reactions,
	})
	return run, nil
}

// Runs lists archived runs, newest first.
func (a *Archiver) Runs(ctx context.Context, limit int) ([]Run, error) {
	var runs []Run
	err := a.db.WithContext(ctx).Order("taken_at DESC").Limit(limit).Find(&runs).Error
	return runs, err
}

func usersOf(runID string, snap Snapshot) []User {
	rows := make([]User, 0, len(snap.Users))
	for _, u := range snap.Users {
		rows = append(rows, User{
			RunID:               runID,
			UserID:              u.ID,
			Name:                u.Name,
			LeftRight:           u.Profile.LeftRight(),
			LiberalConservative: u.Profile.LiberalConservative(),
			ZionistAnti:         u.Profile.ZionistAnti(),
			JoinedAt:            u.CreatedAt,
		})
	}
	return rows
}

func postsOf(runID string, snap Snapshot) []Post {
	rows := make([]Post, 0, len(snap.Posts))
	for _, p := range snap.Posts {
		rows = append(rows, Post{
			RunID:          runID,
			PostID:         p.ID,
			AuthorID:       p.AuthorID,
			Content:        p.Content,
			Bias:           string(p.Bias),
			DiversityScore: p.DiversityScore,
			ReactionCount:  len(p.Reactions),
			PostedAt:       p.CreatedAt,
		})
	}
	return rows
}

func commentsOf(runID string, snap Snapshot) []Comment {
	rows := make([]Comment, 0, len(snap.Comments))
	for _, c := range snap.Comments {
		rows = append(rows, Comment{
			RunID:          runID,
			CommentID:      c.ID,
			PostID:         c.PostID,
			AuthorID:       c.AuthorID,
			Content:        c.Content,
			DiversityScore: c.DiversityScore,
			ReactionCount:  len(c.Reactions),
			PostedAt:       c.CreatedAt,
		})
	}
	return rows
}

func reactionsOf(runID string, snap Snapshot) []Reaction {
	rows := make([]Reaction, 0, len(snap.Reactions))
	for _, r := range snap.Reactions {
		rows = append(rows, Reaction{
			RunID:        runID,
			UserID:       r.UserID,
			TargetType:   string(r.TargetType),
			TargetID:     r.TargetID,
			ReactionType: string(r.Type),
			ReactedAt:    r.CreatedAt,
		})
	}
	return rows
}
