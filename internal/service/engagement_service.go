// Package service implements the request-layer operations over the
// in-memory store.
package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"bridgefeed/internal/archive"
	"bridgefeed/internal/cache"
	"bridgefeed/internal/engagement"
	"bridgefeed/internal/featureflags"
	"bridgefeed/internal/models"
	"bridgefeed/internal/notifications"
	"bridgefeed/internal/observability"
	"bridgefeed/internal/seed"
	"bridgefeed/internal/store"
)

const (
	maxNameLen    = 100
	maxContentLen = 5000
)

// Deps wires the service. Store, Applier and Rand are required; everything
// else may be nil. Nil Flags means the development defaults.
type Deps struct {
	Store      *store.Store
	Applier    *engagement.Applier
	Rand       seed.Rand
	Now        func() time.Time
	Population *seed.Population
	Stats      *cache.StatsCache
	Notifier   *notifications.Notifier
	Flags      *featureflags.Manager
	Archiver   *archive.Archiver
}

// EngagementService owns every operation exposed to the request layer.
type EngagementService struct {
	store    *store.Store
	applier  *engagement.Applier
	now      func() time.Time
	pop      *seed.Population
	stats    *cache.StatsCache
	notifier *notifications.Notifier
	flags    *featureflags.Manager
	archiver *archive.Archiver
	logger   *observability.StoreLogger

	// rng is shared by profile sampling and demo generation and is not
	// safe for concurrent use on its own.
	rngMu sync.Mutex
	rng   seed.Rand
}

func NewEngagementService(d Deps) *EngagementService {
	now := d.Now
	if now == nil {
		now = time.Now
	}
	flags := d.Flags
	if flags == nil {
		flags = featureflags.NewManager("", featureflags.Defaults(false))
	}
	return &EngagementService{
		store:    d.Store,
		applier:  d.Applier,
		now:      now,
		pop:      d.Population,
		stats:    d.Stats,
		notifier: d.Notifier,
		flags:    flags,
		archiver: d.Archiver,
		logger:   observability.NewStoreLogger("memory"),
		rng:      d.Rand,
	}
}

type CreateUserInput struct {
	Name    string
	Profile *models.Profile
}

// CreateUser registers a user. Without an explicit profile every dimension
// is sampled uniformly from [-1, 1].
func (s *EngagementService) CreateUser(ctx context.Context, in CreateUserInput) (*models.User, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, models.NewValidationError("Name is required")
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		return nil, models.NewValidationError("Name too long (max 100 characters)")
	}

	var profile models.Profile
	if in.Profile != nil {
		if err := in.Profile.Validate(); err != nil {
			return nil, models.NewValidationError("Invalid profile: " + err.Error())
		}
		profile = *in.Profile
	} else {
		s.rngMu.Lock()
		profile = seed.SampleProfile(s.rng)
		s.rngMu.Unlock()
	}

	var out *models.User
	_ = s.store.Update(func(st *store.State) error {
		out = st.AddUser(name, profile, s.now()).Clone()
		return nil
	})
	s.logger.LogCreate(ctx, "user", map[string]interface{}{"user_id": out.ID})
	return out, nil
}

// ListUsers returns every user in id order.
func (s *EngagementService) ListUsers(ctx context.Context) ([]*models.User, error) {
	var out []*models.User
	err := s.store.View(func(st *store.State) error {
		users := st.Users()
		out = make([]*models.User, 0, len(users))
		for _, u := range users {
			out = append(out, u.Clone())
		}
		return nil
	})
	return out, err
}

// GetUser returns one user or a not-found error.
func (s *EngagementService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var out *models.User
	err := s.store.View(func(st *store.State) error {
		u, ok := st.User(id)
		if !ok {
			return models.NewNotFoundError("User", id)
		}
		out = u.Clone()
		return nil
	})
	return out, err
}

type CreatePostInput struct {
	AuthorID uint
	Content  string
}

// CreatePost stores a post. The author is not checked: an unknown author id
// is recorded and shows an empty author name.
func (s *EngagementService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if in.AuthorID == 0 {
		return nil, models.NewValidationError("author_id is required")
	}
	content, err := validContent(in.Content)
	if err != nil {
		return nil, err
	}

	var (
		out      *models.Post
		dangling bool
	)
	_ = s.store.Update(func(st *store.State) error {
		p := st.AddPost(in.AuthorID, content, "", s.now())
		out = postView(st, p)
		_, found := st.User(in.AuthorID)
		dangling = !found
		return nil
	})
	if dangling {
		s.danglingRef(ctx, "post", "author", map[string]interface{}{"post_id": out.ID, "author_id": in.AuthorID})
	}
	s.logger.LogCreate(ctx, "post", map[string]interface{}{"post_id": out.ID})
	return out, nil
}

// ListPosts returns posts by descending diversity score, ties in id order.
func (s *EngagementService) ListPosts(ctx context.Context) ([]*models.Post, error) {
	var out []*models.Post
	err := s.store.View(func(st *store.State) error {
		posts := st.Posts()
		out = make([]*models.Post, 0, len(posts))
		for _, p := range posts {
			out = append(out, postView(st, p))
		}
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].DiversityScore > out[j].DiversityScore })
	return out, err
}

type CreateCommentInput struct {
	PostID   uint
	AuthorID uint
	Content  string
}

// CreateComment stores a comment. Neither the post nor the author is checked.
func (s *EngagementService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	if in.PostID == 0 {
		return nil, models.NewValidationError("post_id is required")
	}
	if in.AuthorID == 0 {
		return nil, models.NewValidationError("author_id is required")
	}
	content, err := validContent(in.Content)
	if err != nil {
		return nil, err
	}

	var (
		out              *models.Comment
		noPost, noAuthor bool
	)
	_ = s.store.Update(func(st *store.State) error {
		c := st.AddComment(in.PostID, in.AuthorID, content, s.now())
		out = commentView(st, c)
		_, hasPost := st.Post(in.PostID)
		_, hasAuthor := st.User(in.AuthorID)
		noPost, noAuthor = !hasPost, !hasAuthor
		return nil
	})
	fields := map[string]interface{}{"comment_id": out.ID, "post_id": in.PostID, "author_id": in.AuthorID}
	if noPost {
		s.danglingRef(ctx, "comment", "post", fields)
	}
	if noAuthor {
		s.danglingRef(ctx, "comment", "author", fields)
	}
	s.logger.LogCreate(ctx, "comment", map[string]interface{}{"comment_id": out.ID})
	return out, nil
}

// ListComments returns a post's comments by descending diversity score.
func (s *EngagementService) ListComments(ctx context.Context, postID uint) ([]*models.Comment, error) {
	var out []*models.Comment
	err := s.store.View(func(st *store.State) error {
		comments := st.CommentsForPost(postID)
		out = make([]*models.Comment, 0, len(comments))
		for _, c := range comments {
			out = append(out, commentView(st, c))
		}
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].DiversityScore > out[j].DiversityScore })
	return out, err
}

// Stats returns the aggregate counters, served from Redis when cached for
// the current store generation.
func (s *EngagementService) Stats(ctx context.Context) (models.Stats, error) {
	return s.stats.Get(ctx, s.store.Generation(), func() models.Stats {
		var st models.Stats
		_ = s.store.View(func(state *store.State) error {
			st = state.Stats()
			return nil
		})
		return st
	}), nil
}

// Reset clears every entity and restarts all id namespaces.
func (s *EngagementService) Reset(ctx context.Context) error {
	if !s.flags.Enabled(featureflags.DemoTools) {
		return models.NewForbiddenError("Demo tools are disabled")
	}
	s.store.Reset(ctx)
	return nil
}

func (s *EngagementService) danglingRef(ctx context.Context, entity, kind string, fields map[string]interface{}) {
	observability.DanglingReferences.WithLabelValues(kind).Inc()
	fields["missing"] = kind
	s.logger.LogDangling(ctx, entity, fields)
}

func validContent(raw string) (string, error) {
	content := strings.TrimSpace(raw)
	if content == "" {
		return "", models.NewValidationError("Content is required")
	}
	if utf8.RuneCountInString(content) > maxContentLen {
		return "", models.NewValidationError("Content too long (max 5000 characters)")
	}
	return content, nil
}

func postView(st *store.State, p *models.Post) *models.Post {
	out := p.Clone()
	out.AuthorName = st.AuthorName(p.AuthorID)
	return out
}

func commentView(st *store.State, c *models.Comment) *models.Comment {
	out := c.Clone()
	out.AuthorName = st.AuthorName(c.AuthorID)
	return out
}
