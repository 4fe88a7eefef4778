// Package store holds the in-memory state shared by the scoring, drift and
// simulation components. A State is a plain value with indexed lookups; a
// Store owns the current State behind a single coarse lock.
package store

import (
	"time"

	"bridgefeed/internal/models"
)

// State is the full set of users, posts, comments and the reaction log.
// It is not safe for concurrent use; go through Store for that.
type State struct {
	users    map[uint]*models.User
	posts    map[uint]*models.Post
	comments map[uint]*models.Comment

	userOrder    []uint
	postOrder    []uint
	commentOrder []uint

	reactions []models.Reaction

	nextUserID    uint
	nextPostID    uint
	nextCommentID uint
}

// NewState returns an empty state whose id counters start at 1.
func NewState() *State {
	return &State{
		users:         make(map[uint]*models.User),
		posts:         make(map[uint]*models.Post),
		comments:      make(map[uint]*models.Comment),
		nextUserID:    1,
		nextPostID:    1,
		nextCommentID: 1,
	}
}

// AddUser registers a user with the next user id.
func (s *State) AddUser(name string, profile models.Profile, at time.Time) *models.User {
	u := &models.User{
		ID:        s.nextUserID,
		Name:      name,
		Profile:   profile.Clamped(),
		CreatedAt: at,
	}
	s.nextUserID++
	s.users[u.ID] = u
	s.userOrder = append(s.userOrder, u.ID)
	return u
}

// AddPost stores a post with the next post id. The author is a weak
// reference and is not checked.
func (s *State) AddPost(authorID uint, content string, bias models.Bias, at time.Time) *models.Post {
	p := &models.Post{
		ID:        s.nextPostID,
		AuthorID:  authorID,
		Content:   content,
		Bias:      bias,
		CreatedAt: at,
		Reactions: []models.ReactionSummary{},
	}
	s.nextPostID++
	s.posts[p.ID] = p
	s.postOrder = append(s.postOrder, p.ID)
	return p
}

// AddComment stores a comment with the next comment id. Neither the parent
// post nor the author is checked.
func (s *State) AddComment(postID, authorID uint, content string, at time.Time) *models.Comment {
	c := &models.Comment{
		ID:        s.nextCommentID,
		PostID:    postID,
		AuthorID:  authorID,
		Content:   content,
		CreatedAt: at,
		Reactions: []models.ReactionSummary{},
	}
	s.nextCommentID++
	s.comments[c.ID] = c
	s.commentOrder = append(s.commentOrder, c.ID)
	return c
}

// AppendReaction adds r to the global log.
func (s *State) AppendReaction(r models.Reaction) {
	s.reactions = append(s.reactions, r)
}

// User looks a user up by id.
func (s *State) User(id uint) (*models.User, bool) {
	u, ok := s.users[id]
	return u, ok
}

// Post looks a post up by id.
func (s *State) Post(id uint) (*models.Post, bool) {
	p, ok := s.posts[id]
	return p, ok
}

// Comment looks a comment up by id.
func (s *State) Comment(id uint) (*models.Comment, bool) {
	c, ok := s.comments[id]
	return c, ok
}

// TargetAuthor resolves the author id of a post or comment.
func (s *State) TargetAuthor(kind models.TargetType, id uint) (uint, bool) {
	switch kind {
	case models.TargetPost:
		if p, ok := s.posts[id]; ok {
			return p.AuthorID, true
		}
	case models.TargetComment:
		if c, ok := s.comments[id]; ok {
			return c.AuthorID, true
		}
	}
	return 0, false
}

// Users returns users in id order. The pointers are live; callers holding a
// read lock must not retain them.
func (s *State) Users() []*models.User {
	out := make([]*models.User, 0, len(s.userOrder))
	for _, id := range s.userOrder {
		out = append(out, s.users[id])
	}
	return out
}

// Posts returns posts in id order.
func (s *State) Posts() []*models.Post {
	out := make([]*models.Post, 0, len(s.postOrder))
	for _, id := range s.postOrder {
		out = append(out, s.posts[id])
	}
	return out
}

// Comments returns comments in id order.
func (s *State) Comments() []*models.Comment {
	out := make([]*models.Comment, 0, len(s.commentOrder))
	for _, id := range s.commentOrder {
		out = append(out, s.comments[id])
	}
	return out
}

// CommentsForPost returns the comments whose parent is postID, in id order.
func (s *State) CommentsForPost(postID uint) []*models.Comment {
	var out []*models.Comment
	for _, id := range s.commentOrder {
		if c := s.comments[id]; c.PostID == postID {
			out = append(out, c)
		}
	}
	return out
}

// Reactions returns the global log. The slice is shared; do not modify it.
func (s *State) Reactions() []models.Reaction {
	return s.reactions
}

// ReactionsFor returns the log entries naming one target, in log order.
func (s *State) ReactionsFor(kind models.TargetType, id uint) []models.Reaction {
	var out []models.Reaction
	for _, r := range s.reactions {
		if r.TargetType == kind && r.TargetID == id {
			out = append(out, r)
		}
	}
	return out
}

// AuthorName returns the display name of a user id, or "" if it does not
// resolve.
func (s *State) AuthorName(id uint) string {
	if u, ok := s.users[id]; ok {
		return u.Name
	}
	return ""
}

// Stats computes counters and the mean post diversity score. With no posts
// the mean is 0.
func (s *State) Stats() models.Stats {
	st := models.Stats{
		TotalUsers:     len(s.users),
		TotalPosts:     len(s.posts),
		TotalComments:  len(s.comments),
		TotalReactions: len(s.reactions),
	}
	if len(s.posts) == 0 {
		return st
	}
	var sum float64
	for _, id := range s.postOrder {
		sum += s.posts[id].DiversityScore
	}
	st.AvgDiversityScore = sum / float64(len(s.posts))
	return st
}
