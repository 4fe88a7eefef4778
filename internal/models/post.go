package models

import (
	"fmt"
	"strings"
	"time"
)

// Bias is the political lean a generated post is written with.
type Bias string

const (
	BiasLeft   Bias = "left"
	BiasCenter Bias = "center"
	BiasRight  Bias = "right"
)

// ParseBias validates a bias label.
func ParseBias(s string) (Bias, error) {
	switch b := Bias(strings.ToLower(strings.TrimSpace(s))); b {
	case BiasLeft, BiasCenter, BiasRight:
		return b, nil
	}
	return "", fmt.Errorf("unknown bias %q", s)
}

// Post is a top-level piece of content that users react to.
type Post struct {
	ID             uint              `json:"id"`
	AuthorID       uint              `json:"author_id"`
	AuthorName     string            `json:"author_name"`
	Content        string            `json:"content"`
	Bias           Bias              `json:"bias,omitempty"`
	CreatedAt      time.Time         `json:"timestamp"`
	Reactions      []ReactionSummary `json:"reactions"`
	DiversityScore float64           `json:"diversity_score"`
}

// Clone returns a deep copy of the post.
func (p *Post) Clone() *Post {
	c := *p
	c.Reactions = append(make([]ReactionSummary, 0, len(p.Reactions)), p.Reactions...)
	return &c
}

// Comment is a reply to a post; it carries its own reactions and score.
type Comment struct {
	ID             uint              `json:"id"`
	PostID         uint              `json:"post_id"`
	AuthorID       uint              `json:"author_id"`
	AuthorName     string            `json:"author_name"`
	Content        string            `json:"content"`
	CreatedAt      time.Time         `json:"timestamp"`
	Reactions      []ReactionSummary `json:"reactions"`
	DiversityScore float64           `json:"diversity_score"`
}

// Clone returns a deep copy of the comment.
func (c *Comment) Clone() *Comment {
	out := *c
	out.Reactions = append(make([]ReactionSummary, 0, len(c.Reactions)), c.Reactions...)
	return &out
}

// Stats aggregates store counters.
type Stats struct {
	TotalUsers        int     `json:"total_users"`
	TotalPosts        int     `json:"total_posts"`
	TotalComments     int     `json:"total_comments"`
	TotalReactions    int     `json:"total_reactions"`
	AvgDiversityScore float64 `json:"avg_diversity_score"`
}
