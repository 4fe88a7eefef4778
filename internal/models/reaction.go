package models

import (
	"fmt"
	"strings"
	"time"
)

// ReactionType is the kind of reaction a user gives to a post or comment.
type ReactionType string

const (
	ReactionLike       ReactionType = "like"
	ReactionLove       ReactionType = "love"
	ReactionAngry      ReactionType = "angry"
	ReactionLaugh      ReactionType = "laugh"
	ReactionInterested ReactionType = "interested"
	ReactionEmpathy    ReactionType = "empathy"
)

// ReactionTypes lists every reaction type in display order.
func ReactionTypes() []ReactionType {
	return []ReactionType{
		ReactionLike, ReactionLove, ReactionAngry,
		ReactionLaugh, ReactionInterested, ReactionEmpathy,
	}
}

// ParseReactionType validates a wire value.
func ParseReactionType(s string) (ReactionType, error) {
	t := ReactionType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range ReactionTypes() {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown reaction type %q", s)
}

// IsPositive reports whether the reaction is an affiliative signal. Angry and
// laugh are not.
func (t ReactionType) IsPositive() bool {
	switch t {
	case ReactionLike, ReactionLove, ReactionInterested, ReactionEmpathy:
		return true
	}
	return false
}

// TargetType names what a reaction points at.
type TargetType string

const (
	TargetPost    TargetType = "post"
	TargetComment TargetType = "comment"
)

// ParseTargetType validates a wire value.
func ParseTargetType(s string) (TargetType, error) {
	switch t := TargetType(strings.ToLower(strings.TrimSpace(s))); t {
	case TargetPost, TargetComment:
		return t, nil
	}
	return "", fmt.Errorf("unknown target type %q", s)
}

// Reaction is an immutable entry of the global reaction log.
type Reaction struct {
	UserID     uint         `json:"user_id"`
	TargetType TargetType   `json:"target_type"`
	TargetID   uint         `json:"target_id"`
	Type       ReactionType `json:"reaction_type"`
	CreatedAt  time.Time    `json:"timestamp"`
}

// ReactionSummary is the denormalized copy kept on posts and comments.
type ReactionSummary struct {
	UserID uint         `json:"user_id"`
	Type   ReactionType `json:"type"`
}
