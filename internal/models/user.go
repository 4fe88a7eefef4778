package models

import "time"

// User is a participant with a position in the political space.
type User struct {
	ID        uint       `json:"id"`
	Name      string     `json:"name"`
	Profile   Profile    `json:"profile"`
	Reactions []Reaction `json:"-"`
	CreatedAt time.Time  `json:"created_at"`
}

// Clone returns a deep copy safe to hand out after the store lock is released.
func (u *User) Clone() *User {
	c := *u
	c.Reactions = append([]Reaction(nil), u.Reactions...)
	return &c
}
