package archive

import "time"

// Run is one archived snapshot. Every other row points back to it.
type Run struct {
	ID                string    `gorm:"primaryKey;size:36" json:"id"`
	TakenAt           time.Time `gorm:"index" json:"taken_at"`
	Users             int       `json:"users"`
	Posts             int       `json:"posts"`
	Comments          int       `json:"comments"`
	Reactions         int       `json:"reactions"`
	AvgDiversityScore float64   `json:"avg_diversity_score"`
	CreatedAt         time.Time `json:"created_at"`
}

func (Run) TableName() string { return "archive_runs" }

type User struct {
	ID                  uint   `gorm:"primaryKey"`
	RunID               string `gorm:"size:36;index"`
	UserID              uint
	Name                string
	LeftRight           float64
	LiberalConservative float64
	ZionistAnti         float64
	JoinedAt            time.Time
}

func (User) TableName() string { return "archived_users" }

type Post struct {
	ID             uint   `gorm:"primaryKey"`
	RunID          string `gorm:"size:36;index"`
	PostID         uint
	AuthorID       uint
	Content        string
	Bias           string
	DiversityScore float64
	ReactionCount  int
	PostedAt       time.Time
}

func (Post) TableName() string { return "archived_posts" }

type Comment struct {
	ID             uint   `gorm:"primaryKey"`
	RunID          string `gorm:"size:36;index"`
	CommentID      uint
	PostID         uint
	AuthorID       uint
	Content        string
	DiversityScore float64
	ReactionCount  int
	PostedAt       time.Time
}

func (Comment) TableName() string { return "archived_comments" }

type Reaction struct {
	ID           uint   `gorm:"primaryKey"`
	RunID        string `gorm:"size:36;index"`
	UserID       uint
	TargetType   string `gorm:"size:16"`
	TargetID     uint
	ReactionType string `gorm:"size:16"`
	ReactedAt    time.Time
}

func (Reaction) TableName() string { return "archived_reactions" }

// Tables lists every archive model, in migration order.
func Tables() []interface{} {
	return []interface{}{&Run{}, &User{}, &Post{}, &Comment{}, &Reaction{}}
}
