package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Rating value bounds. A value outside this range is rejected before it
// reaches storage.
const (
	RatingMin = 1
	RatingMax = 5
)

// Rating is one member's opinion of one finalized book. At most one row
// exists per (user, book); absence means "unrated".
type Rating struct {
	bun.BaseModel `bun:"table:ratings,alias:r"`

	ID        int       `bun:",pk,nullzero" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	UserID    string    `bun:",nullzero" json:"user_id"`
	BookID    int       `bun:",nullzero" json:"book_id"`
	Value     int       `json:"value"`

	Book *Book `bun:"rel:belongs-to,join:book_id=id" json:"-"`
}
