package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Book is a curated book record. CatalogURL, SocialURL, and ThumbnailURL are
// best-effort provider data and may be absent. MessageID is set exactly once,
// when the finalized record is first displayed.
type Book struct {
	bun.BaseModel `bun:"table:books,alias:b"`

	ID             int       `bun:",pk,nullzero" json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	Title          string    `bun:",nullzero" json:"title"`
	Author         string    `bun:",nullzero" json:"author"`
	ISBN           string    `json:"isbn"`
	CatalogURL     *string   `json:"catalog_url"`
	SocialURL      *string   `json:"social_url"`
	ThumbnailURL   *string   `json:"thumbnail_url"`
	Shelf          Shelf     `bun:",nullzero" json:"shelf"`
	MessageID      *string   `json:"message_id"`
	ProposerUserID string    `bun:",nullzero" json:"proposer_user_id"`

	Ratings []*Rating `bun:"rel:has-many,join:id=book_id" json:"ratings,omitempty"`
}

// RatingBy returns this user's rating, or nil if they haven't rated the book.
// Ratings must have been loaded.
func (b *Book) RatingBy(userID string) *Rating {
	for _, r := range b.Ratings {
		if r.UserID == userID {
			return r
		}
	}
	return nil
}
