// Package ratings implements the rating toggle: a member's vote creates,
// replaces, or removes their single rating row for a book.
package ratings

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bookobot/booko/pkg/errcodes"
	"github.com/bookobot/booko/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

// Service handles rating toggles.
type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db: db}
}

// Result describes what a toggle did.
type Result struct {
	// Rating is the row now in effect, nil when the toggle removed it.
	Rating  *models.Rating
	Removed bool
}

// Toggle applies one vote. No existing row creates one; a repeat of the
// existing value deletes it (un-rate); a different value overwrites it.
// The read-modify-write runs in a single transaction so concurrent raters
// on the same book cannot corrupt each other's rows. Only "no rows" is
// treated as "unrated"; any other lookup failure aborts the toggle.
func (s *Service) Toggle(ctx context.Context, bookID int, userID string, value int) (*Result, error) {
	if value < models.RatingMin || value > models.RatingMax {
		return nil, errcodes.ValidationError(fmt.Sprintf("A rating must be between %d and %d.", models.RatingMin, models.RatingMax))
	}

	result := &Result{}
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		existing := &models.Rating{}
		err := tx.NewSelect().
			Model(existing).
			Where("user_id = ?", userID).
			Where("book_id = ?", bookID).
			Scan(ctx)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			rating := &models.Rating{UserID: userID, BookID: bookID, Value: value}
			if _, err := tx.NewInsert().Model(rating).Exec(ctx); err != nil {
				return errors.WithStack(err)
			}
			result.Rating = rating
			return nil
		case err != nil:
			return errors.WithStack(err)
		}

		if existing.Value == value {
			if _, err := tx.NewDelete().Model(existing).WherePK().Exec(ctx); err != nil {
				return errors.WithStack(err)
			}
			result.Removed = true
			return nil
		}

		existing.Value = value
		_, err = tx.NewUpdate().
			Model((*models.Rating)(nil)).
			Set("value = ?", value).
			Set("updated_at = CURRENT_TIMESTAMP").
			Where("id = ?", existing.ID).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		result.Rating = existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ForBook returns all ratings for a book, oldest first.
func (s *Service) ForBook(ctx context.Context, bookID int) ([]*models.Rating, error) {
	ratings := []*models.Rating{}
	err := s.db.NewSelect().
		Model(&ratings).
		Where("book_id = ?", bookID).
		Order("r.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return ratings, nil
}
