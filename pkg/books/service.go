// Package books persists finalized book records.
package books

import (
	"context"
	"database/sql"

	"github.com/bookobot/booko/pkg/errcodes"
	"github.com/bookobot/booko/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

// Service handles book persistence.
type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db: db}
}

// Create persists a finalized book, assigning its id.
func (s *Service) Create(ctx context.Context, book *models.Book) error {
	if !book.Shelf.Valid() {
		return errcodes.ValidationError("Unknown shelf: " + string(book.Shelf))
	}
	if book.Title == "" {
		return errcodes.ValidationError("A book needs a title.")
	}

	_, err := s.db.NewInsert().Model(book).Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	return nil
}

// Retrieve gets a book by ID with its ratings loaded. Only "no rows" is a
// miss; any other scan failure is a storage error.
func (s *Service) Retrieve(ctx context.Context, id int) (*models.Book, error) {
	book := &models.Book{}
	err := s.db.NewSelect().
		Model(book).
		Relation("Ratings").
		Where("b.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Book")
		}
		return nil, errors.WithStack(err)
	}
	return book, nil
}

// List returns every stored book, oldest first. Used at startup to
// rehydrate one finalized-record controller per book.
func (s *Service) List(ctx context.Context) ([]*models.Book, error) {
	books := []*models.Book{}
	err := s.db.NewSelect().
		Model(&books).
		Order("b.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return books, nil
}

// SetMessageID records the message a book is displayed in. The column is
// written at most once: a second call is a no-op and the stored value is
// returned either way.
func (s *Service) SetMessageID(ctx context.Context, id int, messageID string) (string, error) {
	_, err := s.db.NewUpdate().
		Model((*models.Book)(nil)).
		Set("message_id = ?", messageID).
		Set("updated_at = CURRENT_TIMESTAMP").
		Where("id = ?", id).
		Where("message_id IS NULL").
		Exec(ctx)
	if err != nil {
		return "", errors.WithStack(err)
	}

	book := &models.Book{}
	err = s.db.NewSelect().
		Model(book).
		Column("message_id").
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		return "", errors.WithStack(err)
	}
	if book.MessageID == nil {
		return "", errcodes.NotFound("Book")
	}
	return *book.MessageID, nil
}
