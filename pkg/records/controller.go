// Package records owns the durable control surface of a finalized book:
// rendering its summary message and serving its rating controls. A
// controller's behavior is determined by stored state alone, so one can be
// reconstructed for every stored book after a restart.
package records

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/bookobot/booko/pkg/books"
	"github.com/bookobot/booko/pkg/errcodes"
	"github.com/bookobot/booko/pkg/models"
	"github.com/bookobot/booko/pkg/platform"
	"github.com/bookobot/booko/pkg/ratings"
	"github.com/robinjoseph08/golib/logger"
)

// Manager holds the dependencies shared by every controller.
type Manager struct {
	gateway     platform.Gateway
	books       *books.Service
	ratings     *ratings.Service
	retireDelay time.Duration
}

func NewManager(gateway platform.Gateway, bookService *books.Service, ratingService *ratings.Service, retireDelay time.Duration) *Manager {
	return &Manager{
		gateway:     gateway,
		books:       bookService,
		ratings:     ratingService,
		retireDelay: retireDelay,
	}
}

// Controller is the control surface of one persisted book.
type Controller struct {
	manager *Manager
	bookID  int
}

// Attach returns the controller for a book, persisting it first when it has
// no id yet.
func (m *Manager) Attach(ctx context.Context, book *models.Book) (*Controller, error) {
	if book.ID == 0 {
		if err := m.books.Create(ctx, book); err != nil {
			logger.FromContext(ctx).Err(err).Error("failed to persist finalized book")
			return nil, errcodes.PersistenceFailure()
		}
	}
	return &Controller{manager: m, bookID: book.ID}, nil
}

// Rehydrate re-registers the rating controls of an already-displayed book
// so clicks on messages sent by a previous process keep working.
func (m *Manager) Rehydrate(ctx context.Context, book *models.Book) *Controller {
	controller := &Controller{manager: m, bookID: book.ID}
	if book.MessageID != nil {
		m.gateway.RegisterControls(*book.MessageID, controller.handleControl)
	} else {
		logger.FromContext(ctx).Warn("stored book was never displayed", logger.Data{"book_id": book.ID})
	}
	return controller
}

// Display renders the book. The first display sends a new message, records
// its id (the one and only write of that column), registers the controls,
// and retires the originating request. Every later display edits the same
// message in place.
func (c *Controller) Display(ctx context.Context, itx platform.Interaction) error {
	m := c.manager

	book, err := m.books.Retrieve(ctx, c.bookID)
	if err != nil {
		return err
	}
	msg := renderBook(book)

	if book.MessageID == nil {
		messageID, err := m.gateway.Send(ctx, itx.ChannelID, msg)
		if err != nil {
			return err
		}
		stored, err := m.books.SetMessageID(ctx, book.ID, messageID)
		if err != nil {
			return err
		}
		m.gateway.RegisterControls(stored, c.handleControl)
		if err := m.gateway.RetireRequest(ctx, itx, m.retireDelay); err != nil {
			logger.FromContext(ctx).Err(err).Warn("failed to retire originating request")
		}
		return nil
	}

	return m.gateway.Edit(ctx, itx.ChannelID, *book.MessageID, msg)
}

// HandleRating applies one member's vote and redisplays the book.
func (c *Controller) HandleRating(ctx context.Context, itx platform.Interaction, value int) error {
	_, err := c.manager.ratings.Toggle(ctx, c.bookID, itx.UserID, value)
	if err != nil {
		return err
	}
	return c.Display(ctx, itx)
}

// handleControl routes a control click. Unknown keys are ignored.
func (c *Controller) handleControl(ctx context.Context, itx platform.Interaction, key string) {
	log := logger.FromContext(ctx)

	value, ok := parseRatingControlKey(key, c.bookID)
	if !ok {
		log.Warn("ignoring unknown control", logger.Data{"key": key, "book_id": c.bookID})
		return
	}

	if err := c.HandleRating(ctx, itx, value); err != nil {
		log.Err(err).Error("rating toggle failed", logger.Data{"book_id": c.bookID, "user_id": itx.UserID})
		if notifyErr := c.manager.gateway.Notify(ctx, itx, errcodes.UserMessage(err)); notifyErr != nil {
			log.Err(notifyErr).Warn("failed to notify user")
		}
	}
}

// parseRatingControlKey extracts the rating value from a control key,
// verifying it belongs to this book.
func parseRatingControlKey(key string, bookID int) (int, bool) {
	parts := strings.Split(key, ":")
	if len(parts) != 3 || parts[0] != "rating" {
		return 0, false
	}
	id, err := strconv.Atoi(parts[1])
	if err != nil || id != bookID {
		return 0, false
	}
	value, err := strconv.Atoi(parts[2])
	if err != nil {
		return 0, false
	}
	return value, true
}
