// Package coordinator wires the curation workflow together: it accepts book
// proposals from the configured shelf channels, runs the resolution
// pipeline, opens selection sessions, and rehydrates the controls of every
// stored book at startup.
package coordinator

import (
	"context"

	"github.com/bookobot/booko/pkg/books"
	"github.com/bookobot/booko/pkg/config"
	"github.com/bookobot/booko/pkg/errcodes"
	"github.com/bookobot/booko/pkg/models"
	"github.com/bookobot/booko/pkg/platform"
	"github.com/bookobot/booko/pkg/records"
	"github.com/bookobot/booko/pkg/resolve"
	"github.com/bookobot/booko/pkg/session"
	"github.com/robinjoseph08/golib/logger"
)

// Resolver turns an author/title query into candidate records. Satisfied by
// resolve.Pipeline.
type Resolver interface {
	Resolve(ctx context.Context, author, title string, shelf models.Shelf, proposerUserID string) ([]*models.Book, error)
}

var _ Resolver = (*resolve.Pipeline)(nil)

// Coordinator routes proposals from channels to shelves and owns the
// workflow lifecycle.
type Coordinator struct {
	gateway  platform.Gateway
	pipeline Resolver
	sessions *session.Manager
	records  *records.Manager
	books    *books.Service

	channelShelves map[string]models.Shelf
	shutdown       chan struct{}
}

func New(cfg *config.Config, gateway platform.Gateway, pipeline Resolver, sessionManager *session.Manager, recordManager *records.Manager, bookService *books.Service) *Coordinator {
	return &Coordinator{
		gateway:  gateway,
		pipeline: pipeline,
		sessions: sessionManager,
		records:  recordManager,
		books:    bookService,
		channelShelves: map[string]models.Shelf{
			cfg.Channels.Recommendations: models.ShelfRecommended,
			cfg.Channels.PastBooks:       models.ShelfRead,
			cfg.Channels.Smut:            models.ShelfSmut,
		},
		shutdown: make(chan struct{}),
	}
}

// Start rehydrates the stored records and marks the coordinator ready for
// proposals.
func (c *Coordinator) Start(ctx context.Context) error {
	return c.Rehydrate(ctx)
}

// Shutdown stops accepting new proposals. Stored-record controls keep
// working until the gateway itself disconnects.
func (c *Coordinator) Shutdown() {
	close(c.shutdown)
}

func (c *Coordinator) closed() bool {
	select {
	case <-c.shutdown:
		return true
	default:
		return false
	}
}

// AddBook handles one proposal. The channel it was issued in fixes the
// shelf; proposerID credits a member other than the actor and defaults to
// the actor when empty. Failures are surfaced to the actor as an ephemeral
// notice and returned.
func (c *Coordinator) AddBook(ctx context.Context, itx platform.Interaction, title, author, proposerID string) error {
	log := logger.FromContext(ctx)

	if c.closed() {
		return errcodes.ValidationError("Booko is shutting down. Please try again later.")
	}

	shelf, ok := c.channelShelves[itx.ChannelID]
	if !ok {
		return c.fail(ctx, itx, errcodes.WrongChannel())
	}
	if proposerID == "" {
		proposerID = itx.UserID
	}

	candidates, err := c.pipeline.Resolve(ctx, author, title, shelf, proposerID)
	if err != nil {
		log.Err(err).Error("resolution pipeline failed", logger.Data{"title": title, "author": author})
		return c.fail(ctx, itx, err)
	}
	if len(candidates) == 0 {
		return c.fail(ctx, itx, errcodes.NoCandidatesFound(title, author))
	}

	s, err := c.sessions.Open(ctx, itx, candidates)
	if err != nil {
		log.Err(err).Error("failed to open selection session", logger.Data{"title": title, "author": author})
		return c.fail(ctx, itx, err)
	}
	log.Info("selection session opened", logger.Data{
		"session_id": s.ID(),
		"shelf":      string(shelf),
		"candidates": len(candidates),
		"proposer":   proposerID,
	})
	return nil
}

// fail notifies the acting user and passes the error through.
func (c *Coordinator) fail(ctx context.Context, itx platform.Interaction, err error) error {
	if notifyErr := c.gateway.Notify(ctx, itx, errcodes.UserMessage(err)); notifyErr != nil {
		logger.FromContext(ctx).Err(notifyErr).Warn("failed to notify user")
	}
	return err
}

// Rehydrate re-registers the rating controls of every stored book so that
// messages sent by a previous process keep serving clicks.
func (c *Coordinator) Rehydrate(ctx context.Context) error {
	all, err := c.books.List(ctx)
	if err != nil {
		return err
	}
	for _, book := range all {
		c.records.Rehydrate(ctx, book)
	}
	logger.FromContext(ctx).Info("rehydrated stored books", logger.Data{"count": len(all)})
	return nil
}
