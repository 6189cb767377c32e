package session

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/bookobot/booko/pkg/books"
	"github.com/bookobot/booko/pkg/migrations"
	"github.com/bookobot/booko/pkg/models"
	"github.com/bookobot/booko/pkg/platform"
	"github.com/bookobot/booko/pkg/platform/platformtest"
	"github.com/bookobot/booko/pkg/ratings"
	"github.com/bookobot/booko/pkg/records"
	"github.com/robinjoseph08/golib/pointerutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)

	db := bun.NewDB(sqldb, sqlitedialect.New())

	_, err = migrations.BringUpToDate(context.Background(), db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func newTestManager(t *testing.T, editTimeout time.Duration) (*Manager, *platformtest.Gateway, *books.Service) {
	t.Helper()

	db := newTestDB(t)
	gateway := platformtest.New()
	bookService := books.NewService(db)
	recordManager := records.NewManager(gateway, bookService, ratings.NewService(db), 2*time.Second)
	return NewManager(gateway, recordManager, editTimeout, 2*time.Second), gateway, bookService
}

func candidates(n int) []*models.Book {
	out := make([]*models.Book, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, &models.Book{
			Title:          fmt.Sprintf("Candidate %d", i),
			Author:         "Becky Chambers",
			ISBN:           "9780062444134",
			Shelf:          models.ShelfRecommended,
			ProposerUserID: "user-prop",
		})
	}
	return out
}

func originItx() platform.Interaction {
	return platform.Interaction{ID: "itx-add", ChannelID: "chan-rec", UserID: "user-prop"}
}

func TestOpenPostsBrowseMessage(t *testing.T) {
	t.Parallel()

	manager, gateway, _ := newTestManager(t, time.Second)
	ctx := context.Background()

	s, err := manager.Open(ctx, originItx(), candidates(3))
	require.NoError(t, err)
	assert.Equal(t, StateBrowsing, s.State())

	sent, ok := gateway.Message(s.messageID)
	require.True(t, ok)
	assert.Equal(t, "chan-rec", sent.ChannelID)
	assert.Contains(t, sent.Message.Content, "Showing match **1/3**")
	assert.Len(t, sent.Message.Controls, 5)
	assert.True(t, gateway.HasHandler(s.messageID))
}

func TestOpenRequiresCandidates(t *testing.T) {
	t.Parallel()

	manager, _, _ := newTestManager(t, time.Second)

	_, err := manager.Open(context.Background(), originItx(), nil)
	require.Error(t, err)
}

func TestNextPreviousWrap(t *testing.T) {
	t.Parallel()

	manager, gateway, _ := newTestManager(t, time.Second)
	ctx := context.Background()

	s, err := manager.Open(ctx, originItx(), candidates(3))
	require.NoError(t, err)

	next := ControlKey(s.ID(), "next")
	previous := ControlKey(s.ID(), "previous")

	require.NoError(t, gateway.Click(ctx, s.messageID, next, "user-prop"))
	require.NoError(t, gateway.Click(ctx, s.messageID, next, "user-prop"))
	sent, _ := gateway.Message(s.messageID)
	assert.Contains(t, sent.Message.Content, "Showing match **3/3**")

	// Wraps back to the first candidate.
	require.NoError(t, gateway.Click(ctx, s.messageID, next, "user-prop"))
	sent, _ = gateway.Message(s.messageID)
	assert.Contains(t, sent.Message.Content, "Showing match **1/3**")

	// And wraps backwards to the last.
	require.NoError(t, gateway.Click(ctx, s.messageID, previous, "user-prop"))
	sent, _ = gateway.Message(s.messageID)
	assert.Contains(t, sent.Message.Content, "Showing match **3/3**")
	assert.Equal(t, "Candidate 3", s.Candidate().Title)
}

func TestEditReplacesCandidate(t *testing.T) {
	t.Parallel()

	manager, gateway, _ := newTestManager(t, time.Second)
	ctx := context.Background()

	s, err := manager.Open(ctx, originItx(), candidates(2))
	require.NoError(t, err)

	editErr := make(chan error, 1)
	go func() {
		editErr <- s.Edit(ctx, originItx())
	}()

	require.Eventually(t, func() bool {
		return gateway.ModalCount() > 0
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, gateway.SubmitModal(ctx, originItx(), map[string]string{
		"title":     "A Psalm for the Wild-Built",
		"author":    "Becky Chambers",
		"isbn":      "9781250236210",
		"goodreads": "https://www.goodreads.com/book/show/40864002",
		"thumbnail": "",
	}))
	require.NoError(t, <-editErr)

	book := s.Candidate()
	assert.Equal(t, "A Psalm for the Wild-Built", book.Title)
	assert.Equal(t, "9781250236210", book.ISBN)
	require.NotNil(t, book.SocialURL)
	assert.Equal(t, "https://www.goodreads.com/book/show/40864002", *book.SocialURL)
	assert.Nil(t, book.ThumbnailURL)
	// The shelf never changes through an edit.
	assert.Equal(t, models.ShelfRecommended, book.Shelf)
	assert.Equal(t, StateBrowsing, s.State())

	sent, _ := gateway.Message(s.messageID)
	assert.Contains(t, sent.Message.Fields[0].Value, "A Psalm for the Wild-Built")
}

func TestEditInvalidSubmissionLeavesCandidate(t *testing.T) {
	t.Parallel()

	manager, gateway, _ := newTestManager(t, time.Second)
	ctx := context.Background()

	s, err := manager.Open(ctx, originItx(), candidates(1))
	require.NoError(t, err)

	editErr := make(chan error, 1)
	go func() {
		editErr <- s.Edit(ctx, originItx())
	}()

	require.Eventually(t, func() bool {
		return gateway.ModalCount() > 0
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, gateway.SubmitModal(ctx, originItx(), map[string]string{
		"title":  "",
		"author": "Becky Chambers",
	}))

	err = <-editErr
	require.Error(t, err)
	assert.Equal(t, "Something went wrong editing your book.", err.Error())
	assert.Equal(t, "Candidate 1", s.Candidate().Title)
	assert.Equal(t, StateBrowsing, s.State())
}

func TestEditBlocksOtherControls(t *testing.T) {
	t.Parallel()

	manager, gateway, _ := newTestManager(t, time.Second)
	ctx := context.Background()

	s, err := manager.Open(ctx, originItx(), candidates(2))
	require.NoError(t, err)

	editErr := make(chan error, 1)
	go func() {
		editErr <- s.Edit(ctx, originItx())
	}()

	require.Eventually(t, func() bool {
		return gateway.ModalCount() > 0
	}, time.Second, 5*time.Millisecond)

	err = s.Next(ctx, originItx())
	require.Error(t, err)
	assert.Equal(t, "Finish editing your book first.", err.Error())

	require.NoError(t, gateway.SubmitModal(ctx, originItx(), map[string]string{
		"title":  "Candidate 1",
		"author": "Becky Chambers",
	}))
	require.NoError(t, <-editErr)
	assert.Equal(t, StateBrowsing, s.State())
}

func TestEditTimesOut(t *testing.T) {
	t.Parallel()

	manager, _, _ := newTestManager(t, 20*time.Millisecond)
	ctx := context.Background()

	s, err := manager.Open(ctx, originItx(), candidates(1))
	require.NoError(t, err)

	err = s.Edit(ctx, originItx())
	require.Error(t, err)
	assert.Equal(t, "Something went wrong editing your book.", err.Error())
	assert.Equal(t, "Candidate 1", s.Candidate().Title)
	assert.Equal(t, StateBrowsing, s.State())
}

func TestCancelDisablesControlsAndRetires(t *testing.T) {
	t.Parallel()

	manager, gateway, _ := newTestManager(t, time.Second)
	ctx := context.Background()

	s, err := manager.Open(ctx, originItx(), candidates(2))
	require.NoError(t, err)

	require.NoError(t, gateway.Click(ctx, s.messageID, ControlKey(s.ID(), "cancel"), "user-prop"))
	assert.Equal(t, StateCanceled, s.State())

	sent, _ := gateway.Message(s.messageID)
	for _, control := range sent.Message.Controls {
		assert.True(t, control.Disabled)
	}
	require.Len(t, gateway.Notices, 1)
	assert.Contains(t, gateway.Notices[0], "canceled")

	require.Len(t, gateway.Retired, 1)
	assert.Equal(t, "itx-add", gateway.Retired[0].Interaction.ID)

	// A terminal session rejects further transitions with a notice.
	require.NoError(t, gateway.Click(ctx, s.messageID, ControlKey(s.ID(), "next"), "user-prop"))
	assert.Len(t, gateway.Notices, 2)
	sent, _ = gateway.Message(s.messageID)
	assert.Contains(t, sent.Message.Content, "Showing match **1/2**")
}

func TestSubmitFinalizesCurrentCandidate(t *testing.T) {
	t.Parallel()

	manager, gateway, bookService := newTestManager(t, time.Second)
	ctx := context.Background()

	s, err := manager.Open(ctx, originItx(), candidates(3))
	require.NoError(t, err)

	require.NoError(t, gateway.Click(ctx, s.messageID, ControlKey(s.ID(), "next"), "user-prop"))
	require.NoError(t, gateway.Click(ctx, s.messageID, ControlKey(s.ID(), "submit"), "user-prop"))
	assert.Equal(t, StateSubmitted, s.State())

	all, err := bookService.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Candidate 2", all[0].Title)
	require.NotNil(t, all[0].MessageID)
	assert.True(t, gateway.HasHandler(*all[0].MessageID))

	// Submitting again is rejected; only one record exists.
	require.NoError(t, gateway.Click(ctx, s.messageID, ControlKey(s.ID(), "submit"), "user-prop"))
	all, err = bookService.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestControlKeysIgnoreOtherSessions(t *testing.T) {
	t.Parallel()

	manager, gateway, _ := newTestManager(t, time.Second)
	ctx := context.Background()

	s, err := manager.Open(ctx, originItx(), candidates(2))
	require.NoError(t, err)

	require.NoError(t, gateway.Click(ctx, s.messageID, ControlKey("someone-else", "next"), "user-prop"))
	sent, _ := gateway.Message(s.messageID)
	assert.Contains(t, sent.Message.Content, "Showing match **1/2**")
	assert.Empty(t, gateway.Notices)
}

func TestViewShowsThumbnailAndSocialLink(t *testing.T) {
	t.Parallel()

	manager, gateway, _ := newTestManager(t, time.Second)
	ctx := context.Background()

	cands := candidates(1)
	cands[0].SocialURL = pointerutil.String("https://www.goodreads.com/book/show/1")
	cands[0].ThumbnailURL = pointerutil.String("https://covers.example/1-M.jpg")

	s, err := manager.Open(ctx, originItx(), cands)
	require.NoError(t, err)

	sent, _ := gateway.Message(s.messageID)
	assert.Equal(t, "https://covers.example/1-M.jpg", sent.Message.ThumbnailURL)

	var labels []string
	for _, field := range sent.Message.Fields {
		labels = append(labels, field.Label)
	}
	assert.Contains(t, labels, "Goodreads")
}
