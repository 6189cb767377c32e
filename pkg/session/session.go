// Package session implements the candidate selection flow that follows a
// successful book lookup: an interactive browse message per proposal whose
// controls step through the candidates, edit one by hand, cancel the
// proposal, or submit the current candidate as the finalized record.
package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bookobot/booko/pkg/errcodes"
	"github.com/bookobot/booko/pkg/models"
	"github.com/bookobot/booko/pkg/platform"
	"github.com/bookobot/booko/pkg/records"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/robinjoseph08/golib/pointerutil"
)

type State string

const (
	StateBrowsing  State = "browsing"
	StateEditing   State = "editing"
	StateCanceled  State = "canceled"
	StateSubmitted State = "submitted"
)

const (
	verbPrevious = "previous"
	verbNext     = "next"
	verbEdit     = "edit"
	verbCancel   = "cancel"
	verbSubmit   = "submit"
)

// Manager holds the dependencies shared by every selection session.
type Manager struct {
	gateway     platform.Gateway
	records     *records.Manager
	validate    *validator.Validate
	editTimeout time.Duration
	cancelDelay time.Duration
}

func NewManager(gateway platform.Gateway, recordManager *records.Manager, editTimeout, cancelDelay time.Duration) *Manager {
	return &Manager{
		gateway:     gateway,
		records:     recordManager,
		validate:    validator.New(),
		editTimeout: editTimeout,
		cancelDelay: cancelDelay,
	}
}

// Session is one proposer's walk through the resolved candidates. Control
// interactions arrive one at a time; the state transitions assume that
// serial delivery.
type Session struct {
	manager *Manager

	id         string
	originItx  platform.Interaction
	channelID  string
	candidates []*models.Book
	cursor     int
	state      State
	messageID  string
}

// ControlKey is the stable key of one session control.
func ControlKey(sessionID, verb string) string {
	return "session:" + sessionID + ":" + verb
}

// Open starts a selection session over the given candidates and posts its
// browse message to the channel the proposal came from. The originating
// interaction is retired when the session ends.
func (m *Manager) Open(ctx context.Context, itx platform.Interaction, candidates []*models.Book) (*Session, error) {
	if len(candidates) == 0 {
		return nil, errors.New("session opened with no candidates")
	}

	s := &Session{
		manager:    m,
		id:         uuid.NewString(),
		originItx:  itx,
		channelID:  itx.ChannelID,
		candidates: candidates,
		state:      StateBrowsing,
	}

	messageID, err := m.gateway.Send(ctx, s.channelID, s.view())
	if err != nil {
		return nil, err
	}
	s.messageID = messageID
	m.gateway.RegisterControls(messageID, s.handleControl)
	return s, nil
}

// ID returns the session identifier used in its control keys.
func (s *Session) ID() string {
	return s.id
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	return s.state
}

// Candidate returns the candidate under the cursor.
func (s *Session) Candidate() *models.Book {
	return s.candidates[s.cursor]
}

// view renders the browse message for the current cursor position. Controls
// are disabled once the session reaches a terminal state.
func (s *Session) view() platform.Message {
	msg := records.Summary(s.candidates[s.cursor])
	msg.Content = fmt.Sprintf("Showing match **%d/%d**. Use the controls to finalize:", s.cursor+1, len(s.candidates))

	disabled := s.state == StateCanceled || s.state == StateSubmitted
	for _, control := range []struct {
		verb  string
		label string
		emoji string
	}{
		{verbPrevious, "", "⬆️"},
		{verbNext, "", "⬇️"},
		{verbEdit, "Edit", "✏️"},
		{verbCancel, "Cancel", "❌"},
		{verbSubmit, "Submit", "✅"},
	} {
		msg.Controls = append(msg.Controls, platform.Control{
			Key:      ControlKey(s.id, control.verb),
			Label:    control.label,
			Emoji:    control.emoji,
			Disabled: disabled,
		})
	}
	return msg
}

func (s *Session) redisplay(ctx context.Context) error {
	return s.manager.gateway.Edit(ctx, s.channelID, s.messageID, s.view())
}

func (s *Session) ensureBrowsing() error {
	switch s.state {
	case StateBrowsing:
		return nil
	case StateEditing:
		return errcodes.ValidationError("Finish editing your book first.")
	default:
		return errcodes.ValidationError("This book selection is already closed.")
	}
}

// Next advances the cursor, wrapping past the last candidate.
func (s *Session) Next(ctx context.Context, _ platform.Interaction) error {
	if err := s.ensureBrowsing(); err != nil {
		return err
	}
	s.cursor = (s.cursor + 1) % len(s.candidates)
	return s.redisplay(ctx)
}

// Previous steps the cursor back, wrapping before the first candidate.
func (s *Session) Previous(ctx context.Context, _ platform.Interaction) error {
	if err := s.ensureBrowsing(); err != nil {
		return err
	}
	s.cursor = (s.cursor - 1 + len(s.candidates)) % len(s.candidates)
	return s.redisplay(ctx)
}

// editForm is a submitted manual edit. The shelf is not editable.
type editForm struct {
	Title        string `validate:"required"`
	Author       string `validate:"required"`
	ISBN         string `validate:"omitempty,isbn"`
	SocialURL    string `validate:"omitempty,url"`
	ThumbnailURL string `validate:"omitempty,url"`
}

// Edit opens a modal pre-filled with the current candidate and blocks until
// it is submitted or the edit timeout passes. A valid submission replaces
// the candidate's editable fields; a timeout or an invalid submission
// leaves the candidate untouched.
func (s *Session) Edit(ctx context.Context, itx platform.Interaction) error {
	if err := s.ensureBrowsing(); err != nil {
		return err
	}
	s.state = StateEditing
	defer func() {
		if s.state == StateEditing {
			s.state = StateBrowsing
		}
	}()

	book := s.candidates[s.cursor]
	submitted := make(chan map[string]string, 1)
	modal := platform.Modal{
		Title: "Manually edit book.",
		Fields: []platform.ModalField{
			{Key: "title", Label: "Title", Default: book.Title},
			{Key: "author", Label: "Author", Default: book.Author},
			{Key: "isbn", Label: "ISBN", Default: book.ISBN},
			{Key: "goodreads", Label: "Goodreads", Default: deref(book.SocialURL)},
			{Key: "thumbnail", Label: "Thumbnail", Default: deref(book.ThumbnailURL)},
		},
		OnSubmit: func(_ context.Context, _ platform.Interaction, values map[string]string) {
			// The slot holds one submission; later ones are dropped.
			select {
			case submitted <- values:
			default:
			}
		},
	}
	if err := s.manager.gateway.OpenModal(ctx, itx, modal); err != nil {
		logger.FromContext(ctx).Err(err).Error("failed to open edit modal", logger.Data{"session_id": s.id})
		return errcodes.EditExchangeFailed()
	}

	timer := time.NewTimer(s.manager.editTimeout)
	defer timer.Stop()
	select {
	case values := <-submitted:
		return s.applyEdit(ctx, values)
	case <-timer.C:
		return errcodes.EditExchangeFailed()
	case <-ctx.Done():
		return errors.WithStack(ctx.Err())
	}
}

func (s *Session) applyEdit(ctx context.Context, values map[string]string) error {
	form := editForm{
		Title:        strings.TrimSpace(values["title"]),
		Author:       strings.TrimSpace(values["author"]),
		ISBN:         strings.TrimSpace(values["isbn"]),
		SocialURL:    strings.TrimSpace(values["goodreads"]),
		ThumbnailURL: strings.TrimSpace(values["thumbnail"]),
	}
	if err := s.manager.validate.Struct(form); err != nil {
		logger.FromContext(ctx).Err(err).Info("rejecting invalid edit submission", logger.Data{"session_id": s.id})
		return errcodes.EditExchangeFailed()
	}

	book := s.candidates[s.cursor]
	book.Title = form.Title
	book.Author = form.Author
	book.ISBN = form.ISBN
	book.SocialURL = optional(form.SocialURL)
	book.ThumbnailURL = optional(form.ThumbnailURL)

	s.state = StateBrowsing
	return s.redisplay(ctx)
}

// Cancel withdraws the proposal: controls are disabled, the proposer gets an
// ephemeral notice, and the originating request is retired after the
// configured delay.
func (s *Session) Cancel(ctx context.Context, itx platform.Interaction) error {
	if err := s.ensureBrowsing(); err != nil {
		return err
	}
	s.state = StateCanceled

	if err := s.redisplay(ctx); err != nil {
		return err
	}
	notice := fmt.Sprintf("Your book submission has been canceled and will be removed in %d seconds.", int(s.manager.cancelDelay.Seconds()))
	if err := s.manager.gateway.Notify(ctx, itx, notice); err != nil {
		logger.FromContext(ctx).Err(err).Warn("failed to send cancel notice", logger.Data{"session_id": s.id})
	}
	return s.manager.gateway.RetireRequest(ctx, s.originItx, s.manager.cancelDelay)
}

// Submit finalizes the candidate under the cursor: it is persisted and
// displayed as a record, and the browse message is retired.
func (s *Session) Submit(ctx context.Context, itx platform.Interaction) error {
	if err := s.ensureBrowsing(); err != nil {
		return err
	}

	controller, err := s.manager.records.Attach(ctx, s.candidates[s.cursor])
	if err != nil {
		return err
	}
	if err := controller.Display(ctx, itx); err != nil {
		return err
	}
	s.state = StateSubmitted
	return nil
}

// handleControl routes a click on one of the session's controls. Keys from
// other sessions and failures both surface as ephemeral notices, never as
// aborted sessions.
func (s *Session) handleControl(ctx context.Context, itx platform.Interaction, key string) {
	log := logger.FromContext(ctx)

	verb, ok := parseControlKey(key, s.id)
	if !ok {
		log.Warn("ignoring unknown control", logger.Data{"key": key, "session_id": s.id})
		return
	}

	var err error
	switch verb {
	case verbPrevious:
		err = s.Previous(ctx, itx)
	case verbNext:
		err = s.Next(ctx, itx)
	case verbEdit:
		err = s.Edit(ctx, itx)
	case verbCancel:
		err = s.Cancel(ctx, itx)
	case verbSubmit:
		err = s.Submit(ctx, itx)
	default:
		log.Warn("ignoring unknown control verb", logger.Data{"verb": verb, "session_id": s.id})
		return
	}
	if err != nil {
		log.Err(err).Error("session control failed", logger.Data{"verb": verb, "session_id": s.id})
		if notifyErr := s.manager.gateway.Notify(ctx, itx, errcodes.UserMessage(err)); notifyErr != nil {
			log.Err(notifyErr).Warn("failed to notify user")
		}
	}
}

func parseControlKey(key, sessionID string) (string, bool) {
	parts := strings.SplitN(key, ":", 3)
	if len(parts) != 3 || parts[0] != "session" || parts[1] != sessionID {
		return "", false
	}
	return parts[2], true
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return pointerutil.String(s)
}
