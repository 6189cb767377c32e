// Package platformtest provides a recording in-memory Gateway for tests.
package platformtest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bookobot/booko/pkg/platform"
)

// SentMessage is one message the fake has accepted, in its latest state.
type SentMessage struct {
	ChannelID string
	Message   platform.Message
	Edits     int
}

// RetiredRequest records one RetireRequest call.
type RetiredRequest struct {
	Interaction platform.Interaction
	Delay       time.Duration
}

// Gateway is an in-memory platform.Gateway that records every call and lets
// tests drive control clicks and modal submissions.
type Gateway struct {
	mu sync.Mutex

	nextID   int
	Messages map[string]*SentMessage
	Notices  []string
	Retired  []RetiredRequest
	Modals   []platform.Modal
	handlers map[string]platform.ControlHandler

	// SendErr, EditErr, and ModalErr, when set, are returned by the
	// corresponding calls.
	SendErr  error
	EditErr  error
	ModalErr error
}

func New() *Gateway {
	return &Gateway{
		Messages: map[string]*SentMessage{},
		handlers: map[string]platform.ControlHandler{},
	}
}

func (g *Gateway) Send(_ context.Context, channelID string, msg platform.Message) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.SendErr != nil {
		return "", g.SendErr
	}
	g.nextID++
	id := fmt.Sprintf("msg-%d", g.nextID)
	g.Messages[id] = &SentMessage{ChannelID: channelID, Message: msg}
	return id, nil
}

func (g *Gateway) Edit(_ context.Context, channelID, messageID string, msg platform.Message) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.EditErr != nil {
		return g.EditErr
	}
	sent, ok := g.Messages[messageID]
	if !ok {
		// Editing a message sent by a previous process: adopt it.
		sent = &SentMessage{ChannelID: channelID}
		g.Messages[messageID] = sent
	}
	sent.Message = msg
	sent.Edits++
	return nil
}

func (g *Gateway) Notify(_ context.Context, _ platform.Interaction, text string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.Notices = append(g.Notices, text)
	return nil
}

func (g *Gateway) OpenModal(_ context.Context, _ platform.Interaction, modal platform.Modal) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.ModalErr != nil {
		return g.ModalErr
	}
	g.Modals = append(g.Modals, modal)
	return nil
}

func (g *Gateway) RetireRequest(_ context.Context, itx platform.Interaction, delay time.Duration) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.Retired = append(g.Retired, RetiredRequest{Interaction: itx, Delay: delay})
	return nil
}

func (g *Gateway) RegisterControls(messageID string, handler platform.ControlHandler) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.handlers[messageID] = handler
}

// Click simulates a user clicking a control on a registered message.
func (g *Gateway) Click(ctx context.Context, messageID, key, userID string) error {
	g.mu.Lock()
	handler, ok := g.handlers[messageID]
	var channelID string
	if sent, found := g.Messages[messageID]; found {
		channelID = sent.ChannelID
	}
	g.mu.Unlock()

	if !ok {
		return fmt.Errorf("no handler registered for message %s", messageID)
	}
	handler(ctx, platform.Interaction{
		ID:        "itx-click",
		ChannelID: channelID,
		MessageID: messageID,
		UserID:    userID,
	}, key)
	return nil
}

// ModalCount returns how many modals have been opened.
func (g *Gateway) ModalCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	return len(g.Modals)
}

// SubmitModal submits the most recently opened modal with the given values.
func (g *Gateway) SubmitModal(ctx context.Context, itx platform.Interaction, values map[string]string) error {
	g.mu.Lock()
	if len(g.Modals) == 0 {
		g.mu.Unlock()
		return fmt.Errorf("no modal open")
	}
	modal := g.Modals[len(g.Modals)-1]
	g.mu.Unlock()

	modal.OnSubmit(ctx, itx, values)
	return nil
}

// Message returns the latest state of a sent message.
func (g *Gateway) Message(messageID string) (SentMessage, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	sent, ok := g.Messages[messageID]
	if !ok {
		return SentMessage{}, false
	}
	return *sent, true
}

// HasHandler reports whether controls are registered for the message.
func (g *Gateway) HasHandler(messageID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	_, ok := g.handlers[messageID]
	return ok
}
