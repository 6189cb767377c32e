// Package platform defines the interactive-messaging surface booko consumes.
// The concrete chat gateway lives outside this module; everything here is
// the minimal contract the curation workflow needs: rich messages with
// labeled controls, a modal form primitive, ephemeral notices, deferred
// acknowledgement with delayed cleanup, and restart-time re-registration of
// controls by message id.
package platform

import (
	"context"
	"time"
)

// Interaction identifies one inbound user action: a command invocation, a
// control click, or a modal submission.
type Interaction struct {
	ID        string
	ChannelID string
	// MessageID is the message whose control was clicked. Empty for command
	// invocations.
	MessageID string
	UserID    string
}

// Field is one labeled line of a rich message summary.
type Field struct {
	Label string
	Value string
}

// Control is a clickable affordance attached to a message. Key must be
// stable across process restarts so a rehydrated handler can keep serving
// clicks on messages sent by an earlier process.
type Control struct {
	Key      string
	Label    string
	Emoji    string
	Disabled bool
}

// Message is a rich message with an optional set of controls.
type Message struct {
	Content      string
	Fields       []Field
	ThumbnailURL string
	AuthorID     string
	Controls     []Control
}

// ModalField is one pre-populated text input of a modal form.
type ModalField struct {
	Key     string
	Label   string
	Default string
}

// Modal is a form shown to one user. OnSubmit is invoked at most once, with
// the submitted values keyed by field key. Non-submission is reported by
// OnSubmit never being invoked; the issuer owns any timeout.
type Modal struct {
	Title    string
	Fields   []ModalField
	OnSubmit func(ctx context.Context, itx Interaction, values map[string]string)
}

// ControlHandler receives clicks on a message's controls.
type ControlHandler func(ctx context.Context, itx Interaction, key string)

// Gateway is the chat-gateway boundary.
type Gateway interface {
	// Send posts a new message to a channel and returns its id.
	Send(ctx context.Context, channelID string, msg Message) (string, error)
	// Edit replaces an existing message in place.
	Edit(ctx context.Context, channelID, messageID string, msg Message) error
	// Notify shows an ephemeral notice to the acting user.
	Notify(ctx context.Context, itx Interaction, text string) error
	// OpenModal presents a modal form to the acting user.
	OpenModal(ctx context.Context, itx Interaction, modal Modal) error
	// RetireRequest acknowledges the interaction and deletes its originating
	// request message after the given delay.
	RetireRequest(ctx context.Context, itx Interaction, delay time.Duration) error
	// RegisterControls routes future clicks on the given message to handler.
	// Called both for freshly sent messages and at startup for messages sent
	// by a previous process.
	RegisterControls(messageID string, handler ControlHandler)
}
