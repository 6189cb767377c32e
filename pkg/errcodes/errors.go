// Package errcodes defines the error kinds surfaced by the curation
// workflow. The Message on each error is the user-facing notice shown
// in-channel; Code is stable and used by callers to branch.
package errcodes

import (
	"errors"
	"fmt"
)

type Error struct {
	Code    string
	Message string
}

func (err *Error) Error() string {
	return err.Message
}

func (err *Error) As(target interface{}) bool {
	te, ok := target.(*Error)
	if !ok {
		return false
	}
	te.Code = err.Code
	te.Message = err.Message
	return true
}

func (err *Error) Is(target error) bool {
	te, ok := target.(*Error)
	if !ok {
		return false
	}
	return te.Code == err.Code && te.Message == err.Message
}

// NotFound indicates the given resource does not exist. For providers this
// is an explicit miss, not a transport failure.
func NotFound(resource string) error {
	return &Error{
		"not_found",
		resource + " not found.",
	}
}

// ProviderUnavailable indicates an HTTP or network failure talking to a
// book-data provider. Callers degrade the affected field or candidate and
// continue; the batch is never aborted.
func ProviderUnavailable(provider string) error {
	return &Error{
		"provider_unavailable",
		fmt.Sprintf("The %s service could not be reached.", provider),
	}
}

// NoCandidatesFound indicates the resolution pipeline produced no usable
// candidates for a query.
func NoCandidatesFound(title, author string) error {
	return &Error{
		"no_candidates_found",
		fmt.Sprintf("Unable to find any books matching: *%s* by %s.", title, author),
	}
}

// EditExchangeFailed indicates the manual-edit exchange timed out or errored.
// The candidate is left unchanged.
func EditExchangeFailed() error {
	return &Error{
		"edit_exchange_failed",
		"Something went wrong editing your book.",
	}
}

// PersistenceFailure indicates storage was unavailable. Fatal to the
// current operation only.
func PersistenceFailure() error {
	return &Error{
		"persistence_failure",
		"Your book could not be saved. Please try again later.",
	}
}

// WrongChannel indicates a curation command was issued outside the
// configured curation channels.
func WrongChannel() error {
	return &Error{
		"wrong_channel",
		"Invalid channel for this command!",
	}
}

func ValidationError(msg string) error {
	return &Error{
		"validation_error",
		msg,
	}
}

// UserMessage returns the user-facing notice for err. Errors without a
// domain code fall back to a generic failure notice.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "Something went wrong. Please try again later."
}
