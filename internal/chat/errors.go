package chat

import (
	"errors"

	"github.com/codecanvas/codecanvas/internal/gemini"
)

var (
	// ErrBusy is returned when a send is issued for a chat that is
	// already in the Sending state.
	ErrBusy = errors.New("chat is already sending")

	// ErrEmptyMessage is returned for blank input.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrUnknownSession is returned when the target session does not exist.
	ErrUnknownSession = errors.New("unknown session")
)

// User-facing substitutes appended as model messages when a turn cannot
// produce a real answer.
const (
	msgNoCredential = "No API key found. Please add one in Settings or configure it on the server."

	msgInvalidCredential = "Your API key is invalid or has exceeded its quota. " +
		"Please check your key in Settings and try again."

	msgUnavailable = "The AI service is unavailable. " +
		"Please ensure an API key is configured correctly."

	msgQuota = "The current API key has exceeded its quota. " +
		"Please try again later or provide a different key in Settings."

	msgGeneric = "Sorry, something went wrong. Please try again later."
)

// failureText maps a send error onto its user-facing wording.
func failureText(err error) string {
	switch gemini.Classify(err) {
	case gemini.KindQuota:
		return msgQuota
	case gemini.KindInvalidCredential:
		return msgInvalidCredential
	default:
		return msgGeneric
	}
}
