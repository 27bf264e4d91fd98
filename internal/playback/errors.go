package playback

import (
	"errors"
	"fmt"
)

var (
	// ErrArticleNotFound indicates Play was given an unknown article id.
	ErrArticleNotFound = errors.New("article not found")

	// ErrNothingToSpeak indicates the article has no speakable text left
	// after normalization.
	ErrNothingToSpeak = errors.New("nothing to speak")

	// ErrTruncationDeclined indicates the user refused to shorten an
	// article that exceeds the length limit.
	ErrTruncationDeclined = errors.New("truncation declined")

	// ErrStartTimeout indicates the engine never reported that speech
	// started.
	ErrStartTimeout = errors.New("speech did not start")
)

// ErrorCode identifies playback failures.
type ErrorCode string

const (
	ErrorCodeStartTimeout ErrorCode = "START_TIMEOUT"
	ErrorCodeSubmit       ErrorCode = "SUBMIT_FAILED"
	ErrorCodeEngine       ErrorCode = "ENGINE_ERROR"
)

// Hints shown to the user alongside a playback error.
const (
	HintStartTimeout = "try the default voice or restart the speech engine"
	HintSubmit       = "check that espeak-ng is installed"
)

// Error is a playback failure with a remediation hint for the user.
type Error struct {
	Code    ErrorCode
	Message string
	Hint    string
	Cause   error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// UserMessage is the message and hint combined for display.
func (e *Error) UserMessage() string {
	if e.Hint == "" {
		return e.Message
	}
	return e.Message + " (" + e.Hint + ")"
}
