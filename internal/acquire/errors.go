package acquire

import "fmt"

// Kind classifies why an acquisition failed.
type Kind int

const (
	KindNetwork Kind = iota
	KindStatus
	KindParse
	KindInvalidURL
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindStatus:
		return "status"
	case KindParse:
		return "parse"
	case KindInvalidURL:
		return "invalid url"
	default:
		return "unknown"
	}
}

// Error is returned from FetchArticle. Every acquisition failure is
// recoverable; the user may simply submit the URL again.
type Error struct {
	Kind   Kind
	URL    string
	Status int // HTTP status, set for KindStatus
	Err    error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindStatus:
		return fmt.Sprintf("fetch %s: proxy returned HTTP %d", e.URL, e.Status)
	case KindInvalidURL:
		return fmt.Sprintf("invalid url %q: %v", e.URL, e.Err)
	}
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %s error: %v", e.URL, e.Kind, e.Err)
	}
	return fmt.Sprintf("fetch %s: %s error", e.URL, e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}
