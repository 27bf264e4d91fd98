// Package share receives URLs handed to the app from outside, such as a
// browser share action or the "share" subcommand.
package share

import (
	"errors"
	"regexp"
	"strings"

	"github.com/dgnsrekt/readlater/internal/store"
)

// StoreKey holds the most recent unconsumed share payload.
const StoreKey = "share.pending"

var urlPattern = regexp.MustCompile(`https?://[^\s]+`)

// ExtractURL returns the first http or https URL in payload. Share payloads
// are often "Title https://example.com/post" rather than a bare URL.
func ExtractURL(payload string) (string, bool) {
	u := urlPattern.FindString(payload)
	if u == "" {
		return "", false
	}
	return u, true
}

// Inbox is a single pending share slot on a store.
type Inbox struct {
	store store.Store
}

// NewInbox returns the inbox kept in s.
func NewInbox(s store.Store) *Inbox {
	return &Inbox{store: s}
}

// Put records payload, replacing any share that hasn't been taken yet.
func (i *Inbox) Put(payload string) error {
	return i.store.Put(StoreKey, []byte(strings.TrimSpace(payload)))
}

// Take returns the pending payload and clears it, so a share is handled at
// most once. ok is false when nothing is pending.
func (i *Inbox) Take() (payload string, ok bool, err error) {
	data, err := i.store.Get(StoreKey)
	if errors.Is(err, store.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	if err := i.store.Delete(StoreKey); err != nil {
		return "", false, err
	}
	return string(data), len(data) > 0, nil
}
