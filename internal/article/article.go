// Package article defines saved articles and their persistent collection.
package article

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/muesli/reflow/truncate"
)

// MaxTitleLength is the maximum number of characters kept in a title.
const MaxTitleLength = 100

// Article is a saved piece of readable content.
type Article struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	Content   string    `json:"content"`
	SavedDate time.Time `json:"savedDate"`
}

// New creates an article with a fresh id and the current time.
func New(title, url, content string) Article {
	return Article{
		ID:        NewID(),
		Title:     TruncateTitle(title),
		URL:       url,
		Content:   content,
		SavedDate: time.Now().UTC(),
	}
}

// NewID returns a time-ordered unique id.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// TruncateTitle trims whitespace and cuts the title to MaxTitleLength runes.
func TruncateTitle(title string) string {
	title = strings.Join(strings.Fields(title), " ")
	r := []rune(title)
	if len(r) <= MaxTitleLength {
		return title
	}
	return string(r[:MaxTitleLength])
}

// Source returns the URL host for display, or "text" for pasted articles.
func (a Article) Source() string {
	if a.URL == "" {
		return "text"
	}
	s := a.URL
	if i := strings.Index(s, "://"); i >= 0 {
		s = s[i+3:]
	}
	if i := strings.IndexAny(s, "/?#"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimPrefix(s, "www.")
}

// Excerpt returns the first line of content cut to width terminal cells.
func (a Article) Excerpt(width int) string {
	line := strings.TrimSpace(a.Content)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	return truncate.StringWithTail(line, uint(max(width, 0)), "…")
}
