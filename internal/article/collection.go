package article

import (
	"errors"
	"slices"
)

// ErrDuplicateID is returned when inserting an article whose id is already
// in the collection.
var ErrDuplicateID = errors.New("article id already exists")

// Collection is an ordered list of articles, newest first.
type Collection struct {
	items []Article
}

// NewCollection returns a collection holding items in the given order.
func NewCollection(items ...Article) *Collection {
	return &Collection{items: slices.Clone(items)}
}

// Len returns the number of articles.
func (c *Collection) Len() int { return len(c.items) }

// Items returns a copy of the articles, newest first.
func (c *Collection) Items() []Article { return slices.Clone(c.items) }

// InsertFront adds a to the front of the collection.
func (c *Collection) InsertFront(a Article) error {
	if c.index(a.ID) >= 0 {
		return ErrDuplicateID
	}
	c.items = slices.Insert(c.items, 0, a)
	return nil
}

// RemoveByID deletes the article with id, reporting whether it was present.
func (c *Collection) RemoveByID(id string) bool {
	i := c.index(id)
	if i < 0 {
		return false
	}
	c.items = slices.Delete(c.items, i, i+1)
	return true
}

// Find returns the article with id.
func (c *Collection) Find(id string) (Article, bool) {
	i := c.index(id)
	if i < 0 {
		return Article{}, false
	}
	return c.items[i], true
}

func (c *Collection) index(id string) int {
	return slices.IndexFunc(c.items, func(a Article) bool { return a.ID == id })
}
