package article

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/readlater/internal/store"
)

// StoreKey is the key the article snapshot is persisted under.
const StoreKey = "articles"

// Repository keeps the article collection in memory and writes the whole
// snapshot to the store after every mutation.
type Repository struct {
	store store.Store

	mu         sync.RWMutex
	collection *Collection
}

// NewRepository returns a repository over s. Call Load to populate it.
func NewRepository(s store.Store) *Repository {
	return &Repository{store: s, collection: NewCollection()}
}

// Load reads the snapshot from the store. A missing or unreadable snapshot
// yields an empty collection.
func (r *Repository) Load() *Collection {
	c := r.read()

	r.mu.Lock()
	r.collection = c
	r.mu.Unlock()

	return NewCollection(c.items...)
}

func (r *Repository) read() *Collection {
	data, err := r.store.Get(StoreKey)
	if errors.Is(err, store.ErrNotFound) {
		return NewCollection()
	}
	if err != nil {
		log.Warn("Could not read saved articles", "error", err)
		return NewCollection()
	}

	var items []Article
	if err := json.Unmarshal(data, &items); err != nil {
		log.Warn("Saved articles are corrupt, starting empty", "error", err)
		return NewCollection()
	}

	c := NewCollection()
	for i := len(items) - 1; i >= 0; i-- {
		if err := c.InsertFront(items[i]); err != nil {
			log.Debug("Skipping duplicate saved article", "id", items[i].ID)
		}
	}
	return c
}

// SaveAll replaces the in-memory collection with c and persists it.
func (r *Repository) SaveAll(c *Collection) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.write(c); err != nil {
		return err
	}
	r.collection = NewCollection(c.items...)
	return nil
}

func (r *Repository) write(c *Collection) error {
	items := c.items
	if items == nil {
		items = []Article{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("unable to encode articles: %w", err)
	}
	if err := r.store.Put(StoreKey, data); err != nil {
		return fmt.Errorf("unable to save articles: %w", err)
	}
	return nil
}

// InsertFront adds a as the newest article and saves the snapshot. The
// in-memory collection is left unchanged when saving fails.
func (r *Repository) InsertFront(a Article) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := NewCollection(r.collection.items...)
	if err := next.InsertFront(a); err != nil {
		return err
	}
	if err := r.write(next); err != nil {
		return err
	}
	r.collection = next
	return nil
}

// RemoveByID deletes the article with id and saves the snapshot.
func (r *Repository) RemoveByID(id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := NewCollection(r.collection.items...)
	if !next.RemoveByID(id) {
		return false, nil
	}
	if err := r.write(next); err != nil {
		return false, err
	}
	r.collection = next
	return true, nil
}

// Get returns the article with id.
func (r *Repository) Get(id string) (Article, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collection.Find(id)
}

// Articles returns a copy of all articles, newest first.
func (r *Repository) Articles() []Article {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collection.Items()
}

// Len returns the number of articles.
func (r *Repository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collection.Len()
}
