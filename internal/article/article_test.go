package article

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgnsrekt/readlater/internal/store"
)

func TestNewIDsAreUniqueAndOrdered(t *testing.T) {
	seen := make(map[string]bool)
	prev := ""
	for range 500 {
		id := NewID()
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
		if prev != "" {
			assert.Less(t, prev, id)
		}
		prev = id
	}
}

func TestTruncateTitle(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"short", "Hello", "Hello"},
		{"whitespace collapsed", "  Hello \n  World ", "Hello World"},
		{"exactly max", strings.Repeat("a", MaxTitleLength), strings.Repeat("a", MaxTitleLength)},
		{"ascii cut", strings.Repeat("a", 150), strings.Repeat("a", MaxTitleLength)},
		{"multibyte cut by rune", strings.Repeat("記", 120), strings.Repeat("記", MaxTitleLength)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TruncateTitle(tt.input))
		})
	}
}

func TestArticleJSONKeys(t *testing.T) {
	a := Article{
		ID:        "id-1",
		Title:     "T",
		URL:       "https://example.com",
		Content:   "Body",
		SavedDate: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	data, err := json.Marshal(a)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"id":"id-1","title":"T","url":"https://example.com","content":"Body","savedDate":"2026-01-02T03:04:05Z"}`,
		string(data))
}

func TestSource(t *testing.T) {
	assert.Equal(t, "example.com", Article{URL: "https://www.example.com/a/b?c"}.Source())
	assert.Equal(t, "blog.example.org", Article{URL: "http://blog.example.org"}.Source())
	assert.Equal(t, "text", Article{}.Source())
}

func TestCollection(t *testing.T) {
	a, b, c := Article{ID: "a"}, Article{ID: "b"}, Article{ID: "c"}
	col := NewCollection()
	require.NoError(t, col.InsertFront(a))
	require.NoError(t, col.InsertFront(b))
	require.NoError(t, col.InsertFront(c))

	assert.Equal(t, []Article{c, b, a}, col.Items())
	assert.ErrorIs(t, col.InsertFront(Article{ID: "b"}), ErrDuplicateID)

	got, ok := col.Find("b")
	assert.True(t, ok)
	assert.Equal(t, b, got)

	assert.True(t, col.RemoveByID("b"))
	assert.False(t, col.RemoveByID("b"))
	assert.Equal(t, []Article{c, a}, col.Items())

	_, ok = col.Find("missing")
	assert.False(t, ok)
}

func TestCollectionItemsIsACopy(t *testing.T) {
	col := NewCollection(Article{ID: "a", Title: "orig"})
	items := col.Items()
	items[0].Title = "changed"

	got, _ := col.Find("a")
	assert.Equal(t, "orig", got.Title)
}

func TestRepositoryRoundTrip(t *testing.T) {
	s := store.NewMemory()
	repo := NewRepository(s)
	assert.Equal(t, 0, repo.Load().Len())

	first := New("First", "https://example.com/1", "one")
	second := New("Second", "", "two")
	require.NoError(t, repo.InsertFront(first))
	require.NoError(t, repo.InsertFront(second))

	reloaded := NewRepository(s).Load()
	require.Equal(t, 2, reloaded.Len())

	items := reloaded.Items()
	for i, want := range []Article{second, first} {
		assert.Equal(t, want.ID, items[i].ID)
		assert.Equal(t, want.Title, items[i].Title)
		assert.Equal(t, want.URL, items[i].URL)
		assert.Equal(t, want.Content, items[i].Content)
		assert.True(t, want.SavedDate.Equal(items[i].SavedDate))
	}
}

func TestRepositoryInsertThenRemoveRestoresState(t *testing.T) {
	s := store.NewMemory()
	repo := NewRepository(s)
	repo.Load()
	require.NoError(t, repo.InsertFront(New("Keep", "", "k")))

	before, err := s.Get(StoreKey)
	require.NoError(t, err)

	added := New("Temp", "", "t")
	require.NoError(t, repo.InsertFront(added))
	removed, err := repo.RemoveByID(added.ID)
	require.NoError(t, err)
	require.True(t, removed)

	after, err := s.Get(StoreKey)
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(after))
}

func TestRepositoryRemoveMissing(t *testing.T) {
	repo := NewRepository(store.NewMemory())
	removed, err := repo.RemoveByID("nope")
	assert.NoError(t, err)
	assert.False(t, removed)
}

func TestRepositoryCorruptSnapshotIsEmpty(t *testing.T) {
	s := store.NewMemory()
	require.NoError(t, s.Put(StoreKey, []byte("{not json")))

	repo := NewRepository(s)
	assert.Equal(t, 0, repo.Load().Len())
	assert.Equal(t, 0, repo.Len())

	require.NoError(t, repo.InsertFront(New("Fresh", "", "x")))
	assert.Equal(t, 1, NewRepository(s).Load().Len())
}

type failingStore struct{ *store.Memory }

func (failingStore) Put(string, []byte) error { return errors.New("disk full") }

func TestRepositoryFailedSaveKeepsMemoryState(t *testing.T) {
	repo := NewRepository(failingStore{store.NewMemory()})
	repo.Load()

	err := repo.InsertFront(New("Lost", "", "x"))
	require.Error(t, err)
	assert.Equal(t, 0, repo.Len())
}

func TestRepositoryGet(t *testing.T) {
	repo := NewRepository(store.NewMemory())
	a := New("Title", "", "body")
	require.NoError(t, repo.InsertFront(a))

	got, ok := repo.Get(a.ID)
	require.True(t, ok)
	assert.Equal(t, "body", got.Content)

	_, ok = repo.Get("other")
	assert.False(t, ok)
}
