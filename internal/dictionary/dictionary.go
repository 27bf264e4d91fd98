// Package dictionary holds the pronunciation dictionary used to fix up
// readings before text is handed to the speech engine.
package dictionary

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// Dictionary maps surface forms to readings. Matching is case-insensitive.
// The zero value is an empty dictionary.
type Dictionary struct {
	readings map[string]string // keyed by lower-cased surface form
	pattern  *regexp.Regexp
}

// New builds a dictionary from surface form to reading pairs. Entries with an
// empty side are ignored. Surface forms differing only in case collapse into
// one entry; the lexically greatest original key wins so the result does not
// depend on map order.
func New(entries map[string]string) *Dictionary {
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	readings := make(map[string]string, len(entries))
	for _, k := range keys {
		surface := strings.TrimSpace(k)
		reading := strings.TrimSpace(entries[k])
		if surface == "" || reading == "" {
			continue
		}
		readings[strings.ToLower(surface)] = reading
	}
	return build(readings)
}

func build(readings map[string]string) *Dictionary {
	d := &Dictionary{readings: readings}
	if len(readings) == 0 {
		return d
	}

	// Longest surface form first so "AI chip" wins over "AI". Ties break
	// lexically to keep the alternation stable.
	keys := make([]string, 0, len(readings))
	for k := range readings {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		li, lj := utf8.RuneCountInString(keys[i]), utf8.RuneCountInString(keys[j])
		if li != lj {
			return li > lj
		}
		return keys[i] < keys[j]
	})

	quoted := make([]string, len(keys))
	for i, k := range keys {
		quoted[i] = regexp.QuoteMeta(k)
	}
	d.pattern = regexp.MustCompile("(?i)(?:" + strings.Join(quoted, "|") + ")")
	return d
}

// Len returns the number of entries.
func (d *Dictionary) Len() int {
	if d == nil {
		return 0
	}
	return len(d.readings)
}

// Lookup returns the reading for a surface form.
func (d *Dictionary) Lookup(surface string) (string, bool) {
	if d == nil {
		return "", false
	}
	r, ok := d.readings[strings.ToLower(surface)]
	return r, ok
}

// Apply replaces every occurrence of every surface form with its reading.
// Replacements are not rescanned, so a reading that contains another surface
// form is left alone.
func (d *Dictionary) Apply(text string) string {
	if d == nil || d.pattern == nil || text == "" {
		return text
	}
	return d.pattern.ReplaceAllStringFunc(text, func(match string) string {
		if r, ok := d.readings[strings.ToLower(match)]; ok {
			return r
		}
		return match
	})
}

// ErrNoHeader is returned by Parse when the source has no rows at all.
var ErrNoHeader = errors.New("dictionary source is empty")

// Parse reads comma-separated rows of surface form and reading. The first
// row is a header and is skipped, as are rows where either field is blank.
// Columns past the second are ignored.
func Parse(r io.Reader) (*Dictionary, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	if _, err := cr.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoHeader
		}
		return nil, fmt.Errorf("unable to read dictionary header: %w", err)
	}

	readings := make(map[string]string)
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("unable to read dictionary row: %w", err)
		}
		if len(record) < 2 {
			continue
		}
		surface := strings.TrimSpace(record[0])
		reading := strings.TrimSpace(record[1])
		if surface == "" || reading == "" {
			continue
		}
		readings[strings.ToLower(surface)] = reading
	}
	return build(readings), nil
}
