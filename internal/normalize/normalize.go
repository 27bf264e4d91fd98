// Package normalize turns scraped Markdown-ish text into plain text that a
// speech engine can read aloud.
package normalize

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"golang.org/x/text/language"
)

// Pause markers live in the Unicode private use area so no later pass can
// mistake them for text.
const (
	markMajor     = "\uE000"
	markMinor     = "\uE001"
	markParagraph = "\uE002"
)

// Options control the normalizer.
type Options struct {
	// SentenceEnd is the punctuation used to simulate pauses.
	SentenceEnd string

	// StripBoilerplate drops standalone navigation lines before any other
	// pass runs.
	StripBoilerplate bool
}

// DefaultOptions returns options for the default ja-JP speech language.
func DefaultOptions() Options {
	return ForLanguage("ja-JP")
}

// ForLanguage returns options whose pause punctuation suits the given BCP 47
// tag. Unknown tags fall back to a full stop.
func ForLanguage(tag string) Options {
	opts := Options{SentenceEnd: "."}
	t, err := language.Parse(tag)
	if err != nil {
		return opts
	}
	base, _ := t.Base()
	switch base.String() {
	case "ja", "zh":
		opts.SentenceEnd = "。"
	}
	return opts
}

var (
	// A URL runs up to whitespace or punctuation. Non-ASCII text is part of
	// it only at the start of a host label or path segment, so prose written
	// straight after an ASCII URL is kept.
	bareURLPattern = regexp.MustCompile(
		`[A-Za-z][A-Za-z0-9+.\-]*://` + urlSegment + `(?:/` + urlSegment + `)*`)

	markerRunPattern = regexp.MustCompile(`[\s\x{3000}]*[\x{E000}-\x{E002}](?:[\s\x{3000}]*[\x{E000}-\x{E002}])*[\s\x{3000}]*`)
	leadingMarkers   = regexp.MustCompile(`^[\s\x{3000}\x{E000}-\x{E002}]+`)
	trailingMarkers  = regexp.MustCompile(`[\s\x{3000}\x{E000}-\x{E002}]+$`)

	periodRunPattern = regexp.MustCompile(`[.。．](?:[ \t\x{3000}]*[.。．]){2,}`)
	spaceRunPattern  = regexp.MustCompile(`[\s\x{3000}]{2,}`)
)

const (
	urlASCII   = `[A-Za-z0-9\-_~:?#\[\]@!$&'()*+,;%]`
	urlUnicode = `[^\x00-\x{BF}\x{2000}-\x{206F}\x{3000}-\x{303F}\x{E000}-\x{E002}\x{FF01}-\x{FF20}\x{FF3B}-\x{FF40}\x{FF5B}-\x{FF65}]`
	urlSegment = `(?:` + urlUnicode + `+)?(?:` + urlASCII + `|[.=](?:` + urlUnicode + `+)?)*`
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.Strikethrough))

// Normalize converts raw article text into speakable text. It is pure and
// deterministic. Markdown structure is read from the parsed document; pause
// markers, URLs and punctuation are then handled on the plain text.
func Normalize(raw string, opts Options) string {
	if opts.SentenceEnd == "" {
		opts.SentenceEnd = "."
	}

	text := strings.ReplaceAll(raw, "\r\n", "\n")
	if opts.StripBoilerplate {
		text = StripBoilerplate(text)
	}

	text = plainText(text)
	text = bareURLPattern.ReplaceAllString(text, "")

	text = resolveMarkers(text, opts.SentenceEnd)

	text = periodRunPattern.ReplaceAllString(text, opts.SentenceEnd+" "+opts.SentenceEnd)
	text = spaceRunPattern.ReplaceAllString(text, " ")

	return strings.TrimSpace(text)
}

// resolveMarkers replaces pause markers with punctuation. A run of adjacent
// markers collapses to the strongest pause in the run, and a pause right
// after existing sentence punctuation reuses that mark.
func resolveMarkers(text, mark string) string {
	text = leadingMarkers.ReplaceAllString(text, "")
	text = trailingMarkers.ReplaceAllString(text, "")

	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for _, loc := range markerRunPattern.FindAllStringIndex(text, -1) {
		b.WriteString(text[last:loc[0]])
		run := text[loc[0]:loc[1]]
		ended := endsSentence(text[:loc[0]])
		switch {
		case strings.Contains(run, markMajor) && ended:
			b.WriteString(" " + mark + " ")
		case strings.Contains(run, markMajor):
			b.WriteString(mark + " " + mark + " ")
		case ended:
			b.WriteString(" ")
		default:
			b.WriteString(mark + " ")
		}
		last = loc[1]
	}
	b.WriteString(text[last:])
	return b.String()
}

func endsSentence(s string) bool {
	r, _ := utf8.DecodeLastRuneInString(s)
	switch r {
	case '.', '。', '．', '!', '?', '！', '？':
		return true
	}
	return false
}
