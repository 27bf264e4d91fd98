package acquire

import (
	"encoding/json"
	"fmt"
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"codeberg.org/readeck/go-readability/v2"
	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/log"
	"github.com/microcosm-cc/bluemonday"

	"github.com/dgnsrekt/readlater/internal/article"
)

// Extractor pulls the readable body out of a parsed page.
type Extractor interface {
	ExtractMainContent(doc *goquery.Document) string
}

// minReadableLength is the shortest readability result trusted over the
// region fallback. Shorter output is usually just the title or a byline.
const minReadableLength = 200

// DefaultExtractor runs readability and falls back to the article, main or
// body region with page chrome removed.
type DefaultExtractor struct{}

// ExtractMainContent implements Extractor.
func (DefaultExtractor) ExtractMainContent(doc *goquery.Document) string {
	if raw, err := doc.Html(); err == nil {
		parsed, err := readability.FromReader(strings.NewReader(raw), nil)
		if err == nil {
			var buf strings.Builder
			if err := parsed.RenderText(&buf); err == nil {
				text := normalizeLines(buf.String())
				if utf8.RuneCountInString(text) >= minReadableLength {
					return text
				}
			}
		} else {
			log.Debug("Readability failed, using page region", "error", err)
		}
	}
	return RegionText(doc)
}

// RegionText returns the text of the first of article, main and body, with
// script, style, nav, footer and header elements removed. The document is
// modified.
func RegionText(doc *goquery.Document) string {
	region := doc.Find("article").First()
	if region.Length() == 0 {
		region = doc.Find("main").First()
	}
	if region.Length() == 0 {
		region = doc.Find("body").First()
	}
	if region.Length() == 0 {
		region = doc.Selection
	}
	region.Find("script, style, noscript, nav, footer, header").Remove()

	var paragraphs []string
	region.Find("h1, h2, h3, h4, h5, h6, p, li, pre, blockquote").Each(func(_ int, s *goquery.Selection) {
		// Nested blocks are picked up on their own.
		if s.Find("p, li, pre, blockquote").Length() > 0 {
			return
		}
		text := strings.Join(strings.Fields(s.Text()), " ")
		if goquery.NodeName(s) == "pre" {
			text = normalizeLines(s.Text())
		}
		if text != "" {
			paragraphs = append(paragraphs, text)
		}
	})
	if len(paragraphs) == 0 {
		return normalizeLines(region.Text())
	}
	return strings.Join(paragraphs, "\n\n")
}

type envelope struct {
	Contents *string `json:"contents"`
}

var titlePolicy = bluemonday.StrictPolicy()

func (a *Acquirer) parseHTML(body string) (title, content string, err error) {
	page := body
	if trimmed := strings.TrimSpace(body); strings.HasPrefix(trimmed, "{") {
		var env envelope
		if err := json.Unmarshal([]byte(trimmed), &env); err != nil {
			return "", "", fmt.Errorf("unable to decode proxy envelope: %w", err)
		}
		if env.Contents == nil {
			return "", "", fmt.Errorf("proxy envelope has no contents")
		}
		page = *env.Contents
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return "", "", fmt.Errorf("unable to parse html: %w", err)
	}

	return pageTitle(doc), a.extractor.ExtractMainContent(doc), nil
}

func pageTitle(doc *goquery.Document) string {
	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title, _ = doc.Find(`meta[property="og:title"]`).First().Attr("content")
	}
	title = html.UnescapeString(titlePolicy.Sanitize(title))
	title = article.TruncateTitle(title)
	if title == "" {
		return DefaultTitle
	}
	return title
}

var inlineSpace = regexp.MustCompile(`[ \t\x{00A0}\x{3000}]+`)

// normalizeLines collapses horizontal whitespace inside each line and
// squeezes blank line runs to a single paragraph break.
func normalizeLines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	var out []string
	blank := false
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(inlineSpace.ReplaceAllString(line, " "))
		if line == "" {
			blank = len(out) > 0
			continue
		}
		if blank {
			out = append(out, "")
			blank = false
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
