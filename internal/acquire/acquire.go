// Package acquire turns a URL or pasted text into an article. URLs are
// fetched through a scraping proxy that returns either HTML or
// Markdown-ish text.
package acquire

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/dgnsrekt/readlater/internal/article"
)

// Mode selects how the proxy response is interpreted.
type Mode string

const (
	ModeHTML     Mode = "html"
	ModeMarkdown Mode = "markdown"
)

// Defaults.
const (
	DefaultProxyURL    = "https://api.allorigins.win/get?url={url}"
	DefaultMaxContent  = 32000
	DefaultTimeout     = 20 * time.Second
	DefaultPlaceholder = "Content could not be extracted from this page."
	DefaultTitle       = "No Title"

	maxResponseBytes = 8 << 20
)

// Config controls URL acquisition.
type Config struct {
	// ProxyURL is the proxy endpoint. "{url}" is replaced by the
	// query-escaped target and "{raw}" by the target as is. Without either
	// placeholder the escaped target is appended.
	ProxyURL string

	Mode Mode

	Timeout time.Duration

	// MaxContent caps the stored content length in characters.
	MaxContent int

	// RequestsPerMinute limits calls to the proxy. Zero disables limiting.
	RequestsPerMinute int

	// Placeholder replaces content when nothing could be extracted.
	Placeholder string
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		ProxyURL:          DefaultProxyURL,
		Mode:              ModeHTML,
		Timeout:           DefaultTimeout,
		MaxContent:        DefaultMaxContent,
		RequestsPerMinute: 30,
		Placeholder:       DefaultPlaceholder,
	}
}

// Acquirer creates articles.
type Acquirer struct {
	cfg       Config
	client    *http.Client
	limiter   *rate.Limiter
	extractor Extractor
}

// Option customises an Acquirer.
type Option func(*Acquirer)

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) Option {
	return func(a *Acquirer) { a.client = c }
}

// WithExtractor replaces the main content extractor used in HTML mode.
func WithExtractor(e Extractor) Option {
	return func(a *Acquirer) { a.extractor = e }
}

// New returns an Acquirer. Zero fields in cfg take their defaults.
func New(cfg Config, opts ...Option) *Acquirer {
	def := DefaultConfig()
	if cfg.ProxyURL == "" {
		cfg.ProxyURL = def.ProxyURL
	}
	if cfg.Mode == "" {
		cfg.Mode = def.Mode
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.MaxContent <= 0 {
		cfg.MaxContent = def.MaxContent
	}
	if cfg.Placeholder == "" {
		cfg.Placeholder = def.Placeholder
	}

	a := &Acquirer{
		cfg:       cfg,
		client:    &http.Client{Timeout: cfg.Timeout},
		extractor: DefaultExtractor{},
	}
	if cfg.RequestsPerMinute > 0 {
		a.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1)
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Config returns the effective configuration.
func (a *Acquirer) Config() Config { return a.cfg }

// FetchArticle fetches target through the proxy and builds an article from
// the response. No retry is attempted.
func (a *Acquirer) FetchArticle(ctx context.Context, target string) (article.Article, error) {
	target = strings.TrimSpace(target)
	if err := validateURL(target); err != nil {
		return article.Article{}, &Error{Kind: KindInvalidURL, URL: target, Err: err}
	}

	if a.limiter != nil {
		if err := a.limiter.Wait(ctx); err != nil {
			return article.Article{}, &Error{Kind: KindNetwork, URL: target, Err: err}
		}
	}

	start := time.Now()
	body, err := a.get(ctx, target)
	if err != nil {
		return article.Article{}, err
	}

	var title, content string
	switch a.cfg.Mode {
	case ModeMarkdown:
		title, content = SplitMarkdown(body)
	default:
		title, content, err = a.parseHTML(body)
		if err != nil {
			return article.Article{}, &Error{Kind: KindParse, URL: target, Err: err}
		}
	}

	content = a.finish(content)
	if title == "" {
		title = DefaultTitle
	}

	log.Debug("Fetched article", "url", target, "mode", a.cfg.Mode, "chars", len([]rune(content)), "took", time.Since(start))
	return article.New(title, target, content), nil
}

// CreateFromText builds an article from pasted text. An empty title falls
// back to the first non-empty line of body.
func (a *Acquirer) CreateFromText(title, body string) article.Article {
	title = strings.TrimSpace(title)
	body = strings.TrimSpace(strings.ReplaceAll(body, "\r\n", "\n"))
	if title == "" {
		title = firstLine(body)
	}
	if title == "" {
		title = DefaultTitle
	}
	return article.New(title, "", a.finish(body))
}

func (a *Acquirer) finish(content string) string {
	content = strings.TrimSpace(content)
	if r := []rune(content); len(r) > a.cfg.MaxContent {
		content = strings.TrimSpace(string(r[:a.cfg.MaxContent]))
	}
	if content == "" {
		return a.cfg.Placeholder
	}
	return content
}

// IsPlaceholder reports whether content is the extraction failure text.
func (a *Acquirer) IsPlaceholder(content string) bool {
	return content == a.cfg.Placeholder
}

func (a *Acquirer) get(ctx context.Context, target string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ProxyURL(a.cfg.ProxyURL, target), nil)
	if err != nil {
		return "", &Error{Kind: KindInvalidURL, URL: target, Err: err}
	}
	if a.cfg.Mode == ModeMarkdown {
		req.Header.Set("Accept", "text/plain, text/markdown")
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return "", &Error{Kind: KindNetwork, URL: target, Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &Error{Kind: KindStatus, URL: target, Status: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", &Error{Kind: KindNetwork, URL: target, Err: err}
	}
	return string(data), nil
}

// ProxyURL expands the proxy template for target.
func ProxyURL(template, target string) string {
	switch {
	case strings.Contains(template, "{url}"):
		return strings.ReplaceAll(template, "{url}", url.QueryEscape(target))
	case strings.Contains(template, "{raw}"):
		return strings.ReplaceAll(template, "{raw}", target)
	default:
		return template + url.QueryEscape(target)
	}
}

var errScheme = errors.New("only http and https urls are supported")

func validateURL(target string) error {
	if target == "" {
		return errors.New("url is empty")
	}
	u, err := url.Parse(target)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errScheme
	}
	if u.Host == "" {
		return fmt.Errorf("url %q has no host", target)
	}
	return nil
}

func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}
