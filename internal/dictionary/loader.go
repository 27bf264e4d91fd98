package dictionary

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mitchellh/go-homedir"
)

const defaultTimeout = 10 * time.Second

// Loader fetches the dictionary from a remote CSV resource or a local file.
type Loader struct {
	// Source is an http(s) URL or a file path. Empty means no dictionary.
	Source string

	// Client is used for http sources. Defaults to a client with Timeout.
	Client *http.Client

	Timeout time.Duration
}

// Fetch reads and parses the source, returning any failure to the caller.
func (l Loader) Fetch(ctx context.Context) (*Dictionary, error) {
	if strings.TrimSpace(l.Source) == "" {
		return New(nil), nil
	}

	rc, err := l.open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close() //nolint:errcheck

	return Parse(rc)
}

// Load is Fetch that never fails: errors are logged and an empty dictionary
// is returned so substitution becomes a no-op.
func (l Loader) Load(ctx context.Context) *Dictionary {
	start := time.Now()
	d, err := l.Fetch(ctx)
	if err != nil {
		log.Warn("Could not load pronunciation dictionary", "source", l.Source, "error", err)
		return New(nil)
	}
	log.Debug("Loaded pronunciation dictionary", "source", l.Source, "entries", d.Len(), "took", time.Since(start))
	return d
}

func (l Loader) open(ctx context.Context) (io.ReadCloser, error) {
	if !strings.HasPrefix(l.Source, "http://") && !strings.HasPrefix(l.Source, "https://") {
		path, err := homedir.Expand(l.Source)
		if err != nil {
			return nil, fmt.Errorf("unable to expand dictionary path: %w", err)
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("unable to open dictionary: %w", err)
		}
		return f, nil
	}

	timeout := l.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	client := l.Client
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.Source, nil)
	if err != nil {
		return nil, fmt.Errorf("unable to build dictionary request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch dictionary: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("unable to fetch dictionary: HTTP status %d", resp.StatusCode)
	}
	return resp.Body, nil
}
