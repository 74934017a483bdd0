// Package jina implements a reader backed by a Jina Reader service, which
// converts any public web page to clean markdown.
package jina

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mcpress/mcpress/pkg/reader"
)

// DefaultTarget is the public Jina Reader endpoint.
const DefaultTarget = "https://r.jina.ai"

// Reader fetches pages through a Jina Reader deployment.
type Reader struct {
	target string
	client *http.Client
}

// New creates a Reader against the given Jina base URL. An empty target uses
// the public endpoint.
func New(target string) *Reader {
	if target == "" {
		target = DefaultTarget
	}
	return &Reader{
		target: strings.TrimRight(target, "/"),
		client: &http.Client{Timeout: 60 * time.Second},
	}
}

// Fetch retrieves url as markdown by prefixing it with the reader target.
func (r *Reader) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.target+"/"+url, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "text/plain")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("reader returned status %d for %s", resp.StatusCode, url)
	}

	content := strings.TrimSpace(string(body))
	if len(content) < reader.MinContentLength {
		return "", fmt.Errorf("%w: got %d characters from %s", reader.ErrEmptyContent, len(content), url)
	}

	return content, nil
}
