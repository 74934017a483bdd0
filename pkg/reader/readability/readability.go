// Package readability implements a reader that fetches pages directly and
// strips boilerplate with go-readability. It needs no external service,
// which makes it the offline alternative to the jina reader.
package readability

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	goreadability "github.com/go-shiori/go-readability"

	"github.com/mcpress/mcpress/pkg/reader"
)

// Reader fetches pages over plain HTTP and extracts the main content.
type Reader struct {
	client *http.Client
}

// New creates a readability Reader.
func New() *Reader {
	return &Reader{
		client: &http.Client{Timeout: 60 * time.Second},
	}
}

// Fetch downloads rawURL and returns the readable text of the page.
func (r *Reader) Fetch(ctx context.Context, rawURL string) (string, error) {
	pageURL, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parsing url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", "mcpress/1.0")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch returned status %d for %s", resp.StatusCode, rawURL)
	}

	page, err := goreadability.FromReader(resp.Body, pageURL)
	if err != nil {
		return "", fmt.Errorf("extracting readable content: %w", err)
	}

	content := strings.TrimSpace(page.TextContent)
	if page.Title != "" {
		content = page.Title + "\n\n" + content
	}
	if len(content) < reader.MinContentLength {
		return "", fmt.Errorf("%w: got %d characters from %s", reader.ErrEmptyContent, len(content), rawURL)
	}

	return content, nil
}
