// Package reader fetches web pages and returns their content as text
// suitable for LLM extraction.
package reader

import (
	"context"
	"errors"
)

// ErrEmptyContent is returned when a fetch succeeds but yields too little
// content to be a real article.
var ErrEmptyContent = errors.New("fetched content is empty or too short")

// MinContentLength is the minimum number of characters a fetched page must
// contain. Shorter responses are treated as fetch failures since they are
// usually error pages or paywalls.
const MinContentLength = 100

// Reader fetches the content of a URL.
type Reader interface {
	// Fetch retrieves the page at url and returns its textual content.
	Fetch(ctx context.Context, url string) (string, error)
}
