// Package article defines the core domain types for ingested articles.
package article

import (
	"time"

	"github.com/google/uuid"
)

// DefaultCategory is assigned when the extractor returns a category that is
// not on the configured allow-list.
const DefaultCategory = "news"

// DefaultCategories is the allow-list used when none is configured.
var DefaultCategories = []string{
	"news", "tech", "sports", "business",
	"politics", "entertainment", "health", "science",
}

// Article is a stored article. The URL is the natural key: saving the same
// URL twice updates the existing record in place.
type Article struct {
	ID            uuid.UUID `json:"id"`
	URL           string    `json:"url"`
	Title         string    `json:"title"`
	Author        string    `json:"author,omitempty"`
	PublishedDate string    `json:"published_date,omitempty"`
	Content       string    `json:"content"`
	Summary       string    `json:"summary"`
	Keywords      []string  `json:"keywords"`
	Category      string    `json:"category"`
	Organization  string    `json:"organization,omitempty"`
	ImageURL      string    `json:"image_url,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Content holds the structured fields the LLM extracts from a fetched page.
type Content struct {
	Title         string   `json:"title"`
	Author        string   `json:"author,omitempty"`
	PublishedDate string   `json:"published_date,omitempty"`
	Content       string   `json:"content"`
	Summary       string   `json:"summary"`
	Keywords      []string `json:"keywords"`
	Category      string   `json:"category"`
}

// SaveRequest carries all fields for an upsert, including any edits the
// caller made to the extracted content before saving.
type SaveRequest struct {
	URL           string   `json:"url"`
	Title         string   `json:"title"`
	Author        string   `json:"author,omitempty"`
	PublishedDate string   `json:"published_date,omitempty"`
	Content       string   `json:"content"`
	Summary       string   `json:"summary"`
	Keywords      []string `json:"keywords"`
	Category      string   `json:"category"`
	Organization  string   `json:"organization,omitempty"`
	ImageURL      string   `json:"image_url,omitempty"`
}

// Match is an article paired with its similarity score from a semantic query.
type Match struct {
	Article

	// Score is the similarity score (higher = more similar).
	Score float32 `json:"score"`
}

// ListFilter narrows list and search operations.
type ListFilter struct {
	Category string
	Source   string
	Author   string

	// Since keeps only articles whose published date is on or after this
	// date (ISO format). Empty means no date filter.
	Since string

	Limit  int
	Offset int
}
