package extractor

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mcpress/mcpress/pkg/article"
)

// rawExtraction tolerates the shapes models actually return: keywords may be
// a JSON array, a JSON-encoded array inside a string, or a comma-joined
// string.
type rawExtraction struct {
	Title         string          `json:"title"`
	Author        string          `json:"author"`
	PublishedDate string          `json:"published_date"`
	Content       string          `json:"content"`
	Summary       string          `json:"summary"`
	Keywords      json.RawMessage `json:"keywords"`
	Category      string          `json:"category"`
}

// parseResponse decodes the model output into article content, validating
// the category against the allow-list.
func parseResponse(response string, categories []string) (*article.Content, error) {
	payload := stripCodeFences(response)

	var raw rawExtraction
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	if raw.Title == "" || raw.Content == "" {
		return nil, fmt.Errorf("%w: missing title or content", ErrParse)
	}

	content := &article.Content{
		Title:         strings.TrimSpace(raw.Title),
		Author:        strings.TrimSpace(raw.Author),
		Content:       strings.TrimSpace(raw.Content),
		Summary:       strings.TrimSpace(raw.Summary),
		Keywords:      coerceKeywords(raw.Keywords),
		Category:      article.ValidateCategory(raw.Category, categories),
	}

	if parsed, ok := article.ParseDate(raw.PublishedDate); ok {
		content.PublishedDate = parsed.Format("2006-01-02")
	}

	return content, nil
}

// stripCodeFences removes a surrounding markdown code fence, with or without
// a language tag. Models add these despite instructions not to.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx >= 0 {
		// Drop the language tag line (e.g. ```json).
		if !strings.ContainsAny(s[:idx], "{[") {
			s = s[idx+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")

	return strings.TrimSpace(s)
}

// coerceKeywords accepts a JSON array, a stringified JSON array, or a
// comma-separated string.
func coerceKeywords(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return cleanKeywords(list)
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}

	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "[") {
		if err := json.Unmarshal([]byte(s), &list); err == nil {
			return cleanKeywords(list)
		}
	}

	return cleanKeywords(strings.Split(s, ","))
}

func cleanKeywords(in []string) []string {
	out := make([]string, 0, len(in))
	for _, k := range in {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}
