// Package extractor turns fetched page content into structured article
// fields using an OpenAI-compatible chat model.
package extractor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/mcpress/mcpress/pkg/article"
	"github.com/mcpress/mcpress/pkg/utils"
)

// ErrParse is returned when the model response cannot be decoded into
// article fields.
var ErrParse = errors.New("could not parse extraction response")

// maxPromptContent caps how much page text is sent to the model. Pages
// longer than this get truncated, which is fine for extraction since the
// lede carries the metadata.
const maxPromptContent = 15000

// Config holds extractor settings.
type Config struct {
	// Target is an OpenAI-compatible base URL (Groq by default).
	Target string

	// Model is the chat model used for extraction.
	Model string

	// APIKey authenticates against the target.
	APIKey string

	// Categories is the allow-list the extracted category is validated
	// against. Empty uses the built-in default list.
	Categories []string
}

// Extractor extracts structured article content from page text.
type Extractor struct {
	client     *openai.Client
	model      string
	categories []string
	logger     *zap.Logger
}

// New creates an Extractor against the configured chat endpoint.
func New(cfg Config, logger *zap.Logger) *Extractor {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.Target != "" {
		clientCfg.BaseURL = cfg.Target
	}

	categories := cfg.Categories
	if len(categories) == 0 {
		categories = article.DefaultCategories
	}

	return &Extractor{
		client:     openai.NewClientWithConfig(clientCfg),
		model:      cfg.Model,
		categories: categories,
		logger:     logger,
	}
}

// Extract asks the model to pull structured fields out of pageContent.
func (e *Extractor) Extract(ctx context.Context, url, pageContent string) (*article.Content, error) {
	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are a precise article extraction engine. You respond with a single JSON object and nothing else.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: e.buildPrompt(url, pageContent),
			},
		},
		Temperature: 0.1,
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: model returned no choices", ErrParse)
	}

	content, err := parseResponse(resp.Choices[0].Message.Content, e.categories)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("extracted article content",
		zap.String("url", url),
		zap.String("title", content.Title),
		zap.String("category", content.Category),
	)

	return content, nil
}

func (e *Extractor) buildPrompt(url, pageContent string) string {
	var b strings.Builder

	b.WriteString("Extract the article from the page below into JSON with exactly these keys:\n")
	b.WriteString(`  "title": the article headline` + "\n")
	b.WriteString(`  "author": the author's name, or "" if absent` + "\n")
	b.WriteString(`  "published_date": publication date in YYYY-MM-DD format, or "" if absent` + "\n")
	b.WriteString(`  "content": the full article text, cleaned of navigation and ads` + "\n")
	b.WriteString(`  "summary": a 2-3 sentence summary` + "\n")
	b.WriteString(`  "keywords": an array of 3-8 topical keywords` + "\n")
	fmt.Fprintf(&b, "  %q: one of: %s\n", "category", strings.Join(e.categories, ", "))
	b.WriteString("\nRespond with the JSON object only, no prose, no code fences.\n\n")

	fmt.Fprintf(&b, "URL: %s\n\nPage content:\n%s\n", url, utils.Truncate(pageContent, maxPromptContent))

	return b.String()
}
