package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/mcpress/mcpress/pkg/article"
	"github.com/mcpress/mcpress/pkg/store"
)

var (
	searchToolName    = "search_articles"
	searchDescription = "Search stored articles using semantic search. Returns the most relevant articles for the query text, with similarity scores."

	getToolName    = "get_article"
	getDescription = "Get a single stored article by its ID, including the full content."

	listToolName    = "list_articles"
	listDescription = "List stored articles, optionally filtered by category, source organization or publication date."
)

// SearchArticlesInput represents the input arguments for the search tool.
type SearchArticlesInput struct {
	Query               string  `json:"query" jsonschema:"the search query text to find relevant articles"`
	Limit               int     `json:"limit,omitempty" jsonschema:"number of results to return (default: 10)"`
	SimilarityThreshold float32 `json:"similarity_threshold,omitempty" jsonschema:"drop results scoring below this value (0 to 1)"`
	Category            string  `json:"category,omitempty" jsonschema:"only return articles in this category"`
	Source              string  `json:"source,omitempty" jsonschema:"only return articles from this organization"`
	Since               string  `json:"since,omitempty" jsonschema:"only return articles published on or after this date (YYYY-MM-DD)"`
}

// SearchArticlesOutput represents the output of the search tool.
type SearchArticlesOutput struct {
	Query   string          `json:"query"`
	Results []article.Match `json:"results"`
	Count   int             `json:"count"`
}

// GetArticleInput represents the input arguments for the get tool.
type GetArticleInput struct {
	ID string `json:"id" jsonschema:"the article UUID"`
}

// GetArticleOutput represents the output of the get tool.
type GetArticleOutput struct {
	Article article.Article `json:"article"`
}

// ListArticlesInput represents the input arguments for the list tool.
type ListArticlesInput struct {
	Category string `json:"category,omitempty" jsonschema:"only list articles in this category"`
	Source   string `json:"source,omitempty" jsonschema:"only list articles from this organization"`
	Author   string `json:"author,omitempty" jsonschema:"only list articles by this author"`
	Since    string `json:"since,omitempty" jsonschema:"only list articles published on or after this date (YYYY-MM-DD)"`
	Limit    int    `json:"limit,omitempty" jsonschema:"number of articles to return (default: 20)"`
	Offset   int    `json:"offset,omitempty" jsonschema:"number of articles to skip"`
}

// ListArticlesOutput represents the output of the list tool.
type ListArticlesOutput struct {
	Articles []article.Article `json:"articles"`
	Count    int               `json:"count"`
}

// handleSearchArticles processes a search_articles request.
func (s *Server) handleSearchArticles(ctx context.Context, req *mcp.CallToolRequest, input SearchArticlesInput) (*mcp.CallToolResult, SearchArticlesOutput, error) {
	logger := s.config.Logger

	if input.Query == "" {
		return toolError("query is required"), SearchArticlesOutput{}, nil
	}

	limit := input.Limit
	if limit <= 0 {
		limit = 10
	}

	threshold := input.SimilarityThreshold
	if threshold == 0 {
		threshold = s.config.SimilarityThreshold
	}

	logger.Debug("MCP search request",
		zap.String("query", input.Query),
		zap.Int("limit", limit),
	)

	matches, err := s.config.Store.Search(ctx, input.Query, store.SearchOptions{
		Limit:               limit,
		SimilarityThreshold: threshold,
		Category:            input.Category,
		Source:              input.Source,
		Since:               input.Since,
	})
	if err != nil {
		logger.Error("failed to search articles", zap.Error(err))
		return toolError(fmt.Sprintf("Failed to search articles: %v", err)), SearchArticlesOutput{}, nil
	}

	output := SearchArticlesOutput{
		Query:   input.Query,
		Results: matches,
		Count:   len(matches),
	}
	return resultWithJSON(logger, output)
}

// handleGetArticle processes a get_article request.
func (s *Server) handleGetArticle(ctx context.Context, req *mcp.CallToolRequest, input GetArticleInput) (*mcp.CallToolResult, GetArticleOutput, error) {
	logger := s.config.Logger

	id, err := uuid.Parse(input.ID)
	if err != nil {
		return toolError(fmt.Sprintf("Invalid article id %q", input.ID)), GetArticleOutput{}, nil
	}

	art, err := s.config.Store.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return toolError(fmt.Sprintf("Article %s not found", input.ID)), GetArticleOutput{}, nil
	}
	if err != nil {
		logger.Error("failed to get article", zap.Error(err))
		return toolError(fmt.Sprintf("Failed to get article: %v", err)), GetArticleOutput{}, nil
	}

	return resultWithJSON(logger, GetArticleOutput{Article: *art})
}

// handleListArticles processes a list_articles request.
func (s *Server) handleListArticles(ctx context.Context, req *mcp.CallToolRequest, input ListArticlesInput) (*mcp.CallToolResult, ListArticlesOutput, error) {
	logger := s.config.Logger

	limit := input.Limit
	if limit <= 0 {
		limit = 20
	}

	articles, err := s.config.Store.List(ctx, article.ListFilter{
		Category: input.Category,
		Source:   input.Source,
		Author:   input.Author,
		Since:    input.Since,
		Limit:    limit,
		Offset:   input.Offset,
	})
	if err != nil {
		logger.Error("failed to list articles", zap.Error(err))
		return toolError(fmt.Sprintf("Failed to list articles: %v", err)), ListArticlesOutput{}, nil
	}

	return resultWithJSON(logger, ListArticlesOutput{Articles: articles, Count: len(articles)})
}

// toolError wraps a message in an error tool result.
func toolError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: msg},
		},
	}
}

// resultWithJSON returns the structured output along with its JSON
// serialization in a TextContent block.
// Per MCP spec: tools returning structured content should also return
// serialized JSON in a TextContent block for backwards compatibility.
func resultWithJSON[T any](logger *zap.Logger, output T) (*mcp.CallToolResult, T, error) {
	jsonBytes, err := json.Marshal(output)
	if err != nil {
		logger.Error("failed to marshal tool output", zap.Error(err))
		var zero T
		return toolError(fmt.Sprintf("Failed to serialize results: %v", err)), zero, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonBytes)},
		},
	}, output, nil
}
