package api

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/mcpress/mcpress/pkg/article"
	"github.com/mcpress/mcpress/pkg/store"
	"github.com/mcpress/mcpress/pkg/vector"
)

// SearchResponse is the body for GET /v1/articles/search.
type SearchResponse struct {
	Query   string          `json:"query"`
	Results []article.Match `json:"results"`
	Count   int             `json:"count"`
}

// handleSearch handles GET /v1/articles/search requests.
// Query parameters:
//   - q (required): the search query text
//   - limit (optional, default 10): number of results to return
//   - similarity_threshold (optional): drop results scoring below this
//   - category, source (optional): metadata filters
//   - since (optional): keep only articles published on or after this date
func (s *Server) handleSearch(c *fiber.Ctx) error {
	query := c.Query("q")
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "q parameter is required"})
	}

	opts := store.SearchOptions{
		Limit:               c.QueryInt("limit", 10),
		SimilarityThreshold: s.config.SimilarityThreshold,
		Category:            c.Query("category"),
		Source:              c.Query("source"),
		Since:               c.Query("since"),
	}
	if opts.Limit <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "limit must be a positive integer"})
	}

	if raw := c.Query("similarity_threshold"); raw != "" {
		threshold, err := strconv.ParseFloat(raw, 32)
		if err != nil || threshold < 0 || threshold > 1 {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "similarity_threshold must be between 0 and 1"})
		}
		opts.SimilarityThreshold = float32(threshold)
	}

	matches, err := s.store.Search(c.Context(), query, opts)
	if errors.Is(err, vector.ErrEmbedding) {
		s.logger.Error("embedding unavailable for search", zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{Error: "embedding service unavailable"})
	}
	if err != nil {
		s.logger.Error("search failed",
			zap.String("query", query),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "search failed"})
	}

	return c.JSON(SearchResponse{Query: query, Results: matches, Count: len(matches)})
}
