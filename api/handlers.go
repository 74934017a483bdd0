package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mcpress/mcpress/pkg/article"
	"github.com/mcpress/mcpress/pkg/eventstream"
	"github.com/mcpress/mcpress/pkg/ingest"
	"github.com/mcpress/mcpress/pkg/store"
)

// ExtractRequest is the body for POST /v1/articles/extract.
type ExtractRequest struct {
	URL string `json:"url"`
}

// ExtractResponse carries the extracted fields back for review before save.
type ExtractResponse struct {
	URL     string          `json:"url"`
	Content article.Content `json:"content"`
}

// ListResponse is the body for GET /v1/articles.
type ListResponse struct {
	Articles []article.Article `json:"articles"`
	Count    int               `json:"count"`
}

// IngestRequest is the body for POST /v1/articles/ingest.
type IngestRequest struct {
	URLs []string `json:"urls"`

	// Category overrides the extracted category for every queued URL.
	Category string `json:"category,omitempty"`
}

// IngestResponse reports how many URLs were queued for background ingestion.
type IngestResponse struct {
	Queued  int `json:"queued"`
	Dropped int `json:"dropped"`
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleIngest queues URLs for background ingestion and returns immediately.
func (s *Server) handleIngest(c *fiber.Ctx) error {
	if s.ingester == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{Error: "ingestion is not configured"})
	}

	var req IngestRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}
	if len(req.URLs) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "urls is required"})
	}

	var resp IngestResponse
	seen := make(map[string]bool, len(req.URLs))
	for _, u := range req.URLs {
		u = article.NormalizeURL(u)
		if u == "" {
			resp.Dropped++
			continue
		}
		// Repeated URLs in one batch collapse to a single job: racing two
		// saves of the same article buys nothing.
		if seen[u] {
			continue
		}
		seen[u] = true
		if s.ingester.Enqueue(ingest.Job{URL: u, Category: req.Category}) {
			resp.Queued++
		} else {
			resp.Dropped++
		}
	}

	return c.Status(fiber.StatusAccepted).JSON(resp)
}

// handleExtract fetches a URL and runs LLM extraction without saving.
func (s *Server) handleExtract(c *fiber.Ctx) error {
	var req ExtractRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}
	if req.URL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "url is required"})
	}

	ctx := c.Context()

	pageContent, err := s.reader.Fetch(ctx, req.URL)
	if err != nil {
		s.logger.Warn("fetch failed",
			zap.String("url", req.URL),
			zap.Error(err),
		)
		return c.Status(fiber.StatusBadGateway).JSON(ErrorResponse{Error: "failed to fetch url: " + err.Error()})
	}

	content, err := s.extractor.Extract(ctx, req.URL, pageContent)
	if err != nil {
		s.logger.Warn("extraction failed",
			zap.String("url", req.URL),
			zap.Error(err),
		)
		return c.Status(fiber.StatusBadGateway).JSON(ErrorResponse{Error: "failed to extract article: " + err.Error()})
	}

	return c.JSON(ExtractResponse{URL: req.URL, Content: *content})
}

// handleSaveArticle upserts an article keyed by URL.
func (s *Server) handleSaveArticle(c *fiber.Ctx) error {
	var req article.SaveRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}
	if req.URL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "url is required"})
	}
	if req.Title == "" || req.Content == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "title and content are required"})
	}

	art, err := s.store.Save(c.Context(), req)
	if err != nil {
		s.logger.Error("saving article failed",
			zap.String("url", req.URL),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to save article"})
	}

	s.publishSaved(c, art)

	status := fiber.StatusCreated
	if !art.CreatedAt.Equal(art.UpdatedAt) {
		status = fiber.StatusOK
	}
	return c.Status(status).JSON(art)
}

// publishSaved emits an article event. Publish failures are logged, never
// surfaced to the client.
func (s *Server) publishSaved(c *fiber.Ctx, art *article.Article) {
	if s.publisher == nil {
		return
	}

	event := eventstream.NewArticleSaved(*art, !art.CreatedAt.Equal(art.UpdatedAt))
	if err := s.publisher.PublishArticleSaved(c.Context(), event); err != nil {
		s.logger.Warn("publishing article event failed",
			zap.String("url", art.URL),
			zap.Error(err),
		)
	}
}

// handleGetArticle returns a single article by ID.
func (s *Server) handleGetArticle(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid article id"})
	}

	art, err := s.store.Get(c.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "article not found"})
	}
	if err != nil {
		s.logger.Error("getting article failed",
			zap.String("id", id.String()),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to get article"})
	}

	return c.JSON(art)
}

// handleListArticles returns articles matching the query filters.
func (s *Server) handleListArticles(c *fiber.Ctx) error {
	filter := article.ListFilter{
		Category: c.Query("category"),
		Source:   c.Query("source"),
		Author:   c.Query("author"),
		Since:    c.Query("since"),
		Limit:    c.QueryInt("limit", 20),
		Offset:   c.QueryInt("offset", 0),
	}
	if filter.Limit <= 0 || filter.Offset < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "limit must be positive and offset non-negative"})
	}

	articles, err := s.store.List(c.Context(), filter)
	if err != nil {
		s.logger.Error("listing articles failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to list articles"})
	}

	return c.JSON(ListResponse{Articles: articles, Count: len(articles)})
}
