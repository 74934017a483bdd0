package api

import (
	"net/http"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/mcpress/mcpress/pkg/eventstream"
	"github.com/mcpress/mcpress/pkg/ingest"
	"github.com/mcpress/mcpress/pkg/reader"
	"github.com/mcpress/mcpress/pkg/store"
)

// Server is the API server for ingesting and querying articles.
type Server struct {
	config    Config
	store     store.ArticleStore
	reader    reader.Reader
	extractor Extractor
	publisher eventstream.Publisher
	ingester  *ingest.Pool
	logger    *zap.Logger
	app       *fiber.App
}

// NewServer creates a new API server. Dependencies are injected so CLI
// commands and tests can share them.
func NewServer(
	config Config,
	articles store.ArticleStore,
	pageReader reader.Reader,
	extractor Extractor,
	publisher eventstream.Publisher,
	mcpHandler http.Handler,
	logger *zap.Logger,
) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config:    config,
		store:     articles,
		reader:    pageReader,
		extractor: extractor,
		publisher: publisher,
		logger:    logger,
		app:       app,
	}

	// Batch ingestion runs through a background worker pool. Left nil when
	// the server is built without a reader or extractor (search-only use).
	if articles != nil && pageReader != nil && extractor != nil {
		pool, err := ingest.NewPool(&ingest.Config{
			Store:     articles,
			Reader:    pageReader,
			Extractor: extractor,
			Publisher: publisher,
			Logger:    logger,
		})
		if err != nil {
			logger.Warn("ingest pool unavailable, batch ingestion disabled", zap.Error(err))
		} else {
			s.ingester = pool
		}
	}

	app.Get("/ping", s.handlePing)
	app.Post("/v1/articles/ingest", s.handleIngest)
	app.Post("/v1/articles/extract", s.handleExtract)
	app.Post("/v1/articles", s.handleSaveArticle)
	app.Get("/v1/articles/search", s.handleSearch)
	app.Get("/v1/articles/:id", s.handleGetArticle)
	app.Get("/v1/articles", s.handleListArticles)

	if mcpHandler != nil {
		app.All("/mcp", adaptor.HTTPHandler(mcpHandler))
	}

	return s
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server",
		zap.String("listen", s.config.ListenAddr),
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server, draining any queued
// ingestion jobs.
func (s *Server) Shutdown() error {
	err := s.app.Shutdown()
	if s.ingester != nil {
		s.ingester.Close()
	}
	return err
}

// App exposes the fiber app for in-process testing.
func (s *Server) App() *fiber.App {
	return s.app
}
