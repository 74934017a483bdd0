// Package ingest provides an asynchronous worker pool that runs the full
// ingestion pipeline for queued URLs: fetch the page, extract the article
// with the LLM, save it to the store and publish a saved event.
//
// The pool decouples slow fetch and extraction work from the API's HTTP hot
// path: batch ingestion requests return immediately while workers drain the
// queue in the background.
package ingest

import (
	"context"
	"fmt"
	"math"
	"sync"

	"go.uber.org/zap"

	"github.com/mcpress/mcpress/pkg/article"
	"github.com/mcpress/mcpress/pkg/eventstream"
	"github.com/mcpress/mcpress/pkg/reader"
	"github.com/mcpress/mcpress/pkg/store"
)

var (
	defaultNumWorkers   uint = 3
	defaultJobQueueSize uint = 256
)

// Extractor turns fetched page content into structured article fields.
type Extractor interface {
	Extract(ctx context.Context, url, pageContent string) (*article.Content, error)
}

// Job is a unit of ingestion work for the worker pool.
type Job struct {
	// URL is the page to ingest.
	URL string

	// Category, when set, overrides the extracted category.
	Category string
}

// Config is the configuration options for the worker pool.
type Config struct {
	// Store persists extracted articles.
	Store store.ArticleStore

	// Reader fetches page content for a URL.
	Reader reader.Reader

	// Extractor extracts article fields from fetched pages.
	Extractor Extractor

	// Publisher is the optional event publisher for saved articles.
	Publisher eventstream.Publisher

	// NumWorkers is the number of background workers in the pool.
	NumWorkers uint

	// QueueSize is the capacity of the buffered job channel (defaults to 256).
	QueueSize uint

	// Logger is the provided zap logger
	Logger *zap.Logger
}

// Pool processes ingestion jobs asynchronously via a worker pool.
type Pool struct {
	config *Config
	queue  chan Job
	wg     sync.WaitGroup
	logger *zap.Logger
}

// NewPool creates a new Pool and starts its worker goroutines.
func NewPool(c *Config) (*Pool, error) {
	if c.Store == nil {
		return nil, fmt.Errorf("article store is required")
	}
	if c.Reader == nil {
		return nil, fmt.Errorf("reader is required")
	}
	if c.Extractor == nil {
		return nil, fmt.Errorf("extractor is required")
	}

	if c.NumWorkers == 0 {
		c.NumWorkers = defaultNumWorkers
	}

	if c.QueueSize == 0 {
		c.QueueSize = defaultJobQueueSize
	}

	if c.NumWorkers > uint(math.MaxInt) {
		return nil, fmt.Errorf("NumWorkers %d exceeds max int", c.NumWorkers)
	}

	p := &Pool{
		config: c,
		queue:  make(chan Job, c.QueueSize),
		logger: c.Logger,
	}

	p.wg.Add(int(c.NumWorkers))
	for i := range c.NumWorkers {
		go p.worker(i)
	}

	return p, nil
}

// Enqueue submits a job for processing by the worker pool.
// Returns true if enqueued, false if the queue is full, resulting in the job being dropped
func (p *Pool) Enqueue(job Job) bool {
	select {
	case p.queue <- job:
		p.logger.Debug("ingest job queued",
			zap.String("url", job.URL),
		)
		return true
	default:
		p.logger.Error("ingest job not queued, queue full, job dropped",
			zap.String("url", job.URL),
		)
		return false
	}
}

// Close signals workers to stop and waits for in-flight jobs to drain.
// Call this during graceful shutdown after the HTTP server has stopped.
func (p *Pool) Close() {
	close(p.queue)
	p.wg.Wait()
}

// worker is the inner worker thread that continuously pulls jobs off the queue
func (p *Pool) worker(id uint) {
	defer p.wg.Done()
	p.logger.Debug("ingest worker started", zap.Uint("worker_id", id))

	for job := range p.queue {
		p.processJob(job)
	}

	p.logger.Debug("ingest worker stopped", zap.Uint("worker_id", id))
}

// processJob runs the full pipeline for one URL. Failures are logged, not
// returned: a bad URL must not stall the rest of the queue.
func (p *Pool) processJob(job Job) {
	ctx := context.Background()

	art, err := p.ingest(ctx, job)
	if err != nil {
		p.logger.Error("async ingestion failed",
			zap.String("url", job.URL),
			zap.Error(err),
		)
		return
	}

	p.logger.Info("article ingested",
		zap.String("url", art.URL),
		zap.String("id", art.ID.String()),
		zap.String("category", art.Category),
	)

	if p.config.Publisher != nil {
		event := eventstream.NewArticleSaved(*art, !art.CreatedAt.Equal(art.UpdatedAt))
		if err := p.config.Publisher.PublishArticleSaved(ctx, event); err != nil {
			p.logger.Warn("publishing article event failed",
				zap.String("url", art.URL),
				zap.Error(err),
			)
		}
	}
}

// ingest fetches, extracts and saves a single URL.
func (p *Pool) ingest(ctx context.Context, job Job) (*article.Article, error) {
	pageContent, err := p.config.Reader.Fetch(ctx, job.URL)
	if err != nil {
		return nil, fmt.Errorf("fetching page: %w", err)
	}

	content, err := p.config.Extractor.Extract(ctx, job.URL, pageContent)
	if err != nil {
		return nil, fmt.Errorf("extracting article: %w", err)
	}

	category := content.Category
	if job.Category != "" {
		category = job.Category
	}

	art, err := p.config.Store.Save(ctx, article.SaveRequest{
		URL:           job.URL,
		Title:         content.Title,
		Author:        content.Author,
		PublishedDate: content.PublishedDate,
		Content:       content.Content,
		Summary:       content.Summary,
		Keywords:      content.Keywords,
		Category:      category,
	})
	if err != nil {
		return nil, fmt.Errorf("saving article: %w", err)
	}

	return art, nil
}
