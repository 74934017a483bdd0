// Package vectorstore implements store.ArticleStore on top of a
// vector.VectorDriver, so any vector backend can persist articles.
package vectorstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mcpress/mcpress/pkg/article"
	"github.com/mcpress/mcpress/pkg/embeddings"
	"github.com/mcpress/mcpress/pkg/store"
	"github.com/mcpress/mcpress/pkg/vector"
)

const (
	defaultSearchLimit = 10

	// overfetchFactor widens the driver query when results are filtered
	// after ranking, so a filtered page can still fill up to the limit.
	overfetchFactor = 10
)

// Store persists articles as vector documents with the article fields
// flattened into metadata.
type Store struct {
	driver   vector.VectorDriver
	embedder embeddings.Embedder
	logger   *zap.Logger
	saving   keyedMutex
}

// New creates a Store over the given driver and embedder.
func New(driver vector.VectorDriver, embedder embeddings.Embedder, logger *zap.Logger) *Store {
	return &Store{
		driver:   driver,
		embedder: embedder,
		logger:   logger,
	}
}

// Save upserts an article keyed by URL. An embedding failure is logged and
// the article is stored anyway: on update the previous vector is kept, on
// create the article is stored without one.
func (s *Store) Save(ctx context.Context, req article.SaveRequest) (*article.Article, error) {
	url := article.NormalizeURL(req.URL)
	if url == "" {
		return nil, fmt.Errorf("article url is required")
	}

	// Serialize saves per URL: without this, concurrent saves of the same
	// URL both miss the lookup and create two articles.
	s.saving.lock(url)
	defer s.saving.unlock(url)

	existing, err := s.findDocByURL(ctx, url)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	art := articleFromRequest(req)
	art.URL = url
	art.UpdatedAt = now

	if existing != nil {
		id, err := uuid.Parse(existing.ID)
		if err != nil {
			return nil, fmt.Errorf("stored document %s has invalid id: %w", existing.ID, err)
		}
		art.ID = id
		art.CreatedAt = parseTime(existing.Metadata["created_at"], now)
	} else {
		art.ID = uuid.New()
		art.CreatedAt = now
	}

	embedding, err := s.embedder.Embed(ctx, embedText(art))
	if err != nil {
		s.logger.Warn("embedding failed, saving article without vector",
			zap.String("url", art.URL),
			zap.Error(err),
		)
		embedding = nil
		if existing != nil {
			embedding = existing.Embedding
		}
	}

	doc := documentFromArticle(art)
	doc.Embedding = embedding

	if err := s.driver.Upsert(ctx, []vector.Document{doc}); err != nil {
		return nil, fmt.Errorf("upserting article: %w", err)
	}

	s.logger.Info("saved article",
		zap.String("id", art.ID.String()),
		zap.String("url", art.URL),
		zap.Bool("updated", existing != nil),
		zap.Bool("embedded", len(embedding) > 0),
	)

	return art, nil
}

// Get retrieves an article by ID.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (*article.Article, error) {
	docs, err := s.driver.Get(ctx, []string{id.String()})
	if err != nil {
		return nil, fmt.Errorf("getting article: %w", err)
	}
	if len(docs) == 0 {
		return nil, store.ErrNotFound
	}
	return articleFromDocument(docs[0])
}

// GetByURL retrieves an article by its URL.
func (s *Store) GetByURL(ctx context.Context, url string) (*article.Article, error) {
	doc, err := s.findDocByURL(ctx, article.NormalizeURL(url))
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, store.ErrNotFound
	}
	return articleFromDocument(*doc)
}

// Search embeds the query and returns the closest articles at or above the
// similarity threshold.
func (s *Store) Search(ctx context.Context, query string, opts store.SearchOptions) ([]article.Match, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w: %v", vector.ErrEmbedding, err)
	}

	filter := vector.Filter{}
	if opts.Category != "" {
		filter["category"] = article.NormalizeCategory(opts.Category)
	}
	if opts.Source != "" {
		filter["organization"] = opts.Source
	}

	// Threshold and date cuts happen after ranking, so over-fetch when
	// either is active: a capped query could lose qualifying articles to
	// filtered-out ones in the top results.
	queryLimit := limit
	if opts.SimilarityThreshold > 0 || opts.Since != "" {
		queryLimit = limit * overfetchFactor
	}

	results, err := s.driver.Query(ctx, embedding, queryLimit, filter)
	if err != nil {
		return nil, fmt.Errorf("querying articles: %w", err)
	}

	cutoff, haveCutoff := time.Time{}, false
	if opts.Since != "" {
		cutoff, haveCutoff = article.ParseDate(opts.Since)
	}

	matches := make([]article.Match, 0, limit)
	for _, r := range results {
		if len(matches) == limit {
			break
		}
		if r.Score < opts.SimilarityThreshold {
			continue
		}
		art, err := articleFromDocument(r.Document)
		if err != nil {
			s.logger.Warn("skipping malformed document in search results",
				zap.String("doc_id", r.ID),
				zap.Error(err),
			)
			continue
		}
		if haveCutoff {
			published, ok := article.ParseDate(art.PublishedDate)
			if !ok || published.Before(cutoff) {
				continue
			}
		}
		matches = append(matches, article.Match{Article: *art, Score: r.Score})
	}

	return matches, nil
}

// List returns articles matching the filter. Date filtering happens after
// retrieval since metadata filters are equality only.
func (s *Store) List(ctx context.Context, filter article.ListFilter) ([]article.Article, error) {
	docFilter := vector.Filter{}
	if filter.Category != "" {
		docFilter["category"] = article.NormalizeCategory(filter.Category)
	}
	if filter.Source != "" {
		docFilter["organization"] = filter.Source
	}
	if filter.Author != "" {
		docFilter["author"] = filter.Author
	}

	limit, offset := filter.Limit, filter.Offset
	if filter.Since != "" {
		// Paginate in memory after the date cut.
		limit, offset = 0, 0
	}

	docs, err := s.driver.Find(ctx, docFilter, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing articles: %w", err)
	}

	articles := make([]article.Article, 0, len(docs))
	for _, doc := range docs {
		art, err := articleFromDocument(doc)
		if err != nil {
			s.logger.Warn("skipping malformed document in list results",
				zap.String("doc_id", doc.ID),
				zap.Error(err),
			)
			continue
		}
		articles = append(articles, *art)
	}

	if filter.Since != "" {
		articles = filterSince(articles, filter.Since)
		if filter.Offset > 0 {
			if filter.Offset >= len(articles) {
				return nil, nil
			}
			articles = articles[filter.Offset:]
		}
		if filter.Limit > 0 && len(articles) > filter.Limit {
			articles = articles[:filter.Limit]
		}
	}

	return articles, nil
}

// Close releases the driver and embedder.
func (s *Store) Close() error {
	if err := s.embedder.Close(); err != nil {
		s.driver.Close()
		return err
	}
	return s.driver.Close()
}

func (s *Store) findDocByURL(ctx context.Context, url string) (*vector.Document, error) {
	docs, err := s.driver.Find(ctx, vector.Filter{"url": url}, 1, 0)
	if err != nil {
		return nil, fmt.Errorf("finding article by url: %w", err)
	}
	if len(docs) == 0 {
		return nil, nil
	}
	return &docs[0], nil
}

// filterSince keeps articles published on or after a cutoff date. Articles
// without a parseable published date are dropped.
func filterSince(articles []article.Article, since string) []article.Article {
	cutoff, ok := article.ParseDate(since)
	if !ok {
		return articles
	}

	kept := articles[:0]
	for _, a := range articles {
		published, ok := article.ParseDate(a.PublishedDate)
		if !ok || published.Before(cutoff) {
			continue
		}
		kept = append(kept, a)
	}
	return kept
}

// embedText is the text the article vector is computed from.
func embedText(a *article.Article) string {
	parts := []string{a.Title}
	if a.Summary != "" {
		parts = append(parts, a.Summary)
	}
	if a.Content != "" {
		parts = append(parts, a.Content)
	}
	return strings.Join(parts, "\n\n")
}

func articleFromRequest(req article.SaveRequest) *article.Article {
	category := article.NormalizeCategory(req.Category)
	if category == "" {
		category = article.DefaultCategory
	}

	return &article.Article{
		URL:           req.URL,
		Title:         req.Title,
		Author:        req.Author,
		PublishedDate: req.PublishedDate,
		Content:       req.Content,
		Summary:       req.Summary,
		Keywords:      req.Keywords,
		Category:      category,
		Organization:  req.Organization,
		ImageURL:      req.ImageURL,
	}
}

// documentFromArticle flattens an article into a vector document. Lists
// are comma-joined since metadata values are plain strings.
func documentFromArticle(a *article.Article) vector.Document {
	return vector.Document{
		ID:   a.ID.String(),
		Text: a.Content,
		Metadata: map[string]string{
			"url":            a.URL,
			"title":          a.Title,
			"author":         a.Author,
			"published_date": a.PublishedDate,
			"summary":        a.Summary,
			"keywords":       strings.Join(a.Keywords, ","),
			"category":       a.Category,
			"organization":   a.Organization,
			"image_url":      a.ImageURL,
			"created_at":     a.CreatedAt.Format(time.RFC3339Nano),
			"updated_at":     a.UpdatedAt.Format(time.RFC3339Nano),
		},
	}
}

func articleFromDocument(doc vector.Document) (*article.Article, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid document id %q: %w", doc.ID, err)
	}

	meta := doc.Metadata
	var keywords []string
	if kw := meta["keywords"]; kw != "" {
		keywords = strings.Split(kw, ",")
	}

	return &article.Article{
		ID:            id,
		URL:           meta["url"],
		Title:         meta["title"],
		Author:        meta["author"],
		PublishedDate: meta["published_date"],
		Content:       doc.Text,
		Summary:       meta["summary"],
		Keywords:      keywords,
		Category:      meta["category"],
		Organization:  meta["organization"],
		ImageURL:      meta["image_url"],
		CreatedAt:     parseTime(meta["created_at"], time.Time{}),
		UpdatedAt:     parseTime(meta["updated_at"], time.Time{}),
	}, nil
}

// parseTime accepts RFC 3339 with or without sub-second precision. Losing
// the fraction on a round trip would break CreatedAt preservation across
// updates, and with it the created-vs-updated distinction.
func parseTime(s string, fallback time.Time) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return fallback
	}
	return t
}

var _ store.ArticleStore = (*Store)(nil)
