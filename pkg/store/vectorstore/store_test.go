package vectorstore_test

import (
	"context"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mcpress/mcpress/pkg/article"
	"github.com/mcpress/mcpress/pkg/store"
	"github.com/mcpress/mcpress/pkg/store/vectorstore"
	testutils "github.com/mcpress/mcpress/pkg/utils/test"
	"github.com/mcpress/mcpress/pkg/vector/inmemory"
)

var _ = Describe("Store", func() {
	var (
		ctx      context.Context
		driver   *inmemory.Driver
		embedder *testutils.MockEmbedder
		s        *vectorstore.Store
	)

	BeforeEach(func() {
		ctx = context.Background()
		driver = inmemory.NewDriver()
		embedder = testutils.NewMockEmbedder()
		s = vectorstore.New(driver, embedder, zap.NewNop())
	})

	req := func(url, title string) article.SaveRequest {
		return article.SaveRequest{
			URL:      url,
			Title:    title,
			Content:  "content of " + title,
			Summary:  "summary of " + title,
			Keywords: []string{"one", "two"},
			Category: "tech",
		}
	}

	Describe("Save", func() {
		It("creates a new article with an ID and timestamps", func() {
			art, err := s.Save(ctx, req("https://example.com/a", "Article A"))
			Expect(err).NotTo(HaveOccurred())
			Expect(art.ID).NotTo(Equal(uuid.Nil))
			Expect(art.CreatedAt).NotTo(BeZero())
			Expect(art.UpdatedAt).NotTo(BeZero())
			Expect(art.Category).To(Equal("tech"))
		})

		It("requires a url", func() {
			_, err := s.Save(ctx, article.SaveRequest{Title: "No URL"})
			Expect(err).To(MatchError(ContainSubstring("url is required")))
		})

		It("updates in place when the URL already exists", func() {
			first, err := s.Save(ctx, req("https://example.com/a", "Original"))
			Expect(err).NotTo(HaveOccurred())

			second, err := s.Save(ctx, req("https://example.com/a", "Updated"))
			Expect(err).NotTo(HaveOccurred())
			Expect(second.ID).To(Equal(first.ID))
			Expect(second.CreatedAt).To(Equal(first.CreatedAt))
			Expect(second.Title).To(Equal("Updated"))

			all, err := s.List(ctx, article.ListFilter{})
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(HaveLen(1))
		})

		It("matches URLs regardless of a trailing slash", func() {
			first, err := s.Save(ctx, req("https://example.com/a", "Original"))
			Expect(err).NotTo(HaveOccurred())

			second, err := s.Save(ctx, req("https://example.com/a/", "Updated"))
			Expect(err).NotTo(HaveOccurred())
			Expect(second.ID).To(Equal(first.ID))

			all, err := s.List(ctx, article.ListFilter{})
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(HaveLen(1))

			got, err := s.GetByURL(ctx, "https://example.com/a/")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.ID).To(Equal(first.ID))
		})

		It("keeps a single article when the same URL is saved concurrently", func() {
			var wg sync.WaitGroup
			for range 8 {
				wg.Add(1)
				go func() {
					defer wg.Done()
					defer GinkgoRecover()
					_, err := s.Save(ctx, req("https://example.com/dup", "Duplicate"))
					Expect(err).NotTo(HaveOccurred())
				}()
			}
			wg.Wait()

			all, err := s.List(ctx, article.ListFilter{})
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(HaveLen(1))
			Expect(all[0].URL).To(Equal("https://example.com/dup"))
		})

		It("defaults an empty category", func() {
			r := req("https://example.com/a", "A")
			r.Category = ""
			art, err := s.Save(ctx, r)
			Expect(err).NotTo(HaveOccurred())
			Expect(art.Category).To(Equal(article.DefaultCategory))
		})

		It("saves the article even when embedding fails", func() {
			embedder.FailOn = "Unembeddable"
			art, err := s.Save(ctx, req("https://example.com/a", "Unembeddable"))
			Expect(err).NotTo(HaveOccurred())

			got, err := s.Get(ctx, art.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Title).To(Equal("Unembeddable"))

			// Not searchable without a vector.
			matches, err := s.Search(ctx, "anything", store.SearchOptions{})
			Expect(err).NotTo(HaveOccurred())
			Expect(matches).To(BeEmpty())
		})

		It("keeps the previous vector when re-embedding fails on update", func() {
			_, err := s.Save(ctx, req("https://example.com/a", "Original"))
			Expect(err).NotTo(HaveOccurred())

			embedder.FailOn = "Updated"
			_, err = s.Save(ctx, req("https://example.com/a", "Updated"))
			Expect(err).NotTo(HaveOccurred())

			matches, err := s.Search(ctx, "anything", store.SearchOptions{})
			Expect(err).NotTo(HaveOccurred())
			Expect(matches).To(HaveLen(1))
			Expect(matches[0].Title).To(Equal("Updated"))
		})
	})

	Describe("Get and GetByURL", func() {
		It("round-trips all article fields", func() {
			saved, err := s.Save(ctx, article.SaveRequest{
				URL:           "https://example.com/full",
				Title:         "Full Article",
				Author:        "Jo Writer",
				PublishedDate: "2025-08-01",
				Content:       "body",
				Summary:       "short",
				Keywords:      []string{"a", "b"},
				Category:      "science",
				Organization:  "Example News",
				ImageURL:      "https://example.com/img.png",
			})
			Expect(err).NotTo(HaveOccurred())

			got, err := s.Get(ctx, saved.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Author).To(Equal("Jo Writer"))
			Expect(got.PublishedDate).To(Equal("2025-08-01"))
			Expect(got.Keywords).To(Equal([]string{"a", "b"}))
			Expect(got.Organization).To(Equal("Example News"))
			Expect(got.ImageURL).To(Equal("https://example.com/img.png"))

			byURL, err := s.GetByURL(ctx, "https://example.com/full")
			Expect(err).NotTo(HaveOccurred())
			Expect(byURL.ID).To(Equal(saved.ID))
		})

		It("returns ErrNotFound for unknown IDs", func() {
			_, err := s.Get(ctx, uuid.New())
			Expect(err).To(MatchError(store.ErrNotFound))
		})

		It("returns ErrNotFound for unknown URLs", func() {
			_, err := s.GetByURL(ctx, "https://example.com/missing")
			Expect(err).To(MatchError(store.ErrNotFound))
		})
	})

	Describe("Search", func() {
		BeforeEach(func() {
			embedder.Embeddings["content of Go Story"] = []float32{1, 0, 0}
			embedder.Embeddings["content of Rust Story"] = []float32{0, 1, 0}

			for _, r := range []article.SaveRequest{
				{URL: "https://example.com/go", Title: "Go Story", Content: "content of Go Story", Category: "tech", PublishedDate: "2026-03-01"},
				{URL: "https://example.com/rust", Title: "Rust Story", Content: "content of Rust Story", Category: "news", PublishedDate: "2026-01-15"},
			} {
				// The embed text is title + content, so configure exact keys.
				embedder.Embeddings[r.Title+"\n\n"+r.Content] = embedder.Embeddings[r.Content]
				_, err := s.Save(ctx, r)
				Expect(err).NotTo(HaveOccurred())
			}

			embedder.Embeddings["golang"] = []float32{1, 0, 0}
		})

		It("ranks results by similarity", func() {
			matches, err := s.Search(ctx, "golang", store.SearchOptions{})
			Expect(err).NotTo(HaveOccurred())
			Expect(matches).To(HaveLen(2))
			Expect(matches[0].Title).To(Equal("Go Story"))
			Expect(matches[0].Score).To(BeNumerically(">", matches[1].Score))
		})

		It("applies the similarity threshold", func() {
			matches, err := s.Search(ctx, "golang", store.SearchOptions{SimilarityThreshold: 0.9})
			Expect(err).NotTo(HaveOccurred())
			Expect(matches).To(HaveLen(1))
			Expect(matches[0].Title).To(Equal("Go Story"))
		})

		It("filters by category", func() {
			matches, err := s.Search(ctx, "golang", store.SearchOptions{Category: "news"})
			Expect(err).NotTo(HaveOccurred())
			Expect(matches).To(HaveLen(1))
			Expect(matches[0].Title).To(Equal("Rust Story"))
		})

		It("respects the limit", func() {
			matches, err := s.Search(ctx, "golang", store.SearchOptions{Limit: 1})
			Expect(err).NotTo(HaveOccurred())
			Expect(matches).To(HaveLen(1))
		})

		It("filters by published date", func() {
			matches, err := s.Search(ctx, "golang", store.SearchOptions{Since: "2026-02-01"})
			Expect(err).NotTo(HaveOccurred())
			Expect(matches).To(HaveLen(1))
			Expect(matches[0].Title).To(Equal("Go Story"))
		})

		It("fills the limit when the date cut drops higher-ranked results", func() {
			r := article.SaveRequest{
				URL:           "https://example.com/old-go",
				Title:         "Old Go Story",
				Content:       "content of Old Go Story",
				Category:      "tech",
				PublishedDate: "2020-01-01",
			}
			embedder.Embeddings[r.Title+"\n\n"+r.Content] = []float32{1, 0, 0}
			_, err := s.Save(ctx, r)
			Expect(err).NotTo(HaveOccurred())

			// The stale article outranks Rust Story, so a query capped at
			// the limit would return a short page after the date cut.
			matches, err := s.Search(ctx, "golang", store.SearchOptions{Limit: 2, Since: "2026-01-01"})
			Expect(err).NotTo(HaveOccurred())
			Expect(matches).To(HaveLen(2))
			Expect([]string{matches[0].Title, matches[1].Title}).To(ConsistOf("Go Story", "Rust Story"))
		})

		It("fails when the query cannot be embedded", func() {
			embedder.FailOn = "golang"
			_, err := s.Search(ctx, "golang", store.SearchOptions{})
			Expect(err).To(MatchError(ContainSubstring("embedding query")))
		})
	})

	Describe("List", func() {
		BeforeEach(func() {
			for _, r := range []article.SaveRequest{
				{URL: "https://example.com/1", Title: "One", Content: "c", Category: "tech", Organization: "Alpha", PublishedDate: "2025-01-10"},
				{URL: "https://example.com/2", Title: "Two", Content: "c", Category: "news", Organization: "Beta", PublishedDate: "2025-03-10"},
				{URL: "https://example.com/3", Title: "Three", Content: "c", Category: "tech", Organization: "Alpha", PublishedDate: "2025-05-10"},
			} {
				_, err := s.Save(ctx, r)
				Expect(err).NotTo(HaveOccurred())
			}
		})

		It("lists everything without a filter", func() {
			articles, err := s.List(ctx, article.ListFilter{})
			Expect(err).NotTo(HaveOccurred())
			Expect(articles).To(HaveLen(3))
		})

		It("filters by category and source", func() {
			articles, err := s.List(ctx, article.ListFilter{Category: "tech", Source: "Alpha"})
			Expect(err).NotTo(HaveOccurred())
			Expect(articles).To(HaveLen(2))
		})

		It("filters by published date", func() {
			articles, err := s.List(ctx, article.ListFilter{Since: "2025-03-01"})
			Expect(err).NotTo(HaveOccurred())
			Expect(articles).To(HaveLen(2))
		})

		It("paginates with a date filter", func() {
			articles, err := s.List(ctx, article.ListFilter{Since: "2025-01-01", Limit: 1, Offset: 1})
			Expect(err).NotTo(HaveOccurred())
			Expect(articles).To(HaveLen(1))
			Expect(articles[0].Title).To(Equal("Two"))
		})

		It("paginates without a date filter", func() {
			articles, err := s.List(ctx, article.ListFilter{Limit: 2, Offset: 2})
			Expect(err).NotTo(HaveOccurred())
			Expect(articles).To(HaveLen(1))
		})
	})
})
