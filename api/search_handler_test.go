package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gofiber/fiber/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mcpress/mcpress/pkg/article"
	mcpresslogger "github.com/mcpress/mcpress/pkg/logger"
	"github.com/mcpress/mcpress/pkg/store/vectorstore"
	testutils "github.com/mcpress/mcpress/pkg/utils/test"
	"github.com/mcpress/mcpress/pkg/vector/inmemory"
)

var _ = Describe("Search Handler", func() {
	var (
		server   *Server
		articles *vectorstore.Store
		embedder *testutils.MockEmbedder
	)

	search := func(path string) *http.Response {
		req, err := http.NewRequest(http.MethodGet, path, nil)
		Expect(err).NotTo(HaveOccurred())

		resp, err := server.app.Test(req)
		Expect(err).NotTo(HaveOccurred())
		return resp
	}

	BeforeEach(func() {
		logger := mcpresslogger.Nop()
		embedder = testutils.NewMockEmbedder()
		articles = vectorstore.New(inmemory.NewDriver(), embedder, logger)
		server = NewServer(Config{ListenAddr: ":0"}, articles, nil, nil, nil, nil, logger)

		for _, a := range []article.SaveRequest{
			{URL: "https://example.com/go", Title: "Go release notes", Content: "Go 1.25 is out", Summary: "New Go release", Category: "tech"},
			{URL: "https://example.com/cup", Title: "Cup final recap", Content: "The final went to penalties", Summary: "Match report", Category: "sports", Organization: "Sports Daily"},
		} {
			_, err := articles.Save(context.Background(), a)
			Expect(err).NotTo(HaveOccurred())
		}
	})

	It("requires the q parameter", func() {
		resp := search("/v1/articles/search")
		Expect(resp.StatusCode).To(Equal(fiber.StatusBadRequest))
	})

	It("returns scored results for a query", func() {
		resp := search("/v1/articles/search?q=golang")
		Expect(resp.StatusCode).To(Equal(fiber.StatusOK))

		var result SearchResponse
		body, err := io.ReadAll(resp.Body)
		Expect(err).NotTo(HaveOccurred())
		Expect(json.Unmarshal(body, &result)).To(Succeed())

		Expect(result.Query).To(Equal("golang"))
		Expect(result.Count).To(Equal(2))
		Expect(result.Results[0].Score).To(BeNumerically(">", 0))
	})

	It("filters by category", func() {
		resp := search("/v1/articles/search?q=anything&category=sports")
		Expect(resp.StatusCode).To(Equal(fiber.StatusOK))

		var result SearchResponse
		body, err := io.ReadAll(resp.Body)
		Expect(err).NotTo(HaveOccurred())
		Expect(json.Unmarshal(body, &result)).To(Succeed())

		Expect(result.Count).To(Equal(1))
		Expect(result.Results[0].Title).To(Equal("Cup final recap"))
	})

	It("filters by source organization", func() {
		resp := search("/v1/articles/search?q=anything&source=Sports%20Daily")
		Expect(resp.StatusCode).To(Equal(fiber.StatusOK))

		var result SearchResponse
		body, err := io.ReadAll(resp.Body)
		Expect(err).NotTo(HaveOccurred())
		Expect(json.Unmarshal(body, &result)).To(Succeed())

		Expect(result.Count).To(Equal(1))
		Expect(result.Results[0].Organization).To(Equal("Sports Daily"))
	})

	It("rejects a non-positive limit", func() {
		resp := search("/v1/articles/search?q=golang&limit=0")
		Expect(resp.StatusCode).To(Equal(fiber.StatusBadRequest))
	})

	It("rejects an out-of-range similarity threshold", func() {
		resp := search("/v1/articles/search?q=golang&similarity_threshold=1.5")
		Expect(resp.StatusCode).To(Equal(fiber.StatusBadRequest))
	})

	It("applies the similarity threshold", func() {
		resp := search("/v1/articles/search?q=golang&similarity_threshold=0.99")
		Expect(resp.StatusCode).To(Equal(fiber.StatusOK))

		var result SearchResponse
		body, err := io.ReadAll(resp.Body)
		Expect(err).NotTo(HaveOccurred())
		Expect(json.Unmarshal(body, &result)).To(Succeed())

		// identical mock embeddings score a perfect match
		Expect(result.Count).To(Equal(2))
	})

	It("applies the configured default threshold when the request has none", func() {
		embedder.Embeddings["offtopic"] = []float32{0.3, 0, -0.1}
		server = NewServer(Config{ListenAddr: ":0", SimilarityThreshold: 0.5}, articles, nil, nil, nil, nil, mcpresslogger.Nop())

		resp := search("/v1/articles/search?q=offtopic")
		Expect(resp.StatusCode).To(Equal(fiber.StatusOK))

		var result SearchResponse
		body, err := io.ReadAll(resp.Body)
		Expect(err).NotTo(HaveOccurred())
		Expect(json.Unmarshal(body, &result)).To(Succeed())
		Expect(result.Count).To(Equal(0))

		// an explicit per-request threshold overrides the default
		resp = search("/v1/articles/search?q=offtopic&similarity_threshold=0")
		Expect(resp.StatusCode).To(Equal(fiber.StatusOK))

		result = SearchResponse{}
		body, err = io.ReadAll(resp.Body)
		Expect(err).NotTo(HaveOccurred())
		Expect(json.Unmarshal(body, &result)).To(Succeed())
		Expect(result.Count).To(Equal(2))
	})

	It("returns 503 when the embedder is unavailable", func() {
		embedder.FailOn = "golang"

		resp := search("/v1/articles/search?q=golang")
		Expect(resp.StatusCode).To(Equal(fiber.StatusServiceUnavailable))
	})
})
