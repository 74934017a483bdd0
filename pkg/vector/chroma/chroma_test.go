package chroma_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/mcpress/mcpress/pkg/vector"
	"github.com/mcpress/mcpress/pkg/vector/chroma"
)

var _ = Describe("ChromaDriver", func() {
	var (
		server   *httptest.Server
		requests []map[string]any
		paths    []string
	)

	newServer := func(respond func(path string, w http.ResponseWriter)) *httptest.Server {
		return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			paths = append(paths, r.URL.Path)

			if r.Method == http.MethodGet {
				// Collection lookup during driver construction.
				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(map[string]string{"id": "col-1", "name": "articles"})
				return
			}

			var body map[string]any
			json.NewDecoder(r.Body).Decode(&body)
			requests = append(requests, body)

			w.Header().Set("Content-Type", "application/json")
			if respond != nil {
				respond(r.URL.Path, w)
				return
			}
			w.Write([]byte("{}"))
		}))
	}

	BeforeEach(func() {
		requests = nil
		paths = nil
	})

	AfterEach(func() {
		if server != nil {
			server.Close()
			server = nil
		}
	})

	It("requires a URL", func() {
		_, err := chroma.NewChromaDriver(chroma.Config{}, zap.NewNop())
		Expect(err).To(MatchError(ContainSubstring("chroma URL is required")))
	})

	It("substitutes a zero vector for documents without embeddings", func() {
		server = newServer(nil)
		driver, err := chroma.NewChromaDriver(chroma.Config{URL: server.URL, Dimensions: 4}, zap.NewNop())
		Expect(err).NotTo(HaveOccurred())

		Expect(driver.Upsert(context.Background(), []vector.Document{
			{ID: "a", Text: "text", Metadata: map[string]string{"url": "https://example.com"}},
		})).To(Succeed())

		Expect(paths[len(paths)-1]).To(HaveSuffix("/collections/col-1/upsert"))

		last := requests[len(requests)-1]
		embeddings := last["embeddings"].([]any)
		Expect(embeddings[0].([]any)).To(HaveLen(4))

		metadatas := last["metadatas"].([]any)
		meta := metadatas[0].(map[string]any)
		Expect(meta["has_embedding"]).To(Equal("false"))
		Expect(meta["url"]).To(Equal("https://example.com"))
	})

	It("queries only documents with real embeddings and maps distances to scores", func() {
		server = newServer(func(path string, w http.ResponseWriter) {
			if !strings.HasSuffix(path, "/query") {
				w.Write([]byte("{}"))
				return
			}
			json.NewEncoder(w).Encode(map[string]any{
				"ids":       [][]string{{"a", "b"}},
				"distances": [][]float32{{0.0, 1.0}},
				"metadatas": [][]map[string]string{{{"url": "u1"}, {"url": "u2"}}},
				"documents": [][]string{{"text a", "text b"}},
			})
		})
		driver, err := chroma.NewChromaDriver(chroma.Config{URL: server.URL}, zap.NewNop())
		Expect(err).NotTo(HaveOccurred())

		results, err := driver.Query(context.Background(), []float32{1, 0}, 5, vector.Filter{"category": "tech"})
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(2))
		Expect(results[0].Score).To(BeNumerically("~", 1.0, 0.001))
		Expect(results[1].Score).To(BeNumerically("~", 0.5, 0.001))

		last := requests[len(requests)-1]
		where := last["where"].(map[string]any)
		conditions := where["$and"].([]any)
		Expect(conditions).To(HaveLen(2))
	})

	It("passes filters, limit and offset to find", func() {
		server = newServer(func(path string, w http.ResponseWriter) {
			json.NewEncoder(w).Encode(map[string]any{
				"ids":       []string{"a"},
				"metadatas": []map[string]string{{"category": "tech", "has_embedding": "false"}},
				"documents": []string{"text a"},
			})
		})
		driver, err := chroma.NewChromaDriver(chroma.Config{URL: server.URL}, zap.NewNop())
		Expect(err).NotTo(HaveOccurred())

		docs, err := driver.Find(context.Background(), vector.Filter{"category": "tech"}, 10, 5)
		Expect(err).NotTo(HaveOccurred())
		Expect(docs).To(HaveLen(1))
		Expect(docs[0].Embedding).To(BeNil())

		last := requests[len(requests)-1]
		Expect(last["limit"]).To(BeNumerically("==", 10))
		Expect(last["offset"]).To(BeNumerically("==", 5))
		Expect(last["where"]).To(Equal(map[string]any{"category": "tech"}))
	})

	It("surfaces server errors", func() {
		server = newServer(nil)
		driver, err := chroma.NewChromaDriver(chroma.Config{URL: server.URL}, zap.NewNop())
		Expect(err).NotTo(HaveOccurred())

		server.Close()
		err = driver.Upsert(context.Background(), []vector.Document{{ID: "a", Embedding: []float32{1}}})
		Expect(err).To(MatchError(vector.ErrConnection))
	})
})
