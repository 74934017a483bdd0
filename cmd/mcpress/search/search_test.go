package searchcmder_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mcpress/mcpress/api"
	searchcmder "github.com/mcpress/mcpress/cmd/mcpress/search"
	"github.com/mcpress/mcpress/pkg/article"
)

var _ = Describe("SearchAPI", func() {
	It("queries the articles search endpoint", func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			Expect(r.URL.Path).To(Equal("/v1/articles/search"))
			Expect(r.URL.Query().Get("q")).To(Equal("rate decision"))
			Expect(r.URL.Query().Get("limit")).To(Equal("3"))
			Expect(r.URL.Query().Get("category")).To(Equal("business"))

			json.NewEncoder(w).Encode(api.SearchResponse{
				Query: "rate decision",
				Results: []article.Match{
					{Article: article.Article{Title: "Central bank holds rates"}, Score: 0.91},
				},
				Count: 1,
			})
		}))
		defer srv.Close()

		output, err := searchcmder.SearchAPI(context.Background(), srv.URL, "rate decision", 3, "business", "")
		Expect(err).NotTo(HaveOccurred())
		Expect(output.Count).To(Equal(1))
		Expect(output.Results[0].Title).To(Equal("Central bank holds rates"))
		Expect(output.Results[0].Score).To(BeNumerically("~", 0.91, 0.001))
	})

	It("surfaces non-OK responses", func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(api.ErrorResponse{Error: "embedding service unavailable"})
		}))
		defer srv.Close()

		_, err := searchcmder.SearchAPI(context.Background(), srv.URL, "anything", 5, "", "")
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("HTTP 503"))
	})

	It("rejects an invalid API target", func() {
		_, err := searchcmder.SearchAPI(context.Background(), "://bad", "anything", 5, "", "")
		Expect(err).To(HaveOccurred())
	})
})
