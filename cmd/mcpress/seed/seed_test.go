package seedcmder

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mcpress/mcpress/api"
)

var _ = Describe("NewSeedCmd", func() {
	It("creates a command with the correct use string", func() {
		cmd := NewSeedCmd()
		Expect(cmd.Use).To(Equal("seed <file>"))
	})

	It("requires exactly one argument", func() {
		cmd := NewSeedCmd()
		Expect(cmd.Args(cmd, []string{})).To(HaveOccurred())
		Expect(cmd.Args(cmd, []string{"a", "b"})).To(HaveOccurred())
		Expect(cmd.Args(cmd, []string{"urls.txt"})).NotTo(HaveOccurred())
	})
})

var _ = Describe("ReadURLFile", func() {
	writeFile := func(content string) string {
		path := filepath.Join(GinkgoT().TempDir(), "urls.txt")
		Expect(os.WriteFile(path, []byte(content), 0o644)).To(Succeed())
		return path
	}

	It("reads one URL per line", func() {
		path := writeFile("https://example.com/a\nhttps://example.com/b\n")

		urls, err := ReadURLFile(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(urls).To(Equal([]string{"https://example.com/a", "https://example.com/b"}))
	})

	It("skips blank lines and comments", func() {
		path := writeFile("# sources\n\nhttps://example.com/a\n\n  # another\nhttps://example.com/b")

		urls, err := ReadURLFile(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(urls).To(Equal([]string{"https://example.com/a", "https://example.com/b"}))
	})

	It("fails for a missing file", func() {
		_, err := ReadURLFile(filepath.Join(GinkgoT().TempDir(), "nope.txt"))
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("postJSON", func() {
	It("sends the URLs and decodes the queued counts", func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			Expect(r.Method).To(Equal(http.MethodPost))
			Expect(r.URL.Path).To(Equal("/v1/articles/ingest"))

			var req api.IngestRequest
			Expect(json.NewDecoder(r.Body).Decode(&req)).To(Succeed())
			Expect(req.URLs).To(HaveLen(2))
			Expect(req.Category).To(Equal("tech"))

			w.WriteHeader(http.StatusAccepted)
			json.NewEncoder(w).Encode(api.IngestResponse{Queued: 2, Dropped: 0})
		}))
		defer srv.Close()

		var out api.IngestResponse
		err := postJSON(context.Background(), srv.URL+"/v1/articles/ingest", api.IngestRequest{
			URLs:     []string{"https://example.com/a", "https://example.com/b"},
			Category: "tech",
		}, &out)
		Expect(err).NotTo(HaveOccurred())
		Expect(out.Queued).To(Equal(2))
	})

	It("surfaces API error messages on failure status", func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(api.ErrorResponse{Error: "ingestion is not configured"})
		}))
		defer srv.Close()

		var out api.IngestResponse
		err := postJSON(context.Background(), srv.URL+"/v1/articles/ingest",
			api.IngestRequest{URLs: []string{"https://example.com/a"}}, &out)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("HTTP 503"))
		Expect(err.Error()).To(ContainSubstring("ingestion is not configured"))
	})
})
