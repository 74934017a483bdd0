package extractor

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("parseResponse", func() {
	It("decodes a clean JSON object", func() {
		content, err := parseResponse(`{
			"title": "Go 1.25 Released",
			"author": "The Go Team",
			"published_date": "2025-08-12",
			"content": "The Go team has released Go 1.25.",
			"summary": "Go 1.25 ships.",
			"keywords": ["go", "release"],
			"category": "tech"
		}`, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(content.Title).To(Equal("Go 1.25 Released"))
		Expect(content.PublishedDate).To(Equal("2025-08-12"))
		Expect(content.Keywords).To(Equal([]string{"go", "release"}))
		Expect(content.Category).To(Equal("tech"))
	})

	It("strips markdown code fences", func() {
		content, err := parseResponse("```json\n{\"title\": \"T\", \"content\": \"C\", \"category\": \"tech\"}\n```", nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(content.Title).To(Equal("T"))
	})

	It("strips bare code fences", func() {
		content, err := parseResponse("```\n{\"title\": \"T\", \"content\": \"C\"}\n```", nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(content.Title).To(Equal("T"))
	})

	It("falls back to the default category for unlisted values", func() {
		content, err := parseResponse(`{"title": "T", "content": "C", "category": "astrology"}`, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(content.Category).To(Equal("news"))
	})

	It("normalizes category case", func() {
		content, err := parseResponse(`{"title": "T", "content": "C", "category": " Tech "}`, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(content.Category).To(Equal("tech"))
	})

	It("accepts keywords as a comma-separated string", func() {
		content, err := parseResponse(`{"title": "T", "content": "C", "keywords": "go, release , tooling"}`, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(content.Keywords).To(Equal([]string{"go", "release", "tooling"}))
	})

	It("accepts keywords as a stringified JSON array", func() {
		content, err := parseResponse(`{"title": "T", "content": "C", "keywords": "[\"go\", \"release\"]"}`, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(content.Keywords).To(Equal([]string{"go", "release"}))
	})

	It("normalizes alternate date layouts", func() {
		content, err := parseResponse(`{"title": "T", "content": "C", "published_date": "2025/08/12"}`, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(content.PublishedDate).To(Equal("2025-08-12"))
	})

	It("drops unparseable dates", func() {
		content, err := parseResponse(`{"title": "T", "content": "C", "published_date": "last Tuesday"}`, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(content.PublishedDate).To(BeEmpty())
	})

	It("rejects responses missing required fields", func() {
		_, err := parseResponse(`{"title": "", "content": "C"}`, nil)
		Expect(err).To(MatchError(ErrParse))
	})

	It("rejects non-JSON responses", func() {
		_, err := parseResponse("Sorry, I can't do that.", nil)
		Expect(err).To(MatchError(ErrParse))
	})
})
