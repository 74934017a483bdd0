package eventstream_test

import (
	"encoding/json"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/google/uuid"

	"github.com/mcpress/mcpress/pkg/article"
	"github.com/mcpress/mcpress/pkg/eventstream"
)

var _ = Describe("Event", func() {
	It("marshals ArticleSavedEvent with expected top-level keys", func() {
		now := time.Unix(1735689600, 0).UTC()
		event := eventstream.ArticleSavedEvent{
			SchemaVersion: eventstream.SchemaVersionV1,
			EventType:     eventstream.EventTypeArticleSaved,
			EventID:       "evt_123",
			EmittedAt:     now,
			Updated:       true,
			Article: article.Article{
				ID:       uuid.New(),
				URL:      "https://example.com/story",
				Title:    "Story",
				Content:  "body",
				Summary:  "short",
				Keywords: []string{"a"},
				Category: "news",
			},
		}

		payload, err := json.Marshal(event)
		Expect(err).NotTo(HaveOccurred())

		var got map[string]any
		Expect(json.Unmarshal(payload, &got)).To(Succeed())

		Expect(got).To(HaveKey("schema_version"))
		Expect(got).To(HaveKey("event_type"))
		Expect(got).To(HaveKey("event_id"))
		Expect(got).To(HaveKey("emitted_at"))
		Expect(got).To(HaveKey("updated"))
		Expect(got).To(HaveKey("article"))
	})

	It("defines stable event constants", func() {
		Expect(eventstream.SchemaVersionV1).To(BeNumerically(">", 0))
		Expect(eventstream.EventTypeArticleSaved).To(Equal("mcpress.article.saved"))
	})

	It("provides ErrNilEvent for nil payload validation", func() {
		Expect(eventstream.ErrNilEvent).NotTo(BeNil())
		Expect(eventstream.ErrNilEvent).To(MatchError("nil article event"))
	})
})
