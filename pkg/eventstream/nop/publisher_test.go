package nop_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mcpress/mcpress/pkg/eventstream"
	"github.com/mcpress/mcpress/pkg/eventstream/nop"
)

var _ = Describe("Publisher", func() {
	It("creates a non-nil publisher", func() {
		p := nop.NewPublisher()
		Expect(p).NotTo(BeNil())
	})

	It("returns ErrNilEvent for nil events", func() {
		p := nop.NewPublisher()
		err := p.PublishArticleSaved(context.Background(), nil)
		Expect(err).To(MatchError(eventstream.ErrNilEvent))
	})

	It("accepts non-nil events and closes cleanly", func() {
		p := nop.NewPublisher()
		Expect(p.PublishArticleSaved(context.Background(), &eventstream.ArticleSavedEvent{})).To(Succeed())
		Expect(p.Close()).To(Succeed())
	})
})
