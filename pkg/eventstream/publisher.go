package eventstream

import "context"

// Publisher publishes article events to an event stream backend.
type Publisher interface {
	PublishArticleSaved(ctx context.Context, event *ArticleSavedEvent) error
	Close() error
}
