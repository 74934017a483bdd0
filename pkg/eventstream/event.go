// Package eventstream defines transport-neutral events emitted when
// articles change, and the Publisher interface backends implement.
package eventstream

import (
	"time"

	"github.com/google/uuid"

	"github.com/mcpress/mcpress/pkg/article"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeArticleSaved is emitted after an article is created or
	// updated.
	EventTypeArticleSaved = "mcpress.article.saved"
)

// NewArticleSaved builds a v1 saved event for an upserted article. Updated
// distinguishes in-place updates from first saves.
func NewArticleSaved(art article.Article, updated bool) *ArticleSavedEvent {
	return &ArticleSavedEvent{
		SchemaVersion: SchemaVersionV1,
		EventType:     EventTypeArticleSaved,
		EventID:       uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		Updated:       updated,
		Article:       art,
	}
}

// ArticleSavedEvent is the payload published after an article upsert.
type ArticleSavedEvent struct {
	SchemaVersion int             `json:"schema_version"`
	EventType     string          `json:"event_type"`
	EventID       string          `json:"event_id"`
	EmittedAt     time.Time       `json:"emitted_at"`
	Updated       bool            `json:"updated"`
	Article       article.Article `json:"article"`
}
