package models

import (
	"encoding/json"
	"time"
)

// TimelineEntry is one append-only record in a user's timeline. Entries are
// immutable after insert; the reader may repair display fields in the
// returned view but never writes back.
type TimelineEntry struct {
	ID          string
	UserID      string
	BlobURL     string
	ContentHash string
	LogicalID   string
	Version     string
	Caption     string
	Tags        []string
	RawVision   json.RawMessage
	CreatedAt   time.Time
}
