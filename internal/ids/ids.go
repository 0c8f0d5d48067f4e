package ids

import "github.com/segmentio/ksuid"

// New returns a sortable unique identifier for timeline rows.
func New() string {
	return ksuid.New().String()
}
