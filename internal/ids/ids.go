package ids

import "github.com/segmentio/ksuid"

// New returns a sortable unique identifier for entities (users, sessions,
// reports).
func New() string {
	return ksuid.New().String()
}
