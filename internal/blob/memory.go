package blob

import (
	memorystore "curricore/internal/infra/blob/memory"
)

// NewMemory returns an in-memory blob.Store suitable for tests and
// ephemeral runs. Contents are lost when the process exits.
func NewMemory() Store {
	return memorystore.New()
}
