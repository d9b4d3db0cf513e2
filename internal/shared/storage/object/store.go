package object

import (
	"context"
	"io"
)

// Store defines the contract for persisting uploaded document binaries.
type Store interface {
	// Save writes the reader under a collision-resistant generated name and
	// returns the storage key that addresses it.
	Save(ctx context.Context, ownerID string, fileName string, r io.Reader) (storageKey string, sizeBytes int64, err error)
	// Delete removes the object if present. A missing object is not an error.
	Delete(ctx context.Context, storageKey string) error
}
