package blobstore

import (
	"context"
	"errors"
	"os"
)

var (
	// ErrNotFound is returned when a blob does not exist.
	//
	// Implementations return an error that satisfies `errors.Is(err, ErrNotFound)`.
	ErrNotFound = os.ErrNotExist

	// ErrExists is returned by ConditionalStore.PutIfNotExists when the blob
	// is already present.
	ErrExists = errors.New("blobstore: blob already exists")
)

// BlobStore is an abstraction for reading and writing whole blobs.
// Implementations must be safe for concurrent use.
type BlobStore interface {
	// Get returns the full content of a blob.
	Get(ctx context.Context, name string) ([]byte, error)
	// Put writes a blob, replacing any previous content.
	Put(ctx context.Context, name string, data []byte) error
	// Delete removes a blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, name string) error
	// List returns the sorted names of all blobs with the given prefix.
	List(ctx context.Context, prefix string) ([]string, error)
}

// ConditionalStore is implemented by stores that support create-only writes.
type ConditionalStore interface {
	BlobStore
	// PutIfNotExists writes a blob only if no blob with that name exists.
	// It returns ErrExists otherwise.
	PutIfNotExists(ctx context.Context, name string, data []byte) error
}
