package document

import (
	"context"
	"errors"

	"github.com/saminkc999/coinledger/internal/domain"
)

// ErrVersionConflict is returned by Save when the stored version no longer
// matches the one the caller loaded.
var ErrVersionConflict = errors.New("document version conflict")

// Version is an opaque optimistic-concurrency token. Zero means the
// document has never been written.
type Version uint64

// Store persists one whole document and replaces it atomically.
type Store interface {
	// Load returns the last written document, or a zero Document and
	// version 0 if nothing was written yet.
	Load(ctx context.Context) (domain.Document, Version, error)
	// Save replaces the document if the stored version still equals
	// expected and returns the new version.
	Save(ctx context.Context, doc domain.Document, expected Version) (Version, error)
	Close() error
}
