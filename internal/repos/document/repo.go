package document

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/saminkc999/coinledger/internal/domain"
)

const defaultMaxAttempts = 5

// Repo runs read-modify-write cycles against a Store. Every mutation is
// applied to a freshly loaded document and saved with compare-and-swap on
// the loaded version.
type Repo struct {
	store       Store
	methods     domain.MethodSet
	maxAttempts int
}

// NewRepo wraps store. maxAttempts bounds how many times a mutation is
// replayed after a version conflict; values below 1 use the default.
func NewRepo(store Store, methods domain.MethodSet, maxAttempts int) *Repo {
	if maxAttempts < 1 {
		maxAttempts = defaultMaxAttempts
	}

	return &Repo{store: store, methods: methods, maxAttempts: maxAttempts}
}

// Methods returns the configured payment channel set.
func (r *Repo) Methods() domain.MethodSet {
	return r.methods
}

// Init writes the default document if none exists yet.
func (r *Repo) Init(ctx context.Context) error {
	_, ver, err := r.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("%w: load document: %w", domain.ErrStorage, err)
	}

	if ver != 0 {
		return nil
	}

	_, err = r.store.Save(ctx, domain.NewDocument(r.methods), 0)
	if errors.Is(err, ErrVersionConflict) {
		// another writer initialized it first
		return nil
	}

	if err != nil {
		return fmt.Errorf("%w: save document: %w", domain.ErrStorage, err)
	}

	slog.Info("initialized empty document", "methods", r.methods.String())

	return nil
}

// Read returns the current document, normalized.
func (r *Repo) Read(ctx context.Context) (domain.Document, error) {
	doc, _, err := r.store.Load(ctx)
	if err != nil {
		return domain.Document{}, fmt.Errorf("%w: load document: %w", domain.ErrStorage, err)
	}

	doc.Normalize(r.methods)

	return doc, nil
}

// Update loads the document, applies fn and saves the result. If fn returns
// an error nothing is written and the error is returned unchanged. fn may
// run more than once when concurrent writers collide, each time on a fresh
// copy.
func (r *Repo) Update(ctx context.Context, fn func(doc *domain.Document) error) (domain.Document, error) {
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		doc, ver, err := r.store.Load(ctx)
		if err != nil {
			return domain.Document{}, fmt.Errorf("%w: load document: %w", domain.ErrStorage, err)
		}

		doc.Normalize(r.methods)

		err = fn(&doc)
		if err != nil {
			return domain.Document{}, err
		}

		_, err = r.store.Save(ctx, doc, ver)
		if errors.Is(err, ErrVersionConflict) {
			slog.Debug("document version conflict, replaying update", "attempt", attempt, "version", ver)

			continue
		}

		if err != nil {
			return domain.Document{}, fmt.Errorf("%w: save document: %w", domain.ErrStorage, err)
		}

		return doc, nil
	}

	return domain.Document{}, fmt.Errorf("%w: gave up after %d attempts: %w", domain.ErrStorage, r.maxAttempts, ErrVersionConflict)
}
