package memory

import (
	"context"
	"sync"

	"github.com/saminkc999/coinledger/internal/domain"
	"github.com/saminkc999/coinledger/internal/repos/document"
)

var _ document.Store = (*Store)(nil)

// Store keeps the encoded document in process memory. State is lost on exit.
type Store struct {
	mu      sync.Mutex
	body    []byte
	version document.Version
}

func New() *Store {
	return &Store{}
}

func (s *Store) Load(ctx context.Context) (domain.Document, document.Version, error) {
	err := ctx.Err()
	if err != nil {
		return domain.Document{}, 0, err
	}

	s.mu.Lock()
	body, ver := s.body, s.version
	s.mu.Unlock()

	doc, err := document.Unmarshal(body)
	if err != nil {
		return domain.Document{}, 0, err
	}

	return doc, ver, nil
}

func (s *Store) Save(ctx context.Context, doc domain.Document, expected document.Version) (document.Version, error) {
	err := ctx.Err()
	if err != nil {
		return 0, err
	}

	body, err := document.Marshal(doc)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.version != expected {
		return 0, document.ErrVersionConflict
	}

	s.body = body
	s.version++

	return s.version, nil
}

func (s *Store) Close() error {
	return nil
}
