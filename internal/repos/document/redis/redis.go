package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/saminkc999/coinledger/internal/domain"
	"github.com/saminkc999/coinledger/internal/repos/document"
)

var _ document.Store = (*Store)(nil)

const (
	fieldBody    = "body"
	fieldVersion = "version"
)

// Store keeps the document in a redis hash (body + version) and replaces it
// inside WATCH/MULTI so a concurrent writer aborts the transaction.
type Store struct {
	rdb *redis.Client
	key string
}

func New(rdb *redis.Client, name string) *Store {
	return &Store{rdb: rdb, key: "coinledger:document:" + name}
}

func (s *Store) Load(ctx context.Context) (domain.Document, document.Version, error) {
	vals, err := s.rdb.HMGet(ctx, s.key, fieldBody, fieldVersion).Result()
	if err != nil {
		return domain.Document{}, 0, fmt.Errorf("hmget document: %w", err)
	}

	body, ok := vals[0].(string)
	if !ok {
		return domain.Document{}, 0, nil
	}

	version, err := parseVersion(vals[1])
	if err != nil {
		return domain.Document{}, 0, err
	}

	doc, err := document.Unmarshal([]byte(body))
	if err != nil {
		return domain.Document{}, 0, err
	}

	return doc, version, nil
}

func (s *Store) Save(ctx context.Context, doc domain.Document, expected document.Version) (document.Version, error) {
	body, err := document.Marshal(doc)
	if err != nil {
		return 0, err
	}

	next := expected + 1

	err = s.rdb.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.HGet(ctx, s.key, fieldVersion).Uint64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return fmt.Errorf("hget version: %w", err)
		}

		if document.Version(current) != expected {
			return document.ErrVersionConflict
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, s.key, fieldBody, string(body), fieldVersion, uint64(next))
			return nil
		})

		return err
	}, s.key)
	if err != nil {
		if errors.Is(err, document.ErrVersionConflict) || errors.Is(err, redis.TxFailedErr) {
			return 0, document.ErrVersionConflict
		}

		return 0, fmt.Errorf("save document: %w", err)
	}

	return next, nil
}

func (s *Store) Close() error {
	return s.rdb.Close()
}

func parseVersion(v any) (document.Version, error) {
	raw, ok := v.(string)
	if !ok {
		return 0, fmt.Errorf("document version missing")
	}

	var n uint64

	_, err := fmt.Sscanf(raw, "%d", &n)
	if err != nil {
		return 0, fmt.Errorf("parse version %q: %w", raw, err)
	}

	return document.Version(n), nil
}
