// Package storetest holds the behaviour every document.Store backend must share.
package storetest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/saminkc999/coinledger/internal/domain"
	"github.com/saminkc999/coinledger/internal/repos/document"
)

// Factory returns a fresh, empty store. The caller owns closing it.
type Factory func(t *testing.T) document.Store

// Run executes the conformance suite against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Helper()

	t.Run("empty_load", func(t *testing.T) {
		s := open(t, newStore)

		doc, ver, err := s.Load(ctx(t))
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if ver != 0 {
			t.Fatalf("fresh store version: want 0, got %d", ver)
		}
		if len(doc.Games) != 0 || len(doc.Payments) != 0 || len(doc.Totals) != 0 {
			t.Fatalf("fresh store not empty: %+v", doc)
		}
	})

	t.Run("save_then_load_roundtrip", func(t *testing.T) {
		s := open(t, newStore)

		want := sampleDocument()

		ver, err := s.Save(ctx(t), want, 0)
		if err != nil {
			t.Fatalf("save: %v", err)
		}
		if ver == 0 {
			t.Fatalf("save returned zero version")
		}

		got, gotVer, err := s.Load(ctx(t))
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if gotVer != ver {
			t.Fatalf("version: want %d, got %d", ver, gotVer)
		}

		assertSameDocument(t, want, got)
	})

	t.Run("stale_version_conflicts", func(t *testing.T) {
		s := open(t, newStore)

		v1, err := s.Save(ctx(t), domain.NewDocument(domain.DefaultMethods()), 0)
		if err != nil {
			t.Fatalf("first save: %v", err)
		}

		_, err = s.Save(ctx(t), sampleDocument(), v1)
		if err != nil {
			t.Fatalf("second save: %v", err)
		}

		_, err = s.Save(ctx(t), domain.NewDocument(domain.DefaultMethods()), v1)
		if !errors.Is(err, document.ErrVersionConflict) {
			t.Fatalf("stale save: want ErrVersionConflict, got %v", err)
		}

		_, err = s.Save(ctx(t), domain.NewDocument(domain.DefaultMethods()), 0)
		if !errors.Is(err, document.ErrVersionConflict) {
			t.Fatalf("re-init save: want ErrVersionConflict, got %v", err)
		}

		got, _, err := s.Load(ctx(t))
		if err != nil {
			t.Fatalf("load: %v", err)
		}

		assertSameDocument(t, sampleDocument(), got)
	})

	t.Run("concurrent_updates_are_not_lost", func(t *testing.T) {
		s := open(t, newStore)
		repo := document.NewRepo(s, domain.DefaultMethods(), 50)

		err := repo.Init(ctx(t))
		if err != nil {
			t.Fatalf("init: %v", err)
		}

		const writers = 8

		c := ctx(t)

		var wg sync.WaitGroup
		errCh := make(chan error, writers)

		for i := range writers {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()

				_, err := repo.Update(c, func(doc *domain.Document) error {
					doc.Games = append(doc.Games, domain.Game{ID: int64(n + 1), Name: "game"})
					return nil
				})
				errCh <- err
			}(i)
		}

		wg.Wait()
		close(errCh)

		for err := range errCh {
			if err != nil {
				t.Fatalf("update: %v", err)
			}
		}

		doc, err := repo.Read(ctx(t))
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if len(doc.Games) != writers {
			t.Fatalf("lost updates: want %d games, got %d", writers, len(doc.Games))
		}
	})
}

func open(t *testing.T, newStore Factory) document.Store {
	t.Helper()

	s := newStore(t)
	t.Cleanup(func() { _ = s.Close() })

	return s
}

func ctx(t *testing.T) context.Context {
	t.Helper()

	c, cancel := context.WithTimeout(t.Context(), 10*time.Second)
	t.Cleanup(cancel)

	return c
}

func sampleDocument() domain.Document {
	note := "weekly top-up"
	created := time.Date(2024, 11, 2, 10, 0, 0, 0, time.UTC)

	return domain.Document{
		Games: []domain.Game{
			{ID: 1700000000000, Name: "Sky Quest", CoinsSpent: 10, CoinsEarned: 30},
			{ID: 1700000000001, Name: "Dragon Reels", CoinsRecharged: 50, LastRechargeDate: "2024-11-02"},
		},
		Payments: []domain.Payment{
			{ID: "p-1", Amount: 25, Method: domain.MethodCashApp, CreatedAt: created},
			{ID: "p-2", Amount: 100.5, Method: domain.MethodPayPal, Note: &note, CreatedAt: created.Add(time.Hour)},
		},
		Totals: domain.Totals{domain.MethodCashApp: 25, domain.MethodPayPal: 100.5, domain.MethodChime: 0},
	}
}

func assertSameDocument(t *testing.T, want, got domain.Document) {
	t.Helper()

	wantBody, err := document.Marshal(want)
	if err != nil {
		t.Fatalf("marshal want: %v", err)
	}

	gotBody, err := document.Marshal(got)
	if err != nil {
		t.Fatalf("marshal got: %v", err)
	}

	if string(wantBody) != string(gotBody) {
		t.Fatalf("document mismatch:\nwant %s\ngot  %s", wantBody, gotBody)
	}
}
