package file

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/saminkc999/coinledger/internal/domain"
	"github.com/saminkc999/coinledger/internal/repos/document"
	"github.com/saminkc999/coinledger/internal/repos/document/storetest"
)

func TestStore_Conformance(t *testing.T) {
	t.Parallel()

	storetest.Run(t, func(t *testing.T) document.Store {
		s, err := New(filepath.Join(t.TempDir(), "nested", "db.json"))
		if err != nil {
			t.Fatalf("new store: %v", err)
		}
		return s
	})
}

func TestStore_PersistedLayout(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "db.json")

	s, err := New(path)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	_, err = s.Save(context.Background(), domain.NewDocument(domain.DefaultMethods()), 0)
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}

	want := `{"games":[],"payments":[],"totals":{"cashapp":0,"chime":0,"paypal":0}}`
	if string(raw) != want {
		t.Fatalf("layout mismatch:\nwant %s\ngot  %s", want, raw)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Fatalf("temp file left behind: %s", e.Name())
		}
	}
}

func TestStore_ExistingFileIsInitialized(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "db.json")

	err := os.WriteFile(path, []byte(`{"games":[{"id":7,"name":"Old Timer","coinsSpent":1,"coinsEarned":2,"coinsRecharged":3}]}`), 0o600)
	if err != nil {
		t.Fatalf("seed file: %v", err)
	}

	s, err := New(path)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	repo := document.NewRepo(s, domain.DefaultMethods(), 0)

	err = repo.Init(context.Background())
	if err != nil {
		t.Fatalf("init: %v", err)
	}

	doc, err := repo.Read(context.Background())
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	if len(doc.Games) != 1 || doc.Games[0].Name != "Old Timer" {
		t.Fatalf("existing document overwritten: %+v", doc)
	}

	if len(doc.Totals) != 3 {
		t.Fatalf("totals not normalized: %v", doc.Totals)
	}
}
