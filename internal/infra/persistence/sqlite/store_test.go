package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"curricore/pkg/domain"
)

func TestStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "program.db")

	store, err := NewStore(path, domain.NewRulesEngine())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	_, err = store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		if _, err := tx.CreateKnowledgeArea(domain.KnowledgeArea{
			Base:   domain.Base{ID: "cs"},
			Name:   domain.LocalizedText{EN: "Computer Science"},
			Branch: domain.BranchSpecialized,
		}); err != nil {
			return err
		}
		_, err := tx.CreateCourse(domain.Course{
			Base:            domain.Base{ID: "c1"},
			Code:            "CS101",
			Credits:         3,
			KnowledgeAreaID: "cs",
		})
		return err
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := store.DB().Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := NewStore(path, domain.NewRulesEngine())
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer func() { _ = reopened.DB().Close() }()

	course, ok := reopened.GetCourse("c1")
	if !ok {
		t.Fatal("course lost across reopen")
	}
	if course.Code != "CS101" || course.Credits != 3 {
		t.Fatalf("unexpected course after reopen: %+v", course)
	}
	if got := reopened.Structure()[domain.BranchSpecialized]; len(got) != 1 || got[0] != "c1" {
		t.Fatalf("structure lost across reopen: %v", got)
	}
}

func TestNewStoreDefaultsPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "db", "program.db")
	store, err := NewStore(path, nil)
	if err != nil {
		t.Fatalf("open store with nested dirs: %v", err)
	}
	defer func() { _ = store.DB().Close() }()
	if store.Path() != path {
		t.Fatalf("expected path %q, got %q", path, store.Path())
	}
}
