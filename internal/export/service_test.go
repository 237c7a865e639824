package export

import (
	"context"
	"io"
	"strings"
	"testing"

	"curricore/internal/blob"
	"curricore/internal/infra/persistence/memory"
	"curricore/pkg/domain"
)

func seededStore(t *testing.T) *memory.Store {
	t.Helper()
	store := memory.NewStore(nil)
	_, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		if _, err := tx.CreateKnowledgeArea(domain.KnowledgeArea{
			Base:   domain.Base{ID: "ka-cs"},
			Name:   domain.LocalizedText{EN: "Computer Science"},
			Branch: domain.BranchFundamental,
		}); err != nil {
			return err
		}
		if _, err := tx.CreateCourse(domain.Course{
			Base:            domain.Base{ID: "c1"},
			Code:            "CS101",
			Name:            domain.LocalizedText{VI: "Nhập môn", EN: "Introduction"},
			Credits:         3,
			Semester:        1,
			Type:            domain.CourseRequired,
			KnowledgeAreaID: "ka-cs",
			CLOs:            domain.CLOSet{EN: []string{"Explain basic concepts"}},
		}); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return store
}

func TestExportSyllabusStoresArtifact(t *testing.T) {
	store := seededStore(t)
	blobs := blob.NewMemory()
	svc := NewService(store, blobs)
	ctx := context.Background()

	info, err := svc.ExportSyllabus(ctx, "c1", domain.LanguageEN, domain.DialectABET)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.HasPrefix(info.Key, "syllabi/") || !strings.HasSuffix(info.Key, ".json") {
		t.Fatalf("unexpected artifact key %q", info.Key)
	}
	if info.Metadata["course_id"] != "c1" || info.Metadata["dialect"] != "ABET" {
		t.Fatalf("artifact metadata: %+v", info.Metadata)
	}
	_, rc, err := blobs.Get(ctx, info.Key)
	if err != nil {
		t.Fatalf("get artifact: %v", err)
	}
	body, _ := io.ReadAll(rc)
	_ = rc.Close()
	if !strings.Contains(string(body), "CS101") {
		t.Fatalf("artifact does not mention the course: %s", body)
	}
	latest, ok := svc.LatestArtifact("c1", domain.DialectABET)
	if !ok || latest.Key != info.Key {
		t.Fatalf("latest artifact not recorded: %+v %v", latest, ok)
	}
}

func TestExportSyllabusReplacesSupersededArtifact(t *testing.T) {
	store := seededStore(t)
	blobs := blob.NewMemory()
	svc := NewService(store, blobs)
	ctx := context.Background()

	first, err := svc.ExportSyllabus(ctx, "c1", domain.LanguageEN, domain.DialectABET)
	if err != nil {
		t.Fatalf("first export: %v", err)
	}
	second, err := svc.ExportSyllabus(ctx, "c1", domain.LanguageEN, domain.DialectABET)
	if err != nil {
		t.Fatalf("second export: %v", err)
	}
	if first.Key == second.Key {
		t.Fatalf("expected distinct artifact keys")
	}
	infos, err := blobs.List(ctx, "syllabi/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 1 || infos[0].Key != second.Key {
		t.Fatalf("superseded artifact not discarded: %+v", infos)
	}
}

func TestExportSyllabusUnknownCourse(t *testing.T) {
	svc := NewService(seededStore(t), blob.NewMemory())
	if _, err := svc.ExportSyllabus(context.Background(), "missing", domain.LanguageEN, domain.DialectABET); err == nil {
		t.Fatalf("expected unknown course to fail")
	}
}

func TestExportCatalogCSVArtifact(t *testing.T) {
	svc := NewService(seededStore(t), blob.NewMemory())
	info, err := svc.ExportCatalogCSV(context.Background())
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.HasPrefix(info.Key, "catalog/") || !strings.HasSuffix(info.Key, ".csv") {
		t.Fatalf("unexpected key %q", info.Key)
	}
}

func TestImportCatalogCSVAdditive(t *testing.T) {
	store := seededStore(t)
	svc := NewService(store, blob.NewMemory())
	ctx := context.Background()

	lines := []string{
		strings.Join(catalogHeader, ","),
		",CS201,Cấu trúc dữ liệu,Data Structures,4,3,required,CS101,,x,,ka-cs",
		",CS301,Thuật toán,Algorithms,3,5,required,CS201,,x,,ka-cs",
	}
	count, err := svc.ImportCatalogCSV(ctx, []byte(strings.Join(lines, "\n")))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 imported rows, got %d", count)
	}
	courses := store.ListCourses()
	if len(courses) != 3 {
		t.Fatalf("expected 3 courses after import, got %d", len(courses))
	}
	var algo domain.Course
	found := false
	for _, c := range courses {
		if c.Code == "CS301" {
			algo = c
			found = true
		}
	}
	if !found {
		t.Fatalf("CS301 not imported")
	}
	// Prerequisite resolved against a course created in the same batch.
	if len(algo.PrerequisiteIDs) != 1 {
		t.Fatalf("prerequisite not resolved: %+v", algo)
	}
	if prereq, ok := store.GetCourse(algo.PrerequisiteIDs[0]); !ok || prereq.Code != "CS201" {
		t.Fatalf("prerequisite resolved to wrong course: %+v", prereq)
	}
}

func TestImportCatalogCSVRejectsUnknownPrerequisite(t *testing.T) {
	store := seededStore(t)
	svc := NewService(store, blob.NewMemory())
	lines := []string{
		strings.Join(catalogHeader, ","),
		",CS201,A,A,4,3,required,NOPE999,,x,,ka-cs",
	}
	if _, err := svc.ImportCatalogCSV(context.Background(), []byte(strings.Join(lines, "\n"))); err == nil {
		t.Fatalf("expected unknown prerequisite code to reject the batch")
	}
	if len(store.ListCourses()) != 1 {
		t.Fatalf("rejected batch must not change the catalog")
	}
}
