package translate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"curricore/internal/infra/persistence/memory"
	"curricore/pkg/domain"
)

func TestTranslateReturnsResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/translate" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("missing bearer token, got %q", got)
		}
		var req translateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.From != "vi" || req.To != "en" {
			t.Errorf("unexpected language pair %s->%s", req.From, req.To)
		}
		result := "Data Structures"
		_ = json.NewEncoder(w).Encode(translateResponse{Result: &result})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, WithAPIKey("secret"))
	got, ok, err := client.Translate(context.Background(), "Cấu trúc dữ liệu", domain.LanguageVI, domain.LanguageEN)
	if err != nil || !ok {
		t.Fatalf("translate: ok=%v err=%v", ok, err)
	}
	if got != "Data Structures" {
		t.Fatalf("unexpected translation %q", got)
	}
}

func TestTranslateNullResultMeansNoChange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"result":null}`))
	}))
	defer srv.Close()

	_, ok, err := NewClient(srv.URL).Translate(context.Background(), "text", domain.LanguageVI, domain.LanguageEN)
	if err != nil {
		t.Fatalf("null result must not be an error: %v", err)
	}
	if ok {
		t.Fatalf("null result must report ok=false")
	}
}

func TestTranslateServerErrorIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, ok, err := NewClient(srv.URL).Translate(context.Background(), "text", domain.LanguageVI, domain.LanguageEN)
	if err == nil || ok {
		t.Fatalf("expected transport error, got ok=%v err=%v", ok, err)
	}
}

func TestImportCourseDraft(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/import" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(importResponse{Course: &CourseDraft{
			Code:    "CS201",
			Name:    domain.LocalizedText{EN: "Data Structures"},
			Credits: 4,
			CLOs:    domain.CLOSet{EN: []string{"Implement lists and trees"}},
		}})
	}))
	defer srv.Close()

	draft, ok, err := NewClient(srv.URL).ImportCourseDraft(context.Background(), "cGRm")
	if err != nil || !ok {
		t.Fatalf("import: ok=%v err=%v", ok, err)
	}
	if draft.Code != "CS201" || draft.Credits != 4 {
		t.Fatalf("unexpected draft %+v", draft)
	}
}

func TestImportCourseDraftEmptyExtraction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"course":null}`))
	}))
	defer srv.Close()

	_, ok, err := NewClient(srv.URL).ImportCourseDraft(context.Background(), "cGRm")
	if err != nil || ok {
		t.Fatalf("empty extraction must be ok=false without error: ok=%v err=%v", ok, err)
	}
}

func TestApplyDraftFillsOnlyEmptyFields(t *testing.T) {
	store := memory.NewStore(nil)
	ctx := context.Background()
	_, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, err := tx.CreateCourse(domain.Course{
			Base: domain.Base{ID: "c1"},
			Code: "CS201",
			Name: domain.LocalizedText{VI: "Cấu trúc dữ liệu"},
		})
		return err
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	updated, err := ApplyDraft(ctx, store, "c1", CourseDraft{
		Code:    "WRONG999",
		Name:    domain.LocalizedText{VI: "Khác", EN: "Data Structures"},
		Credits: 4,
		CLOs:    domain.CLOSet{EN: []string{"Implement lists"}},
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if updated.Code != "CS201" {
		t.Fatalf("draft must not overwrite authored code: %q", updated.Code)
	}
	if updated.Name.VI != "Cấu trúc dữ liệu" || updated.Name.EN != "Data Structures" {
		t.Fatalf("name merge wrong: %+v", updated.Name)
	}
	if updated.Credits != 4 || len(updated.CLOs.EN) != 1 {
		t.Fatalf("empty fields not filled: %+v", updated)
	}
}
