package memory

import (
	"context"
	"io"
	"strings"
	"testing"

	"curricore/internal/blob/core"
)

func TestPutGetHeadDelete(t *testing.T) {
	store := New()
	ctx := context.Background()
	if store.Driver() != core.DriverMemory {
		t.Fatalf("unexpected driver %s", store.Driver())
	}
	info, err := store.Put(ctx, "reports/abet.json", strings.NewReader("payload"), core.PutOptions{ContentType: "application/json"})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Size != int64(len("payload")) {
		t.Fatalf("size mismatch: %d", info.Size)
	}
	if _, err := store.Put(ctx, "reports/abet.json", strings.NewReader("again"), core.PutOptions{}); err == nil {
		t.Fatalf("expected duplicate put to fail")
	}
	head, err := store.Head(ctx, "reports/abet.json")
	if err != nil || head.ContentType != "application/json" {
		t.Fatalf("head: %+v %v", head, err)
	}
	_, rc, err := store.Get(ctx, "reports/abet.json")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(body) != "payload" {
		t.Fatalf("unexpected body %q", body)
	}
	if ok, err := store.Delete(ctx, "reports/abet.json"); err != nil || !ok {
		t.Fatalf("delete: %v %v", ok, err)
	}
	if _, err := store.Head(ctx, "reports/abet.json"); err == nil {
		t.Fatalf("expected head after delete to fail")
	}
}

func TestListSortedByKey(t *testing.T) {
	store := New()
	ctx := context.Background()
	for _, key := range []string{"b", "a", "exports/c"} {
		if _, err := store.Put(ctx, key, strings.NewReader(key), core.PutOptions{}); err != nil {
			t.Fatalf("put %s: %v", key, err)
		}
	}
	infos, err := store.List(ctx, "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 3 || infos[0].Key != "a" || infos[1].Key != "b" || infos[2].Key != "exports/c" {
		t.Fatalf("unexpected order: %+v", infos)
	}
	subset, err := store.List(ctx, "exports/")
	if err != nil || len(subset) != 1 {
		t.Fatalf("prefix list: %+v %v", subset, err)
	}
}

func TestPresignUnsupported(t *testing.T) {
	store := New()
	if _, err := store.PresignURL(context.Background(), "k", core.SignedURLOptions{}); err != core.ErrUnsupported {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestGetReturnsIsolatedCopy(t *testing.T) {
	store := New()
	ctx := context.Background()
	if _, err := store.Put(ctx, "k", strings.NewReader("abc"), core.PutOptions{Metadata: map[string]string{"a": "1"}}); err != nil {
		t.Fatalf("put: %v", err)
	}
	info, rc, err := store.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	_ = rc.Close()
	info.Metadata["a"] = "mutated"
	fresh, err := store.Head(ctx, "k")
	if err != nil {
		t.Fatalf("head: %v", err)
	}
	if fresh.Metadata["a"] != "1" {
		t.Fatalf("stored metadata mutated: %+v", fresh.Metadata)
	}
}
