package s3

import (
	"context"
	"io"
	"strings"
	"testing"

	"curricore/internal/blob/core"
)

func TestMockStoreRoundTrip(t *testing.T) {
	store := NewMockForTests()
	ctx := context.Background()
	if store.Driver() != core.DriverS3 {
		t.Fatalf("unexpected driver %s", store.Driver())
	}
	info, err := store.Put(ctx, "exports/matrix.csv", strings.NewReader("ID,Code\n"), core.PutOptions{ContentType: "text/csv"})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Key != "exports/matrix.csv" {
		t.Fatalf("unexpected info %+v", info)
	}
	if _, err := store.Put(ctx, "exports/matrix.csv", strings.NewReader("other"), core.PutOptions{}); err == nil {
		t.Fatalf("expected create-only put to reject existing key")
	}
	got, rc, err := store.Get(ctx, "exports/matrix.csv")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(body) != "ID,Code\n" {
		t.Fatalf("unexpected body %q", body)
	}
	if got.ContentType != "text/csv" {
		t.Fatalf("content type lost: %+v", got)
	}
}

func TestMockStoreListAndDelete(t *testing.T) {
	store := NewMockForTests()
	ctx := context.Background()
	for _, key := range []string{"exports/b", "exports/a", "other/c"} {
		if _, err := store.Put(ctx, key, strings.NewReader(key), core.PutOptions{}); err != nil {
			t.Fatalf("put %s: %v", key, err)
		}
	}
	infos, err := store.List(ctx, "exports/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 2 || infos[0].Key != "exports/a" || infos[1].Key != "exports/b" {
		t.Fatalf("unexpected listing: %+v", infos)
	}
	if ok, err := store.Delete(ctx, "exports/a"); err != nil || !ok {
		t.Fatalf("delete: %v %v", ok, err)
	}
	if _, err := store.Head(ctx, "exports/a"); err == nil {
		t.Fatalf("expected head after delete to fail")
	}
}

func TestPresignRejectsNonGet(t *testing.T) {
	store := NewMockForTests()
	if _, err := store.PresignURL(context.Background(), "k", core.SignedURLOptions{Method: "PUT"}); err != core.ErrUnsupported {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestNewRequiresBucket(t *testing.T) {
	if _, err := New(context.Background(), Config{}); err == nil {
		t.Fatalf("expected missing bucket error")
	}
}

func TestOpenFromEnvRequiresBucket(t *testing.T) {
	t.Setenv("CURRICORE_BLOB_S3_BUCKET", "")
	if _, err := OpenFromEnv(context.Background()); err == nil {
		t.Fatalf("expected missing bucket error")
	}
}
