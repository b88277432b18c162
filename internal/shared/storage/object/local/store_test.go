package local

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"resumeflow/internal/shared/storage/object"
)

func TestPutThenOpen(t *testing.T) {
	store := New(t.TempDir())
	ctx := context.Background()

	obj, err := store.Put(ctx, "user-1", "portfolio.html", "text/html; charset=utf-8", strings.NewReader("<h1>Ada</h1>"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if !object.OwnedBy(obj.Key, "user-1") {
		t.Fatalf("expected key %q in user namespace", obj.Key)
	}
	if !strings.HasSuffix(obj.Key, "_portfolio.html") || obj.Size != 12 {
		t.Fatalf("unexpected object: %+v", obj)
	}

	rc, meta, err := store.Open(ctx, obj.Key)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()
	body, _ := io.ReadAll(rc)
	if string(body) != "<h1>Ada</h1>" {
		t.Fatalf("unexpected body %q", body)
	}
	if !strings.HasPrefix(meta.ContentType, "text/html") {
		t.Fatalf("unexpected content type %q", meta.ContentType)
	}
}

func TestOpenMissingAndTraversal(t *testing.T) {
	store := New(t.TempDir())

	if _, _, err := store.Open(context.Background(), "nope/portfolio.html"); !errors.Is(err, object.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, _, err := store.Open(context.Background(), "../../etc/passwd"); err == nil {
		t.Fatalf("expected traversal to be rejected")
	}
}

func TestPutNeutralizesPathInName(t *testing.T) {
	store := New(t.TempDir())
	obj, err := store.Put(context.Background(), "user-1", "../../x.html", "text/html", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if strings.Contains(obj.Key, "..") || !object.OwnedBy(obj.Key, "user-1") {
		t.Fatalf("key escaped the user namespace: %q", obj.Key)
	}
}

func TestPutRejectsMissingOwner(t *testing.T) {
	store := New(t.TempDir())
	if _, err := store.Put(context.Background(), "", "portfolio.html", "text/html", strings.NewReader("x")); err == nil {
		t.Fatalf("expected error")
	}
}

func TestOpenDirectoryIsNotFound(t *testing.T) {
	store := New(t.TempDir())
	obj, err := store.Put(context.Background(), "user-1", "portfolio.html", "text/html", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	dir := strings.SplitN(obj.Key, "/", 2)[0]
	if _, _, err := store.Open(context.Background(), dir); !errors.Is(err, object.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for directory, got %v", err)
	}
}
