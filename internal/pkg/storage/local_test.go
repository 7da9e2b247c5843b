package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
)

func TestLocalStoragePutGetDelete(t *testing.T) {
	st, err := NewLocalStorage(t.TempDir(), "http://localhost:8080/media")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx := context.Background()

	key := "galleries/wedding-smith-2024/abc.jpg"
	if err := st.Put(ctx, key, bytes.NewReader([]byte("image-bytes")), "image/jpeg"); err != nil {
		t.Fatalf("put: %v", err)
	}

	exists, err := st.Exists(ctx, key)
	if err != nil || !exists {
		t.Fatalf("exists: %v %v", exists, err)
	}

	rc, err := st.Get(ctx, key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if string(data) != "image-bytes" {
		t.Fatalf("unexpected content %q", data)
	}

	if got := st.GetURL(key); got != "http://localhost:8080/media/"+key {
		t.Fatalf("unexpected url %q", got)
	}

	if err := st.Delete(ctx, key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	// Idempotent
	if err := st.Delete(ctx, key); err != nil {
		t.Fatalf("second delete: %v", err)
	}

	if _, err := st.Get(ctx, key); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLocalStorageDeletePrefix(t *testing.T) {
	st, err := NewLocalStorage(t.TempDir(), "http://localhost:8080/media")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx := context.Background()

	keys := []string{
		"galleries/g1/a.jpg",
		"galleries/g1/thumbnails/a.jpg",
		"galleries/g2/b.jpg",
	}
	for _, k := range keys {
		if err := st.Put(ctx, k, bytes.NewReader([]byte("x")), "image/jpeg"); err != nil {
			t.Fatalf("put %s: %v", k, err)
		}
	}

	if err := st.DeletePrefix(ctx, "galleries/g1"); err != nil {
		t.Fatalf("delete prefix: %v", err)
	}

	for _, k := range keys[:2] {
		if exists, _ := st.Exists(ctx, k); exists {
			t.Fatalf("expected %s to be gone", k)
		}
	}
	if exists, _ := st.Exists(ctx, keys[2]); !exists {
		t.Fatal("other gallery's file must survive")
	}
}
