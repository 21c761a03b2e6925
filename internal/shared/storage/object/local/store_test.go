package local

import (
	"context"
	"io"
	"strings"
	"testing"
)

func TestSaveAndOpenRoundTrip(t *testing.T) {
	store := New(t.TempDir())
	ctx := context.Background()

	payload := "%PDF-1.7\nresume body"
	key, size, mime, err := store.Save(ctx, "guest:abc", "resume.pdf", strings.NewReader(payload))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if size != int64(len(payload)) {
		t.Fatalf("expected size %d, got %d", len(payload), size)
	}
	if mime != "application/pdf" {
		t.Fatalf("expected application/pdf, got %q", mime)
	}
	if strings.Contains(key, "guest:abc") {
		t.Fatalf("storage key must not embed the raw user id: %q", key)
	}

	rc, err := store.Open(ctx, key)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rc.Close()
	got, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != payload {
		t.Fatalf("round trip mismatch: %q", got)
	}
}

func TestOpenRejectsTraversalKeys(t *testing.T) {
	store := New(t.TempDir())
	ctx := context.Background()

	for _, key := range []string{"../etc/passwd", "/etc/passwd", "a/../../b"} {
		if _, err := store.Open(ctx, key); err == nil {
			t.Fatalf("expected error for key %q", key)
		}
	}
}

func TestSaveWithKeyWritesDerivedObject(t *testing.T) {
	base := t.TempDir()
	store := New(base).(*Store)
	ctx := context.Background()

	n, err := store.SaveWithKey(ctx, "derived/extract.txt", "text/plain; charset=utf-8", strings.NewReader("extracted text"))
	if err != nil {
		t.Fatalf("save with key: %v", err)
	}
	if n != int64(len("extracted text")) {
		t.Fatalf("expected %d bytes written, got %d", len("extracted text"), n)
	}

	rc, err := store.Open(ctx, "derived/extract.txt")
	if err != nil {
		t.Fatalf("open derived object: %v", err)
	}
	defer rc.Close()
	got, _ := io.ReadAll(rc)
	if string(got) != "extracted text" {
		t.Fatalf("derived object mismatch: %q", got)
	}
}
