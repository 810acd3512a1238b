package localfs

import (
	"bytes"
	"context"
	"io"
	"testing"
)

func TestSaveAndOpenRoundTrip(t *testing.T) {
	storage, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	payload := []byte("jpeg-bytes")
	if err := storage.Save(context.Background(), "abc_photo.jpg", bytes.NewReader(payload)); err != nil {
		t.Fatalf("Save: %v", err)
	}

	rc, err := storage.Open(context.Background(), "abc_photo.jpg")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()

	got, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("got %q, want %q", got, payload)
	}
}

func TestOpenMissingKey(t *testing.T) {
	storage, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := storage.Open(context.Background(), "nope.jpg"); err == nil {
		t.Fatal("expected an error for a missing key")
	}
}
