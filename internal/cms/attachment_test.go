package cms

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestAttachmentStoreReusesFreshFile(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Header().Set("Etag", `"v1"`)
		_, _ = w.Write([]byte("%PDF-1.4\nHello"))
	}))
	t.Cleanup(server.Close)

	store, err := NewAttachmentStore(t.TempDir(), server.Client())
	if err != nil {
		t.Fatalf("NewAttachmentStore: %v", err)
	}
	ctx := context.Background()

	path, err := store.Fetch(ctx, server.URL+"/files/notes.pdf")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("cached file missing: %v", err)
	}
	if hits != 1 {
		t.Fatalf("expected single download, got %d hits", hits)
	}

	path2, err := store.Fetch(ctx, server.URL+"/files/notes.pdf")
	if err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if path != path2 {
		t.Fatalf("paths differ: %s vs %s", path, path2)
	}
	if hits != 1 {
		t.Fatalf("fresh file re-downloaded, total hits %d", hits)
	}
}

func TestAttachmentStoreRevalidatesStaleFile(t *testing.T) {
	var conditional bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("If-None-Match") == `"v1"` {
			conditional = true
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("Etag", `"v1"`)
		_, _ = w.Write([]byte("%PDF-1.4\nHello"))
	}))
	t.Cleanup(server.Close)

	store, err := NewAttachmentStore(t.TempDir(), server.Client())
	if err != nil {
		t.Fatalf("NewAttachmentStore: %v", err)
	}
	ctx := context.Background()

	path, err := store.Fetch(ctx, server.URL+"/files/notes.pdf")
	if err != nil {
		t.Fatalf("initial fetch: %v", err)
	}

	// Age the file so the next fetch must revalidate.
	old := time.Now().Add(-(attachmentTTL + time.Hour))
	if err := os.Chtimes(path, old, old); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	if _, err := store.Fetch(ctx, server.URL+"/files/notes.pdf"); err != nil {
		t.Fatalf("revalidating fetch: %v", err)
	}
	if !conditional {
		t.Fatalf("expected a conditional request for the stale file")
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat after revalidation: %v", err)
	}
	if time.Since(info.ModTime()) > attachmentTTL {
		t.Fatalf("not-modified response did not refresh the file age")
	}
}

func TestAttachmentStoreServesStaleCopyOffline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("%PDF-1.4\nHello"))
	}))

	store, err := NewAttachmentStore(t.TempDir(), server.Client())
	if err != nil {
		t.Fatalf("NewAttachmentStore: %v", err)
	}
	ctx := context.Background()
	url := server.URL + "/files/notes.pdf"

	path, err := store.Fetch(ctx, url)
	if err != nil {
		t.Fatalf("initial fetch: %v", err)
	}
	old := time.Now().Add(-(attachmentTTL + time.Hour))
	if err := os.Chtimes(path, old, old); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	server.Close()

	path2, err := store.Fetch(ctx, url)
	if err != nil {
		t.Fatalf("offline fetch should fall back to stale copy, got %v", err)
	}
	if path2 != path {
		t.Fatalf("offline fetch returned %q, want cached %q", path2, path)
	}
}

func TestAttachmentStoreHonorsEnvOverride(t *testing.T) {
	root := t.TempDir()
	t.Setenv(attachmentEnvVar, root)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("%PDF-1.4\nHello"))
	}))
	t.Cleanup(server.Close)

	store, err := NewAttachmentStore("", server.Client())
	if err != nil {
		t.Fatalf("NewAttachmentStore: %v", err)
	}
	path, err := store.Fetch(context.Background(), server.URL+"/files/notes.pdf")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if want := filepath.Join(root, attachmentSubdir); !strings.HasPrefix(path, want) {
		t.Fatalf("cached under %q, want prefix %q", path, want)
	}
}

func TestAttachmentTextRejectsNonPDF(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("just some text"))
	}))
	t.Cleanup(server.Close)

	store, err := NewAttachmentStore(t.TempDir(), server.Client())
	if err != nil {
		t.Fatalf("NewAttachmentStore: %v", err)
	}
	if _, err := store.Text(context.Background(), server.URL+"/files/notes.pdf"); err == nil {
		t.Fatalf("expected extraction error for non-pdf payload")
	}
}
