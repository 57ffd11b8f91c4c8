package cache

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDirMediumRoundTrip(t *testing.T) {
	medium, err := NewDirMediumAt(t.TempDir())
	if err != nil {
		t.Fatalf("NewDirMediumAt: %v", err)
	}

	if err := medium.Write("zine-article-p1", []byte(`{"data":1}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	data, ok, err := medium.Read("zine-article-p1")
	if err != nil || !ok {
		t.Fatalf("read back: ok=%v err=%v", ok, err)
	}
	if string(data) != `{"data":1}` {
		t.Fatalf("payload mismatch: %q", data)
	}

	entries, err := os.ReadDir(medium.Dir())
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), partialSuffix) {
			t.Fatalf("partial file left behind: %s", entry.Name())
		}
	}
}

func TestDirMediumHonorsEnvOverride(t *testing.T) {
	root := t.TempDir()
	t.Setenv(mediumEnvVar, root)

	medium, err := NewDirMedium("")
	if err != nil {
		t.Fatalf("NewDirMedium: %v", err)
	}
	if want := filepath.Join(root, entriesSubdir); medium.Dir() != want {
		t.Fatalf("dir = %q, want %q", medium.Dir(), want)
	}
}

func TestDirMediumExplicitRootBeatsEnv(t *testing.T) {
	t.Setenv(mediumEnvVar, t.TempDir())

	root := t.TempDir()
	medium, err := NewDirMedium(root)
	if err != nil {
		t.Fatalf("NewDirMedium: %v", err)
	}
	if want := filepath.Join(root, entriesSubdir); medium.Dir() != want {
		t.Fatalf("dir = %q, want %q", medium.Dir(), want)
	}
}

func TestDirMediumKeysListsOnlyEntries(t *testing.T) {
	medium, err := NewDirMediumAt(t.TempDir())
	if err != nil {
		t.Fatalf("NewDirMediumAt: %v", err)
	}

	if err := medium.Write("zine-articles", []byte("{}")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := medium.Write("zine-article-p1", []byte("{}")); err != nil {
		t.Fatalf("write: %v", err)
	}
	stray := filepath.Join(medium.Dir(), "stray.txt")
	if err := os.WriteFile(stray, []byte("x"), 0o644); err != nil {
		t.Fatalf("write stray: %v", err)
	}

	keys, err := medium.Keys()
	if err != nil {
		t.Fatalf("keys: %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("expected 2 keys, got %v", keys)
	}
	for _, key := range keys {
		if _, ok, err := medium.Read(key); err != nil || !ok {
			t.Fatalf("listed key %q not readable: ok=%v err=%v", key, ok, err)
		}
	}
}

func TestDirMediumSanitizesHostileKeys(t *testing.T) {
	medium, err := NewDirMediumAt(t.TempDir())
	if err != nil {
		t.Fatalf("NewDirMediumAt: %v", err)
	}

	key := "zine-article-2024/01:intro"
	if err := medium.Write(key, []byte("{}")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, ok, err := medium.Read(key); err != nil || !ok {
		t.Fatalf("sanitized key not readable: ok=%v err=%v", ok, err)
	}
	entries, err := os.ReadDir(medium.Dir())
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one file, got %d", len(entries))
	}
	if name := entries[0].Name(); strings.ContainsAny(name, "/:") {
		t.Fatalf("hostile characters survived sanitization: %q", name)
	}
}

func TestDirMediumDeleteMissingKey(t *testing.T) {
	medium, err := NewDirMediumAt(t.TempDir())
	if err != nil {
		t.Fatalf("NewDirMediumAt: %v", err)
	}
	if err := medium.Delete("zine-never-written"); err != nil {
		t.Fatalf("delete of missing key should be a no-op, got %v", err)
	}
}
