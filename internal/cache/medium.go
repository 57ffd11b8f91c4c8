package cache

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

const (
	mediumEnvVar  = "ZINE_CACHE_DIR"
	cacheRootName = "zine"
	entriesSubdir = "entries"
	entrySuffix   = ".json"
	partialSuffix = ".part"
)

// Medium is the persistence layer beneath a Store: raw bytes per key, no
// expiry semantics. Implementations must make Write atomic per entry so a
// reader never observes a half-written payload.
type Medium interface {
	Read(key string) (data []byte, ok bool, err error)
	Write(key string, data []byte) error
	Delete(key string) error
	Keys() ([]string, error)
}

// DirMedium stores one file per key under the entries subdirectory of the
// cache root.
type DirMedium struct {
	dir string
}

// NewDirMedium creates the medium under root, or under ZINE_CACHE_DIR and
// then the user cache dir when root is empty. Entries live in their own
// subdirectory so the root can host other cached state.
func NewDirMedium(root string) (*DirMedium, error) {
	if root == "" {
		root = os.Getenv(mediumEnvVar)
	}
	if root == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			base = os.TempDir()
		}
		root = filepath.Join(base, cacheRootName)
	}
	return NewDirMediumAt(filepath.Join(root, entriesSubdir))
}

func NewDirMediumAt(dir string) (*DirMedium, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create cache dir")
	}
	return &DirMedium{dir: dir}, nil
}

// Dir returns the backing directory.
func (m *DirMedium) Dir() string { return m.dir }

func (m *DirMedium) Read(key string) ([]byte, bool, error) {
	data, err := os.ReadFile(m.pathFor(key))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "read cache entry")
	}
	return data, true, nil
}

// Write lands the payload under a partial name first, then renames it into
// place so concurrent readers see either the old entry or the new one.
func (m *DirMedium) Write(key string, data []byte) error {
	path := m.pathFor(key)
	partial := path + partialSuffix
	if err := os.WriteFile(partial, data, 0o644); err != nil {
		return errors.Wrap(err, "write cache entry")
	}
	if err := os.Rename(partial, path); err != nil {
		os.Remove(partial)
		return errors.Wrap(err, "finalize cache entry")
	}
	return nil
}

func (m *DirMedium) Delete(key string) error {
	err := os.Remove(m.pathFor(key))
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "delete cache entry")
	}
	return nil
}

func (m *DirMedium) Keys() ([]string, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, errors.Wrap(err, "list cache entries")
	}
	keys := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, entrySuffix) {
			continue
		}
		keys = append(keys, strings.TrimSuffix(name, entrySuffix))
	}
	return keys, nil
}

func (m *DirMedium) pathFor(key string) string {
	return filepath.Join(m.dir, sanitizeKey(key)+entrySuffix)
}

// sanitizeKey flattens path-hostile characters; idempotent, so keys returned
// by Keys round-trip through Read and Delete.
func sanitizeKey(value string) string {
	value = strings.TrimSpace(value)
	value = strings.ReplaceAll(value, "/", "-")
	value = strings.ReplaceAll(value, ":", "-")
	value = strings.ReplaceAll(value, "..", "-")
	return value
}

// MemMedium is an in-memory Medium for tests and embedded use.
type MemMedium struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func NewMemMedium() *MemMedium {
	return &MemMedium{entries: make(map[string][]byte)}
}

func (m *MemMedium) Read(key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	cloned := append([]byte(nil), data...)
	return cloned, true, nil
}

func (m *MemMedium) Write(key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = append([]byte(nil), data...)
	return nil
}

func (m *MemMedium) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

func (m *MemMedium) Keys() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.entries))
	for key := range m.entries {
		keys = append(keys, key)
	}
	return keys, nil
}

var (
	_ Medium = (*DirMedium)(nil)
	_ Medium = (*MemMedium)(nil)
)
