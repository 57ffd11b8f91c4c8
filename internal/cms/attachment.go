package cms

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
)

const (
	attachmentEnvVar = "ZINE_CACHE_DIR"
	cacheRootName    = "zine"
	attachmentSubdir = "attachments"
	attachmentTTL    = 24 * time.Hour
	partSuffix       = ".part"
	metaSuffix       = ".meta"
)

var collapseWhitespace = regexp.MustCompile(`\s+`)

// AttachmentStore downloads file-block attachments into the cache directory
// and serves them from disk while fresh, revalidating with conditional
// requests once stale.
type AttachmentStore struct {
	dir        string
	httpClient *http.Client
}

type attachmentMeta struct {
	URL          string    `json:"url"`
	ETag         string    `json:"etag,omitempty"`
	LastModified string    `json:"lastModified,omitempty"`
	CachedAt     time.Time `json:"cachedAt"`
	Size         int64     `json:"size"`
}

// NewAttachmentStore creates a store under the attachments subdirectory of
// root, falling back to ZINE_CACHE_DIR and then the user cache dir when root
// is empty. httpClient may be nil.
func NewAttachmentStore(root string, httpClient *http.Client) (*AttachmentStore, error) {
	if root == "" {
		root = os.Getenv(attachmentEnvVar)
	}
	if root == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			base = os.TempDir()
		}
		root = filepath.Join(base, cacheRootName)
	}
	dir := filepath.Join(root, attachmentSubdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create attachment dir: %w", err)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &AttachmentStore{dir: dir, httpClient: httpClient}, nil
}

// Fetch returns a local path for the attachment at fileURL, downloading it if
// the cached copy is missing or stale. A stale copy is still returned when
// revalidation fails, so readers keep working offline.
func (s *AttachmentStore) Fetch(ctx context.Context, fileURL string) (string, error) {
	path, metaPath := s.pathsFor(fileURL)

	if info, err := os.Stat(path); err == nil && info.Size() > 0 && time.Since(info.ModTime()) < attachmentTTL {
		return path, nil
	}

	meta, _ := readAttachmentMeta(metaPath)
	current, _ := os.Stat(path)
	if err := s.download(ctx, fileURL, path, metaPath, meta, current); err != nil {
		if current != nil && current.Size() > 0 {
			return path, nil
		}
		return "", err
	}
	return path, nil
}

func (s *AttachmentStore) download(ctx context.Context, fileURL, path, metaPath string, meta attachmentMeta, current os.FileInfo) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return err
	}
	if current != nil && current.Size() > 0 {
		if meta.ETag != "" {
			req.Header.Set("If-None-Match", meta.ETag)
		}
		if meta.LastModified != "" {
			req.Header.Set("If-Modified-Since", meta.LastModified)
		}
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNotModified:
		meta.CachedAt = time.Now().UTC()
		writeAttachmentMeta(metaPath, meta)
		now := time.Now()
		os.Chtimes(path, now, now)
		return nil
	case http.StatusOK:
		return s.save(resp, fileURL, path, metaPath)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("attachment download failed: %s (%s)", resp.Status, strings.TrimSpace(string(body)))
	}
}

func (s *AttachmentStore) save(resp *http.Response, fileURL, path, metaPath string) error {
	part := path + partSuffix
	file, err := os.OpenFile(part, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(file, resp.Body); err != nil {
		file.Close()
		os.Remove(part)
		return err
	}
	if err := file.Close(); err != nil {
		return err
	}
	if err := os.Rename(part, path); err != nil {
		os.Remove(part)
		return err
	}

	meta := attachmentMeta{
		URL:          fileURL,
		ETag:         resp.Header.Get("Etag"),
		LastModified: resp.Header.Get("Last-Modified"),
		CachedAt:     time.Now().UTC(),
	}
	if info, err := os.Stat(path); err == nil {
		meta.Size = info.Size()
	}
	return writeAttachmentMeta(metaPath, meta)
}

// Text fetches the attachment and extracts its plain text. Only PDF payloads
// are supported; anything else reports an extraction error.
func (s *AttachmentStore) Text(ctx context.Context, fileURL string) (string, error) {
	path, err := s.Fetch(ctx, fileURL)
	if err != nil {
		return "", err
	}

	file, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open attachment pdf: %w", err)
	}
	defer file.Close()

	content, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract attachment text: %w", err)
	}

	var builder strings.Builder
	if _, err := io.Copy(&builder, content); err != nil {
		return "", err
	}
	return strings.TrimSpace(collapseWhitespace.ReplaceAllString(builder.String(), " ")), nil
}

func (s *AttachmentStore) pathsFor(fileURL string) (string, string) {
	sum := sha1.Sum([]byte(fileURL))
	key := hex.EncodeToString(sum[:])
	return filepath.Join(s.dir, key+".pdf"), filepath.Join(s.dir, key+metaSuffix)
}

func readAttachmentMeta(path string) (attachmentMeta, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return attachmentMeta{}, err
	}
	var meta attachmentMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return attachmentMeta{}, err
	}
	return meta, nil
}

func writeAttachmentMeta(path string, meta attachmentMeta) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
