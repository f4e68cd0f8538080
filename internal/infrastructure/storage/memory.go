package storage

import (
	"context"
	"net/url"
	"path"
	"sync"
	"time"
)

// MemoryReportArchive keeps reports in process memory. It backs the archive
// endpoint when object storage is disabled; files are lost on restart.
type MemoryReportArchive struct {
	mu      sync.RWMutex
	objects map[string]MemoryObject
	// BaseURL prefixes generated download links
	BaseURL string
	prefix  string
}

// MemoryObject is one stored report
type MemoryObject struct {
	Data        []byte
	ContentType string
	StoredAt    time.Time
}

// NewMemoryReportArchive creates an empty in-memory archive
func NewMemoryReportArchive(prefix string) *MemoryReportArchive {
	return &MemoryReportArchive{
		objects: make(map[string]MemoryObject),
		BaseURL: "memory://reports",
		prefix:  prefix,
	}
}

// Key returns the full object key for name under the archive prefix
func (a *MemoryReportArchive) Key(name string) string {
	if a.prefix == "" {
		return name
	}
	return path.Join(a.prefix, name)
}

// Upload stores a copy of data under key
func (a *MemoryReportArchive) Upload(_ context.Context, key string, data []byte, contentType string) error {
	if key == "" {
		return ErrEmptyKey
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.objects[key] = MemoryObject{
		Data:        append([]byte(nil), data...),
		ContentType: contentType,
		StoredAt:    time.Now(),
	}
	return nil
}

// GenerateDownloadURL returns a pseudo link; the object must exist
func (a *MemoryReportArchive) GenerateDownloadURL(_ context.Context, key string, expiresIn time.Duration) (string, time.Time, error) {
	if key == "" {
		return "", time.Time{}, ErrEmptyKey
	}
	a.mu.RLock()
	_, ok := a.objects[key]
	a.mu.RUnlock()
	if !ok {
		return "", time.Time{}, ErrObjectNotFound
	}
	if expiresIn <= 0 {
		expiresIn = 15 * time.Minute
	}
	expiresAt := time.Now().Add(expiresIn)
	return a.BaseURL + "/" + url.PathEscape(key) + "?expires=" + expiresAt.UTC().Format(time.RFC3339), expiresAt, nil
}

// Object returns the stored object for key
func (a *MemoryReportArchive) Object(key string) (MemoryObject, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	obj, ok := a.objects[key]
	return obj, ok
}
