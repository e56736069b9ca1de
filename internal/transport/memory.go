package transport

import (
	"context"
	"fmt"
	"io"
	"sync"

	"share/internal/share"
)

// StoredFile is one upload received by a MemoryUploader.
type StoredFile struct {
	Name         string
	RelativePath string
	Content      []byte
}

// MemoryUploader keeps uploads in memory, in arrival order. Useful for
// tests and for dry runs. Safe for concurrent use.
type MemoryUploader struct {
	mu    sync.Mutex
	files []StoredFile
	fail  map[string]error
}

var _ share.Uploader = (*MemoryUploader)(nil)

// NewMemoryUploader creates an empty in-memory target.
func NewMemoryUploader() *MemoryUploader {
	return &MemoryUploader{fail: make(map[string]error)}
}

// FailOn makes uploads of the named file return err after consuming its content.
func (m *MemoryUploader) FailOn(name string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail[name] = err
}

// Upload reads the whole content and stores it.
func (m *MemoryUploader) Upload(_ context.Context, req *share.UploadRequest) error {
	data, err := io.ReadAll(req.Content)
	if err != nil {
		return fmt.Errorf("reading content: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err, ok := m.fail[req.Name]; ok {
		return err
	}
	m.files = append(m.files, StoredFile{
		Name:         req.Name,
		RelativePath: req.RelativePath,
		Content:      data,
	})
	return nil
}

// Files returns a copy of everything stored so far.
func (m *MemoryUploader) Files() []StoredFile {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]StoredFile(nil), m.files...)
}
