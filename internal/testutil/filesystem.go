package testutil

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"share/internal/share"
)

// MockFile represents a file in the mock filesystem.
type MockFile struct {
	Content     []byte
	Permissions fs.FileMode
	ModTime     time.Time
	IsDirectory bool
}

// MockFilesystemManager is an in-memory filesystem for testing. Paths are
// absolute and use the host separator.
type MockFilesystemManager struct {
	mu      sync.Mutex
	files   map[string]*MockFile
	ignored map[string]bool
	openErr map[string]error
}

var _ share.FilesystemManager = (*MockFilesystemManager)(nil)

// NewMockFilesystemManager creates a new mock filesystem.
func NewMockFilesystemManager() *MockFilesystemManager {
	return &MockFilesystemManager{
		files:   make(map[string]*MockFile),
		ignored: make(map[string]bool),
		openErr: make(map[string]error),
	}
}

// AddFile adds a file and any missing parent directories.
func (m *MockFilesystemManager) AddFile(path string, content []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addParentsLocked(path)
	m.files[path] = &MockFile{Content: content, Permissions: 0644, ModTime: time.Now()}
}

// AddDirectory adds a directory and any missing parents.
func (m *MockFilesystemManager) AddDirectory(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addParentsLocked(path)
	m.files[path] = &MockFile{Permissions: 0755, ModTime: time.Now(), IsDirectory: true}
}

func (m *MockFilesystemManager) addParentsLocked(path string) {
	for dir := filepath.Dir(path); dir != filepath.Dir(dir); dir = filepath.Dir(dir) {
		if _, ok := m.files[dir]; !ok {
			m.files[dir] = &MockFile{Permissions: 0755, ModTime: time.Now(), IsDirectory: true}
		}
	}
}

// Ignore marks a path as ignored for IsIgnored.
func (m *MockFilesystemManager) Ignore(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ignored[path] = true
}

// FailOpen makes Open of path return err.
func (m *MockFilesystemManager) FailOpen(path string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.openErr[path] = err
}

// Content returns a file's bytes and whether it exists.
func (m *MockFilesystemManager) Content(path string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.files[path]
	if !ok || f.IsDirectory {
		return nil, false
	}
	return f.Content, true
}

func (m *MockFilesystemManager) Resolve(rawPath string) (*share.Path, error) {
	absPath, err := filepath.Abs(rawPath)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	file, ok := m.files[absPath]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", absPath)
	}
	return m.pathLocked(absPath, file), nil
}

func (m *MockFilesystemManager) pathLocked(absPath string, file *MockFile) *share.Path {
	info := &mockFileInfo{
		name:    filepath.Base(absPath),
		size:    int64(len(file.Content)),
		mode:    file.Permissions,
		modTime: file.ModTime,
		isDir:   file.IsDirectory,
	}
	return share.NewPath(absPath, file.IsDirectory, info)
}

func (m *MockFilesystemManager) Open(path *share.Path) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.openErr[path.String()]; ok {
		return nil, err
	}
	file, ok := m.files[path.String()]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", path.String())
	}
	if file.IsDirectory {
		return nil, fmt.Errorf("cannot open directory: %s", path.String())
	}
	return io.NopCloser(bytes.NewReader(file.Content)), nil
}

func (m *MockFilesystemManager) FindFiles(dir *share.Path, recursive bool) ([]*share.Path, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	prefix := dir.String() + string(filepath.Separator)
	var names []string
	for p, f := range m.files {
		if f.IsDirectory || !strings.HasPrefix(p, prefix) {
			continue
		}
		if !recursive && strings.ContainsRune(p[len(prefix):], filepath.Separator) {
			continue
		}
		names = append(names, p)
	}
	sort.Strings(names)

	paths := make([]*share.Path, 0, len(names))
	for _, p := range names {
		paths = append(paths, m.pathLocked(p, m.files[p]))
	}
	return paths, nil
}

func (m *MockFilesystemManager) IsIgnored(path *share.Path, rootDir string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ignored[path.String()], nil
}

func (m *MockFilesystemManager) CreateUnique(dir, name string) (io.WriteCloser, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for i := 0; i < 1000; i++ {
		candidate := name
		if i > 0 {
			candidate = fmt.Sprintf("%s (%d)%s", base, i, ext)
		}
		full := filepath.Join(dir, candidate)
		if _, exists := m.files[full]; exists {
			continue
		}
		m.files[full] = &MockFile{Permissions: 0644, ModTime: time.Now()}
		return &mockWriter{fs: m, path: full}, full, nil
	}
	return nil, "", fmt.Errorf("no free name for %s in %s", name, dir)
}

func (m *MockFilesystemManager) Remove(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.files[path]; !ok {
		return fmt.Errorf("file not found: %s", path)
	}
	delete(m.files, path)
	return nil
}

// mockWriter appends to a mock file as it is written.
type mockWriter struct {
	fs   *MockFilesystemManager
	path string
}

func (w *mockWriter) Write(p []byte) (int, error) {
	w.fs.mu.Lock()
	defer w.fs.mu.Unlock()
	f, ok := w.fs.files[w.path]
	if !ok {
		return 0, fmt.Errorf("file removed: %s", w.path)
	}
	f.Content = append(f.Content, p...)
	return len(p), nil
}

func (w *mockWriter) Close() error { return nil }

// mockFileInfo implements fs.FileInfo
type mockFileInfo struct {
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
	isDir   bool
}

func (m *mockFileInfo) Name() string       { return m.name }
func (m *mockFileInfo) Size() int64        { return m.size }
func (m *mockFileInfo) Mode() fs.FileMode  { return m.mode }
func (m *mockFileInfo) ModTime() time.Time { return m.modTime }
func (m *mockFileInfo) IsDir() bool        { return m.isDir }
func (m *mockFileInfo) Sys() any           { return nil }
