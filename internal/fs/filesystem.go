package fs

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"share/internal/share"
)

// IgnoreFileName is read from the root of a folder selection for extra ignore patterns.
const IgnoreFileName = ".shareignore"

// maxUniqueAttempts bounds the numbered variants CreateUnique tries.
const maxUniqueAttempts = 1000

// OSFilesystemManager is the real filesystem implementation of FilesystemManager.
// It performs actual filesystem operations using the os package.
type OSFilesystemManager struct {
	ignorePatterns []string
	matchers       map[string]*IgnoreMatcher
}

// NewOSFilesystemManager creates a new filesystem manager that operates on the real filesystem.
// ignorePatterns apply to every folder selection in addition to its .shareignore.
func NewOSFilesystemManager(ignorePatterns []string) *OSFilesystemManager {
	return &OSFilesystemManager{
		ignorePatterns: ignorePatterns,
		matchers:       make(map[string]*IgnoreMatcher),
	}
}

// Resolve validates a raw path and returns a Path object.
func (m *OSFilesystemManager) Resolve(rawPath string) (*share.Path, error) {
	absPath, err := filepath.Abs(rawPath)
	if err != nil {
		return nil, fmt.Errorf("resolving absolute path: %w", err)
	}

	// Lstat so a symlink is seen as a symlink.
	info, err := os.Lstat(absPath)
	if err != nil {
		return nil, fmt.Errorf("stat path: %w", err)
	}

	mode := info.Mode()
	if mode&os.ModeSymlink != 0 {
		return nil, fmt.Errorf("symlinks not supported: %s", absPath)
	}
	if mode&os.ModeDevice != 0 {
		return nil, fmt.Errorf("device files not supported: %s", absPath)
	}
	if mode&os.ModeNamedPipe != 0 {
		return nil, fmt.Errorf("named pipes not supported: %s", absPath)
	}
	if mode&os.ModeSocket != 0 {
		return nil, fmt.Errorf("sockets not supported: %s", absPath)
	}

	return share.NewPath(absPath, info.IsDir(), info), nil
}

// Open opens a file for reading.
func (m *OSFilesystemManager) Open(path *share.Path) (io.ReadCloser, error) {
	if path.IsDir() {
		return nil, fmt.Errorf("cannot open directory as file: %s", path.String())
	}
	return os.Open(path.String())
}

// FindFiles discovers regular files under the given directory path.
// filepath.WalkDir and os.ReadDir both yield entries in lexical order.
func (m *OSFilesystemManager) FindFiles(path *share.Path, recursive bool) ([]*share.Path, error) {
	if !path.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", path.String())
	}

	var paths []*share.Path

	if recursive {
		err := filepath.WalkDir(path.String(), func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			if !d.Type().IsRegular() {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				return fmt.Errorf("stat %s: %w", p, err)
			}
			paths = append(paths, share.NewPath(p, false, info))
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking directory: %w", err)
		}
	} else {
		entries, err := os.ReadDir(path.String())
		if err != nil {
			return nil, fmt.Errorf("reading directory: %w", err)
		}
		for _, entry := range entries {
			if !entry.Type().IsRegular() {
				continue
			}
			info, err := entry.Info()
			if err != nil {
				return nil, fmt.Errorf("stat %s: %w", entry.Name(), err)
			}
			fullPath := filepath.Join(path.String(), entry.Name())
			paths = append(paths, share.NewPath(fullPath, false, info))
		}
	}

	return paths, nil
}

// IsIgnored reports whether path matches the configured patterns or the
// .shareignore file at rootDir. Matchers are cached per root.
func (m *OSFilesystemManager) IsIgnored(path *share.Path, rootDir string) (bool, error) {
	matcher, ok := m.matchers[rootDir]
	if !ok {
		filePatterns, err := ParseIgnoreFile(filepath.Join(rootDir, IgnoreFileName))
		if err != nil {
			return false, err
		}
		patterns := append(append(append([]string{}, defaultIgnorePatterns...), m.ignorePatterns...), filePatterns...)
		matcher = NewIgnoreMatcher(patterns)
		m.matchers[rootDir] = matcher
	}

	rel, err := filepath.Rel(rootDir, path.String())
	if err != nil {
		return false, fmt.Errorf("calculating relative path: %w", err)
	}
	return matcher.Match(rel), nil
}

// CreateUnique creates name inside dir, falling back to "base (N).ext"
// when the name is already taken. Existing files are never overwritten.
func (m *OSFilesystemManager) CreateUnique(dir, name string) (io.WriteCloser, string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, "", fmt.Errorf("creating directory: %w", err)
	}

	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)

	for i := 0; i < maxUniqueAttempts; i++ {
		candidate := name
		if i > 0 {
			candidate = fmt.Sprintf("%s (%d)%s", base, i, ext)
		}
		p := filepath.Join(dir, candidate)
		f, err := os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if err == nil {
			return f, p, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, "", fmt.Errorf("creating %s: %w", p, err)
		}
	}
	return nil, "", fmt.Errorf("no free name for %s in %s", name, dir)
}

// Remove deletes a file.
func (m *OSFilesystemManager) Remove(path string) error {
	return os.Remove(path)
}

// Compile-time check that OSFilesystemManager implements share.FilesystemManager interface
var _ share.FilesystemManager = (*OSFilesystemManager)(nil)
