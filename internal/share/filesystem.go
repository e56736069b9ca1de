package share

import "io"

// FilesystemManager provides an interface for filesystem operations.
// It abstracts file access to enable testing without touching the real filesystem.
type FilesystemManager interface {
	// Resolve validates a raw path and returns a Path object.
	// It resolves the path to an absolute path, stats it, and validates
	// it's a regular file or directory (not a symlink, device, etc.).
	Resolve(rawPath string) (*Path, error)

	// Open opens a file for reading.
	Open(path *Path) (io.ReadCloser, error)

	// FindFiles discovers regular files under the given directory path,
	// in lexical order.
	FindFiles(path *Path, recursive bool) ([]*Path, error)

	// IsIgnored reports whether path should be skipped when selecting
	// files from the folder rooted at rootDir.
	IsIgnored(path *Path, rootDir string) (bool, error)

	// CreateUnique creates a new file named name inside dir. If the name is
	// taken, a numbered variant ("name (1).ext") is used instead.
	// Returns the open file and the path actually created.
	CreateUnique(dir, name string) (io.WriteCloser, string, error)

	// Remove deletes a file. Used to discard partial downloads.
	Remove(path string) error
}
