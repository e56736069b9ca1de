package transport

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"share/internal/share"
)

// DirectoryUploader writes uploads into a local directory, such as a mounted
// network share. Folder uploads recreate their relative paths under root.
//
//	<root>/
//	  report.pdf          (single-file upload)
//	  photos/trip/b.jpg   (folder upload, relativePath photos/trip/b.jpg)
type DirectoryUploader struct {
	root string
}

var _ share.Uploader = (*DirectoryUploader)(nil)

// NewDirectoryUploader creates root if needed.
func NewDirectoryUploader(root string) (*DirectoryUploader, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create target directory: %w", err)
	}
	return &DirectoryUploader{root: root}, nil
}

// Upload writes the file atomically (temp file + rename), replacing any
// previous upload at the same path.
func (u *DirectoryUploader) Upload(_ context.Context, req *share.UploadRequest) error {
	dest, err := u.destPath(req)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return writeAtomic(dest, req.Content)
}

// destPath maps a request to a path under root, rejecting any that escape it.
func (u *DirectoryUploader) destPath(req *share.UploadRequest) (string, error) {
	name := req.Name
	if req.RelativePath != "" {
		name = req.RelativePath
	}
	clean := path.Clean("/" + strings.ReplaceAll(name, "\\", "/"))
	if clean == "/" {
		return "", fmt.Errorf("invalid upload name %q", name)
	}
	return filepath.Join(u.root, filepath.FromSlash(clean[1:])), nil
}

// writeAtomic copies r into a temp file next to dest, then renames it.
func writeAtomic(dest string, r io.Reader) error {
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write data: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}
