package transport

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"share/internal/share"
)

func TestDirectoryUploader_Upload(t *testing.T) {
	tests := []struct {
		name     string
		req      share.UploadRequest
		wantPath string
	}{
		{name: "single file", req: share.UploadRequest{Name: "a.txt"}, wantPath: "a.txt"},
		{name: "folder file", req: share.UploadRequest{Name: "b.txt", RelativePath: "docs/sub/b.txt"}, wantPath: "docs/sub/b.txt"},
		{name: "escaping path is contained", req: share.UploadRequest{Name: "x", RelativePath: "../../etc/x"}, wantPath: "etc/x"},
		{name: "backslashes", req: share.UploadRequest{Name: "y", RelativePath: `docs\y.txt`}, wantPath: "docs/y.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := filepath.Join(t.TempDir(), "target")
			u, err := NewDirectoryUploader(root)
			if err != nil {
				t.Fatalf("NewDirectoryUploader() error = %v", err)
			}

			req := tt.req
			req.Content = strings.NewReader("payload")
			if err := u.Upload(context.Background(), &req); err != nil {
				t.Fatalf("Upload() error = %v", err)
			}

			got, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(tt.wantPath)))
			if err != nil {
				t.Fatalf("ReadFile() error = %v", err)
			}
			if string(got) != "payload" {
				t.Errorf("content = %q, want %q", got, "payload")
			}
		})
	}
}

func TestDirectoryUploader_FailedWriteLeavesNothing(t *testing.T) {
	root := t.TempDir()
	u, err := NewDirectoryUploader(root)
	if err != nil {
		t.Fatalf("NewDirectoryUploader() error = %v", err)
	}

	req := &share.UploadRequest{Name: "a.txt", Content: iotest.ErrReader(errors.New("disk on fire"))}
	if err := u.Upload(context.Background(), req); err == nil {
		t.Fatal("Upload() expected error")
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("root has %d entries after failed upload, want 0", len(entries))
	}
}

func TestDirectoryUploader_InvalidName(t *testing.T) {
	u, err := NewDirectoryUploader(t.TempDir())
	if err != nil {
		t.Fatalf("NewDirectoryUploader() error = %v", err)
	}
	for _, name := range []string{"", "/", ".."} {
		req := &share.UploadRequest{Name: name, Content: strings.NewReader("x")}
		if err := u.Upload(context.Background(), req); err == nil {
			t.Errorf("Upload(%q) expected error", name)
		}
	}
}
