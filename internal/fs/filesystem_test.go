package fs

import (
	"io"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("creating dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

func TestOSFilesystemManager_Resolve(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.txt")
	writeFile(t, file, "hello")

	m := NewOSFilesystemManager(nil)

	t.Run("regular file", func(t *testing.T) {
		p, err := m.Resolve(file)
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if p.IsDir() {
			t.Error("IsDir() = true, want false")
		}
		if p.Info().Size() != 5 {
			t.Errorf("Size = %d, want 5", p.Info().Size())
		}
	})

	t.Run("directory", func(t *testing.T) {
		p, err := m.Resolve(dir)
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if !p.IsDir() {
			t.Error("IsDir() = false, want true")
		}
	})

	t.Run("missing path", func(t *testing.T) {
		if _, err := m.Resolve(filepath.Join(dir, "missing")); err == nil {
			t.Error("Resolve() expected error for missing path")
		}
	})

	t.Run("symlink rejected", func(t *testing.T) {
		link := filepath.Join(dir, "link")
		if err := os.Symlink(file, link); err != nil {
			t.Skipf("symlinks unavailable: %v", err)
		}
		if _, err := m.Resolve(link); err == nil {
			t.Error("Resolve() expected error for symlink")
		}
	})
}

func TestOSFilesystemManager_FindFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.txt"), "b")
	writeFile(t, filepath.Join(dir, "a.txt"), "a")
	writeFile(t, filepath.Join(dir, "sub", "c.txt"), "c")

	m := NewOSFilesystemManager(nil)
	root, err := m.Resolve(dir)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	t.Run("recursive in lexical order", func(t *testing.T) {
		files, err := m.FindFiles(root, true)
		if err != nil {
			t.Fatalf("FindFiles() error = %v", err)
		}
		want := []string{"a.txt", "b.txt", filepath.Join("sub", "c.txt")}
		if len(files) != len(want) {
			t.Fatalf("len(files) = %d, want %d", len(files), len(want))
		}
		for i, f := range files {
			rel, _ := filepath.Rel(dir, f.String())
			if rel != want[i] {
				t.Errorf("files[%d] = %q, want %q", i, rel, want[i])
			}
		}
	})

	t.Run("non-recursive", func(t *testing.T) {
		files, err := m.FindFiles(root, false)
		if err != nil {
			t.Fatalf("FindFiles() error = %v", err)
		}
		if len(files) != 2 {
			t.Errorf("len(files) = %d, want 2", len(files))
		}
	})

	t.Run("rejects file", func(t *testing.T) {
		p, _ := m.Resolve(filepath.Join(dir, "a.txt"))
		if _, err := m.FindFiles(p, true); err == nil {
			t.Error("FindFiles() expected error for a file")
		}
	})
}

func TestOSFilesystemManager_IsIgnored(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, IgnoreFileName), "*.tmp\n")
	writeFile(t, filepath.Join(dir, "keep.txt"), "k")
	writeFile(t, filepath.Join(dir, "scratch.tmp"), "s")
	writeFile(t, filepath.Join(dir, "debug.log"), "d")

	m := NewOSFilesystemManager([]string{"*.log"})

	tests := []struct {
		name string
		want bool
	}{
		{name: "keep.txt", want: false},
		{name: "scratch.tmp", want: true},  // from .shareignore
		{name: "debug.log", want: true},    // from config
		{name: IgnoreFileName, want: true}, // always ignored
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := m.Resolve(filepath.Join(dir, tt.name))
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			got, err := m.IsIgnored(p, dir)
			if err != nil {
				t.Fatalf("IsIgnored() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("IsIgnored(%s) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestOSFilesystemManager_CreateUnique(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "downloads")
	m := NewOSFilesystemManager(nil)

	create := func(name, content string) string {
		t.Helper()
		w, p, err := m.CreateUnique(dir, name)
		if err != nil {
			t.Fatalf("CreateUnique() error = %v", err)
		}
		if _, err := io.WriteString(w, content); err != nil {
			t.Fatalf("write: %v", err)
		}
		if err := w.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
		return p
	}

	first := create("report.pdf", "one")
	second := create("report.pdf", "two")
	third := create("report.pdf", "three")

	if filepath.Base(first) != "report.pdf" {
		t.Errorf("first = %q, want report.pdf", filepath.Base(first))
	}
	if filepath.Base(second) != "report (1).pdf" {
		t.Errorf("second = %q, want %q", filepath.Base(second), "report (1).pdf")
	}
	if filepath.Base(third) != "report (2).pdf" {
		t.Errorf("third = %q, want %q", filepath.Base(third), "report (2).pdf")
	}

	got, err := os.ReadFile(first)
	if err != nil {
		t.Fatalf("reading first: %v", err)
	}
	if string(got) != "one" {
		t.Errorf("first content = %q, want %q (must not be overwritten)", got, "one")
	}

	if err := m.Remove(third); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, err := os.Stat(third); !os.IsNotExist(err) {
		t.Errorf("file still exists after Remove: %v", err)
	}
}
