package app

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestShareHandler_Handle(t *testing.T) {
	ts := time.Date(2026, 6, 15, 14, 30, 45, 0, time.UTC)

	tests := []struct {
		name    string
		opID    string
		level   slog.Level
		message string
		attrs   []slog.Attr
		want    string
	}{
		{
			name:    "basic info message",
			opID:    "op-123",
			level:   slog.LevelInfo,
			message: "file uploaded",
			want:    "2026-06-15T14:30:45Z\tINFO\top-123\tfile uploaded\n",
		},
		{
			name:    "debug level",
			opID:    "op-456",
			level:   slog.LevelDebug,
			message: "file ignored",
			want:    "2026-06-15T14:30:45Z\tDEBUG\top-456\tfile ignored\n",
		},
		{
			name:    "with record attrs",
			opID:    "op-789",
			level:   slog.LevelError,
			message: "upload failed",
			attrs:   []slog.Attr{slog.String("name", "b.txt"), slog.Int("status", 500)},
			want:    "2026-06-15T14:30:45Z\tERROR\top-789\tupload failed\tname=b.txt\tstatus=500\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			h := &shareHandler{w: &buf, opID: tt.opID, level: slog.LevelDebug}

			r := slog.NewRecord(ts, tt.level, tt.message, 0)
			r.AddAttrs(tt.attrs...)

			if err := h.Handle(context.Background(), r); err != nil {
				t.Fatalf("Handle() error = %v", err)
			}
			if got := buf.String(); got != tt.want {
				t.Errorf("Handle() output =\n%q\nwant:\n%q", got, tt.want)
			}
		})
	}
}

func TestShareHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	h := &shareHandler{w: &buf, opID: "op-1", attrs: []slog.Attr{slog.String("a", "1")}}

	h2 := h.WithAttrs([]slog.Attr{slog.String("component", "transport")}).(*shareHandler)
	if len(h.attrs) != 1 {
		t.Errorf("original handler attrs modified: got %d, want 1", len(h.attrs))
	}

	r := slog.NewRecord(time.Now(), slog.LevelInfo, "upload", 0)
	r.AddAttrs(slog.String("key", "abc"))
	if err := h2.Handle(context.Background(), r); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	got := buf.String()
	for _, want := range []string{"a=1", "component=transport", "key=abc"} {
		if !strings.Contains(got, want) {
			t.Errorf("output %q missing %s", got, want)
		}
	}
}

func TestShareHandler_Enabled(t *testing.T) {
	h := &shareHandler{level: slog.LevelWarn}
	tests := []struct {
		level slog.Level
		want  bool
	}{
		{slog.LevelDebug, false},
		{slog.LevelInfo, false},
		{slog.LevelWarn, true},
		{slog.LevelError, true},
	}
	for _, tt := range tests {
		if got := h.Enabled(context.Background(), tt.level); got != tt.want {
			t.Errorf("Enabled(%v) = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name          string
		verbose       bool
		wantInfoOnErr bool
	}{
		{name: "quiet stderr", verbose: false, wantInfoOnErr: false},
		{name: "verbose stderr", verbose: true, wantInfoOnErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			var stderr bytes.Buffer

			logger, f, err := newLogger(dir, "test-op", &stderr, tt.verbose)
			if err != nil {
				t.Fatalf("newLogger() error = %v", err)
			}
			defer f.Close()

			logger.Info("batch started", "files", 2)
			logger.Error("upload failed", "name", "b.txt")

			data, err := os.ReadFile(filepath.Join(dir, LogFileName))
			if err != nil {
				t.Fatalf("ReadFile() error = %v", err)
			}
			for _, want := range []string{"INFO\ttest-op\tbatch started\tfiles=2", "ERROR\ttest-op\tupload failed\tname=b.txt"} {
				if !strings.Contains(string(data), want) {
					t.Errorf("log file missing %q:\n%s", want, data)
				}
			}

			if !strings.Contains(stderr.String(), "upload failed") {
				t.Errorf("stderr missing error line: %q", stderr.String())
			}
			if got := strings.Contains(stderr.String(), "batch started"); got != tt.wantInfoOnErr {
				t.Errorf("stderr has info line = %v, want %v", got, tt.wantInfoOnErr)
			}
		})
	}
}
