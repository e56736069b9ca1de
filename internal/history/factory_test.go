package history

import (
	"testing"

	"share/internal/config"
)

func TestNewHistoryFromConfig(t *testing.T) {
	t.Run("memory history", func(t *testing.T) {
		got, err := NewHistoryFromConfig(config.HistoryConfig{Type: "memory"})
		if err != nil {
			t.Fatalf("NewHistoryFromConfig() error = %v", err)
		}
		if got == nil {
			t.Fatal("NewHistoryFromConfig() returned nil")
		}
		got.Close()
	})

	t.Run("sqlite history", func(t *testing.T) {
		got, err := NewHistoryFromConfig(config.HistoryConfig{Type: "sqlite", DataDir: t.TempDir()})
		if err != nil {
			t.Fatalf("NewHistoryFromConfig() error = %v", err)
		}
		if got == nil {
			t.Fatal("NewHistoryFromConfig() returned nil")
		}
		got.Close()
	})

	t.Run("sqlite history without data_dir", func(t *testing.T) {
		got, err := NewHistoryFromConfig(config.HistoryConfig{Type: "sqlite"})
		if err == nil {
			t.Error("NewHistoryFromConfig() expected error for missing data_dir, got nil")
		}
		if got != nil {
			t.Error("NewHistoryFromConfig() should return nil on error")
		}
	})

	t.Run("none disables history", func(t *testing.T) {
		got, err := NewHistoryFromConfig(config.HistoryConfig{Type: "none"})
		if err != nil {
			t.Fatalf("NewHistoryFromConfig() error = %v", err)
		}
		if got != nil {
			t.Error("NewHistoryFromConfig() = non-nil, want nil for none")
		}
	})

	t.Run("unknown history type", func(t *testing.T) {
		got, err := NewHistoryFromConfig(config.HistoryConfig{Type: "redis"})
		if err == nil {
			t.Error("NewHistoryFromConfig() expected error for unknown type, got nil")
		}
		if got != nil {
			t.Error("NewHistoryFromConfig() should return nil on error")
		}
	})
}
