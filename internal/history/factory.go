package history

import (
	"fmt"
	"path/filepath"

	"share/internal/config"
	"share/internal/share"
)

// HistoryFileName is the database file created under the history data dir.
const HistoryFileName = "history.db"

// NewHistoryFromConfig creates a HistoryStore based on the history config type.
// Type "none" returns a nil store, which disables batch history.
func NewHistoryFromConfig(cfg config.HistoryConfig) (share.HistoryStore, error) {
	switch cfg.Type {
	case "sqlite", "":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite history")
		}
		return open(filepath.Join(cfg.DataDir, HistoryFileName))
	case "memory":
		return open(":memory:")
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown history type: %s", cfg.Type)
	}
}

func open(path string) (share.HistoryStore, error) {
	h, err := NewSQLiteHistory(path)
	if err != nil {
		return nil, err
	}
	return h, nil
}
