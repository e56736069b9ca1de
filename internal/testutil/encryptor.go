package testutil

import (
	"testing"

	"share/internal/encryption"
	"share/internal/history"
	"share/internal/share"
)

// NewTestEncryptor creates the deterministic header encryptor.
func NewTestEncryptor() share.Encryptor {
	return encryption.NewTestEncryptor()
}

// NewTestHistory creates an in-memory history store closed at test cleanup.
func NewTestHistory(t *testing.T) *history.SQLiteHistory {
	t.Helper()
	h, err := history.NewSQLiteHistory(":memory:")
	if err != nil {
		t.Fatalf("creating test history: %v", err)
	}
	t.Cleanup(func() { h.Close() })
	return h
}
