package share

import "time"

// BatchRecord is the persisted outcome of one upload batch.
type BatchRecord struct {
	ID            string
	IsFolder      bool
	FileCount     int
	FailedCount   int
	TotalBytes    int64
	UploadedBytes int64
	StartedAt     time.Time
	FinishedAt    time.Time
}

// BatchFileRecord is the persisted outcome of one file in a batch.
type BatchFileRecord struct {
	Position     int
	Name         string
	RelativePath string
	Size         int64
	StatusCode   int    // 0 when the target never answered
	Error        string // empty on success
}

// HistoryStore persists batch summaries.
type HistoryStore interface {
	// RecordBatch stores a finished batch and its per-file results.
	RecordBatch(summary *Summary) error

	// RecentBatches returns up to limit batches, newest first.
	RecentBatches(limit int) ([]*BatchRecord, error)

	// FindBatch returns a batch by ID, or nil if it does not exist.
	FindBatch(id string) (*BatchRecord, error)

	// BatchFiles returns the per-file results of a batch in upload order.
	BatchFiles(batchID string) ([]*BatchFileRecord, error)

	Close() error
}
