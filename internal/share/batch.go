package share

import (
	"context"
	"errors"
	"time"
)

// FileResult is the outcome of one file's upload attempt.
type FileResult struct {
	Entry FileEntry
	Err   error
}

// StatusCode returns the target's status code for a failed upload,
// or 0 if the failure never reached a response.
func (r FileResult) StatusCode() int {
	var se *StatusError
	if errors.As(r.Err, &se) {
		return se.Code
	}
	return 0
}

// Summary describes a finished batch.
type Summary struct {
	ID         string
	IsFolder   bool
	Results    []FileResult
	Progress   Progress
	StartedAt  time.Time
	FinishedAt time.Time
}

// Uploaded returns the number of files that were uploaded.
func (s *Summary) Uploaded() int {
	n := 0
	for _, r := range s.Results {
		if r.Err == nil {
			n++
		}
	}
	return n
}

// Failed returns the number of files whose upload failed.
func (s *Summary) Failed() int {
	return len(s.Results) - s.Uploaded()
}

// UploadFunc uploads a single file, calling progress with the number of
// bytes of that file sent so far. It returns once the upload has settled.
type UploadFunc func(ctx context.Context, entry FileEntry, progress func(sent int64)) error

// BatchHooks observe a running batch. Nil hooks are skipped.
type BatchHooks struct {
	// Progress receives the overall batch percentage.
	Progress func(percent float64)
	// Result is called after each file settles, in order.
	Result func(FileResult)
}

// RunBatch uploads files one at a time in order. A failed file does not
// stop the batch: its size is not confirmed and the next file starts.
// Every file is attempted exactly once.
func RunBatch(ctx context.Context, files []FileEntry, upload UploadFunc, hooks BatchHooks) *Summary {
	progress := NewProgress(files)
	results := make([]FileResult, 0, len(files))

	for _, entry := range files {
		err := upload(ctx, entry, func(sent int64) {
			if hooks.Progress != nil {
				hooks.Progress(progress.Percent(sent))
			}
		})
		if err == nil {
			progress.Confirm(entry.Size)
		}

		result := FileResult{Entry: entry, Err: err}
		results = append(results, result)
		if hooks.Result != nil {
			hooks.Result(result)
		}
	}

	return &Summary{
		Results:  results,
		Progress: *progress,
	}
}
