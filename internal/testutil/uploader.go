package testutil

import (
	"context"
	"fmt"
	"io"
	"sync"

	"share/internal/share"
)

// RecordedUpload is one request seen by a RecordingUploader.
type RecordedUpload struct {
	Name         string
	RelativePath string
	Size         int64
	Content      []byte
}

// RecordingUploader records uploads and the order in which they start and
// finish. Content is read in chunks of ChunkSize bytes so progress is
// reported more than once per file.
type RecordingUploader struct {
	ChunkSize int

	mu       sync.Mutex
	uploads  []RecordedUpload
	events   []string
	inFlight int
	overlap  bool
	status   map[string]int
	errs     map[string]error
}

var _ share.Uploader = (*RecordingUploader)(nil)

func NewRecordingUploader() *RecordingUploader {
	return &RecordingUploader{
		ChunkSize: 64,
		status:    make(map[string]int),
		errs:      make(map[string]error),
	}
}

// FailWithStatus makes the named file's upload answer with code.
func (u *RecordingUploader) FailWithStatus(name string, code int) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.status[name] = code
}

// FailWithError makes the named file's upload fail without a status.
func (u *RecordingUploader) FailWithError(name string, err error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.errs[name] = err
}

func (u *RecordingUploader) Upload(ctx context.Context, req *share.UploadRequest) error {
	u.mu.Lock()
	u.inFlight++
	if u.inFlight > 1 {
		u.overlap = true
	}
	u.events = append(u.events, "start:"+req.Name)
	u.mu.Unlock()

	defer func() {
		u.mu.Lock()
		u.inFlight--
		u.events = append(u.events, "end:"+req.Name)
		u.mu.Unlock()
	}()

	var content []byte
	buf := make([]byte, u.ChunkSize)
	for {
		n, err := req.Content.Read(buf)
		content = append(content, buf[:n]...)
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("reading content: %w", err)
		}
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	u.uploads = append(u.uploads, RecordedUpload{
		Name:         req.Name,
		RelativePath: req.RelativePath,
		Size:         req.Size,
		Content:      content,
	})
	if code, ok := u.status[req.Name]; ok {
		return &share.StatusError{Code: code}
	}
	if err, ok := u.errs[req.Name]; ok {
		return err
	}
	return nil
}

// Uploads returns every request received, in order.
func (u *RecordingUploader) Uploads() []RecordedUpload {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]RecordedUpload(nil), u.uploads...)
}

// Events returns "start:NAME" and "end:NAME" events in order.
func (u *RecordingUploader) Events() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]string(nil), u.events...)
}

// Overlapped reports whether two uploads were ever in flight at once.
func (u *RecordingUploader) Overlapped() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.overlap
}
