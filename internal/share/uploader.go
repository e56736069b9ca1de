package share

import (
	"context"
	"fmt"
	"io"
)

// Form field names understood by the share server's upload endpoint.
const (
	FieldFile         = "file"
	FieldRelativePath = "relativePath"
)

// UploadRequest is a single file handed to an Uploader.
type UploadRequest struct {
	// Name is sent as the multipart filename.
	Name string
	// RelativePath is non-empty only for folder batches; uploaders attach
	// it only when set.
	RelativePath string
	// Size is the plaintext size. Content may be longer when encrypted.
	Size int64
	// Content streams the bytes to send. Uploaders must read it to EOF
	// or stop on error; they never close it.
	Content io.Reader
}

// Uploader sends one file to an upload target. Upload blocks until the
// target has settled the request.
type Uploader interface {
	Upload(ctx context.Context, req *UploadRequest) error
}

// StatusError reports a target response with a non-success status.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.Code)
}
