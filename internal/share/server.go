package share

import (
	"context"
	"io"
)

// Availability is the share server's answer to "is there a file for me?".
type Availability struct {
	FileAvailable bool   `json:"fileAvailable"`
	File          string `json:"file,omitempty"`
}

// Download is an in-progress fetch of the server-held file.
// The caller must close Body.
type Download struct {
	// Name comes from the response's Content-Disposition, if any.
	Name string
	// Size is the announced length, or -1 when unknown.
	Size int64
	Body io.ReadCloser
}

// FileServer is the download side of the share server.
type FileServer interface {
	// CheckFile asks whether a file is available for download.
	CheckFile(ctx context.Context) (*Availability, error)

	// Download starts fetching the available file.
	Download(ctx context.Context) (*Download, error)
}
