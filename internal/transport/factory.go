package transport

import (
	"context"
	"fmt"

	"share/internal/config"
	"share/internal/share"
)

// NewUploaderFromConfig creates an Uploader based on the target config type.
func NewUploaderFromConfig(ctx context.Context, cfg config.TargetConfig, serverURL string) (share.Uploader, error) {
	switch cfg.Type {
	case "http", "":
		if serverURL == "" {
			return nil, fmt.Errorf("http target requires server_url to be set")
		}
		return NewHTTPUploader(serverURL, nil)
	case "s3":
		return NewS3UploaderFromConfig(ctx, cfg)
	case "directory":
		if cfg.DirRoot == "" {
			return nil, fmt.Errorf("directory target requires dir_root to be set")
		}
		return NewDirectoryUploader(cfg.DirRoot)
	case "memory":
		return NewMemoryUploader(), nil
	default:
		return nil, fmt.Errorf("unknown target type: %s", cfg.Type)
	}
}
