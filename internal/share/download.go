package share

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
)

// DownloadResult describes a file saved by CheckAndDownload.
type DownloadResult struct {
	Path string
	Size int64
}

// defaultDownloadName is used when the server names neither the file nor the attachment.
const defaultDownloadName = "download"

// CheckAndDownload asks the server whether a file is available and, if so,
// saves it into destDir.
//
// A failed availability query and an unavailable file are both reported
// through the view and return (nil, nil); nothing is retried. Errors while
// saving an available file are returned. unlock may be nil when downloads
// are not encrypted.
func (s *ShareService) CheckAndDownload(ctx context.Context, destDir string, unlock Unlocker) (*DownloadResult, error) {
	avail, err := s.server.CheckFile(ctx)
	if err != nil {
		s.logger.Error("availability check failed", "error", err)
		s.view.Alert(msgCheckFailed + err.Error())
		return nil, nil
	}
	if !avail.FileAvailable {
		s.logger.Info("no file available")
		s.view.Alert(MsgNoFileAvailable)
		return nil, nil
	}

	s.logger.Info("file available", "file", avail.File)
	return s.download(ctx, destDir, avail, unlock)
}

func (s *ShareService) download(ctx context.Context, destDir string, avail *Availability, unlock Unlocker) (*DownloadResult, error) {
	var dc DecryptionContext
	if unlock != nil {
		var err error
		dc, err = unlock()
		if err != nil {
			return nil, fmt.Errorf("unlocking decryption key: %w", err)
		}
	}

	dl, err := s.server.Download(ctx)
	if err != nil {
		return nil, fmt.Errorf("starting download: %w", err)
	}
	defer dl.Body.Close()

	w, destPath, err := s.fsmgr.CreateUnique(destDir, downloadName(dl.Name, avail.File))
	if err != nil {
		return nil, fmt.Errorf("creating destination file: %w", err)
	}

	cw := &countingWriter{w: w}
	if dc != nil {
		err = dc.Decrypt(dl.Body, cw)
	} else {
		_, err = io.Copy(cw, dl.Body)
	}
	closeErr := w.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		if rmErr := s.fsmgr.Remove(destPath); rmErr != nil {
			s.logger.Warn("could not remove partial download", "path", destPath, "error", rmErr)
		}
		return nil, fmt.Errorf("saving download: %w", err)
	}

	s.logger.Info("file downloaded", "path", destPath, "size", cw.n)
	return &DownloadResult{Path: destPath, Size: cw.n}, nil
}

// downloadName picks a safe base name for a downloaded file: the attachment
// name first, then the name the availability check reported.
func downloadName(attachment, reported string) string {
	for _, candidate := range []string{attachment, reported} {
		name := path.Base(strings.ReplaceAll(candidate, "\\", "/"))
		if name != "" && name != "." && name != "/" && name != ".." {
			return name
		}
	}
	return defaultDownloadName
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
