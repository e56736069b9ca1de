package share

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
)

// ShareService is the orchestration layer behind the CLI. It turns a user's
// pick into a Selection, uploads it one file at a time, and fetches files
// the server holds for the user.
type ShareService struct {
	fsmgr     FilesystemManager
	uploader  Uploader
	server    FileServer
	encryptor Encryptor
	history   HistoryStore
	view      View
	logger    Logger
	clock     Clock
	idgen     IDGenerator
}

// NewShareService creates a new ShareService with the provided dependencies.
// encryptor and history may be nil to disable encryption and batch history.
func NewShareService(fsmgr FilesystemManager, uploader Uploader, server FileServer, encryptor Encryptor, history HistoryStore, view View, logger Logger, clock Clock, idgen IDGenerator) *ShareService {
	return &ShareService{
		fsmgr:     fsmgr,
		uploader:  uploader,
		server:    server,
		encryptor: encryptor,
		history:   history,
		view:      view,
		logger:    logger,
		clock:     clock,
		idgen:     idgen,
	}
}

// Select builds a Selection from raw paths.
// In file mode every path must be a regular file and files keep the order given.
// In folder mode exactly one directory is expected; its files are collected
// recursively, ignored files are skipped, and each gets a relative path
// prefixed with the folder's own name.
func (s *ShareService) Select(rawPaths []string, folder bool) (*Selection, error) {
	if folder {
		if len(rawPaths) != 1 {
			return nil, fmt.Errorf("folder mode takes exactly one directory, got %d paths", len(rawPaths))
		}
		return s.selectFolder(rawPaths[0])
	}

	sel := &Selection{}
	for _, raw := range rawPaths {
		p, err := s.fsmgr.Resolve(raw)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", raw, err)
		}
		if p.IsDir() {
			return nil, fmt.Errorf("path is a directory, use folder mode: %s", p.String())
		}
		sel.Files = append(sel.Files, FileEntry{
			Name: filepath.Base(p.String()),
			Size: p.Info().Size(),
			Path: p,
		})
	}
	return sel, nil
}

func (s *ShareService) selectFolder(raw string) (*Selection, error) {
	root, err := s.fsmgr.Resolve(raw)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", raw, err)
	}
	if !root.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", root.String())
	}

	files, err := s.fsmgr.FindFiles(root, true)
	if err != nil {
		return nil, fmt.Errorf("finding files: %w", err)
	}

	folderName := filepath.Base(root.String())
	sel := &Selection{IsFolder: true}
	for _, f := range files {
		ignored, err := s.fsmgr.IsIgnored(f, root.String())
		if err != nil {
			return nil, fmt.Errorf("checking ignore rules: %w", err)
		}
		if ignored {
			s.logger.Debug("file ignored", "path", f.String())
			continue
		}

		rel, err := filepath.Rel(root.String(), f.String())
		if err != nil {
			return nil, fmt.Errorf("calculating relative path: %w", err)
		}

		sel.Files = append(sel.Files, FileEntry{
			Name:         filepath.Base(f.String()),
			Size:         f.Info().Size(),
			RelativePath: path.Join(folderName, filepath.ToSlash(rel)),
			Path:         f,
		})
	}
	return sel, nil
}

// Upload sends every file in sel to the upload target, strictly one after
// another in selection order.
//
// An empty selection does nothing. Otherwise the progress indicator is shown
// at 0%, updated as bytes are sent, failures are alerted per file without
// stopping the batch, and a single completion alert is raised once every
// file has been attempted, whatever the individual outcomes. The returned
// Summary holds the real per-file results.
func (s *ShareService) Upload(ctx context.Context, sel *Selection) (*Summary, error) {
	if sel.Empty() {
		s.logger.Debug("empty selection, nothing to upload")
		return &Summary{}, nil
	}

	batchID := s.idgen.New()
	startedAt := s.clock.Now()
	s.logger.Info("batch started", "batch", batchID, "files", len(sel.Files), "bytes", sel.TotalSize(), "folder", sel.IsFolder)

	s.view.ShowProgress()
	s.view.SetProgress(0)

	upload := func(ctx context.Context, entry FileEntry, progress func(int64)) error {
		return s.uploadOne(ctx, entry, sel.IsFolder, progress)
	}
	summary := RunBatch(ctx, sel.Files, upload, BatchHooks{
		Progress: s.view.SetProgress,
		Result:   s.reportResult,
	})

	s.view.Alert(MsgBatchComplete)
	s.view.HideProgress()

	summary.ID = batchID
	summary.IsFolder = sel.IsFolder
	summary.StartedAt = startedAt
	summary.FinishedAt = s.clock.Now()

	s.logger.Info("batch finished", "batch", batchID, "uploaded", summary.Uploaded(), "failed", summary.Failed())

	if s.history != nil {
		if err := s.history.RecordBatch(summary); err != nil {
			return summary, fmt.Errorf("recording batch: %w", err)
		}
	}
	return summary, nil
}

func (s *ShareService) reportResult(r FileResult) {
	if r.Err == nil {
		s.logger.Info("file uploaded", "name", r.Entry.Name, "size", r.Entry.Size)
		return
	}
	s.logger.Error("upload failed", "name", r.Entry.Name, "status", r.StatusCode(), "error", r.Err)
	s.view.Alert(uploadFailureMessage(r))
}

// uploadFailureMessage names the file and, when the target answered, its status.
func uploadFailureMessage(r FileResult) string {
	if code := r.StatusCode(); code != 0 {
		return fmt.Sprintf("%s%s - %d", msgUploadFailed, r.Entry.Name, code)
	}
	return msgUploadFailed + r.Entry.Name
}

// uploadOne opens a file and streams it to the uploader. Progress counts
// plaintext bytes read from disk, so it is independent of encryption.
func (s *ShareService) uploadOne(ctx context.Context, entry FileEntry, isFolder bool, progress func(int64)) error {
	f, err := s.fsmgr.Open(entry.Path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", entry.Path.String(), err)
	}
	defer f.Close()

	var content io.Reader = newProgressReader(f, progress)
	if s.encryptor != nil {
		pr, pw := io.Pipe()
		done := make(chan struct{})
		go func(src io.Reader) {
			defer close(done)
			pw.CloseWithError(s.encryptor.Encrypt(src, pw))
		}(content)
		// The encrypting goroutine must stop reading the file before it is closed.
		defer func() {
			pr.Close()
			<-done
		}()
		content = pr
	}

	req := &UploadRequest{
		Name:    entry.Name,
		Size:    entry.Size,
		Content: content,
	}
	if isFolder {
		req.RelativePath = entry.RelativePath
	}

	if err := s.uploader.Upload(ctx, req); err != nil {
		return fmt.Errorf("uploading %s: %w", entry.Name, err)
	}
	return nil
}
