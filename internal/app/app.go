package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"share/internal/config"
	"share/internal/encryption"
	"share/internal/fs"
	"share/internal/history"
	"share/internal/share"
	"share/internal/transport"
)

// ErrHistoryDisabled is returned by history queries when history.type is "none".
var ErrHistoryDisabled = errors.New("upload history is disabled")

// PassphrasePrompter asks the user for a passphrase.
type PassphrasePrompter interface {
	Passphrase(prompt string) (string, error)
}

// Options are the runtime pieces NewShareApp does not build from config.
type Options struct {
	// View renders progress and alerts.
	View share.View
	// Prompter is asked for the passphrase when an encrypted download needs it.
	Prompter PassphrasePrompter
	// Stderr receives warnings, or every log line when Verbose is set.
	Stderr  io.Writer
	Verbose bool
}

// ShareApp is the application layer between the CLI and ShareService.
// It constructs all dependencies from config, exposes high-level operations
// that accept raw string paths, and closes what it opened on Close.
type ShareApp struct {
	cfg       *config.Config
	encryptor share.Encryptor
	history   share.HistoryStore
	service   *share.ShareService
	view      share.View
	prompter  PassphrasePrompter
	logFile   *os.File
}

// NewShareApp creates a fully wired ShareApp from the given config.
// The caller must call Close when done.
func NewShareApp(ctx context.Context, cfg *config.Config, opts Options) (*ShareApp, error) {
	if opts.View == nil {
		return nil, fmt.Errorf("a view is required")
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}

	fsmgr := fs.NewOSFilesystemManager(cfg.Filesystem.Ignore)

	uploader, err := transport.NewUploaderFromConfig(ctx, cfg.Target, cfg.ServerURL)
	if err != nil {
		return nil, fmt.Errorf("creating upload target: %w", err)
	}

	var server share.FileServer
	if cfg.ServerURL != "" {
		client, err := transport.NewHTTPServerClient(cfg.ServerURL, nil)
		if err != nil {
			return nil, fmt.Errorf("creating server client: %w", err)
		}
		server = client
	}

	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		return nil, fmt.Errorf("creating encryptor: %w", err)
	}
	if enc != nil && !enc.IsConfigured() {
		return nil, fmt.Errorf("encryption is enabled but no keys exist: run `share config keys`")
	}

	hist, err := history.NewHistoryFromConfig(cfg.History)
	if err != nil {
		return nil, fmt.Errorf("opening history: %w", err)
	}

	opID := time.Now().UTC().Format("20060102T150405Z")
	logger, logFile, err := newLogger(cfg.LogDir, opID, opts.Stderr, opts.Verbose)
	if err != nil {
		if hist != nil {
			hist.Close()
		}
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	svc := share.NewShareService(fsmgr, uploader, server, enc, hist, opts.View, &slogAdapter{l: logger}, share.RealClock{}, share.UUIDGenerator{})

	return &ShareApp{
		cfg:       cfg,
		encryptor: enc,
		history:   hist,
		service:   svc,
		view:      opts.View,
		prompter:  opts.Prompter,
		logFile:   logFile,
	}, nil
}

// totalSetter is implemented by views that show the batch size.
type totalSetter interface {
	SetTotal(bytes int64)
}

// Upload resolves the given paths and uploads them as one batch. With folder
// set, exactly one directory is expected and its files keep their relative
// paths.
func (a *ShareApp) Upload(ctx context.Context, rawPaths []string, folder bool) (*share.Summary, error) {
	sel, err := a.service.Select(rawPaths, folder)
	if err != nil {
		return nil, err
	}
	if ts, ok := a.view.(totalSetter); ok {
		ts.SetTotal(sel.TotalSize())
	}
	return a.service.Upload(ctx, sel)
}

// Download fetches the server's file into the configured download directory.
// It returns nil when nothing was saved; the view has already told the user why.
func (a *ShareApp) Download(ctx context.Context) (*share.DownloadResult, error) {
	if a.cfg.ServerURL == "" {
		return nil, fmt.Errorf("server_url is not configured")
	}
	if a.cfg.DownloadDir == "" {
		return nil, fmt.Errorf("download_dir is not configured")
	}
	return a.service.CheckAndDownload(ctx, a.cfg.DownloadDir, a.unlocker())
}

// unlocker prompts for the passphrase only once a download needs it.
func (a *ShareApp) unlocker() share.Unlocker {
	if a.encryptor == nil {
		return nil
	}
	return func() (share.DecryptionContext, error) {
		if a.prompter == nil {
			return nil, fmt.Errorf("download is encrypted but no passphrase prompt is available")
		}
		pass, err := a.prompter.Passphrase("Passphrase: ")
		if err != nil {
			return nil, err
		}
		return a.encryptor.Unlock(pass)
	}
}

// History returns up to limit recent batches, newest first.
func (a *ShareApp) History(limit int) ([]*share.BatchRecord, error) {
	if a.history == nil {
		return nil, ErrHistoryDisabled
	}
	return a.history.RecentBatches(limit)
}

// Batch returns one batch and its files. The record is nil if id is unknown.
func (a *ShareApp) Batch(id string) (*share.BatchRecord, []*share.BatchFileRecord, error) {
	if a.history == nil {
		return nil, nil, ErrHistoryDisabled
	}
	b, err := a.history.FindBatch(id)
	if err != nil || b == nil {
		return nil, nil, err
	}
	files, err := a.history.BatchFiles(id)
	if err != nil {
		return nil, nil, err
	}
	return b, files, nil
}

// Close closes the history store and the log file.
func (a *ShareApp) Close() error {
	var firstErr error
	if a.history != nil {
		if err := a.history.Close(); err != nil {
			firstErr = fmt.Errorf("closing history: %w", err)
		}
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
	return firstErr
}

// SetupKeys generates the age key pair at the configured paths and returns
// the public key. It does not need a running app, so `share config keys`
// works before encryption is switched on.
func SetupKeys(cfg *config.Config, passphrase string) (string, error) {
	enc := encryption.NewAgeEncryptor(cfg.Encryption)
	if err := enc.Setup(passphrase); err != nil {
		return "", err
	}
	return enc.PublicKey()
}
