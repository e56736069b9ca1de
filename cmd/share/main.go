package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"share/internal/app"
	"share/internal/config"
	"share/internal/encryption"
	"share/internal/ui"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the config file from the default location.
func loadConfig() (*config.Config, string, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, "", fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, "", fmt.Errorf("reading config: %w", err)
	}
	return cfg, defaults["config_path"], nil
}

// newApp reads the config and creates a ShareApp drawing to stdout.
// The caller must defer app.Close().
func newApp(cmd *cobra.Command) (*app.ShareApp, error) {
	cfg, _, err := loadConfig()
	if err != nil {
		return nil, err
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	a, err := app.NewShareApp(cmd.Context(), cfg, app.Options{
		View:     ui.NewTerminalView(os.Stdout),
		Prompter: ui.NewPrompter(os.Stdin, os.Stderr),
		Stderr:   os.Stderr,
		Verbose:  verbose,
	})
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, nil
}

var rootCmd = &cobra.Command{
	Use:           "share",
	Short:         "Upload files to and download files from a share server",
	SilenceUsage:  true,
}

// upload command
var uploadCmd = &cobra.Command{
	Use:   "upload [--folder] PATH...",
	Short: "Upload files, or one folder with its structure",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		folder, _ := cmd.Flags().GetBool("folder")

		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		summary, err := a.Upload(cmd.Context(), args, folder)
		if err != nil {
			return err
		}
		if len(summary.Results) == 0 {
			fmt.Println("No files to upload.")
			return nil
		}

		fmt.Printf("%d of %d file(s) uploaded, %s of %s\n",
			summary.Uploaded(), len(summary.Results),
			humanize.Bytes(uint64(summary.Progress.Confirmed)),
			humanize.Bytes(uint64(summary.Progress.Total)),
		)
		return nil
	},
}

// download command
var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download the file the server holds, if any",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.Download(cmd.Context())
		if err != nil {
			return err
		}
		if res != nil {
			fmt.Printf("Downloaded: %s (%s)\n", res.Path, humanize.Bytes(uint64(res.Size)))
		}
		return nil
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history [BATCH_ID]",
	Short: "View upload history",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if len(args) == 1 {
			return showBatch(a, args[0])
		}

		batches, err := a.History(limit)
		if err != nil {
			return err
		}
		if len(batches) == 0 {
			fmt.Println("No uploads recorded.")
			return nil
		}

		for _, b := range batches {
			kind := "files"
			if b.IsFolder {
				kind = "folder"
			}
			fmt.Printf("%s  %s  %-6s  %d/%d ok  %s  %s\n",
				b.ID[:min(8, len(b.ID))],
				b.StartedAt.Local().Format("2006-01-02 15:04:05"),
				kind,
				b.FileCount-b.FailedCount, b.FileCount,
				humanize.Bytes(uint64(b.UploadedBytes)),
				b.FinishedAt.Sub(b.StartedAt).Truncate(time.Millisecond),
			)
		}
		return nil
	},
}

func showBatch(a *app.ShareApp, id string) error {
	b, files, err := a.Batch(id)
	if err != nil {
		return err
	}
	if b == nil {
		return fmt.Errorf("no batch with ID %s", id)
	}

	fmt.Printf("Batch %s, started %s (%s)\n", b.ID, humanize.Time(b.StartedAt), b.StartedAt.Local().Format("2006-01-02 15:04:05"))
	for _, f := range files {
		name := f.Name
		if f.RelativePath != "" {
			name = f.RelativePath
		}
		status := "ok"
		switch {
		case f.StatusCode != 0:
			status = strconv.Itoa(f.StatusCode)
		case f.Error != "":
			status = "error"
		}
		fmt.Printf("  %-5s  %8s  %s\n", status, humanize.Bytes(uint64(f.Size)), name)
	}
	return nil
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		server, _ := cmd.Flags().GetString("server")

		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(server, defaults["base_dir"], defaults["download_dir"])
		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Server:       %s\n", cfg.ServerURL)
		fmt.Printf("Base Dir:     %s\n", cfg.BaseDir)
		fmt.Printf("Download Dir: %s\n", cfg.DownloadDir)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, path, err := loadConfig()
		if err != nil {
			return err
		}

		fmt.Printf("Configuration from %s:\n\n", path)
		fmt.Printf("Server:       %s\n", cfg.ServerURL)
		fmt.Printf("Target:       %s\n", cfg.Target.Type)
		if cfg.Target.Type == "s3" {
			fmt.Printf("S3 Bucket:    %s\n", cfg.Target.S3Bucket)
			fmt.Printf("S3 Prefix:    %s\n", cfg.Target.S3Prefix)
		}
		fmt.Printf("Encryption:   %s\n", cfg.Encryption.Type)
		fmt.Printf("History:      %s\n", cfg.History.Type)
		fmt.Printf("Base Dir:     %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:      %s\n", cfg.LogDir)
		fmt.Printf("Download Dir: %s\n", cfg.DownloadDir)
		return nil
	},
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Generate the encryption key pair",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}

		pass, err := ui.NewPrompter(os.Stdin, os.Stderr).NewPassphrase()
		if err != nil {
			return err
		}

		pub, err := app.SetupKeys(cfg, pass)
		if errors.Is(err, encryption.ErrKeysExist) {
			return fmt.Errorf("keys already exist at %s", cfg.Encryption.PublicKeyPath)
		}
		if err != nil {
			return fmt.Errorf("generating keys: %w", err)
		}

		fmt.Printf("Public key: %s\n", pub)
		if cfg.Encryption.Type != "age" {
			fmt.Println(`Set type = "age" under [encryption] to encrypt uploads.`)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log every step to stderr")

	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configInitCmd.Flags().String("server", config.DefaultServerURL, "Share server URL")
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configKeysCmd)

	// root commands
	rootCmd.AddCommand(uploadCmd)
	uploadCmd.Flags().BoolP("folder", "f", false, "Upload a single folder, keeping relative paths")
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 20, "Maximum number of batches to show")
	rootCmd.AddCommand(configCmd)
}
