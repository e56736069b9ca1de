package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetDefaults returns application default paths, checking environment variables first.
// Environment variables:
//   - SHARE_CONFIG_PATH: config file location (default: ~/.config/share.toml)
//   - SHARE_HOME: base directory for share data (default: ~/.local/share/share)
//   - SHARE_DOWNLOAD_DIR: where downloads are saved (default: ~/Downloads)
func GetDefaults() (map[string]string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = ""
	}

	configPath, err := fromEnv("SHARE_CONFIG_PATH", homeDir, ".config", "share.toml")
	if err != nil {
		return nil, err
	}
	baseDir, err := fromEnv("SHARE_HOME", homeDir, ".local", "share", "share")
	if err != nil {
		return nil, err
	}
	downloadDir, err := fromEnv("SHARE_DOWNLOAD_DIR", homeDir, "Downloads")
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"config_path":  configPath,
		"base_dir":     baseDir,
		"log_dir":      filepath.Join(baseDir, "log"),
		"download_dir": downloadDir,
	}, nil
}

// fromEnv returns the env var if set, otherwise homeDir joined with elem.
func fromEnv(key, homeDir string, elem ...string) (string, error) {
	if path := os.Getenv(key); path != "" {
		return path, nil
	}
	if homeDir == "" {
		return "", fmt.Errorf("cannot determine home directory for default %s", key)
	}
	return filepath.Join(append([]string{homeDir}, elem...)...), nil
}
