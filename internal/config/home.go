package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/harrison/talentmap/internal/storage"
)

// HomeEnv overrides the talentmap home directory.
const HomeEnv = "TALENTMAP_HOME"

// HomeDirName is the per-user or per-project state directory name.
const HomeDirName = ".talentmap"

// Home returns the talentmap home directory.
// Priority order:
//  1. TALENTMAP_HOME environment variable (if set)
//  2. ~/.talentmap
//
// The directory is created with owner-only permissions if it doesn't exist.
func Home() (string, error) {
	if home := os.Getenv(HomeEnv); home != "" {
		return ensureDir(home)
	}

	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locate user home directory: %w", err)
	}
	return ensureDir(filepath.Join(userHome, HomeDirName))
}

func ensureDir(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("create talentmap home directory: %w", err)
	}
	return dir, nil
}

// ResolvePaths fills empty file locations with defaults under home and makes
// relative ones absolute against home.
func (c *Config) ResolvePaths(home string) {
	if c.LogDir == "" {
		c.LogDir = "logs"
	}
	if c.Encryption.KeyFile == "" {
		c.Encryption.KeyFile = "key"
	}
	if c.Storage.Path == "" {
		switch strings.ToLower(c.Storage.Backend) {
		case storage.BackendSQLite:
			c.Storage.Path = "talentmap.db"
		case storage.BackendFile, "":
			c.Storage.Path = "state"
		}
	}

	c.LogDir = under(home, c.LogDir)
	c.Encryption.KeyFile = under(home, c.Encryption.KeyFile)
	if c.Storage.Path != ":memory:" {
		c.Storage.Path = under(home, c.Storage.Path)
	}
}

func under(home, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(home, path)
}
