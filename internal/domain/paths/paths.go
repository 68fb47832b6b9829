// Package paths initializes tubeplus's filepaths and directories.
package paths

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"tubeplus/internal/domain/consts"
)

const (
	tDir       = ".tubeplus"
	tDBFile    = "tubeplus.db"
	tLogFile   = "tubeplus.log"
	tConfigDir = "config"
)

// File and directory path strings.
var (
	HomeTubeplusDir string
	DBFilePath      string
	LogFilePath     string
	ConfigDir       string
)

// InitProgFilesDirs initializes necessary program directories and filepaths.
func InitProgFilesDirs() error {
	userHomeDir, err := os.UserHomeDir()
	if err != nil {
		return errors.New("failed to get home directory")
	}
	return initIn(filepath.Join(userHomeDir, tDir))
}

func initIn(home string) error {
	if err := os.MkdirAll(home, consts.PermsHomeProgDir); err != nil {
		return fmt.Errorf("failed to make directories: %w", err)
	}
	HomeTubeplusDir = home
	DBFilePath = filepath.Join(home, tDBFile)
	LogFilePath = filepath.Join(home, tLogFile)
	ConfigDir = filepath.Join(home, tConfigDir)
	return nil
}

// DefaultDownloadDir returns the directory downloads land in when none is configured.
func DefaultDownloadDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, "Videos", "tubeplus")
	}
	return "downloads"
}
