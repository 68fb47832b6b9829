// Package validation checks user input before it reaches the download engine.
package validation

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"tubeplus/internal/domain/consts"
	"tubeplus/internal/models"
	"tubeplus/internal/utils/logging"
)

// ValidateDirectory validates that the directory exists, else creates it if desired.
func ValidateDirectory(dir string, createIfNotFound bool) (os.FileInfo, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("directory is empty")
	}
	logging.D(3, "Statting directory %q...", dir)

	info, err := os.Stat(dir)
	switch {
	case err == nil:
		if !info.IsDir() {
			return nil, fmt.Errorf("path %q is a file, not a directory", dir)
		}
		return info, nil

	case os.IsNotExist(err):
		if !createIfNotFound {
			return nil, fmt.Errorf("directory %q does not exist", dir)
		}
		if err := os.MkdirAll(dir, consts.PermsGenericDir); err != nil {
			return nil, fmt.Errorf("failed to create directory %q: %w", dir, err)
		}
		return os.Stat(dir)

	default:
		return nil, fmt.Errorf("failed to stat directory %q: %w", dir, err)
	}
}

// ValidateURL checks that s is an absolute http(s) URL.
func ValidateURL(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return errors.New("url is empty")
	}
	u, err := url.Parse(s)
	if err != nil {
		return fmt.Errorf("invalid url %q: %w", s, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url %q must use http or https", s)
	}
	if u.Host == "" {
		return fmt.Errorf("url %q has no host", s)
	}
	return nil
}

// ValidateURLs checks every URL, returning all problems together.
func ValidateURLs(urls []string) error {
	if len(urls) == 0 {
		return errors.New("no urls given")
	}
	var errs []error
	for _, u := range urls {
		if err := ValidateURL(u); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ValidateLanes checks the concurrent download count.
func ValidateLanes(n int) error {
	if n < 1 {
		return fmt.Errorf("lanes must be at least 1, got %d", n)
	}
	return nil
}

// ValidateQuality parses a quality selector.
func ValidateQuality(s string) (models.Quality, error) {
	return models.ParseQuality(s)
}

// ValidateTaskConfig fills defaults and checks a task configuration.
func ValidateTaskConfig(cfg *models.TaskConfig) error {
	cfg.URL = strings.TrimSpace(cfg.URL)
	if err := ValidateURL(cfg.URL); err != nil {
		return err
	}
	if strings.TrimSpace(cfg.Directory) == "" {
		return fmt.Errorf("no target directory for %q", cfg.URL)
	}
	return nil
}
