package cfg

import (
	"fmt"
	"path/filepath"
	"time"

	"tubeplus/internal/command/builder"
	"tubeplus/internal/domain/keys"
	"tubeplus/internal/models"
	"tubeplus/internal/validation"

	"github.com/spf13/viper"
)

// settings is the validated view of the viper keys.
type settings struct {
	ytdlpPath string
	base      models.TaskConfig
	builder   builder.Options

	lanes           int
	pollInterval    time.Duration
	spawnTimeout    time.Duration
	playlistTimeout time.Duration
	assumedBytes    int64
	history         bool
}

// loadSettings reads and validates the configured values.
func loadSettings() (settings, error) {
	var s settings

	quality, err := validation.ValidateQuality(viper.GetString(keys.Quality))
	if err != nil {
		return s, err
	}

	lanes := viper.GetInt(keys.Lanes)
	if err := validation.ValidateLanes(lanes); err != nil {
		return s, err
	}

	dir := viper.GetString(keys.Directory)
	if dir == "" {
		return s, fmt.Errorf("no download directory configured")
	}
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}

	mb := viper.GetInt(keys.AssumedSizeMB)
	if mb <= 0 {
		return s, fmt.Errorf("assumed size must be positive, got %d MiB", mb)
	}

	s = settings{
		ytdlpPath: viper.GetString(keys.YtdlpPath),
		base: models.TaskConfig{
			Directory: dir,
			Quality:   quality,
			Subtitles: viper.GetBool(keys.Subtitles),
		},
		builder: builder.Options{
			SubtitleLangs:      viper.GetString(keys.SubtitleLangs),
			CookiesFromBrowser: viper.GetString(keys.CookiesFromBrowser),
		},
		lanes:           lanes,
		pollInterval:    viper.GetDuration(keys.PollInterval),
		spawnTimeout:    viper.GetDuration(keys.SpawnTimeout),
		playlistTimeout: viper.GetDuration(keys.PlaylistTimeout),
		assumedBytes:    int64(mb) << 20,
		history:         viper.GetBool(keys.History),
	}
	return s, nil
}

// taskConfigs builds one validated configuration per URL.
func (s settings) taskConfigs(urls []string) ([]models.TaskConfig, error) {
	if err := validation.ValidateURLs(urls); err != nil {
		return nil, err
	}
	cfgs := make([]models.TaskConfig, 0, len(urls))
	for _, u := range urls {
		c := s.base
		c.URL = u
		if err := validation.ValidateTaskConfig(&c); err != nil {
			return nil, err
		}
		cfgs = append(cfgs, c)
	}
	return cfgs, nil
}
