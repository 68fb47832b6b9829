package consts

import "time"

// Engine defaults.
const (
	DefaultLanes           = 1
	DefaultPollInterval    = time.Second
	DefaultSpawnTimeout    = 30 * time.Second
	DefaultPlaylistTimeout = 30 * time.Second
	DefaultAssumedSizeMB   = 100
	DefaultSubtitleLangs   = "en.*"
	DefaultHistoryLimit    = 20
	DefaultServerAddr      = "127.0.0.1:8089"

	// Maximum unterminated output kept between reads.
	MaxPendingOutput = 4 * 1024

	// Maximum yt-dlp listing output read for one playlist.
	MaxListingOutput = 64 * 1024 * 1024

	// Non-progress output lines retained for error reports.
	OutputTailLines = 5

	ReadBufferSize = 4096
)

// CalculatingSentinel is shown while no remaining-time estimate exists.
const CalculatingSentinel = "Calculating..."
