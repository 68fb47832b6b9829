// Package keys holds configuration and flag keys.
package keys

// Terminal keys
const (
	ConfigFile = "config"
	Debug      = "debug"

	YtdlpPath          = "ytdlp-path"
	Directory          = "directory"
	Quality            = "quality"
	Subtitles          = "subtitles"
	SubtitleLangs      = "subtitle-langs"
	CookiesFromBrowser = "cookies-from-browser"

	Lanes           = "lanes"
	PollInterval    = "poll-interval"
	SpawnTimeout    = "spawn-timeout"
	PlaylistTimeout = "playlist-timeout"
	AssumedSizeMB   = "assumed-size-mb"

	History      = "history"
	HistoryLimit = "limit"
	Addr         = "addr"
)

// Playlist command
const (
	PlaylistSelect = "select"
	PlaylistList   = "list"
)

// EnvPrefix is prepended to every environment override (TUBEPLUS_LANES...).
const EnvPrefix = "TUBEPLUS"
