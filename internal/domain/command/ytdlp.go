// Package command holds yt-dlp command line flags.
package command

// General
const (
	CookiesFromBrowser = "--cookies-from-browser"
	FilenameSyntax     = "%(title)s.%(ext)s"
	Format             = "-f"
	Newline            = "--newline"
	NoWarnings         = "--no-warnings"
	Output             = "-o"
	RestrictFilenames  = "--restrict-filenames"
	YTDLP              = "yt-dlp"
)

// Audio
const (
	ExtractAudio = "-x"
	AudioFormat  = "--audio-format"
	AudioMP3     = "mp3"
)

// Subtitles
const (
	WriteSubs = "--write-subs"
	SubLangs  = "--sub-langs"
)

// Format selectors
const (
	FormatBest      = "bv*+ba/b"
	FormatAudioOnly = "ba/b"
	FormatHeight    = "bv*[height<=%d]+ba/b[height<=%d]"
)

// Scrape
const (
	YtDLPFlatPlaylist = "--flat-playlist"
	OutputJSON        = "-J"
)
