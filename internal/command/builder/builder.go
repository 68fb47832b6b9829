// Package builder assembles yt-dlp command lines.
package builder

import (
	"fmt"
	"path/filepath"

	"tubeplus/internal/domain/command"
	"tubeplus/internal/domain/consts"
	"tubeplus/internal/models"
)

// Options are settings shared by every download command.
type Options struct {
	SubtitleLangs      string
	CookiesFromBrowser string
}

// DownloadArgs builds the yt-dlp arguments for one task. The URL is always last.
func DownloadArgs(cfg models.TaskConfig, opts Options) []string {
	args := make([]string, 0, 16)

	// One progress line per update
	args = append(args, command.Newline, command.RestrictFilenames)

	switch cfg.Quality.Kind {
	case models.QualityAudioOnly:
		args = append(args,
			command.Format, command.FormatAudioOnly,
			command.ExtractAudio,
			command.AudioFormat, command.AudioMP3,
		)
	case models.QualityHeight:
		args = append(args, command.Format, fmt.Sprintf(command.FormatHeight, cfg.Quality.Height, cfg.Quality.Height))
	default:
		args = append(args, command.Format, command.FormatBest)
	}

	if cfg.Subtitles {
		langs := opts.SubtitleLangs
		if langs == "" {
			langs = consts.DefaultSubtitleLangs
		}
		args = append(args, command.WriteSubs, command.SubLangs, langs)
	}

	if opts.CookiesFromBrowser != "" {
		args = append(args, command.CookiesFromBrowser, opts.CookiesFromBrowser)
	}

	args = append(args, command.Output, filepath.Join(cfg.Directory, command.FilenameSyntax))

	// Add target URL [ MUST GO LAST !! ]
	args = append(args, cfg.URL)
	return args
}

// PlaylistArgs builds the arguments that list a playlist without downloading it.
func PlaylistArgs(url string, opts Options) []string {
	args := []string{command.OutputJSON, command.YtDLPFlatPlaylist, command.NoWarnings}
	if opts.CookiesFromBrowser != "" {
		args = append(args, command.CookiesFromBrowser, opts.CookiesFromBrowser)
	}
	return append(args, url)
}
