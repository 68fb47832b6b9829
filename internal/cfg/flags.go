package cfg

import (
	"tubeplus/internal/domain/command"
	"tubeplus/internal/domain/consts"
	"tubeplus/internal/domain/keys"
	"tubeplus/internal/domain/paths"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// initProgramFlags sets the persistent flags shared by every command.
func initProgramFlags(cmd *cobra.Command) {
	f := cmd.PersistentFlags()

	f.String(keys.ConfigFile, "", "Config file (any format viper reads: yaml, toml, json...)")
	f.Int(keys.Debug, 0, "Debug level (0-5)")

	// Download settings
	f.String(keys.YtdlpPath, command.YTDLP, "Path to the yt-dlp executable")
	f.StringP(keys.Directory, "d", paths.DefaultDownloadDir(), "Directory downloads are saved to")
	f.StringP(keys.Quality, "q", "best", "Quality: best, audio, or a maximum height (144, 240, 360, 480, 720, 1080, 1440, 2160)")
	f.Bool(keys.Subtitles, false, "Also download subtitles")
	f.String(keys.SubtitleLangs, consts.DefaultSubtitleLangs, "Subtitle languages passed to yt-dlp")
	f.String(keys.CookiesFromBrowser, "", "Browser to read cookies from (passed to yt-dlp)")

	// Engine settings
	f.Int(keys.Lanes, consts.DefaultLanes, "Downloads allowed to run at once")
	f.Duration(keys.PollInterval, consts.DefaultPollInterval, "How often the queue is polled")
	f.Duration(keys.SpawnTimeout, consts.DefaultSpawnTimeout, "Maximum wait for yt-dlp to start")
	f.Duration(keys.PlaylistTimeout, consts.DefaultPlaylistTimeout, "Maximum wait for a playlist listing")
	f.Int(keys.AssumedSizeMB, consts.DefaultAssumedSizeMB, "Size (MiB) assumed when estimating speed")
	f.Bool(keys.History, true, "Record finished downloads in the history database")

	f.VisitAll(func(fl *pflag.Flag) {
		viper.BindPFlag(fl.Name, fl)
	})
}
