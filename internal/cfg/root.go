// Package cfg provides configuration and command-line interface setup for tubeplus.
package cfg

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"tubeplus/internal/domain/errconsts"
	"tubeplus/internal/domain/keys"
	"tubeplus/internal/domain/paths"
	"tubeplus/internal/utils/logging"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Execute builds the command tree and runs it. ctx ending cancels all downloads.
func Execute(ctx context.Context) error {
	rootCmd, cleanup := newRootCmd()
	defer cleanup()
	return rootCmd.ExecuteContext(ctx)
}

// newRootCmd returns the command tree and a cleanup that closes the log file.
// Cobra skips post-run hooks when a command fails, so cleanup runs after Execute.
func newRootCmd() (*cobra.Command, func()) {
	var logFile io.Closer
	cleanup := func() {
		if logFile != nil {
			logFile.Close()
			logFile = nil
		}
	}

	rootCmd := &cobra.Command{
		Use:           "tubeplus",
		Short:         "tubeplus downloads videos through yt-dlp, one after another.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := paths.InitProgFilesDirs(); err != nil {
				return err
			}

			if configFile := viper.GetString(keys.ConfigFile); configFile != "" {
				if err := loadConfigFile(configFile); err != nil {
					return err
				}
			} else if err := loadDefaultConfig(); err != nil {
				return err
			}

			logging.Init(viper.GetInt(keys.Debug), cmd.ErrOrStderr())

			f, err := logging.SetupFile(paths.LogFilePath)
			if err != nil {
				logging.W("Logging to console only: %v", err)
				return nil
			}
			logFile = f
			return nil
		},
	}

	viper.SetEnvPrefix(keys.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_")) // Convert "TUBEPLUS_POLL_INTERVAL" to "poll-interval"
	viper.AutomaticEnv()

	initProgramFlags(rootCmd)

	rootCmd.AddCommand(
		newDownloadCmd(),
		newPlaylistCmd(),
		newHistoryCmd(),
		newServeCmd(),
	)
	return rootCmd, cleanup
}

// loadDefaultConfig reads "config.*" from the program config directory if present.
func loadDefaultConfig() error {
	viper.SetConfigName("config")
	viper.AddConfigPath(paths.ConfigDir)
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf(errconsts.ConfigFileUpdateFail, paths.ConfigDir, err)
	}
	return nil
}

// loadConfigFile reads any viper-supported config file into the settings.
func loadConfigFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed check for config file path: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("config file %q is a directory, should be a file", path)
	}

	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf(errconsts.ConfigFileUpdateFail, path, err)
	}
	return nil
}
