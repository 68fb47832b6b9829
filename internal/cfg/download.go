package cfg

import (
	"github.com/spf13/cobra"
)

func newDownloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "download URL [URL...]",
		Short: "Download videos one after another",
		Long:  "Queues every URL in the order given and downloads them through yt-dlp. Exits non-zero if any download fails.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings()
			if err != nil {
				return err
			}
			cfgs, err := s.taskConfigs(args)
			if err != nil {
				return err
			}

			e := newEngine(cmd.Context(), s, cmd.OutOrStdout())
			defer e.close()

			e.manager.Enqueue(cfgs)
			return e.runToCompletion(cmd.Context(), cmd.OutOrStdout())
		},
	}
}
