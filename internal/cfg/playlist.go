package cfg

import (
	"fmt"

	"tubeplus/internal/domain/keys"
	"tubeplus/internal/playlist"
	"tubeplus/internal/utils/logging"
	"tubeplus/internal/validation"

	"github.com/spf13/cobra"
)

func newPlaylistCmd() *cobra.Command {
	var (
		selection string
		listOnly  bool
	)

	cmd := &cobra.Command{
		Use:   "playlist URL",
		Short: "List or download the entries of a playlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			url := args[0]
			if err := validation.ValidateURL(url); err != nil {
				return err
			}
			s, err := loadSettings()
			if err != nil {
				return err
			}

			e := newEngine(cmd.Context(), s, cmd.OutOrStdout())
			defer e.close()

			listing, err := e.expander.Expand(cmd.Context(), url)
			if err != nil {
				return err
			}
			if listOnly {
				printEntries(cmd.OutOrStdout(), listing.Entries)
				return nil
			}

			entries, err := playlist.SelectEntries(listing.Entries, selection)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				return fmt.Errorf("playlist %q has no downloadable entries", url)
			}
			logging.I("Queueing %d of %d entries from %q", len(entries), len(listing.Entries), url)

			e.manager.Enqueue(playlist.Configs(entries, s.base))
			return e.runToCompletion(cmd.Context(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&selection, keys.PlaylistSelect, "all", "Entries to download, e.g. \"1,3-5\" or \"all\"")
	cmd.Flags().BoolVar(&listOnly, keys.PlaylistList, false, "Only list the entries")
	return cmd
}
