package cfg

import (
	"errors"

	"tubeplus/internal/database"
	"tubeplus/internal/domain/consts"
	"tubeplus/internal/domain/keys"
	"tubeplus/internal/domain/paths"
	"tubeplus/internal/models"
	"tubeplus/internal/repo"

	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	var (
		limit int
		url   string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show finished downloads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 0 {
				return errors.New("limit cannot be negative")
			}

			db, err := database.Open(paths.DBFilePath)
			if err != nil {
				return err
			}
			defer db.Close()
			store := repo.GetHistoryStore(db.DB)

			var recs []models.HistoryRecord
			if url != "" {
				recs, err = store.ForURL(cmd.Context(), url)
			} else {
				recs, err = store.Latest(cmd.Context(), limit)
			}
			if err != nil {
				return err
			}
			printHistory(cmd.OutOrStdout(), recs)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, keys.HistoryLimit, consts.DefaultHistoryLimit, "Number of records to show")
	cmd.Flags().StringVar(&url, "url", "", "Only show records for this URL")
	return cmd
}
