package cfg

import (
	"context"

	"tubeplus/internal/domain/consts"
	"tubeplus/internal/domain/keys"
	"tubeplus/internal/server"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the download queue behind an HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			e := newEngine(ctx, s, cmd.OutOrStdout())
			defer e.close()

			var history server.HistoryLister
			if e.store != nil {
				history = e.store
			}
			router := server.NewRouter(e.manager, history, server.Defaults{
				Directory: s.base.Directory,
				Quality:   s.base.Quality,
				Subtitles: s.base.Subtitles,
			})

			queueDone := make(chan struct{})
			go func() {
				defer close(queueDone)
				e.manager.Serve(ctx, e.onPoll)
			}()

			addr := viper.GetString(keys.Addr)
			err = server.Start(ctx, addr, router)

			cancel()
			<-queueDone
			return err
		},
	}

	cmd.Flags().String(keys.Addr, consts.DefaultServerAddr, "Address the API listens on")
	viper.BindPFlag(keys.Addr, cmd.Flags().Lookup(keys.Addr))
	return cmd
}
