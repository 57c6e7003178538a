package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pkg.jsn.cam/wordstream/internal/dispatcher"
	"pkg.jsn.cam/wordstream/pkg/wordstream/transport"
)

func newDispatchCommand(opts *options) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "dispatch [flags] FILE...",
		Short: "Wait for remote workers, then process files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			reg, err := dispatcher.NewRegistry(opts.workers, zap.L())
			if err != nil {
				return err
			}

			ln, err := transport.Listen(listen)
			if err != nil {
				return err
			}
			defer ln.Close()

			links, err := reg.Accept(ctx, ln)
			if err != nil {
				reg.Close()
				return err
			}

			return dispatch(ctx, opts, links, args, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&listen, "listen", envString("WORDSTREAM_LISTEN", ":7070"), "address to accept workers on")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", envInt("WORDSTREAM_WORKERS", 4), "number of workers to wait for")

	return cmd
}
