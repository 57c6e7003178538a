package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pkg.jsn.cam/wordstream/internal/worker"
)

func newWorkCommand(opts *options) *cobra.Command {
	var (
		addr string
		id   string
	)

	cmd := &cobra.Command{
		Use:   "work",
		Short: "Join a dispatcher as a remote worker",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return worker.Connect(cmd.Context(), addr, worker.Config{Logger: zap.L(), ID: id})
		},
	}
	cmd.Flags().StringVar(&addr, "dispatcher", envString("WORDSTREAM_DISPATCHER", "localhost:7070"), "dispatcher address")
	cmd.Flags().StringVar(&id, "id", "", "worker ID (default random)")

	return cmd
}
