package main

import (
	"errors"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pkg.jsn.cam/wordstream/internal/dispatcher"
)

func newHistoryCommand(opts *options) *cobra.Command {
	var runID string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List archived runs, or print one with --run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.db == "" {
				return errors.New("--db is required")
			}

			storage, err := dispatcher.NewBboltStorage(opts.db, zap.L())
			if err != nil {
				return err
			}
			defer storage.Close()

			if runID == "latest" {
				if runID, err = storage.LatestRunID(); err != nil {
					return err
				}
			}
			if runID != "" {
				report, err := storage.LoadReport(runID)
				if err != nil {
					return err
				}
				return printReport(cmd.OutOrStdout(), report)
			}

			reports, err := storage.ListReports()
			if err != nil {
				return err
			}
			printHistory(cmd.OutOrStdout(), reports, time.Now())
			return nil
		},
	}
	cmd.Flags().StringVar(&runID, "run", "", `run ID to print, or "latest"`)

	return cmd
}
