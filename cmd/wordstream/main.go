package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"pkg.jsn.cam/wordstream/pkg/wordstream"
	"pkg.jsn.cam/wordstream/pkg/wordstream/protocol"
)

// options are the flags shared by every subcommand
type options struct {
	db         string
	statusAddr string
	chunkSize  int
	capacity   int
	workers    int
	progress   bool
	verbose    bool
}

func newLogger(verbose bool) (*zap.Logger, error) {
	var config zap.Config
	if term.IsTerminal(int(os.Stderr.Fd())) {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		config = zap.NewProductionConfig()
	}
	if verbose {
		config.Level.SetLevel(zap.DebugLevel)
	} else {
		config.Level.SetLevel(zap.InfoLevel)
	}

	log, err := config.Build()
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(log.WithOptions(zap.AddStacktrace(zap.ErrorLevel)))

	return log, nil
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "wordstream",
		Short:         "Count words, vowel starts and consonant endings across text files",
		Version:       protocol.WordstreamVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := newLogger(opts.verbose)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = zap.L().Sync()
		},
	}

	flags := root.PersistentFlags()
	flags.IntVar(&opts.chunkSize, "chunk-size", envInt("WORDSTREAM_CHUNK_SIZE", wordstream.DefaultMaxFill),
		"code points per chunk before extending to a word boundary")
	flags.IntVar(&opts.capacity, "capacity", envInt("WORDSTREAM_CAPACITY", 0),
		"hard limit on code points per chunk (0 = chunk size + 4096)")
	flags.StringVar(&opts.db, "db", envString("WORDSTREAM_DB", ""),
		"bbolt file for the run report archive (empty disables)")
	flags.StringVar(&opts.statusAddr, "status-addr", envString("WORDSTREAM_STATUS_ADDR", ""),
		"address for the status and metrics HTTP server (empty disables)")
	flags.BoolVar(&opts.progress, "progress", false, "show a progress bar on stderr")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newRunCommand(opts),
		newDispatchCommand(opts),
		newWorkCommand(opts),
		newHistoryCommand(opts),
	)

	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCommand()
	if err := root.ExecuteContext(ctx); err != nil {
		root.PrintErrln("Error:", err)
		stop()
		os.Exit(1)
	}
}
