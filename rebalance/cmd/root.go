// Package cmd provides the command-line interface of rebalance.
package cmd

import (
	"github.com/sarchlab/rebalance/logging"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
	"go.uber.org/zap"
)

type globalOptions struct {
	logLevel string
	logFile  string
	dev      bool

	log *zap.Logger
}

func (o *globalOptions) logger() *zap.Logger {
	if o.log == nil {
		return zap.NewNop()
	}

	return o.log
}

// NewRootCommand creates the rebalance command tree.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "rebalance",
		Short: "Rebalance runs and inspects the reaper crest rebalancing extension.",
		Long: `Rebalance runs the reaper crest rebalancing extension against an ` +
			`in-memory host, manages its configuration and bundle manifests, ` +
			`and summarizes recorded runs.`,
		SilenceUsage: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			log, err := logging.New(logging.Options{
				Level:       opts.logLevel,
				Development: opts.dev,
				File:        opts.logFile,
			})
			if err != nil {
				return err
			}

			opts.log = log

			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = opts.logger().Sync()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.logLevel, "log-level", "info",
		"log level: debug, info, warn or error")
	flags.StringVar(&opts.logFile, "log-file", "", "also write the log to this file")
	flags.BoolVar(&opts.dev, "dev", false, "human readable development logging")

	root.AddCommand(
		newSimCommand(opts),
		newConfigCommand(),
		newBundlesCommand(opts),
		newTraceCommand(),
	)

	return root
}

// Execute runs the command line and exits through the registered exit
// handlers.
func Execute() {
	err := NewRootCommand().Execute()
	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
