package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// cli holds state shared by commands
type cli struct {
	logger *log.Logger
}

func run(ctx context.Context) error {
	var verbose bool
	c := &cli{
		logger: log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           log.InfoLevel,
		}),
	}
	root := &cobra.Command{
		Use:          "ranch",
		Short:        "ranch builds conflated roadway networks",
		Long:         `ranch conflates an OpenStreetMap extract with a SharedStreets extract into a single roadway network with county-scoped identifiers and crosswalk-derived attributes.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				c.logger.SetLevel(log.DebugLevel)
			}
			return nil
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.AddCommand(c.buildCommand())
	root.AddCommand(c.settingsCommand())
	return root.ExecuteContext(ctx)
}
