package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rickgao/kalshi-quotes/internal/poller"
	"github.com/rickgao/kalshi-quotes/internal/quotes"
)

type watchOptions struct {
	configPath string
	sample     int
	cycles     int
}

// WatchCommand returns the watch command for registration.
func WatchCommand() *cobra.Command {
	var opts watchOptions

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-fetch quotes on an interval until interrupted",
		Long: `Run the quote fetch every quotes.refresh_interval and print a summary
for each cycle. Stops on SIGINT/SIGTERM or after --cycles cycles.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.Context(), opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVar(&opts.configPath, "config", "", "Path to config file (default: environment only)")
	cmd.Flags().IntVar(&opts.sample, "sample", 0, "Number of quotes to print per cycle")
	cmd.Flags().IntVar(&opts.cycles, "cycles", 0, "Stop after this many cycles (0 = run until interrupted)")

	return cmd
}

func runWatch(ctx context.Context, opts watchOptions, stdout, stderr io.Writer) error {
	cfg, logger, err := loadConfig(opts.configPath, stderr)
	if err != nil {
		return err
	}

	fetcher, err := quotes.NewFromConfig(cfg, logger)
	if err != nil {
		return err
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	seen := 0
	handler := poller.ResultHandlerFunc(func(res *quotes.Result) error {
		seen++
		fmt.Fprintf(stdout, "[%s] ", time.Now().UTC().Format(time.RFC3339))
		if res.PageErr != nil {
			fmt.Fprintf(stderr, "warning: pagination stopped early: %v\n", res.PageErr)
		}
		printSummary(stdout, res, opts.sample)
		if opts.cycles > 0 && seen >= opts.cycles {
			cancel()
		}
		return nil
	})

	p := poller.New(poller.Config{
		Interval: cfg.Quotes.RefreshInterval,
		Timeout:  cfg.Quotes.FetchTimeout,
	}, fetcher, handler, logger)

	if err := p.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer stopCancel()
	return p.Stop(stopCtx)
}
