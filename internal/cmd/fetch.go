package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rickgao/kalshi-quotes/internal/model"
	"github.com/rickgao/kalshi-quotes/internal/quotes"
	"github.com/rickgao/kalshi-quotes/internal/version"
)

type fetchOptions struct {
	configPath string
	sample     int
	asJSON     bool
}

// FetchCommand returns the fetch command for registration.
func FetchCommand() *cobra.Command {
	var opts fetchOptions

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Load open Kalshi markets as normalized quotes",
		Long: `Fetch up to three pages of open Kalshi markets, normalize their prices
and print a sample together with the skip counters.

Credentials come from the config file or from KALSHI_API_KEY and
KALSHI_API_SECRET_PATH.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(cmd.Context(), opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVar(&opts.configPath, "config", "", "Path to config file (default: environment only)")
	cmd.Flags().IntVar(&opts.sample, "sample", 5, "Number of quotes to print")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "Print all quotes and stats as JSON")

	return cmd
}

// fetchOutput is the --json document.
type fetchOutput struct {
	Stats  quotes.Stats        `json:"stats"`
	Error  string              `json:"error,omitempty"`
	Quotes []model.MarketQuote `json:"quotes"`
}

func runFetch(ctx context.Context, opts fetchOptions, stdout, stderr io.Writer) error {
	cfg, logger, err := loadConfig(opts.configPath, stderr)
	if err != nil {
		return err
	}
	logger.Info("starting quote fetch", version.Attr(), "api_url", cfg.API.RestURL)

	fetcher, err := quotes.NewFromConfig(cfg, logger)
	if err != nil {
		return err
	}

	if ctx == nil {
		ctx = context.Background()
	}
	// The fetcher bounds itself by quotes.fetch_timeout.
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	res := fetcher.Fetch(ctx)
	if res.PageErr != nil {
		fmt.Fprintf(stderr, "warning: pagination stopped early: %v\n", res.PageErr)
	}

	if opts.asJSON {
		out := fetchOutput{Stats: res.Stats, Quotes: res.Quotes}
		if res.PageErr != nil {
			out.Error = res.PageErr.Error()
		}
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	printSummary(stdout, res, opts.sample)
	return nil
}

func printSummary(w io.Writer, res *quotes.Result, sample int) {
	s := res.Stats
	fmt.Fprintf(w, "Loaded %d Kalshi quotes from %d raw markets (%d pages)\n", s.Accepted, s.Fetched, s.Pages)
	if s.SkippedStatus > 0 || s.SkippedPrice > 0 {
		fmt.Fprintf(w, "Skipped: %d closed/settled/cancelled, %d missing/invalid prices\n", s.SkippedStatus, s.SkippedPrice)
	}

	if len(res.Quotes) == 0 {
		fmt.Fprintln(w, "No markets returned. Check credentials or API availability.")
		return
	}

	n := min(max(sample, 0), len(res.Quotes))
	if n == 0 {
		return
	}
	fmt.Fprintln(w, "Sample:")
	for _, q := range res.Quotes[:n] {
		fmt.Fprintf(w, "  - %s (YES buy %s, NO buy %s)\n",
			quotes.Truncate(q.Question, 80), q.YesBuy.StringFixed(3), q.NoBuy.StringFixed(3))
	}
}
