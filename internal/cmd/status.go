package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/rickgao/kalshi-quotes/internal/api"
)

// StatusCommand returns the status command for registration.
func StatusCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show Kalshi exchange and trading status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(configPath, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			client, err := api.NewClientFromConfig(cfg, logger)
			if err != nil {
				return err
			}

			status, err := client.GetExchangeStatus(cmd.Context())
			if err != nil {
				return err
			}
			printStatus(cmd.OutOrStdout(), status)
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to config file (default: environment only)")
	return cmd
}

func printStatus(w io.Writer, s *api.ExchangeStatusResponse) {
	fmt.Fprintf(w, "Exchange active: %v\n", s.ExchangeActive)
	fmt.Fprintf(w, "Trading active:  %v\n", s.TradingActive)
	if s.EstimatedResumeTime != "" {
		fmt.Fprintf(w, "Estimated resume: %s\n", s.EstimatedResumeTime)
	}
}
