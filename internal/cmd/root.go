// Package cmd implements the kalshi-quotes command tree.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rickgao/kalshi-quotes/internal/version"
)

// RootCommand returns the kalshi-quotes root command with all subcommands.
func RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "kalshi-quotes",
		Short:         "Normalize Kalshi market quotes",
		Long:          `kalshi-quotes fetches open Kalshi markets over the signed REST API and normalizes them into YES/NO buy and sell prices.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(FetchCommand())
	root.AddCommand(SignCommand())
	root.AddCommand(StatusCommand())
	root.AddCommand(WatchCommand())
	root.AddCommand(VersionCommand())

	return root
}

// VersionCommand returns the version command for registration.
func VersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}
