package cmd

import (
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/rickgao/kalshi-quotes/internal/api"
	"github.com/rickgao/kalshi-quotes/internal/auth"
)

type signOptions struct {
	configPath string
	method     string
	path       string
	timestamp  int64
	verify     bool
}

// SignCommand returns the sign command for registration.
func SignCommand() *cobra.Command {
	var opts signOptions

	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Print Kalshi authentication headers for a request",
		Long: `Sign METHOD + PATH with the configured private key and print the
KALSHI-ACCESS-* headers. Useful for reproducing a request with curl.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSign(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVar(&opts.configPath, "config", "", "Path to config file (default: environment only)")
	cmd.Flags().StringVar(&opts.method, "method", http.MethodGet, "HTTP method")
	cmd.Flags().StringVar(&opts.path, "path", "/markets", "Request path, relative to the API base URL")
	cmd.Flags().Int64Var(&opts.timestamp, "timestamp", 0, "Timestamp in ms since epoch (default: now)")
	cmd.Flags().BoolVar(&opts.verify, "verify", false, "Verify the signature against the public key")

	return cmd
}

func runSign(opts signOptions, stdout, stderr io.Writer) error {
	cfg, _, err := loadConfig(opts.configPath, stderr)
	if err != nil {
		return err
	}

	signer, err := auth.LoadCredentials(cfg.API.APIKey, cfg.API.PrivateKeyPath)
	if err != nil {
		return err
	}

	path := api.NormalizePath(opts.path)

	var headers auth.SignedHeaders
	if opts.timestamp > 0 {
		headers, err = signer.Sign(opts.method, path, opts.timestamp)
	} else {
		headers, err = signer.SignNow(opts.method, path)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "%s: %s\n", auth.HeaderAccessKey, headers.KeyID)
	fmt.Fprintf(stdout, "%s: %s\n", auth.HeaderAccessTimestamp, headers.Timestamp)
	fmt.Fprintf(stdout, "%s: %s\n", auth.HeaderAccessSignature, headers.Signature)

	if opts.verify {
		if err := auth.VerifySignature(signer.PublicKey(), headers, opts.method, path); err != nil {
			return err
		}
		fmt.Fprintln(stdout, "signature verified")
	}
	return nil
}
