package main

import (
	"fmt"
	"os"

	"github.com/rickgao/kalshi-quotes/internal/cmd"
)

func main() {
	if err := cmd.RootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
