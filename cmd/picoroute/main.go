// Command picoroute serves and inspects segment-trie routes.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "picoroute",
		Short: "Segment trie HTTP dispatcher",
		Long: `picoroute serves HTTP requests through a segment trie router on fasthttp.

Configuration is read from PICO_* environment variables and an optional
.env file. Routes answered with fixed responses can be declared in a YAML
manifest (PICO_ROUTES_FILE or --routes).`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		routesCmd(),
		matchCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
