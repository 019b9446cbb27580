// Command witchql is the CLI surface for the embedded query engine: it
// runs single queries, explains them, manages storages and indexes, and
// offers an interactive REPL.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/steveyegge/witchql/internal/cliconfig"
	"github.com/steveyegge/witchql/internal/kverrors"
	"github.com/steveyegge/witchql/internal/storage"
)

var (
	cfgFile string
	cfg     *cliconfig.Config
	db      = storage.New()
)

var rootCmd = &cobra.Command{
	Use:           "witchql",
	Short:         "An embedded document-oriented key-value database with a SQL-like query frontend",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := cliconfig.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to witchql.toml")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		printFatal(err)
	}
}

// printFatal writes an error to stderr and exits 1. Core errors use the
// caller-facing {"error": ...} envelope; anything else prints plainly.
func printFatal(err error) {
	var kverr *kverrors.Error
	if e, ok := err.(*kverrors.Error); ok {
		kverr = e
	}
	if kverr != nil {
		fmt.Fprint(os.Stderr, kverrors.Envelope(kverr))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(1)
}
