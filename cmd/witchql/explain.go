package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/steveyegge/witchql/internal/query"
)

var explainCmd = &cobra.Command{
	Use:   "explain <sql>",
	Short: "Run a SELECT query and print its EXPLAIN trace",
	Args:  cobra.ExactArgs(1),
	RunE:  runExplain,
}

func init() {
	rootCmd.AddCommand(explainCmd)
}

func runExplain(cmd *cobra.Command, args []string) error {
	out, err := query.ExplainQuery(db, args[0])
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}
