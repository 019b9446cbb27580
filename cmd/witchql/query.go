package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/steveyegge/witchql/internal/query"
)

var queryCmd = &cobra.Command{
	Use:   "query <sql>",
	Short: "Run a SELECT query and print its output",
	Args:  cobra.ExactArgs(1),
	RunE:  runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	out, err := query.HandleQuery(db, args[0])
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}
