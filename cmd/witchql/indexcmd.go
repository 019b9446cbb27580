package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/steveyegge/witchql/internal/kverrors"
	"github.com/steveyegge/witchql/internal/storage"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage secondary indexes on a storage",
}

var indexCreateCmd = &cobra.Command{
	Use:   "create <storage> <field> <String|Number>",
	Short: "Create a unique index on a field, back-filling existing records",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		var fieldType storage.FieldType
		switch strings.ToLower(args[2]) {
		case "string":
			fieldType = storage.FieldString
		case "number":
			fieldType = storage.FieldNumber
		default:
			return kverrors.NewQuery("unknown field type %q, expected String or Number", args[2])
		}

		db.Lock()
		defer db.Unlock()
		if err := db.CreateIndex(args[0], args[1], fieldType, true); err != nil {
			return err
		}
		fmt.Printf("created index on %s.%s\n", args[0], args[1])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.AddCommand(indexCreateCmd)
}
