package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var storageCmd = &cobra.Command{
	Use:   "storage",
	Short: "Manage named storages",
}

var storageCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new, empty storage",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db.Lock()
		defer db.Unlock()
		if err := db.CreateStorage(args[0]); err != nil {
			return err
		}
		fmt.Printf("created storage %q\n", args[0])
		return nil
	},
}

var storageDropCmd = &cobra.Command{
	Use:   "drop <name>",
	Short: "Delete a storage (silent no-op if absent)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db.Lock()
		defer db.Unlock()
		db.DeleteStorage(args[0])
		fmt.Printf("dropped storage %q\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(storageCmd)
	storageCmd.AddCommand(storageCreateCmd)
	storageCmd.AddCommand(storageDropCmd)
}
