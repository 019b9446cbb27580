package main

import (
	"fmt"
	"math/rand"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/steveyegge/witchql/internal/seed"
)

var (
	seedFixturePath string
	seedWatch       bool
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load demo data, or a YAML fixture file, into the database",
	RunE:  runSeed,
}

func init() {
	seedCmd.Flags().StringVar(&seedFixturePath, "fixture", "", "path to a YAML fixture file (default: built-in demo data)")
	seedCmd.Flags().BoolVar(&seedWatch, "watch", false, "watch the fixture's directory and reload on change")
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	load := func() error {
		if seedFixturePath != "" {
			return seed.LoadYAMLFixture(db, seedFixturePath)
		}
		return seed.People(db, rand.New(rand.NewSource(1)), seed.DefaultSyntheticCount)
	}

	if err := load(); err != nil {
		return err
	}
	fmt.Println("seed complete")

	if !seedWatch {
		return nil
	}
	if seedFixturePath == "" {
		return fmt.Errorf("--watch requires --fixture")
	}

	dir := filepath.Dir(seedFixturePath)
	w, err := seed.NewWatcher(dir)
	if err != nil {
		return err
	}
	defer w.Close()

	fmt.Printf("watching %s for changes (ctrl-c to stop)\n", dir)
	w.Run(
		func(path string) {
			fmt.Printf("reloading %s\n", path)
			if err := seed.LoadYAMLFixture(db, path); err != nil {
				fmt.Printf("reload failed: %v\n", err)
			}
		},
		func(err error) {
			fmt.Printf("watch error: %v\n", err)
		},
	)
	return nil
}

