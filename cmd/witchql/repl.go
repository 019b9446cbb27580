package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/steveyegge/witchql/internal/query"
	"github.com/steveyegge/witchql/internal/replstyle"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start an interactive query REPL",
	RunE:  runRepl,
}

func init() {
	rootCmd.AddCommand(replCmd)
}

func runRepl(cmd *cobra.Command, args []string) error {
	style := replstyle.Styler{Enabled: term.IsTerminal(int(os.Stdin.Fd()))}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(style.Prompt())
		if !scanner.Scan() {
			return nil
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return nil
		}

		if rest, ok := strings.CutPrefix(line, "explain "); ok {
			explainLine(style, rest)
			continue
		}
		runLine(style, line)
	}
}

func runLine(style replstyle.Styler, sql string) {
	result, err := query.Execute(db, sql)
	if err != nil {
		fmt.Println(style.Error(err))
		return
	}
	fmt.Println(strings.Join(result.Output, ","))
}

func explainLine(style replstyle.Styler, sql string) {
	result, err := query.Execute(db, sql)
	if err != nil {
		fmt.Println(style.Error(err))
		return
	}
	for _, step := range result.Explain {
		fmt.Println(style.ExplainLine(step))
	}
}
