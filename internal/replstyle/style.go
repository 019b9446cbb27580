// Package replstyle renders REPL/CLI output with lipgloss, with one color
// for SetStorage steps, one for scan steps (FullScan/IndexScan), one shared
// by all other EXPLAIN steps, and a plain-text fallback for non-terminal
// output.
package replstyle

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/steveyegge/witchql/internal/vm"
)

var (
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	promptStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	storageStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	scanStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	transformStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
)

// Styler renders output either with lipgloss styling (interactive
// terminals) or as plain text (piped input/output).
type Styler struct {
	Enabled bool
}

// Prompt renders the REPL prompt string.
func (s Styler) Prompt() string {
	if !s.Enabled {
		return "witchql> "
	}
	return promptStyle.Render("witchql>") + " "
}

// Error renders an error message.
func (s Styler) Error(err error) string {
	msg := fmt.Sprintf("error: %v", err)
	if !s.Enabled {
		return msg
	}
	return errorStyle.Render(msg)
}

// ExplainLine renders one EXPLAIN step for display.
func (s Styler) ExplainLine(step vm.ExplainStep) string {
	var label string
	switch step.Kind {
	case vm.ExplainSetStorage:
		label = fmt.Sprintf("SetStorage(%s)", step.Storage)
	case vm.ExplainFullScan:
		label = fmt.Sprintf("FullScan(%s)", step.Duration)
	case vm.ExplainIndexScan:
		label = fmt.Sprintf("IndexScan(%s)", step.Duration)
	case vm.ExplainMapOutput:
		label = "MapOutput"
	case vm.ExplainSortOutput:
		label = "SortOutput"
	case vm.ExplainLimit:
		label = "Limit"
	case vm.ExplainOffset:
		label = "Offset"
	default:
		label = "Unknown"
	}

	if !s.Enabled {
		return label
	}

	switch step.Kind {
	case vm.ExplainSetStorage:
		return storageStyle.Render(label)
	case vm.ExplainFullScan, vm.ExplainIndexScan:
		return scanStyle.Render(label)
	default:
		return transformStyle.Render(label)
	}
}
