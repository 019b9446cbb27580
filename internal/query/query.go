// Package query is the thin query-handler facade: lex (via parser) →
// parse → codegen → execute, wrapped with the single database-wide lock
// that guards the whole pipeline for its duration.
package query

import (
	"strings"

	"github.com/steveyegge/witchql/internal/query/codegen"
	"github.com/steveyegge/witchql/internal/query/parser"
	"github.com/steveyegge/witchql/internal/storage"
	"github.com/steveyegge/witchql/internal/vm"
)

// Result holds one query's output and EXPLAIN trace.
type Result struct {
	Output  []string
	Explain []vm.ExplainStep
}

// run compiles and executes sql against db. Callers must already hold
// db's lock.
func run(db *storage.Database, sql string) (*Result, error) {
	sel, err := parser.Parse(sql)
	if err != nil {
		return nil, err
	}
	instructions, err := codegen.Generate(sel)
	if err != nil {
		return nil, err
	}
	machine := vm.New()
	explain, err := machine.Execute(db, instructions)
	if err != nil {
		return nil, err
	}
	return &Result{Output: machine.Output(), Explain: explain}, nil
}

// Execute runs sql's full pipeline under db's exclusive lock and returns
// the raw Result, for callers (the REPL) that want to render output and
// EXPLAIN steps themselves rather than use the comma-joined string
// contract of HandleQuery/ExplainQuery.
func Execute(db *storage.Database, sql string) (*Result, error) {
	db.Lock()
	defer db.Unlock()
	return run(db, sql)
}

// HandleQuery runs sql's full pipeline under db's exclusive lock and
// returns the output items joined by ",".
func HandleQuery(db *storage.Database, sql string) (string, error) {
	db.Lock()
	defer db.Unlock()

	result, err := run(db, sql)
	if err != nil {
		return "", err
	}
	return strings.Join(result.Output, ","), nil
}

// ExplainQuery runs sql's full pipeline under db's exclusive lock and
// returns the EXPLAIN trace as a comma-joined sequence of JSON values.
func ExplainQuery(db *storage.Database, sql string) (string, error) {
	db.Lock()
	defer db.Unlock()

	result, err := run(db, sql)
	if err != nil {
		return "", err
	}

	parts := make([]string, len(result.Explain))
	for i, step := range result.Explain {
		b, err := step.MarshalJSON()
		if err != nil {
			return "", err
		}
		parts[i] = string(b)
	}
	return strings.Join(parts, ","), nil
}
