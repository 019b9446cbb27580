// Package codegen compiles a parsed ast.Select into the linear
// instruction list the Query VM executes: predicate closures synthesized
// from the WHERE tree, scan hints extracted for the index-vs-full-scan
// decision, and a projection closure that preserves requested field
// order.
package codegen

import (
	"encoding/json"
	"strings"

	"github.com/steveyegge/witchql/internal/kverrors"
	"github.com/steveyegge/witchql/internal/query/ast"
	"github.com/steveyegge/witchql/internal/vm"
)

// Generate compiles sel into an ordered instruction list.
func Generate(sel *ast.Select) ([]vm.Instruction, error) {
	if !sel.Star && len(sel.Fields) == 0 {
		return nil, kverrors.NewQuery("select list is empty")
	}

	var instructions []vm.Instruction
	instructions = append(instructions, vm.UseStorage{Name: sel.From})

	predicate := buildPredicate(sel.Where)
	strConsts, numConsts := extractHints(sel.Where)
	instructions = append(instructions, vm.Scan{
		Predicate:       predicate,
		StringConstants: strConsts,
		NumberConstants: numConsts,
	})

	if !sel.Star {
		instructions = append(instructions, vm.MapOutput{Fn: buildProjection(sel.Fields)})
	}

	if sel.OrderBy != "" {
		instructions = append(instructions, vm.SortOutput{Field: sel.OrderBy})
	}

	if sel.Offset != nil {
		instructions = append(instructions, vm.SetOffset{N: *sel.Offset})
	}
	if sel.Limit != nil {
		instructions = append(instructions, vm.SetLimit{N: *sel.Limit})
	}

	return instructions, nil
}

// buildPredicate synthesizes a (key, value) -> bool closure from where.
// A nil where (no WHERE clause) matches every record.
func buildPredicate(where ast.Expr) vm.Predicate {
	if where == nil {
		return func(string, string) bool { return true }
	}
	return compileExpr(where)
}

func compileExpr(e ast.Expr) vm.Predicate {
	switch node := e.(type) {
	case ast.BinaryOp:
		switch node.Op {
		case "AND":
			left := compileExpr(node.Left)
			right := compileExpr(node.Right)
			return func(key, value string) bool {
				return left(key, value) && right(key, value)
			}
		case "OR":
			left := compileExpr(node.Left)
			right := compileExpr(node.Right)
			return func(key, value string) bool {
				return left(key, value) || right(key, value)
			}
		default:
			return compileComparison(node)
		}
	default:
		return func(string, string) bool { return false }
	}
}

// compileComparison handles a single `column op literal` node. Literal
// type restricts which operators apply: numeric literals support
// >,>=,<,<=,=,!=; string literals support only = and !=.
func compileComparison(node ast.BinaryOp) vm.Predicate {
	col, ok := node.Left.(ast.Column)
	if !ok {
		return func(string, string) bool { return false }
	}
	lit, ok := node.Right.(ast.Literal)
	if !ok {
		return func(string, string) bool { return false }
	}

	if lit.IsString {
		switch node.Op {
		case "=", "!=":
		default:
			return func(string, string) bool { return false }
		}
	}

	return func(key, value string) bool {
		var obj map[string]any
		if err := json.Unmarshal([]byte(value), &obj); err != nil {
			return false
		}
		raw, present := obj[col.Name]
		if !present {
			return false
		}

		if lit.IsString {
			str, ok := raw.(string)
			if !ok {
				return false
			}
			switch node.Op {
			case "=":
				return str == lit.Str
			case "!=":
				return str != lit.Str
			}
			return false
		}

		f, ok := raw.(float64)
		if !ok {
			return false
		}
		n := int64(f)
		if float64(n) != f {
			return false
		}
		want := int64(lit.Num)
		switch node.Op {
		case ">":
			return n > want
		case ">=":
			return n >= want
		case "<":
			return n < want
		case "<=":
			return n <= want
		case "=":
			return n == want
		case "!=":
			return n != want
		default:
			return false
		}
	}
}

// extractHints walks the WHERE tree collecting (column, literal)
// equality pairs, split by literal type. Both children of AND and OR are
// traversed.
func extractHints(where ast.Expr) (strConsts, numConsts []vm.FieldConstant) {
	if where == nil {
		return nil, nil
	}
	var walk func(e ast.Expr)
	walk = func(e ast.Expr) {
		node, ok := e.(ast.BinaryOp)
		if !ok {
			return
		}
		switch node.Op {
		case "AND", "OR":
			walk(node.Left)
			walk(node.Right)
		case "=":
			col, colOK := node.Left.(ast.Column)
			lit, litOK := node.Right.(ast.Literal)
			if !colOK || !litOK {
				return
			}
			if lit.IsString {
				strConsts = append(strConsts, vm.FieldConstant{Column: col.Name, Str: lit.Str})
			} else {
				numConsts = append(numConsts, vm.FieldConstant{Column: col.Name, Num: int64(lit.Num)})
			}
		}
	}
	walk(where)
	return strConsts, numConsts
}

// buildProjection returns the MapOutput function for an explicit field
// list. It builds the JSON object text manually (rather than marshaling
// a map[string]any) so the output preserves the requested field order;
// encoding/json would otherwise alphabetize map keys.
func buildProjection(fields []string) func(string) string {
	return func(value string) string {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal([]byte(value), &obj); err != nil {
			obj = map[string]json.RawMessage{}
		}

		var b strings.Builder
		b.WriteByte('{')
		for i, field := range fields {
			if i > 0 {
				b.WriteByte(',')
			}
			keyJSON, _ := json.Marshal(field)
			b.Write(keyJSON)
			b.WriteByte(':')
			if raw, present := obj[field]; present {
				b.Write(raw)
			} else {
				b.WriteString("null")
			}
		}
		b.WriteByte('}')
		return b.String()
	}
}
