// Package expr implements the formula evaluator port on top of expr-lang/expr.
//
// Formulas are compiled once (without a typed environment, so identifiers are
// resolved at evaluation time) and the resulting programs are shared by every
// simulation context. Besides the library built-ins, formulas can call exp, log,
// sqrt and pow, plus any function the caller places in the environment (the
// simulator exposes rand()).
package expr

import (
	"fmt"
	"math"
	"sort"

	"github.com/aretw0/cohort/pkg/domain"
	"github.com/aretw0/cohort/pkg/ports"
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
	"github.com/expr-lang/expr/vm"
)

// Evaluator compiles formulas into reusable programs.
type Evaluator struct {
	opts []expr.Option
}

var _ ports.Evaluator = (*Evaluator)(nil)

// New creates an evaluator with the standard math functions registered.
func New() *Evaluator {
	return &Evaluator{
		opts: []expr.Option{
			expr.Function("exp", unary(math.Exp)),
			expr.Function("log", unary(math.Log)),
			expr.Function("sqrt", unary(math.Sqrt)),
			expr.Function("pow", func(params ...any) (any, error) {
				if len(params) != 2 {
					return nil, fmt.Errorf("pow: expected 2 arguments, got %d", len(params))
				}
				x, err := toFloat(params[0])
				if err != nil {
					return nil, err
				}
				y, err := toFloat(params[1])
				if err != nil {
					return nil, err
				}
				return math.Pow(x, y), nil
			}),
		},
	}
}

// Compile parses src, records the identifiers it references and compiles it.
func (e *Evaluator) Compile(src string) (ports.Formula, error) {
	tree, err := parser.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", src, err)
	}
	collector := &symbolCollector{seen: make(map[string]struct{})}
	ast.Walk(&tree.Node, collector)
	sort.Strings(collector.symbols)

	program, err := expr.Compile(src, e.opts...)
	if err != nil {
		return nil, fmt.Errorf("compile %q: %w", src, err)
	}
	return &formula{src: src, program: program, symbols: collector.symbols}, nil
}

type formula struct {
	src     string
	program *vm.Program
	symbols []string
}

func (f *formula) String() string    { return f.src }
func (f *formula) Symbols() []string { return f.symbols }

// Eval runs the program. A fresh VM is used per call, so concurrent calls are safe.
func (f *formula) Eval(env ports.Env, allowMatrix bool) (domain.Numeric, error) {
	out, err := expr.Run(f.program, map[string]any(env))
	if err != nil {
		return domain.Numeric{}, err
	}
	n, err := toNumeric(out)
	if err != nil {
		return domain.Numeric{}, err
	}
	if n.IsMatrix() && !allowMatrix {
		return domain.Numeric{}, fmt.Errorf("matrix result not allowed here")
	}
	return n, nil
}

type symbolCollector struct {
	seen    map[string]struct{}
	symbols []string
}

func (c *symbolCollector) Visit(node *ast.Node) {
	id, ok := (*node).(*ast.IdentifierNode)
	if !ok {
		return
	}
	if _, dup := c.seen[id.Value]; dup {
		return
	}
	c.seen[id.Value] = struct{}{}
	c.symbols = append(c.symbols, id.Value)
}

func unary(fn func(float64) float64) func(params ...any) (any, error) {
	return func(params ...any) (any, error) {
		if len(params) != 1 {
			return nil, fmt.Errorf("expected 1 argument, got %d", len(params))
		}
		x, err := toFloat(params[0])
		if err != nil {
			return nil, err
		}
		return fn(x), nil
	}
}

func toFloat(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, fmt.Errorf("expected a number, got %T", v)
	}
}

func toNumeric(v any) (domain.Numeric, error) {
	switch x := v.(type) {
	case [][]float64:
		return domain.Matrix(x), nil
	case []float64:
		return domain.Matrix([][]float64{x}), nil
	case []any:
		return toMatrix(x)
	default:
		f, err := toFloat(v)
		if err != nil {
			return domain.Numeric{}, err
		}
		return domain.Scalar(f), nil
	}
}

func toMatrix(rows []any) (domain.Numeric, error) {
	if len(rows) == 0 {
		return domain.Matrix([][]float64{}), nil
	}
	if _, nested := rows[0].([]any); !nested {
		row, err := toRow(rows)
		if err != nil {
			return domain.Numeric{}, err
		}
		return domain.Matrix([][]float64{row}), nil
	}
	m := make([][]float64, len(rows))
	for i, r := range rows {
		cells, ok := r.([]any)
		if !ok {
			return domain.Numeric{}, fmt.Errorf("row %d: expected a list, got %T", i, r)
		}
		row, err := toRow(cells)
		if err != nil {
			return domain.Numeric{}, fmt.Errorf("row %d: %w", i, err)
		}
		if i > 0 && len(row) != len(m[0]) {
			return domain.Numeric{}, fmt.Errorf("row %d: ragged matrix", i)
		}
		m[i] = row
	}
	return domain.Matrix(m), nil
}

func toRow(cells []any) ([]float64, error) {
	row := make([]float64, len(cells))
	for j, c := range cells {
		f, err := toFloat(c)
		if err != nil {
			return nil, err
		}
		row[j] = f
	}
	return row, nil
}
