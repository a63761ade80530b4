package validate

import (
	"fmt"

	"github.com/google/cel-go/cel"

	"elt/internal/config"
	"elt/internal/warehouse"
)

// CompileCustom turns configured CEL predicates into rules named
// "custom.<name>". Each expression sees the fact row as the map variable
// "row" keyed by fact_sales column names; a row fails when the expression
// is false or cannot be evaluated. Compile errors are returned so they stop
// the run before any work is done.
func CompileCustom(defs []config.CustomRule) ([]Rule, error) {
	if len(defs) == 0 {
		return nil, nil
	}
	env, err := cel.NewEnv(
		cel.Variable("row", cel.MapType(cel.StringType, cel.DynType)),
	)
	if err != nil {
		return nil, fmt.Errorf("validate: cel env: %w", err)
	}

	rules := make([]Rule, 0, len(defs))
	for _, d := range defs {
		ast, issues := env.Compile(d.Expression)
		if issues != nil && issues.Err() != nil {
			return nil, fmt.Errorf("validate: custom rule %q: %w", d.Name, issues.Err())
		}
		if out := ast.OutputType(); !out.IsExactType(cel.BoolType) && !out.IsExactType(cel.DynType) {
			return nil, fmt.Errorf("validate: custom rule %q: expression yields %s, want bool", d.Name, out)
		}
		prg, err := env.Program(ast)
		if err != nil {
			return nil, fmt.Errorf("validate: custom rule %q: %w", d.Name, err)
		}

		desc := d.Description
		if desc == "" {
			desc = d.Expression
		}
		sev := Severity(d.Severity)
		if sev == "" {
			sev = SeverityError
		}
		rules = append(rules, Rule{
			Name:        "custom." + d.Name,
			Description: desc,
			Severity:    sev,
			Check:       celCheck(prg),
		})
	}
	return rules, nil
}

func celCheck(prg cel.Program) func(*warehouse.Warehouse, Thresholds) Result {
	return func(w *warehouse.Warehouse, _ Thresholds) Result {
		sales := w.SalesTable()
		names := sales.ColumnNames()

		res := Result{}
		var firstErr error
		row := make(map[string]any, len(names))
		for _, values := range sales.Rows {
			for i, n := range names {
				row[n] = values[i]
			}
			out, _, err := prg.Eval(map[string]any{"row": row})
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				res.Failing++
				continue
			}
			if ok, isBool := out.Value().(bool); !isBool || !ok {
				res.Failing++
			}
		}
		if firstErr != nil {
			res.Details = []string{"eval error: " + firstErr.Error()}
		}
		return res
	}
}
