package notifications

import (
	"fmt"

	"github.com/google/cel-go/cel"

	"aurotex/internal/domain/inventory"
)

// StockRule is one configurable stock alert. The expression is a CEL
// boolean over the lot's quantity variables; when it evaluates to true
// the rule's notification type fires.
type StockRule struct {
	Name       string   `json:"name"`
	Expression string   `json:"expression"`
	Type       Type     `json:"type"`
	Priority   Priority `json:"priority"`
}

// DefaultStockRules mirror the built-in alert thresholds. Deployments can
// replace them with their own expressions without code changes.
func DefaultStockRules() []StockRule {
	return []StockRule{
		{
			Name:       "critical_stock",
			Expression: "threshold_kg > 0.0 && current_stock_kg <= threshold_kg / 2.0",
			Type:       TypeStockCritical,
			Priority:   PriorityUrgent,
		},
		{
			Name:       "low_stock",
			Expression: "threshold_kg > 0.0 && current_stock_kg <= threshold_kg",
			Type:       TypeStockLow,
			Priority:   PriorityHigh,
		},
		{
			Name:       "reorder_point",
			Expression: "reorder_point_kg > 0.0 && current_stock_kg <= reorder_point_kg",
			Type:       TypeStockReorder,
			Priority:   PriorityMedium,
		},
		{
			Name:       "overstock",
			Expression: "max_stock_kg > 0.0 && current_stock_kg > max_stock_kg",
			Type:       TypeStockOverstock,
			Priority:   PriorityLow,
		},
	}
}

type compiledRule struct {
	rule    StockRule
	program cel.Program
}

// RuleEngine evaluates stock rules against lot state. Rules are compiled
// once at construction; evaluation is allocation-light and safe for
// concurrent use.
type RuleEngine struct {
	rules []compiledRule
}

// NewRuleEngine compiles the given rules. A rule that fails to compile
// fails the whole constructor; rule sets are config, not user input.
func NewRuleEngine(rules []StockRule) (*RuleEngine, error) {
	env, err := cel.NewEnv(
		cel.Variable("current_stock_kg", cel.DoubleType),
		cel.Variable("allocated_kg", cel.DoubleType),
		cel.Variable("available_kg", cel.DoubleType),
		cel.Variable("threshold_kg", cel.DoubleType),
		cel.Variable("reorder_point_kg", cel.DoubleType),
		cel.Variable("max_stock_kg", cel.DoubleType),
	)
	if err != nil {
		return nil, fmt.Errorf("create cel env: %w", err)
	}

	e := &RuleEngine{rules: make([]compiledRule, 0, len(rules))}
	for _, r := range rules {
		ast, iss := env.Compile(r.Expression)
		if iss != nil && iss.Err() != nil {
			return nil, fmt.Errorf("compile rule %q: %w", r.Name, iss.Err())
		}
		if ast.OutputType() != cel.BoolType {
			return nil, fmt.Errorf("rule %q: expression must be boolean, got %s", r.Name, ast.OutputType())
		}
		prg, err := env.Program(ast)
		if err != nil {
			return nil, fmt.Errorf("program rule %q: %w", r.Name, err)
		}
		e.rules = append(e.rules, compiledRule{rule: r, program: prg})
	}
	return e, nil
}

// Evaluate returns the rules matching the lot's current state, in the
// order they were registered.
func (e *RuleEngine) Evaluate(lot *inventory.Lot) ([]StockRule, error) {
	vars := map[string]any{
		"current_stock_kg": lot.CurrentStockKg.Float64(),
		"allocated_kg":     lot.AllocatedKg.Float64(),
		"available_kg":     lot.AvailableKg.Float64(),
		"threshold_kg":     lot.ThresholdKg.Float64(),
		"reorder_point_kg": lot.ReorderPointKg.Float64(),
		"max_stock_kg":     lot.MaxStockKg.Float64(),
	}

	var matched []StockRule
	for _, cr := range e.rules {
		out, _, err := cr.program.Eval(vars)
		if err != nil {
			return nil, fmt.Errorf("eval rule %q: %w", cr.rule.Name, err)
		}
		if hit, ok := out.Value().(bool); ok && hit {
			matched = append(matched, cr.rule)
		}
	}
	return matched, nil
}
