// Package optimize implements the linear optimization engine. The three
// modes (profit maximization, cost minimization, goal programming) are all
// solved as genuine linear programs with a two-phase simplex over the box
// bounds and linear constraints; infeasibility is a normal result, not an
// error.
package optimize

import (
	"math"

	"arina/internal/analysis"
	"arina/internal/domain/models"
)

// tolerances for the solver and for constraint satisfaction reporting.
const (
	pivotEps = 1e-9
	slackTol = 1e-6
)

// program is the validated, index-resolved form of an OptimizationInput:
// decision variables are shifted by their lower bounds so every solver
// variable is non-negative.
type program struct {
	input   models.OptimizationInput
	index   map[string]int // variable id -> column
	lower   []float64
	upper   []float64
	rows    [][]float64 // constraint coefficients per variable column
	rhs     []float64   // shifted right-hand sides
	signs   []models.ConstraintSign
	nGoals  int
	weights []float64 // deviation weights, goal mode only
}

func compile(input models.OptimizationInput) (*program, error) {
	if !input.Mode.Valid() {
		return nil, analysis.Invalid("type", "unknown optimization mode %q", input.Mode)
	}
	if len(input.Variables) == 0 {
		return nil, analysis.Invalid("variables", "at least one decision variable is required")
	}
	if input.Mode == models.ModeGoal && len(input.Goals) == 0 {
		return nil, analysis.Invalid("goals", "goal programming requires at least one goal")
	}
	if input.Mode != models.ModeGoal && len(input.Goals) > 0 {
		return nil, analysis.Invalid("goals", "goals are only valid in goal programming mode")
	}

	p := &program{
		input: input,
		index: make(map[string]int, len(input.Variables)),
		lower: make([]float64, len(input.Variables)),
		upper: make([]float64, len(input.Variables)),
	}
	for i, v := range input.Variables {
		if _, dup := p.index[v.ID]; dup {
			return nil, analysis.Invalid("variables", "duplicate variable id %q", v.ID)
		}
		if !finite(v.LowerBound) || !finite(v.UpperBound) {
			return nil, analysis.Invalid("variables", "variable %q has non-finite bounds", v.Name)
		}
		if v.LowerBound > v.UpperBound {
			return nil, analysis.Invalid("variables", "variable %q has lower bound above upper bound", v.Name)
		}
		p.index[v.ID] = i
		p.lower[i] = v.LowerBound
		p.upper[i] = v.UpperBound
	}

	for _, c := range input.Constraints {
		if !c.Sign.Valid() {
			return nil, analysis.Invalid("constraints", "constraint %q has unknown sign %q", c.Name, c.Sign)
		}
		if !finite(c.RHS) {
			return nil, analysis.Invalid("constraints", "constraint %q has non-finite right-hand side", c.Name)
		}
		row := make([]float64, len(input.Variables))
		shifted := c.RHS
		for _, ref := range c.Variables {
			col, ok := p.index[ref.VariableID]
			if !ok {
				return nil, analysis.Invalid("constraints",
					"constraint %q references unknown variable %q", c.Name, ref.VariableID)
			}
			if !finite(ref.Coefficient) {
				return nil, analysis.Invalid("constraints", "constraint %q has non-finite coefficient", c.Name)
			}
			row[col] += ref.Coefficient
			shifted -= ref.Coefficient * p.lower[col]
		}
		p.rows = append(p.rows, row)
		p.rhs = append(p.rhs, shifted)
		p.signs = append(p.signs, c.Sign)
	}

	for _, g := range input.Goals {
		if g.Direction != models.GoalMax && g.Direction != models.GoalMin {
			return nil, analysis.Invalid("goals", "goal %q has unknown direction %q", g.Name, g.Direction)
		}
		if !finite(g.Target) {
			return nil, analysis.Invalid("goals", "goal %q has non-finite target", g.Name)
		}
		if g.Priority < 0 || !finite(g.Priority) {
			return nil, analysis.Invalid("goals", "goal %q has invalid priority weight", g.Name)
		}
		for _, ref := range g.Variables {
			if _, ok := p.index[ref.VariableID]; !ok {
				return nil, analysis.Invalid("goals",
					"goal %q references unknown variable %q", g.Name, ref.VariableID)
			}
			if !finite(ref.Coefficient) {
				return nil, analysis.Invalid("goals", "goal %q has non-finite coefficient", g.Name)
			}
		}
	}
	p.nGoals = len(input.Goals)
	return p, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// linearValue evaluates a coefficient list at the resolved variable values.
func linearValue(refs []models.VariableRef, index map[string]int, x []float64) float64 {
	var sum float64
	for _, ref := range refs {
		sum += ref.Coefficient * x[index[ref.VariableID]]
	}
	return sum
}
