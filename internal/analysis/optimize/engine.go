package optimize

import (
	"math"

	"arina/internal/domain/models"
)

// Run solves the optimization described by input. Malformed input yields a
// validation error; an empty feasible region yields a normal result with
// Feasible set to false.
func Run(input models.OptimizationInput) (models.OptimizationResult, error) {
	p, err := compile(input)
	if err != nil {
		return models.OptimizationResult{}, err
	}

	nVars := len(input.Variables)
	nCols := nVars
	if input.Mode == models.ModeGoal {
		nCols += p.nGoals
	}

	cost := make([]float64, nCols)
	switch input.Mode {
	case models.ModeProfitMax:
		for i, v := range input.Variables {
			cost[i] = -v.Profit
		}
	case models.ModeCostMin:
		for i, v := range input.Variables {
			cost[i] = v.Cost
		}
	case models.ModeGoal:
		p.weights = make([]float64, p.nGoals)
		for g, goal := range input.Goals {
			w := goal.Priority
			if w == 0 {
				w = 1
			}
			p.weights[g] = w
			cost[nVars+g] = w
		}
	}

	A, b, signs := assembleRows(p, nVars, nCols)
	solution, feasible := solveSimplex(cost, A, b, signs)
	if !feasible {
		return infeasibleResult(input), nil
	}

	// Undo the lower-bound shift.
	x := make([]float64, nVars)
	for i := range x {
		x[i] = solution[i] + p.lower[i]
	}

	result := models.OptimizationResult{
		Name:      input.Name,
		Mode:      input.Mode,
		Feasible:  true,
		Variables: resolvedVariables(input, x),
	}

	switch input.Mode {
	case models.ModeProfitMax:
		var obj float64
		for i, v := range input.Variables {
			obj += v.Profit * x[i]
		}
		result.ObjectiveValue = obj
	case models.ModeCostMin:
		var obj float64
		for i, v := range input.Variables {
			obj += v.Cost * x[i]
		}
		result.ObjectiveValue = obj
	case models.ModeGoal:
		result.Goals = goalStatuses(p, x)
		var obj float64
		for g := range result.Goals {
			obj += p.weights[g] * result.Goals[g].Deviation
		}
		result.ObjectiveValue = obj
	}

	result.Constraints = constraintStatuses(p, x)
	result.Chart = buildChart(result.Variables)
	result.Spans = buildSummary(result)
	result.Summary = joinSpans(result.Spans)
	return result, nil
}

// assembleRows turns constraints, box upper bounds and goal rows into the
// solver's row form over the shifted variables (plus deviation columns in
// goal mode).
func assembleRows(p *program, nVars, nCols int) ([][]float64, []float64, []models.ConstraintSign) {
	var A [][]float64
	var b []float64
	var signs []models.ConstraintSign

	for i, row := range p.rows {
		r := make([]float64, nCols)
		copy(r, row)
		A = append(A, r)
		b = append(b, p.rhs[i])
		signs = append(signs, p.signs[i])
	}

	// Box upper bounds: y_j <= upper - lower. Lower bounds are already
	// absorbed into the shift.
	for j := 0; j < nVars; j++ {
		r := make([]float64, nCols)
		r[j] = 1
		A = append(A, r)
		b = append(b, p.upper[j]-p.lower[j])
		signs = append(signs, models.SignLE)
	}

	// One-sided deviation rows: the deviation column absorbs exactly the
	// shortfall (max goals) or the excess (min goals).
	for g, goal := range p.input.Goals {
		r := make([]float64, nCols)
		target := goal.Target
		for _, ref := range goal.Variables {
			col := p.index[ref.VariableID]
			r[col] += ref.Coefficient
			target -= ref.Coefficient * p.lower[col]
		}
		if goal.Direction == models.GoalMax {
			r[nVars+g] = 1
			A = append(A, r)
			b = append(b, target)
			signs = append(signs, models.SignGE)
		} else {
			r[nVars+g] = -1
			A = append(A, r)
			b = append(b, target)
			signs = append(signs, models.SignLE)
		}
	}
	return A, b, signs
}

func resolvedVariables(input models.OptimizationInput, x []float64) []models.ResolvedVariable {
	out := make([]models.ResolvedVariable, len(input.Variables))
	for i, v := range input.Variables {
		out[i] = models.ResolvedVariable{ID: v.ID, Name: v.Name, Value: x[i]}
	}
	return out
}

func constraintStatuses(p *program, x []float64) []models.ConstraintStatus {
	out := make([]models.ConstraintStatus, len(p.input.Constraints))
	for i, c := range p.input.Constraints {
		lhs := linearValue(c.Variables, p.index, x)
		var slack float64
		var satisfied bool
		switch c.Sign {
		case models.SignGE:
			slack = lhs - c.RHS
			satisfied = slack >= -slackTol
		case models.SignLE:
			slack = c.RHS - lhs
			satisfied = slack >= -slackTol
		default: // equality
			slack = c.RHS - lhs
			satisfied = math.Abs(slack) <= slackTol
		}
		out[i] = models.ConstraintStatus{ID: c.ID, Name: c.Name, Slack: slack, Satisfied: satisfied}
	}
	return out
}

func goalStatuses(p *program, x []float64) []models.GoalStatus {
	out := make([]models.GoalStatus, len(p.input.Goals))
	for g, goal := range p.input.Goals {
		achievement := linearValue(goal.Variables, p.index, x)
		var deviation float64
		if goal.Direction == models.GoalMax {
			deviation = math.Max(0, goal.Target-achievement)
		} else {
			deviation = math.Max(0, achievement-goal.Target)
		}
		out[g] = models.GoalStatus{ID: goal.ID, Name: goal.Name, Achievement: achievement, Deviation: deviation}
	}
	return out
}

func buildChart(vars []models.ResolvedVariable) models.OptimizationChart {
	chart := models.OptimizationChart{Type: "bar", Data: make([]models.ChartPoint, len(vars))}
	for i, v := range vars {
		chart.Data[i] = models.ChartPoint{Period: v.Name, Value: v.Value}
	}
	return chart
}

func infeasibleResult(input models.OptimizationInput) models.OptimizationResult {
	result := models.OptimizationResult{
		Name:     input.Name,
		Mode:     input.Mode,
		Feasible: false,
		Chart:    models.OptimizationChart{Type: "bar"},
	}
	result.Spans = buildSummary(result)
	result.Summary = joinSpans(result.Spans)
	return result
}
