package optimize

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"

	"arina/internal/analysis"
	"arina/internal/domain/models"
)

func singleVar(lower, upper, profit, cost float64) []models.OptimizationVariable {
	return []models.OptimizationVariable{
		{ID: "x", Name: "x", LowerBound: lower, UpperBound: upper, Profit: profit, Cost: cost},
	}
}

func TestProfitMaxSingleVariable(t *testing.T) {
	res, err := Run(models.OptimizationInput{
		Name:      "land allocation",
		Mode:      models.ModeProfitMax,
		Variables: singleVar(0, 10, 2, 0),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Feasible {
		t.Fatalf("expected feasible")
	}
	if math.Abs(res.Variables[0].Value-10) > 1e-9 {
		t.Fatalf("x = %v, want 10", res.Variables[0].Value)
	}
	if math.Abs(res.ObjectiveValue-20) > 1e-9 {
		t.Fatalf("objective = %v, want 20", res.ObjectiveValue)
	}
}

func TestProfitMaxTwoVariables(t *testing.T) {
	// maximize 3x + 2y, x+y <= 4, x+3y <= 6, both in [0,10]: optimum (4,0).
	res, err := Run(models.OptimizationInput{
		Name: "crop mix",
		Mode: models.ModeProfitMax,
		Variables: []models.OptimizationVariable{
			{ID: "x", Name: "maize", LowerBound: 0, UpperBound: 10, Profit: 3},
			{ID: "y", Name: "beans", LowerBound: 0, UpperBound: 10, Profit: 2},
		},
		Constraints: []models.OptimizationConstraint{
			{ID: "c1", Name: "land", Sign: models.SignLE, RHS: 4, Variables: []models.VariableRef{
				{VariableID: "x", Coefficient: 1}, {VariableID: "y", Coefficient: 1}}},
			{ID: "c2", Name: "water", Sign: models.SignLE, RHS: 6, Variables: []models.VariableRef{
				{VariableID: "x", Coefficient: 1}, {VariableID: "y", Coefficient: 3}}},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(res.ObjectiveValue-12) > 1e-6 {
		t.Fatalf("objective = %v, want 12", res.ObjectiveValue)
	}
	if math.Abs(res.Variables[0].Value-4) > 1e-6 || math.Abs(res.Variables[1].Value-0) > 1e-6 {
		t.Fatalf("solution = (%v, %v), want (4, 0)", res.Variables[0].Value, res.Variables[1].Value)
	}
	for _, c := range res.Constraints {
		if !c.Satisfied {
			t.Errorf("constraint %s unsatisfied at optimum, slack %v", c.Name, c.Slack)
		}
	}
	if math.Abs(res.Constraints[0].Slack-0) > 1e-6 {
		t.Errorf("binding land constraint slack = %v, want 0", res.Constraints[0].Slack)
	}
	if math.Abs(res.Constraints[1].Slack-2) > 1e-6 {
		t.Errorf("water constraint slack = %v, want 2", res.Constraints[1].Slack)
	}
}

func TestCostMinWithDemandFloor(t *testing.T) {
	res, err := Run(models.OptimizationInput{
		Name:      "feed purchase",
		Mode:      models.ModeCostMin,
		Variables: singleVar(0, 10, 0, 3),
		Constraints: []models.OptimizationConstraint{
			{ID: "c1", Name: "demand", Sign: models.SignGE, RHS: 4, Variables: []models.VariableRef{
				{VariableID: "x", Coefficient: 1}}},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(res.Variables[0].Value-4) > 1e-6 {
		t.Fatalf("x = %v, want 4", res.Variables[0].Value)
	}
	if math.Abs(res.ObjectiveValue-12) > 1e-6 {
		t.Fatalf("objective = %v, want 12", res.ObjectiveValue)
	}
}

func TestEqualityConstraint(t *testing.T) {
	// maximize x with x+y = 5, x in [0,3]: x=3, y=2.
	res, err := Run(models.OptimizationInput{
		Name: "exact blend",
		Mode: models.ModeProfitMax,
		Variables: []models.OptimizationVariable{
			{ID: "x", Name: "x", LowerBound: 0, UpperBound: 3, Profit: 1},
			{ID: "y", Name: "y", LowerBound: 0, UpperBound: 10},
		},
		Constraints: []models.OptimizationConstraint{
			{ID: "c1", Name: "blend", Sign: models.SignEQ, RHS: 5, Variables: []models.VariableRef{
				{VariableID: "x", Coefficient: 1}, {VariableID: "y", Coefficient: 1}}},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(res.Variables[0].Value-3) > 1e-6 || math.Abs(res.Variables[1].Value-2) > 1e-6 {
		t.Fatalf("solution = (%v, %v), want (3, 2)", res.Variables[0].Value, res.Variables[1].Value)
	}
	if !res.Constraints[0].Satisfied {
		t.Fatalf("equality constraint should be satisfied, slack %v", res.Constraints[0].Slack)
	}
}

func TestInfeasibleRegion(t *testing.T) {
	res, err := Run(models.OptimizationInput{
		Name:      "impossible plan",
		Mode:      models.ModeProfitMax,
		Variables: singleVar(0, 10, 1, 0),
		Constraints: []models.OptimizationConstraint{
			{ID: "c1", Name: "floor", Sign: models.SignGE, RHS: 5, Variables: []models.VariableRef{
				{VariableID: "x", Coefficient: 1}}},
			{ID: "c2", Name: "ceiling", Sign: models.SignLE, RHS: 3, Variables: []models.VariableRef{
				{VariableID: "x", Coefficient: 1}}},
		},
	})
	if err != nil {
		t.Fatalf("infeasibility must not be an error, got %v", err)
	}
	if res.Feasible {
		t.Fatalf("expected infeasible result")
	}
	if res.ObjectiveValue != 0 {
		t.Fatalf("objective = %v, want zeroed", res.ObjectiveValue)
	}
	if !strings.Contains(res.Summary, "infeasible") {
		t.Fatalf("summary should explain infeasibility: %q", res.Summary)
	}
}

func TestGoalProgramming(t *testing.T) {
	// Conflicting goals on x in [0,10]: reach at least 8 (weight 2) while
	// staying at most 6 (weight 1). The cheaper compromise is x=8 with the
	// second goal overshot by 2.
	res, err := Run(models.OptimizationInput{
		Name:      "production targets",
		Mode:      models.ModeGoal,
		Variables: singleVar(0, 10, 0, 0),
		Goals: []models.OptimizationGoal{
			{ID: "g1", Name: "output", Target: 8, Priority: 2, Direction: models.GoalMax,
				Variables: []models.VariableRef{{VariableID: "x", Coefficient: 1}}},
			{ID: "g2", Name: "budget", Target: 6, Priority: 1, Direction: models.GoalMin,
				Variables: []models.VariableRef{{VariableID: "x", Coefficient: 1}}},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Feasible {
		t.Fatalf("expected feasible")
	}
	if math.Abs(res.Variables[0].Value-8) > 1e-6 {
		t.Fatalf("x = %v, want 8", res.Variables[0].Value)
	}
	if res.Goals[0].Deviation > 1e-9 {
		t.Errorf("output goal deviation = %v, want 0", res.Goals[0].Deviation)
	}
	if math.Abs(res.Goals[1].Deviation-2) > 1e-6 {
		t.Errorf("budget goal deviation = %v, want 2", res.Goals[1].Deviation)
	}
	if math.Abs(res.ObjectiveValue-2) > 1e-6 {
		t.Errorf("weighted deviation = %v, want 2", res.ObjectiveValue)
	}
	if !strings.Contains(res.Summary, "1 out of 2 goals") {
		t.Errorf("summary should count satisfied goals: %q", res.Summary)
	}
}

func TestGoalOverachievementIsZeroDeviation(t *testing.T) {
	// A single max goal with a low target: the solver lands anywhere with
	// achievement >= target and deviation must clamp to zero.
	res, err := Run(models.OptimizationInput{
		Name:      "easy target",
		Mode:      models.ModeGoal,
		Variables: singleVar(5, 10, 0, 0),
		Goals: []models.OptimizationGoal{
			{ID: "g1", Name: "yield", Target: 3, Priority: 1, Direction: models.GoalMax,
				Variables: []models.VariableRef{{VariableID: "x", Coefficient: 1}}},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Goals[0].Deviation != 0 {
		t.Fatalf("deviation = %v, want 0 for overachieved goal", res.Goals[0].Deviation)
	}
	if res.Goals[0].Achievement < 5 {
		t.Fatalf("achievement = %v, must respect lower bound 5", res.Goals[0].Achievement)
	}
}

func TestMalformedInput(t *testing.T) {
	cases := []struct {
		name  string
		input models.OptimizationInput
	}{
		{"unknown mode", models.OptimizationInput{
			Mode: "quadratic", Variables: singleVar(0, 1, 1, 0)}},
		{"no variables", models.OptimizationInput{Mode: models.ModeProfitMax}},
		{"inverted bounds", models.OptimizationInput{
			Mode: models.ModeProfitMax, Variables: singleVar(5, 1, 1, 0)}},
		{"non-finite bound", models.OptimizationInput{
			Mode: models.ModeProfitMax, Variables: singleVar(0, math.Inf(1), 1, 0)}},
		{"dangling constraint ref", models.OptimizationInput{
			Mode: models.ModeProfitMax, Variables: singleVar(0, 1, 1, 0),
			Constraints: []models.OptimizationConstraint{
				{ID: "c1", Name: "c1", Sign: models.SignLE, RHS: 1, Variables: []models.VariableRef{
					{VariableID: "ghost", Coefficient: 1}}}}}},
		{"goal mode without goals", models.OptimizationInput{
			Mode: models.ModeGoal, Variables: singleVar(0, 1, 1, 0)}},
		{"dangling goal ref", models.OptimizationInput{
			Mode: models.ModeGoal, Variables: singleVar(0, 1, 1, 0),
			Goals: []models.OptimizationGoal{
				{ID: "g1", Name: "g1", Target: 1, Direction: models.GoalMax,
					Variables: []models.VariableRef{{VariableID: "ghost", Coefficient: 1}}}}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Run(tc.input)
			var verr *analysis.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestResultJSONRoundTrip(t *testing.T) {
	res, err := Run(models.OptimizationInput{
		Name:      "round trip",
		Mode:      models.ModeProfitMax,
		Variables: singleVar(0, 10, 2.5, 0),
		Constraints: []models.OptimizationConstraint{
			{ID: "c1", Name: "cap", Sign: models.SignLE, RHS: 7.3, Variables: []models.VariableRef{
				{VariableID: "x", Coefficient: 1.1}}},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	raw, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back models.OptimizationResult
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.ObjectiveValue != res.ObjectiveValue {
		t.Errorf("objective changed across round trip: %v vs %v", back.ObjectiveValue, res.ObjectiveValue)
	}
	for i := range res.Variables {
		if back.Variables[i].Value != res.Variables[i].Value {
			t.Errorf("variable %s changed: %v vs %v", res.Variables[i].ID,
				back.Variables[i].Value, res.Variables[i].Value)
		}
	}
	for i := range res.Constraints {
		if back.Constraints[i].Slack != res.Constraints[i].Slack {
			t.Errorf("slack %s changed: %v vs %v", res.Constraints[i].ID,
				back.Constraints[i].Slack, res.Constraints[i].Slack)
		}
	}
}
