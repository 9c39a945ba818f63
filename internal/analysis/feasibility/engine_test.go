package feasibility

import (
	"errors"
	"math"
	"strings"
	"testing"

	"arina/internal/analysis"
	"arina/internal/domain/models"
)

func baseInput() models.FeasibilityInput {
	return models.FeasibilityInput{
		BusinessName: "Hydroponic Lettuce",
		InvestmentCosts: []models.CostItem{
			{ID: "i1", Name: "Greenhouse", Quantity: 1, Price: 10_000_000, Amount: 10_000_000},
		},
		OperationalCosts: []models.CostItem{
			{ID: "o1", Name: "Nutrients", Quantity: 1, Price: 2_000_000, Amount: 2_000_000},
		},
		ProductionCostPerUnit: 5000,
		MonthlySalesVolume:    1000,
		Markup:                50,
		ProjectLifespan:       5,
	}
}

func TestAnalyzeScenario(t *testing.T) {
	res, err := Analyze(baseInput(), DefaultPolicy())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.UnitCost != 7000 {
		t.Fatalf("unit cost = %v, want 7000", res.UnitCost)
	}
	if res.SellingPrice != 10500 {
		t.Fatalf("selling price = %v, want 10500", res.SellingPrice)
	}
	wantBEP := 2_000_000.0 / (10500 - 5000)
	if math.Abs(res.BreakEvenUnits-wantBEP) > 1e-9 {
		t.Fatalf("break-even units = %v, want %v", res.BreakEvenUnits, wantBEP)
	}
	if res.MonthlyNetProfit != 3_500_000 {
		t.Fatalf("monthly net profit = %v, want 3500000", res.MonthlyNetProfit)
	}
	// ROI 420%, payback under 3 months: clearly feasible.
	if !res.Feasible {
		t.Fatalf("expected feasible, got roi=%v payback=%v", res.ROI, res.PaybackPeriod)
	}
}

func TestAnalyzeInvariants(t *testing.T) {
	in := baseInput()
	res, err := Analyze(in, DefaultPolicy())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.UnitCost < in.ProductionCostPerUnit {
		t.Errorf("unit cost %v below production cost %v", res.UnitCost, in.ProductionCostPerUnit)
	}
	if res.SellingPrice < res.UnitCost {
		t.Errorf("selling price %v below unit cost %v with non-negative markup", res.SellingPrice, res.UnitCost)
	}
	if res.BreakEvenAmount != res.BreakEvenUnits*res.SellingPrice {
		t.Errorf("break-even amount %v not derived from units*price", res.BreakEvenAmount)
	}
}

func TestFeasibilityBoundary(t *testing.T) {
	// Annual profit for the base input is 42,000,000. An investment of
	// 168,000,000 puts ROI at exactly 25% (an exact float) and payback at
	// exactly 4 years; the verdict uses strict inequalities.
	policy := Policy{MinROI: 25, MaxPaybackYears: 10}

	in := baseInput()
	in.InvestmentCosts = []models.CostItem{{ID: "i1", Name: "Plant", Amount: 168_000_000}}
	res, err := Analyze(in, policy)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ROI != 25 {
		t.Fatalf("roi = %v, want exactly 25", res.ROI)
	}
	if res.Feasible {
		t.Fatalf("roi equal to threshold must not be feasible")
	}

	in.InvestmentCosts[0].Amount = 167_000_000
	res, err = Analyze(in, policy)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ROI <= 25 {
		t.Fatalf("roi = %v, want above 25", res.ROI)
	}
	if !res.Feasible {
		t.Fatalf("roi above threshold with payback inside window must be feasible")
	}
}

func TestAnalyzeValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*models.FeasibilityInput)
	}{
		{"empty investment", func(in *models.FeasibilityInput) { in.InvestmentCosts = nil }},
		{"empty operational", func(in *models.FeasibilityInput) { in.OperationalCosts = nil }},
		{"zero sales volume", func(in *models.FeasibilityInput) { in.MonthlySalesVolume = 0 }},
		{"negative markup", func(in *models.FeasibilityInput) { in.Markup = -10 }},
		{"negative amount", func(in *models.FeasibilityInput) { in.InvestmentCosts[0].Amount = -5 }},
		{"zero amounts", func(in *models.FeasibilityInput) { in.OperationalCosts[0].Amount = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := baseInput()
			tc.mutate(&in)
			_, err := Analyze(in, DefaultPolicy())
			var verr *analysis.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestAnalyzeZeroProfitDomainError(t *testing.T) {
	// With zero markup the revenue covers exactly the production and
	// operational costs, so annual profit is zero and payback is undefined.
	in := baseInput()
	in.Markup = 0
	_, err := Analyze(in, DefaultPolicy())
	var derr *analysis.DomainError
	if !errors.As(err, &derr) {
		t.Fatalf("expected DomainError, got %v", err)
	}
}

func TestSummaryPlainText(t *testing.T) {
	in := baseInput()
	in.BusinessName = "<b>Mushroom</b> Farm"
	res, err := Analyze(in, DefaultPolicy())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Summary == "" || len(res.Spans) == 0 {
		t.Fatalf("summary missing")
	}
	// The engine must treat the name as opaque text, never wrap it in markup
	// of its own.
	if !strings.Contains(res.Summary, "<b>Mushroom</b> Farm") {
		t.Errorf("business name altered in summary: %q", res.Summary)
	}
	if !strings.Contains(res.Summary, "feasible") {
		t.Errorf("summary missing verdict: %q", res.Summary)
	}
	if !strings.Contains(res.Summary, "break-even point") {
		t.Errorf("summary missing break-even comparison: %q", res.Summary)
	}
}
