// Package feasibility implements the business feasibility engine: cost
// aggregation, unit economics, break-even and profitability ratios computed
// as a pure function of the submitted input.
package feasibility

import (
	"arina/internal/analysis"
	"arina/internal/domain/models"
)

// Policy holds the verdict thresholds. They are business policy, not math,
// so they come from configuration rather than constants in the formulas.
type Policy struct {
	MinROI          float64 `yaml:"min_roi"`
	MaxPaybackYears float64 `yaml:"max_payback_years"`
}

// DefaultPolicy returns the thresholds the original methodology uses:
// a venture is feasible when ROI exceeds 15% and investment is repaid
// within 5 years.
func DefaultPolicy() Policy {
	return Policy{MinROI: 15, MaxPaybackYears: 5}
}

// Analyze computes the full feasibility result for a validated input.
// It is deterministic, performs no I/O and never mutates the input.
func Analyze(input models.FeasibilityInput, policy Policy) (models.FeasibilityResult, error) {
	var result models.FeasibilityResult

	if err := validate(input); err != nil {
		return result, err
	}

	totalInvestment := sumAmounts(input.InvestmentCosts)
	totalOperational := sumAmounts(input.OperationalCosts)

	// Unit cost: production cost plus the operational cost allocated per unit.
	unitCost := input.ProductionCostPerUnit + totalOperational/input.MonthlySalesVolume
	sellingPrice := unitCost * (1 + input.Markup/100)

	margin := sellingPrice - input.ProductionCostPerUnit
	if margin == 0 {
		return result, analysis.Undefined("break-even",
			"selling price equals production cost per unit; contribution margin is zero")
	}
	breakEvenUnits := totalOperational / margin
	breakEvenAmount := breakEvenUnits * sellingPrice

	revenue := input.MonthlySalesVolume * sellingPrice
	monthlyNetProfit := revenue - input.MonthlySalesVolume*input.ProductionCostPerUnit - totalOperational
	annualNetProfit := monthlyNetProfit * 12

	if annualNetProfit == 0 {
		return result, analysis.Undefined("payback",
			"annual net profit is zero; payback period is undefined")
	}

	profitMargin := monthlyNetProfit / revenue * 100
	paybackPeriod := totalInvestment / annualNetProfit
	roi := annualNetProfit / totalInvestment * 100

	// A negative payback (loss-making venture) never passes: the verdict
	// requires the investment to actually be repaid within the window.
	feasible := roi > policy.MinROI && paybackPeriod > 0 && paybackPeriod < policy.MaxPaybackYears

	result = models.FeasibilityResult{
		UnitCost:         unitCost,
		SellingPrice:     sellingPrice,
		BreakEvenUnits:   breakEvenUnits,
		BreakEvenAmount:  breakEvenAmount,
		MonthlyNetProfit: monthlyNetProfit,
		ProfitMargin:     profitMargin,
		PaybackPeriod:    paybackPeriod,
		ROI:              roi,
		Feasible:         feasible,
	}
	result.Spans = buildSummary(input, result)
	result.Summary = joinSpans(result.Spans)

	return result, nil
}

func validate(input models.FeasibilityInput) error {
	if len(input.InvestmentCosts) == 0 {
		return analysis.Invalid("investmentCosts", "at least one investment cost is required")
	}
	if len(input.OperationalCosts) == 0 {
		return analysis.Invalid("operationalCosts", "at least one operational cost is required")
	}
	for _, c := range input.InvestmentCosts {
		if c.Amount < 0 {
			return analysis.Invalid("investmentCosts", "cost %q has negative amount", c.Name)
		}
	}
	for _, c := range input.OperationalCosts {
		if c.Amount < 0 {
			return analysis.Invalid("operationalCosts", "cost %q has negative amount", c.Name)
		}
	}
	if sumAmounts(input.InvestmentCosts) <= 0 {
		return analysis.Invalid("investmentCosts", "total investment must be positive")
	}
	if sumAmounts(input.OperationalCosts) <= 0 {
		return analysis.Invalid("operationalCosts", "total operational cost must be positive")
	}
	if input.MonthlySalesVolume <= 0 {
		return analysis.Invalid("monthlySalesVolume", "sales volume must be positive")
	}
	if input.Markup < 0 {
		return analysis.Invalid("markup", "markup cannot be negative")
	}
	if input.ProductionCostPerUnit < 0 {
		return analysis.Invalid("productionCostPerUnit", "production cost cannot be negative")
	}
	return nil
}

func sumAmounts(costs []models.CostItem) float64 {
	var sum float64
	for _, c := range costs {
		sum += c.Amount
	}
	return sum
}
