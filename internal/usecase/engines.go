package usecase

import (
	"arina/internal/analysis/feasibility"
	"arina/internal/analysis/forecast"
	"arina/internal/analysis/optimize"
	"arina/internal/domain/models"
	"arina/internal/domain/service"
)

// CalculationEngines is the default Engines implementation. It delegates to
// the pure calculator packages, carrying the feasibility policy as its only
// state.
type CalculationEngines struct {
	policy feasibility.Policy
}

// NewCalculationEngines creates the engine set with the given feasibility
// verdict thresholds.
func NewCalculationEngines(policy feasibility.Policy) *CalculationEngines {
	return &CalculationEngines{policy: policy}
}

func (e *CalculationEngines) AnalyzeFeasibility(input models.FeasibilityInput) (models.FeasibilityResult, error) {
	return feasibility.Analyze(input, e.policy)
}

func (e *CalculationEngines) GenerateForecast(input models.ForecastInput) (models.ForecastResult, error) {
	return forecast.Generate(input)
}

func (e *CalculationEngines) RunOptimization(input models.OptimizationInput) (models.OptimizationResult, error) {
	return optimize.Run(input)
}

var _ service.Engines = (*CalculationEngines)(nil)
