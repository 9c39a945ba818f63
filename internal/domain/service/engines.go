package service

import "arina/internal/domain/models"

// Engines groups the three calculators behind one interface so the HTTP and
// recording layers can be tested against stubs. Implementations must be pure:
// same input, same result, no I/O.
type Engines interface {
	AnalyzeFeasibility(input models.FeasibilityInput) (models.FeasibilityResult, error)
	GenerateForecast(input models.ForecastInput) (models.ForecastResult, error)
	RunOptimization(input models.OptimizationInput) (models.OptimizationResult, error)
}
