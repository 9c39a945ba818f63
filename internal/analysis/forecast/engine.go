// Package forecast implements the demand forecasting engine: simple moving
// average and exponential smoothing projection with back-tested accuracy
// metrics. Exactly one future period is produced per call; the request may
// carry a larger horizon but multi-period recursion is not part of the
// current contract.
package forecast

import (
	"math"
	"strconv"
	"strings"

	"arina/internal/analysis"
	"arina/internal/domain/models"
)

const (
	// MinHistory is the smallest historical series the engine accepts.
	MinHistory = 3
	// Window bounds for the SMA length and the smoothing seed window.
	MinWindow = 2
	MaxWindow = 12
)

// Generate computes the one-step forecast and accuracy metrics for a
// validated input. Pure and deterministic.
func Generate(input models.ForecastInput) (models.ForecastResult, error) {
	var result models.ForecastResult

	if err := validate(input); err != nil {
		return result, err
	}

	data := make([]float64, len(input.HistoricalDemand))
	for i, h := range input.HistoricalDemand {
		data[i] = h.Demand
	}

	var next float64
	switch input.Method {
	case models.MethodSMA:
		next = sma(data[len(data)-input.PeriodLength:])
	case models.MethodExponential:
		smoothed := smooth(data, input.SmoothingFactor, input.PeriodLength)
		lastActual := data[len(data)-1]
		lastSmoothed := smoothed[len(smoothed)-1]
		next = input.SmoothingFactor*lastActual + (1-input.SmoothingFactor)*lastSmoothed
	default:
		// validate already rejected unknown methods
		return result, analysis.Invalid("method", "unknown forecasting method %q", input.Method)
	}

	nextLabel, err := nextPeriodLabel(input.HistoricalDemand[len(input.HistoricalDemand)-1].Period)
	if err != nil {
		return result, err
	}

	actual, fitted := backtest(data, input)
	accuracy := models.ForecastAccuracy{
		MAPE: mape(actual, fitted),
		MAE:  mae(actual, fitted),
	}

	forecasted := []models.ForecastPoint{{Period: nextLabel, Forecast: next}}

	historicalChart := make([]models.ChartPoint, len(input.HistoricalDemand))
	for i, h := range input.HistoricalDemand {
		historicalChart[i] = models.ChartPoint{Period: h.Period, Value: h.Demand}
	}
	forecastChart := make([]models.ChartPoint, len(forecasted))
	for i, f := range forecasted {
		forecastChart[i] = models.ChartPoint{Period: f.Period, Value: f.Forecast}
	}

	result = models.ForecastResult{
		ProductName: input.ProductName,
		Forecasted:  forecasted,
		Accuracy:    accuracy,
		Chart: models.ForecastChart{
			Historical: historicalChart,
			Forecast:   forecastChart,
		},
	}
	return result, nil
}

func validate(input models.ForecastInput) error {
	if !input.Method.Valid() {
		return analysis.Invalid("method", "unknown forecasting method %q", input.Method)
	}
	if len(input.HistoricalDemand) < MinHistory {
		return analysis.Invalid("historicalDemand", "at least %d historical periods are required, got %d",
			MinHistory, len(input.HistoricalDemand))
	}
	for _, h := range input.HistoricalDemand {
		if h.Demand < 0 || math.IsNaN(h.Demand) || math.IsInf(h.Demand, 0) {
			return analysis.Invalid("historicalDemand", "period %q has invalid demand", h.Period)
		}
	}
	if input.PeriodLength < MinWindow || input.PeriodLength > MaxWindow {
		return analysis.Invalid("periodLength", "window must be between %d and %d, got %d",
			MinWindow, MaxWindow, input.PeriodLength)
	}
	if input.PeriodLength > len(input.HistoricalDemand) {
		return analysis.Invalid("periodLength", "window of %d exceeds the %d available periods",
			input.PeriodLength, len(input.HistoricalDemand))
	}
	if input.Method == models.MethodExponential {
		if input.SmoothingFactor < 0 || input.SmoothingFactor > 1 {
			return analysis.Invalid("smoothingFactor", "alpha must be within [0,1], got %v", input.SmoothingFactor)
		}
	}
	return nil
}

func sma(window []float64) float64 {
	var sum float64
	for _, v := range window {
		sum += v
	}
	return sum / float64(len(window))
}

// smooth builds the exponential smoothing series: actuals carried through
// the seed window, an SMA seed at index n-1, then the recurrence
// F[t] = a*D[t-1] + (1-a)*F[t-1].
func smooth(data []float64, alpha float64, n int) []float64 {
	out := make([]float64, len(data))
	copy(out[:n-1], data[:n-1])
	out[n-1] = sma(data[:n])
	for i := n; i < len(data); i++ {
		out[i] = alpha*data[i-1] + (1-alpha)*out[i-1]
	}
	return out
}

// backtest replays the chosen method over the historical series. Points
// before the seed window have no fitted value and are excluded from the
// aligned pair.
func backtest(data []float64, input models.ForecastInput) (actual, fitted []float64) {
	n := input.PeriodLength
	switch input.Method {
	case models.MethodSMA:
		for i := n - 1; i < len(data); i++ {
			actual = append(actual, data[i])
			fitted = append(fitted, sma(data[i-n+1:i+1]))
		}
	case models.MethodExponential:
		smoothed := smooth(data, input.SmoothingFactor, n)
		for i := n - 1; i < len(data); i++ {
			actual = append(actual, data[i])
			fitted = append(fitted, smoothed[i])
		}
	}
	return actual, fitted
}

// mape averages absolute percentage error over points with non-zero actuals.
func mape(actual, fitted []float64) float64 {
	var sum float64
	var count int
	for i := range actual {
		if actual[i] != 0 {
			sum += math.Abs((actual[i] - fitted[i]) / actual[i])
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count) * 100
}

func mae(actual, fitted []float64) float64 {
	if len(actual) == 0 {
		return 0
	}
	var sum float64
	for i := range actual {
		sum += math.Abs(actual[i] - fitted[i])
	}
	return sum / float64(len(actual))
}

// nextPeriodLabel increments the trailing numeral of the last historical
// label. Labels ending without a parseable integer are a caller error; the
// convention is textual, not semantic.
func nextPeriodLabel(last string) (string, error) {
	trimmed := strings.TrimRight(last, " ")
	i := len(trimmed)
	for i > 0 && trimmed[i-1] >= '0' && trimmed[i-1] <= '9' {
		i--
	}
	if i == len(trimmed) {
		return "", analysis.Invalid("historicalDemand", "period label %q does not end in a number", last)
	}
	n, err := strconv.Atoi(trimmed[i:])
	if err != nil {
		return "", analysis.Invalid("historicalDemand", "period label %q does not end in a number", last)
	}
	return "Period " + strconv.Itoa(n+1), nil
}
