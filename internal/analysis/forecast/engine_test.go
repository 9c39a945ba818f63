package forecast

import (
	"errors"
	"math"
	"testing"

	"arina/internal/analysis"
	"arina/internal/domain/models"
)

func series(values ...float64) []models.HistoricalDemand {
	out := make([]models.HistoricalDemand, len(values))
	for i, v := range values {
		out[i] = models.HistoricalDemand{
			ID:     "h" + string(rune('a'+i)),
			Period: "Period " + string(rune('1'+i)),
			Demand: v,
		}
	}
	return out
}

func TestSMAScenario(t *testing.T) {
	res, err := Generate(models.ForecastInput{
		ProductName:      "Chili",
		HistoricalDemand: series(10, 20, 30),
		Method:           models.MethodSMA,
		PeriodLength:     3,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Forecasted) != 1 {
		t.Fatalf("expected a single forecast period, got %d", len(res.Forecasted))
	}
	if res.Forecasted[0].Forecast != 20 {
		t.Fatalf("sma forecast = %v, want 20", res.Forecasted[0].Forecast)
	}
	if res.Forecasted[0].Period != "Period 4" {
		t.Fatalf("forecast period = %q, want \"Period 4\"", res.Forecasted[0].Period)
	}
}

func TestSMAConstantSeries(t *testing.T) {
	res, err := Generate(models.ForecastInput{
		ProductName:      "Rice",
		HistoricalDemand: series(7, 7, 7, 7, 7),
		Method:           models.MethodSMA,
		PeriodLength:     3,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Forecasted[0].Forecast != 7 {
		t.Fatalf("constant series forecast = %v, want 7", res.Forecasted[0].Forecast)
	}
	if res.Accuracy.MAPE != 0 || res.Accuracy.MAE != 0 {
		t.Fatalf("perfect fit should have zero error, got mape=%v mae=%v",
			res.Accuracy.MAPE, res.Accuracy.MAE)
	}
}

func TestExponentialConstantSeries(t *testing.T) {
	for _, alpha := range []float64{0.1, 0.3, 0.5, 0.9} {
		res, err := Generate(models.ForecastInput{
			ProductName:      "Corn",
			HistoricalDemand: series(12, 12, 12, 12, 12, 12),
			Method:           models.MethodExponential,
			SmoothingFactor:  alpha,
			PeriodLength:     3,
		})
		if err != nil {
			t.Fatalf("alpha=%v: unexpected error: %v", alpha, err)
		}
		if math.Abs(res.Forecasted[0].Forecast-12) > 1e-9 {
			t.Fatalf("alpha=%v: constant series forecast = %v, want 12", alpha, res.Forecasted[0].Forecast)
		}
		if res.Accuracy.MAE > 1e-9 {
			t.Fatalf("alpha=%v: mae = %v, want 0", alpha, res.Accuracy.MAE)
		}
	}
}

func TestExponentialRecurrence(t *testing.T) {
	// Seed with SMA(2) of [10,20]=15, then F[2]=0.5*20+0.5*15=17.5,
	// next = 0.5*30+0.5*17.5 = 23.75.
	res, err := Generate(models.ForecastInput{
		ProductName:      "Tomato",
		HistoricalDemand: series(10, 20, 30),
		Method:           models.MethodExponential,
		SmoothingFactor:  0.5,
		PeriodLength:     2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(res.Forecasted[0].Forecast-23.75) > 1e-9 {
		t.Fatalf("forecast = %v, want 23.75", res.Forecasted[0].Forecast)
	}
}

func TestChartSeries(t *testing.T) {
	res, err := Generate(models.ForecastInput{
		ProductName:      "Chili",
		HistoricalDemand: series(10, 20, 30, 40),
		Method:           models.MethodSMA,
		PeriodLength:     2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Chart.Historical) != 4 {
		t.Fatalf("historical chart has %d points, want 4", len(res.Chart.Historical))
	}
	if len(res.Chart.Forecast) != 1 {
		t.Fatalf("forecast chart has %d points, want 1", len(res.Chart.Forecast))
	}
	if res.Chart.Forecast[0].Value != res.Forecasted[0].Forecast {
		t.Fatalf("chart forecast %v diverges from result %v",
			res.Chart.Forecast[0].Value, res.Forecasted[0].Forecast)
	}
}

func TestValidation(t *testing.T) {
	cases := []struct {
		name  string
		input models.ForecastInput
	}{
		{"too few points", models.ForecastInput{
			HistoricalDemand: series(1, 2), Method: models.MethodSMA, PeriodLength: 2}},
		{"alpha above one", models.ForecastInput{
			HistoricalDemand: series(1, 2, 3), Method: models.MethodExponential,
			SmoothingFactor: 1.5, PeriodLength: 2}},
		{"alpha negative", models.ForecastInput{
			HistoricalDemand: series(1, 2, 3), Method: models.MethodExponential,
			SmoothingFactor: -0.1, PeriodLength: 2}},
		{"window exceeds history", models.ForecastInput{
			HistoricalDemand: series(1, 2, 3), Method: models.MethodSMA, PeriodLength: 4}},
		{"window too small", models.ForecastInput{
			HistoricalDemand: series(1, 2, 3), Method: models.MethodSMA, PeriodLength: 1}},
		{"unknown method", models.ForecastInput{
			HistoricalDemand: series(1, 2, 3), Method: "holt_winters", PeriodLength: 2}},
		{"negative demand", models.ForecastInput{
			HistoricalDemand: series(1, -2, 3), Method: models.MethodSMA, PeriodLength: 2}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Generate(tc.input)
			var verr *analysis.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestPeriodLabelConvention(t *testing.T) {
	in := models.ForecastInput{
		ProductName:      "Chili",
		HistoricalDemand: series(10, 20, 30),
		Method:           models.MethodSMA,
		PeriodLength:     3,
	}
	in.HistoricalDemand[2].Period = "Week 12"
	res, err := Generate(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Forecasted[0].Period != "Period 13" {
		t.Fatalf("forecast period = %q, want \"Period 13\"", res.Forecasted[0].Period)
	}

	in.HistoricalDemand[2].Period = "final"
	if _, err := Generate(in); err == nil {
		t.Fatalf("expected error for label without trailing number")
	}
}
