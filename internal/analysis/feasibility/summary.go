package feasibility

import (
	"fmt"
	"strings"

	"arina/internal/analysis"
	"arina/internal/domain/models"
)

// buildSummary renders the narrative as tagged plain-text spans. Formatting
// only: every number here was computed by Analyze.
func buildSummary(input models.FeasibilityInput, r models.FeasibilityResult) []models.Span {
	spans := []models.Span{
		{Severity: models.SeverityNeutral,
			Text: fmt.Sprintf("Based on the analysis, this %s venture appears to be ", input.BusinessName)},
	}

	if r.Feasible {
		spans = append(spans,
			models.Span{Severity: models.SeverityPositive, Text: "feasible"},
			models.Span{Severity: models.SeverityNeutral, Text: fmt.Sprintf(
				" with a positive ROI of %s%% and a payback period of %s years. The monthly profit of %s represents a healthy %s%% profit margin.",
				analysis.FormatPercent(r.ROI),
				analysis.FormatRatio(r.PaybackPeriod),
				analysis.FormatAmount(r.MonthlyNetProfit),
				analysis.FormatPercent(r.ProfitMargin))},
		)
	} else {
		spans = append(spans,
			models.Span{Severity: models.SeverityNegative, Text: "not feasible"},
			models.Span{Severity: models.SeverityNeutral, Text: fmt.Sprintf(
				" with the current parameters. The project has a low ROI of %s%% and/or a long payback period of %s years.",
				analysis.FormatPercent(r.ROI),
				analysis.FormatRatio(r.PaybackPeriod))},
		)
	}

	bep := fmt.Sprintf("\n\nThe break-even point of %s units is ", analysis.FormatUnits(r.BreakEvenUnits))
	if r.BreakEvenUnits > input.MonthlySalesVolume {
		spans = append(spans, models.Span{Severity: models.SeverityNegative, Text: bep + fmt.Sprintf(
			"above your projected monthly sales volume of %s units, indicating that you may not reach profitability with your current business plan.",
			analysis.FormatAmount(input.MonthlySalesVolume))})
	} else {
		spans = append(spans, models.Span{Severity: models.SeverityPositive, Text: bep + fmt.Sprintf(
			"below your projected monthly sales volume of %s units, indicating that you should reach profitability with your current business plan.",
			analysis.FormatAmount(input.MonthlySalesVolume))})
	}

	return spans
}

func joinSpans(spans []models.Span) string {
	var b strings.Builder
	for _, s := range spans {
		b.WriteString(s.Text)
	}
	return b.String()
}
