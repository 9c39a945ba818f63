package optimize

import (
	"fmt"
	"strings"

	"arina/internal/analysis"
	"arina/internal/domain/models"
)

// buildSummary renders the solve outcome as tagged plain-text spans.
// Formatting only; all numbers come from the already-computed result.
func buildSummary(r models.OptimizationResult) []models.Span {
	if !r.Feasible {
		return []models.Span{{
			Severity: models.SeverityNegative,
			Text:     "The optimization problem is infeasible. Please check your constraints and try again.",
		}}
	}

	spans := []models.Span{{
		Severity: models.SeverityPositive,
		Text:     fmt.Sprintf("Optimization for %q completed successfully.\n\n", r.Name),
	}}

	switch r.Mode {
	case models.ModeProfitMax:
		spans = append(spans, models.Span{Severity: models.SeverityNeutral, Text: fmt.Sprintf(
			"The maximum profit achievable is %s.\n\n", analysis.FormatAmount(r.ObjectiveValue))})
	case models.ModeCostMin:
		spans = append(spans, models.Span{Severity: models.SeverityNeutral, Text: fmt.Sprintf(
			"The minimum cost achievable is %s.\n\n", analysis.FormatAmount(r.ObjectiveValue))})
	case models.ModeGoal:
		satisfied := 0
		for _, g := range r.Goals {
			if g.Deviation == 0 {
				satisfied++
			}
		}
		spans = append(spans, models.Span{Severity: models.SeverityNeutral, Text: fmt.Sprintf(
			"The goal programming solution has been found: %d out of %d goals were fully satisfied.\n\n",
			satisfied, len(r.Goals))})
		if satisfied < len(r.Goals) {
			var b strings.Builder
			b.WriteString("The following goals were not fully satisfied:\n")
			for _, g := range r.Goals {
				if g.Deviation > 0 {
					fmt.Fprintf(&b, "- %s: achieved %s with a deviation of %s\n",
						g.Name, analysis.FormatValue(g.Achievement), analysis.FormatValue(g.Deviation))
				}
			}
			b.WriteString("\n")
			spans = append(spans, models.Span{Severity: models.SeverityNegative, Text: b.String()})
		}
	}

	var b strings.Builder
	b.WriteString("Optimal variable values:\n")
	for _, v := range r.Variables {
		fmt.Fprintf(&b, "- %s: %s\n", v.Name, analysis.FormatValue(v.Value))
	}
	spans = append(spans, models.Span{Severity: models.SeverityNeutral, Text: b.String()})

	var violated []string
	for _, c := range r.Constraints {
		if !c.Satisfied {
			violated = append(violated, c.Name)
		}
	}
	if len(violated) > 0 {
		var w strings.Builder
		w.WriteString("\nWarning: some constraints are not satisfied:\n")
		for _, name := range violated {
			fmt.Fprintf(&w, "- %s\n", name)
		}
		spans = append(spans, models.Span{Severity: models.SeverityNegative, Text: w.String()})
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
