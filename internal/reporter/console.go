package reporter

import (
	"fmt"
	"io"
	"strings"

	"gst-reconciliation-service/internal/mapping"
	"gst-reconciliation-service/internal/matcher"
	"gst-reconciliation-service/internal/models"
	"gst-reconciliation-service/internal/reconciler"
)

func (r *Reporter) writeConsole(outcome *reconciler.Outcome) error {
	w := r.config.Writer

	fmt.Fprintf(w, "Reconciliation Report: %s\n", outcome.Variant)
	fmt.Fprintf(w, "%s\n\n", strings.Repeat("=", 50))

	r.printSourceStats(outcome)

	switch outcome.Granularity {
	case mapping.GranularityRow:
		r.printRowResult(outcome)
	case mapping.GranularityAggregate:
		r.printAggregateResult(outcome.Aggregate)
	case mapping.GranularityThreeSource:
		r.printTurnoverResult(outcome.Turnover)
	}

	fmt.Fprintf(w, "\nCompleted in %s\n", outcome.Duration.Round(0))
	return nil
}

func (r *Reporter) printSourceStats(outcome *reconciler.Outcome) {
	w := r.config.Writer

	print := func(label string, s *reconciler.SourceStats) {
		if s == nil {
			return
		}
		fmt.Fprintf(w, "%-10s %d rows", label, s.RowsKept)
		if s.FilteredByDate > 0 {
			fmt.Fprintf(w, " (%d outside date range)", s.FilteredByDate)
		}
		if s.CoercedAmounts > 0 {
			fmt.Fprintf(w, ", %d unparsable amounts treated as zero", s.CoercedAmounts)
		}
		if s.UnknownDates > 0 {
			fmt.Fprintf(w, ", %d unparsable dates", s.UnknownDates)
		}
		fmt.Fprintln(w)
	}

	print("Source A:", outcome.StatsA)
	print("Source B:", outcome.StatsB)
	print("Source C:", outcome.StatsC)

	if len(outcome.SkippedFields) > 0 {
		fmt.Fprintf(w, "Skipped fields (missing from a source): %s\n",
			strings.Join(outcome.SkippedFields, ", "))
	}
	fmt.Fprintln(w)
}

func (r *Reporter) printRowResult(outcome *reconciler.Outcome) {
	w := r.config.Writer
	result := outcome.Row
	s := result.Summary

	fmt.Fprintf(w, "Matched:        %d pairs", s.MatchedPairs)
	if s.FuzzyMatches > 0 {
		fmt.Fprintf(w, " (%d fuzzy)", s.FuzzyMatches)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Mismatched:     %d pairs\n", s.MismatchedPairs)
	fmt.Fprintf(w, "Missing in B:   %d records\n", s.MissingInB)
	fmt.Fprintf(w, "Missing in A:   %d records\n", s.MissingInA)
	fmt.Fprintf(w, "Match rate:     %.1f%%\n", s.MatchPercentage)

	if len(s.FieldTotals) > 0 {
		fmt.Fprintf(w, "\nField totals:\n")
		for _, field := range fieldTotalOrder(outcome) {
			t, ok := s.FieldTotals[field]
			if !ok {
				continue
			}
			fmt.Fprintf(w, "  %-25s %15s | %15s | diff %s\n",
				field, t.SourceA, t.SourceB, t.Difference)
		}
	}

	if s.MismatchedPairs > 0 {
		fmt.Fprintf(w, "\nMismatches (largest difference first):\n")
		r.printMismatches(result)
	}

	r.printMissing(w, "Missing in B (present only in source A):", result.MissingInB, outcome.Variant)
	r.printMissing(w, "Missing in A (present only in source B):", result.MissingInA, outcome.Variant)

	if r.config.IncludeMatched && len(result.Matches) > 0 {
		fmt.Fprintf(w, "\nClean matches:\n")
		for i, pair := range result.Matches {
			if r.truncated(w, i, len(result.Matches)) {
				break
			}
			fmt.Fprintf(w, "  %s [%s]\n", pair.Key, pair.Strategy)
		}
	}
}

func (r *Reporter) printMismatches(result *matcher.Result) {
	w := r.config.Writer
	pairs := sortedMismatches(result)
	for i, pair := range pairs {
		if r.truncated(w, i, len(pairs)) {
			break
		}
		fmt.Fprintf(w, "  %s [%s]\n", pair.Key, pair.Strategy)
		for _, d := range pair.Discrepancies {
			fmt.Fprintf(w, "    %s\n", d)
		}
	}
}

func (r *Reporter) printMissing(w io.Writer, title string, records []models.Record, variant mapping.Variant) {
	if len(records) == 0 {
		return
	}
	cols := reportColumns(variant)

	fmt.Fprintf(w, "\n%s\n", title)
	for i, rec := range records {
		if r.truncated(w, i, len(records)) {
			break
		}
		parts := make([]string, 0, len(cols))
		for _, c := range cols {
			if v, ok := rec.Get(c); ok {
				parts = append(parts, fmt.Sprintf("%s=%s", c, v.DisplayString()))
			}
		}
		fmt.Fprintf(w, "  %s\n", strings.Join(parts, ", "))
	}
}

func (r *Reporter) truncated(w io.Writer, index, total int) bool {
	if r.config.MaxDetailRows > 0 && index >= r.config.MaxDetailRows {
		fmt.Fprintf(w, "  ... and %d more\n", total-index)
		return true
	}
	return false
}

func (r *Reporter) printAggregateResult(result *reconciler.AggregateResult) {
	w := r.config.Writer

	fmt.Fprintf(w, "Matched:        %d lines\n", result.Matched)
	fmt.Fprintf(w, "Discrepant:     %d lines\n", result.Discrepant)
	fmt.Fprintf(w, "Reported only:  %d lines\n\n", result.ReportedOnly)

	for _, line := range result.Lines {
		fmt.Fprintf(w, "  %s\n", line)
	}
}

func (r *Reporter) printTurnoverResult(result *reconciler.TurnoverResult) {
	w := r.config.Writer

	fmt.Fprintf(w, "Matched:        %d components\n", result.Matched)
	fmt.Fprintf(w, "Discrepant:     %d components\n", result.Discrepant)
	fmt.Fprintf(w, "Reported only:  %d components\n\n", result.ReportedOnly)

	for _, line := range result.Lines {
		fmt.Fprintf(w, "  %s [%s]\n", line.Field, line.Status)
		for _, pair := range line.Pairs {
			fmt.Fprintf(w, "    %s\n", pair)
		}
	}
}

// fieldTotalOrder returns the value fields in mapping declaration order
// so console output is stable across runs.
func fieldTotalOrder(outcome *reconciler.Outcome) []string {
	m, err := mapping.Get(outcome.Variant)
	if err != nil {
		return nil
	}
	return m.ValueFields()
}
