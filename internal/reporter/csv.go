package reporter

import (
	"encoding/csv"
	"fmt"

	"gst-reconciliation-service/internal/mapping"
	"gst-reconciliation-service/internal/models"
	"gst-reconciliation-service/internal/reconciler"
)

// writeCSV renders the outcome as flat CSV rows suitable for loading
// back into a spreadsheet: one row per flagged field difference,
// missing record, or aggregate line.
func (r *Reporter) writeCSV(outcome *reconciler.Outcome) error {
	w := csv.NewWriter(r.config.Writer)

	switch outcome.Granularity {
	case mapping.GranularityRow:
		if err := r.csvRowResult(w, outcome); err != nil {
			return err
		}
	case mapping.GranularityAggregate:
		if err := r.csvAggregateResult(w, outcome.Aggregate); err != nil {
			return err
		}
	case mapping.GranularityThreeSource:
		if err := r.csvTurnoverResult(w, outcome.Turnover); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func (r *Reporter) csvRowResult(w *csv.Writer, outcome *reconciler.Outcome) error {
	header := []string{"status", "key", "strategy", "field", "value_a", "value_b", "abs_diff", "percent_diff"}
	if err := w.Write(header); err != nil {
		return err
	}

	result := outcome.Row
	for _, pair := range sortedMismatches(result) {
		for _, d := range pair.Discrepancies {
			row := []string{"mismatch", pair.Key, pair.Strategy.String(), d.Field, d.ValueA, d.ValueB, "", ""}
			if d.Numeric {
				row[6] = d.AbsDiff.String()
				row[7] = fmt.Sprintf("%.4f", d.PercentDiff)
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}

	if r.config.IncludeMatched {
		for _, pair := range result.Matches {
			if err := w.Write([]string{"match", pair.Key, pair.Strategy.String(), "", "", "", "", ""}); err != nil {
				return err
			}
		}
	}

	cols := reportColumns(outcome.Variant)
	writeMissing := func(status string, records []models.Record, side int) error {
		for _, rec := range records {
			row := []string{status, missingKey(rec, cols), "", "", "", "", "", ""}
			row[side] = missingDescription(rec, cols)
			if err := w.Write(row); err != nil {
				return err
			}
		}
		return nil
	}
	if err := writeMissing("missing_in_b", result.MissingInB, 4); err != nil {
		return err
	}
	return writeMissing("missing_in_a", result.MissingInA, 5)
}

func missingKey(rec models.Record, cols []string) string {
	for _, c := range cols {
		if v, ok := rec.Get(c); ok && v.DisplayString() != "" {
			return v.DisplayString()
		}
	}
	return ""
}

func missingDescription(rec models.Record, cols []string) string {
	out := ""
	for _, c := range cols {
		if v, ok := rec.Get(c); ok {
			if out != "" {
				out += "; "
			}
			out += c + "=" + v.DisplayString()
		}
	}
	return out
}

func (r *Reporter) csvAggregateResult(w *csv.Writer, result *reconciler.AggregateResult) error {
	if err := w.Write([]string{"field", "amount_a", "amount_b", "abs_diff", "percent_diff", "status"}); err != nil {
		return err
	}
	for _, line := range result.Lines {
		row := []string{
			line.Field,
			line.AmountA.String(),
			line.AmountB.String(),
			line.AbsDiff.String(),
			fmt.Sprintf("%.4f", line.PercentDiff),
			string(line.Status),
		}
		if line.Status == reconciler.LineReportedOnly {
			row[2], row[3], row[4] = "", "", ""
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func (r *Reporter) csvTurnoverResult(w *csv.Writer, result *reconciler.TurnoverResult) error {
	if err := w.Write([]string{"field", "source_x", "source_y", "amount_x", "amount_y", "abs_diff", "percent_diff", "status"}); err != nil {
		return err
	}
	for _, line := range result.Lines {
		if len(line.Pairs) == 0 {
			if err := w.Write([]string{line.Field, "", "", "", "", "", "", string(line.Status)}); err != nil {
				return err
			}
			continue
		}
		for _, pair := range line.Pairs {
			verdict := "matched"
			if pair.Discrepant {
				verdict = "discrepant"
			}
			row := []string{
				line.Field,
				pair.SourceX,
				pair.SourceY,
				pair.AmountX.String(),
				pair.AmountY.String(),
				pair.AbsDiff.String(),
				fmt.Sprintf("%.4f", pair.PercentDiff),
				verdict,
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}
	return nil
}
