package reporter

import (
	"fmt"

	"gst-reconciliation-service/internal/mapping"
	"gst-reconciliation-service/internal/models"
	"gst-reconciliation-service/internal/reconciler"
	apperrors "gst-reconciliation-service/pkg/errors"

	"github.com/xuri/excelize/v2"
)

// writeWorkbook exports the outcome as an Excel workbook: a summary
// sheet plus one sheet per result bucket. This is the hand-off format
// for tax teams who continue the follow-up in spreadsheets.
func (r *Reporter) writeWorkbook(outcome *reconciler.Outcome) error {
	if r.config.OutputPath == "" {
		return apperrors.ConfigurationError(apperrors.CodeInvalidConfig,
			"xlsx output requires an output path", nil)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := r.addSummarySheet(f, outcome); err != nil {
		return err
	}

	switch outcome.Granularity {
	case mapping.GranularityRow:
		if err := r.addRowSheets(f, outcome); err != nil {
			return err
		}
	case mapping.GranularityAggregate:
		if err := r.addAggregateSheet(f, outcome.Aggregate); err != nil {
			return err
		}
	case mapping.GranularityThreeSource:
		if err := r.addTurnoverSheet(f, outcome.Turnover); err != nil {
			return err
		}
	}

	// The default sheet excelize creates is replaced by Summary.
	f.DeleteSheet("Sheet1")

	if err := f.SaveAs(r.config.OutputPath); err != nil {
		return apperrors.FileError(apperrors.CodeFilePermission, r.config.OutputPath, err)
	}
	return nil
}

func (r *Reporter) addSummarySheet(f *excelize.File, outcome *reconciler.Outcome) error {
	const sheet = "Summary"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	rows := [][]interface{}{
		{"Variant", outcome.Variant.String()},
		{"Duration", outcome.Duration.String()},
	}

	addStats := func(label string, s *reconciler.SourceStats) {
		if s == nil {
			return
		}
		rows = append(rows,
			[]interface{}{label + " rows", s.RowsKept},
			[]interface{}{label + " unparsable amounts", s.CoercedAmounts},
			[]interface{}{label + " unparsable dates", s.UnknownDates},
		)
	}
	addStats("Source A", outcome.StatsA)
	addStats("Source B", outcome.StatsB)
	addStats("Source C", outcome.StatsC)

	if outcome.Row != nil {
		s := outcome.Row.Summary
		rows = append(rows,
			[]interface{}{"Matched pairs", s.MatchedPairs},
			[]interface{}{"Mismatched pairs", s.MismatchedPairs},
			[]interface{}{"Missing in B", s.MissingInB},
			[]interface{}{"Missing in A", s.MissingInA},
			[]interface{}{"Fuzzy matches", s.FuzzyMatches},
			[]interface{}{"Match percentage", fmt.Sprintf("%.1f%%", s.MatchPercentage)},
		)
	}
	if outcome.Aggregate != nil {
		rows = append(rows,
			[]interface{}{"Matched lines", outcome.Aggregate.Matched},
			[]interface{}{"Discrepant lines", outcome.Aggregate.Discrepant},
			[]interface{}{"Reported-only lines", outcome.Aggregate.ReportedOnly},
		)
	}
	if outcome.Turnover != nil {
		rows = append(rows,
			[]interface{}{"Matched components", outcome.Turnover.Matched},
			[]interface{}{"Discrepant components", outcome.Turnover.Discrepant},
			[]interface{}{"Reported-only components", outcome.Turnover.ReportedOnly},
		)
	}

	return writeRows(f, sheet, rows)
}

func (r *Reporter) addRowSheets(f *excelize.File, outcome *reconciler.Outcome) error {
	result := outcome.Row
	cols := reportColumns(outcome.Variant)

	mismatchRows := [][]interface{}{
		{"Key", "Strategy", "Field", "Value A", "Value B", "Abs Diff", "Percent Diff"},
	}
	for _, pair := range sortedMismatches(result) {
		for _, d := range pair.Discrepancies {
			row := []interface{}{pair.Key, pair.Strategy.String(), d.Field, d.ValueA, d.ValueB, "", ""}
			if d.Numeric {
				row[5] = d.AbsDiff.String()
				row[6] = fmt.Sprintf("%.4f", d.PercentDiff)
			}
			mismatchRows = append(mismatchRows, row)
		}
	}
	if err := addSheet(f, "Mismatches", mismatchRows); err != nil {
		return err
	}

	if err := addSheet(f, "Missing in B", recordRows(result.MissingInB, cols)); err != nil {
		return err
	}
	if err := addSheet(f, "Missing in A", recordRows(result.MissingInA, cols)); err != nil {
		return err
	}

	matchRows := [][]interface{}{{"Key", "Strategy"}}
	for _, pair := range result.Matches {
		matchRows = append(matchRows, []interface{}{pair.Key, pair.Strategy.String()})
	}
	return addSheet(f, "Matches", matchRows)
}

func (r *Reporter) addAggregateSheet(f *excelize.File, result *reconciler.AggregateResult) error {
	rows := [][]interface{}{
		{"Field", "Amount A", "Amount B", "Abs Diff", "Percent Diff", "Status"},
	}
	for _, line := range result.Lines {
		row := []interface{}{
			line.Field, line.AmountA.String(), line.AmountB.String(),
			line.AbsDiff.String(), fmt.Sprintf("%.4f", line.PercentDiff), string(line.Status),
		}
		if line.Status == reconciler.LineReportedOnly {
			row[2], row[3], row[4] = "", "", ""
		}
		rows = append(rows, row)
	}
	return addSheet(f, "Comparison", rows)
}

func (r *Reporter) addTurnoverSheet(f *excelize.File, result *reconciler.TurnoverResult) error {
	rows := [][]interface{}{
		{"Field", "Source X", "Source Y", "Amount X", "Amount Y", "Abs Diff", "Status"},
	}
	for _, line := range result.Lines {
		if len(line.Pairs) == 0 {
			rows = append(rows, []interface{}{line.Field, "", "", "", "", "", string(line.Status)})
			continue
		}
		for _, pair := range line.Pairs {
			verdict := "matched"
			if pair.Discrepant {
				verdict = "discrepant"
			}
			rows = append(rows, []interface{}{
				line.Field, pair.SourceX, pair.SourceY,
				pair.AmountX.String(), pair.AmountY.String(), pair.AbsDiff.String(), verdict,
			})
		}
	}
	return addSheet(f, "Turnover", rows)
}

func recordRows(records []models.Record, cols []string) [][]interface{} {
	header := make([]interface{}, len(cols))
	for i, c := range cols {
		header[i] = c
	}
	rows := [][]interface{}{header}

	for _, rec := range records {
		row := make([]interface{}, len(cols))
		for i, c := range cols {
			if v, ok := rec.Get(c); ok {
				row[i] = v.DisplayString()
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func addSheet(f *excelize.File, name string, rows [][]interface{}) error {
	if _, err := f.NewSheet(name); err != nil {
		return err
	}
	return writeRows(f, name, rows)
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}
