package reconciler

import (
	"fmt"

	"gst-reconciliation-service/internal/mapping"
	"gst-reconciliation-service/internal/matcher"
	"gst-reconciliation-service/internal/models"

	"github.com/shopspring/decimal"
)

// PairComparison is one pairwise sum comparison within a turnover line.
type PairComparison struct {
	SourceX     string          `json:"source_x"`
	SourceY     string          `json:"source_y"`
	AmountX     decimal.Decimal `json:"amount_x"`
	AmountY     decimal.Decimal `json:"amount_y"`
	AbsDiff     decimal.Decimal `json:"abs_diff"`
	PercentDiff float64         `json:"percent_diff"`
	Discrepant  bool            `json:"discrepant"`
}

// String returns a human-readable description of the comparison.
func (p PairComparison) String() string {
	verdict := "ok"
	if p.Discrepant {
		verdict = "discrepant"
	}
	return fmt.Sprintf("%s vs %s: %s vs %s (diff %s) [%s]",
		p.SourceX, p.SourceY, p.AmountX, p.AmountY, p.AbsDiff, verdict)
}

// TurnoverLine is one turnover component compared pairwise across the
// sources that carry it. A component present in fewer than two sources
// is reported, not compared.
type TurnoverLine struct {
	Field string `json:"field"`

	// Amounts maps source name to the component's sum, for the sources
	// that carry the component.
	Amounts map[string]decimal.Decimal `json:"amounts"`

	Pairs []PairComparison `json:"pairs"`

	// MaxAbsDiff is the largest pairwise gap; the severity measure used
	// for ordering turnover discrepancies in reports.
	MaxAbsDiff decimal.Decimal `json:"max_abs_diff"`

	Status LineStatus `json:"status"`
}

// TurnoverResult is the outcome of the three-source turnover variant.
type TurnoverResult struct {
	Lines        []TurnoverLine `json:"lines"`
	Matched      int            `json:"matched"`
	Discrepant   int            `json:"discrepant"`
	ReportedOnly int            `json:"reported_only"`
}

// HasDiscrepancy reports whether any component disagrees across sources.
func (r *TurnoverResult) HasDiscrepancy() bool {
	return r.Discrepant > 0
}

// compareTurnover sums each turnover component in every source that
// carries it and compares each pair of carrying sources under the AND
// tolerance semantics. A line is discrepant as soon as one pair is.
func compareTurnover(m *mapping.Mapping, tableA, tableB, tableC *models.Table, config *matcher.Config) *TurnoverResult {
	type source struct {
		name  string
		table *models.Table
		has   map[string]bool
	}
	sources := []source{
		{m.SourceAName, tableA, headerPresence(tableA)},
		{m.SourceBName, tableB, headerPresence(tableB)},
		{m.SourceCName, tableC, headerPresence(tableC)},
	}

	result := &TurnoverResult{}
	for _, f := range m.Fields {
		if f.Role != mapping.RoleValue {
			continue
		}

		line := TurnoverLine{
			Field:   f.Name,
			Amounts: make(map[string]decimal.Decimal),
		}

		var carrying []source
		for _, s := range sources {
			if s.has[f.Name] {
				carrying = append(carrying, s)
				line.Amounts[s.name] = s.table.SumField(f.Name)
			}
		}

		if len(carrying) < 2 {
			line.Status = LineReportedOnly
			result.ReportedOnly++
			result.Lines = append(result.Lines, line)
			continue
		}

		line.Status = LineMatched
		for i := 0; i < len(carrying); i++ {
			for j := i + 1; j < len(carrying); j++ {
				x, y := carrying[i], carrying[j]
				pair := PairComparison{
					SourceX: x.name,
					SourceY: y.name,
					AmountX: line.Amounts[x.name],
					AmountY: line.Amounts[y.name],
				}
				pair.AbsDiff, pair.PercentDiff = matcher.Difference(pair.AmountX, pair.AmountY)
				pair.Discrepant = config.Material(pair.AbsDiff, pair.PercentDiff)

				if pair.AbsDiff.GreaterThan(line.MaxAbsDiff) {
					line.MaxAbsDiff = pair.AbsDiff
				}
				if pair.Discrepant {
					line.Status = LineDiscrepant
				}
				line.Pairs = append(line.Pairs, pair)
			}
		}

		if line.Status == LineDiscrepant {
			result.Discrepant++
		} else {
			result.Matched++
		}
		result.Lines = append(result.Lines, line)
	}

	return result
}
