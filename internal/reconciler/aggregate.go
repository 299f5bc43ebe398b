package reconciler

import (
	"fmt"

	"gst-reconciliation-service/internal/mapping"
	"gst-reconciliation-service/internal/matcher"
	"gst-reconciliation-service/internal/models"

	"github.com/shopspring/decimal"
)

// LineStatus classifies one aggregate comparison line.
type LineStatus string

const (
	// LineMatched means the two sums agree within tolerance.
	LineMatched LineStatus = "matched"
	// LineDiscrepant means the sums differ beyond both thresholds.
	LineDiscrepant LineStatus = "discrepant"
	// LineReportedOnly means the field has no counterpart on the other
	// side. Its amount is surfaced but never judged; a missing column
	// must not fabricate a zero-vs-amount discrepancy.
	LineReportedOnly LineStatus = "reported_only"
)

// AggregateLine is one compared field of a summary-table variant.
type AggregateLine struct {
	Field       string          `json:"field"`
	AmountA     decimal.Decimal `json:"amount_a"`
	AmountB     decimal.Decimal `json:"amount_b"`
	AbsDiff     decimal.Decimal `json:"abs_diff"`
	PercentDiff float64         `json:"percent_diff"`
	Status      LineStatus      `json:"status"`
}

// String returns a human-readable description of the line.
func (l AggregateLine) String() string {
	if l.Status == LineReportedOnly {
		return fmt.Sprintf("%s: %s (no counterpart)", l.Field, l.AmountA)
	}
	return fmt.Sprintf("%s: %s vs %s (diff %s, %.2f%%) [%s]",
		l.Field, l.AmountA, l.AmountB, l.AbsDiff, l.PercentDiff, l.Status)
}

// AggregateResult is the outcome of a summary-table reconciliation:
// one line per declared value field, in declaration order.
type AggregateResult struct {
	Lines        []AggregateLine `json:"lines"`
	Matched      int             `json:"matched"`
	Discrepant   int             `json:"discrepant"`
	ReportedOnly int             `json:"reported_only"`
}

// HasDiscrepancy reports whether any line is discrepant.
func (r *AggregateResult) HasDiscrepancy() bool {
	return r.Discrepant > 0
}

// compareAggregate sums each declared value field on both sides and
// judges the difference under the same AND tolerance semantics the
// row-level differ uses. Fields declared without a counterpart column
// (3B tables 3.1(d)/(e) against GSTR-1, the 2B-less ITC rows) become
// reported-only lines.
func compareAggregate(m *mapping.Mapping, tableA, tableB *models.Table, config *matcher.Config) *AggregateResult {
	hasB := headerPresence(tableB)

	result := &AggregateResult{}
	for _, f := range m.Fields {
		if f.Role != mapping.RoleValue {
			continue
		}

		line := AggregateLine{
			Field:   f.Name,
			AmountA: tableA.SumField(f.Name),
		}

		if len(f.SourceB) == 0 || !hasB[f.Name] {
			line.Status = LineReportedOnly
			result.ReportedOnly++
			result.Lines = append(result.Lines, line)
			continue
		}

		line.AmountB = tableB.SumField(f.Name)
		line.AbsDiff, line.PercentDiff = matcher.Difference(line.AmountA, line.AmountB)

		if config.Material(line.AbsDiff, line.PercentDiff) {
			line.Status = LineDiscrepant
			result.Discrepant++
		} else {
			line.Status = LineMatched
			result.Matched++
		}
		result.Lines = append(result.Lines, line)
	}

	return result
}

func headerPresence(t *models.Table) map[string]bool {
	out := make(map[string]bool)
	for _, h := range Headers(t) {
		out[h] = true
	}
	return out
}
