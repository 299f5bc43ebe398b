package matcher

import (
	"fmt"

	"gst-reconciliation-service/internal/mapping"
	"gst-reconciliation-service/internal/models"

	"github.com/shopspring/decimal"
)

// FieldDiff records one flagged difference between the two sides of a
// matched pair.
type FieldDiff struct {
	Field string `json:"field"`

	// Display values for both sides.
	ValueA string `json:"value_a"`
	ValueB string `json:"value_b"`

	// Numeric detail; zero-valued for attribute (text) differences.
	AmountA     decimal.Decimal `json:"amount_a"`
	AmountB     decimal.Decimal `json:"amount_b"`
	AbsDiff     decimal.Decimal `json:"abs_diff"`
	PercentDiff float64         `json:"percent_diff"`

	// Numeric distinguishes tolerance-flagged value fields from
	// exact-equality attribute fields.
	Numeric bool `json:"numeric"`
}

// String returns a human-readable description of the difference.
func (d FieldDiff) String() string {
	if d.Numeric {
		return fmt.Sprintf("%s: %s vs %s (diff %s, %.2f%%)",
			d.Field, d.AmountA, d.AmountB, d.AbsDiff, d.PercentDiff)
	}
	return fmt.Sprintf("%s: '%s' vs '%s'", d.Field, d.ValueA, d.ValueB)
}

// differ compares the declared value and attribute fields of one matched
// pair. It consults the availability report once instead of probing
// records for column existence.
type differ struct {
	valueFields     []string
	attributeFields []string
	config          *Config
}

func newDiffer(res *mapping.Resolved, config *Config) *differ {
	return &differ{
		valueFields:     res.ValueFields,
		attributeFields: res.AttributeFields,
		config:          config,
	}
}

// Compare returns the flagged differences between the two records.
// Numeric fields are flagged only when the difference exceeds both the
// absolute and the relative threshold; attribute fields on any
// inequality after null-to-empty coercion.
func (d *differ) Compare(a, b models.Record) []FieldDiff {
	var diffs []FieldDiff

	for _, field := range d.valueFields {
		// Missing and unparsable values compare as zero, consistent with
		// the normalizer's coercion policy.
		amountA := a.Amount(field)
		amountB := b.Amount(field)

		absDiff, percentDiff := Difference(amountA, amountB)

		if !d.config.Material(absDiff, percentDiff) {
			continue
		}

		diffs = append(diffs, FieldDiff{
			Field:       field,
			ValueA:      amountA.String(),
			ValueB:      amountB.String(),
			AmountA:     amountA,
			AmountB:     amountB,
			AbsDiff:     absDiff,
			PercentDiff: percentDiff,
			Numeric:     true,
		})
	}

	for _, field := range d.attributeFields {
		textA := a.Text(field)
		textB := b.Text(field)
		if textA == textB {
			continue
		}

		diffs = append(diffs, FieldDiff{
			Field:  field,
			ValueA: textA,
			ValueB: textB,
		})
	}

	return diffs
}

// Difference returns the absolute and percentage difference between two
// amounts. The aggregate comparer uses the same measures as the
// row-level differ so a given gap is judged identically at either
// granularity.
func Difference(a, b decimal.Decimal) (decimal.Decimal, float64) {
	absDiff := a.Sub(b).Abs()
	return absDiff, percentDifference(absDiff, a, b)
}

// Material implements the AND semantics: immaterial differences on very
// large bases (small percentage) and rounding noise on small bases
// (small absolute) are both ignored.
func (c *Config) Material(absDiff decimal.Decimal, percentDiff float64) bool {
	if absDiff.LessThanOrEqual(c.AmountThreshold) {
		return false
	}
	return percentDiff > c.PercentageThreshold*100
}

// percentDifference computes abs_diff / max(|a|, |b|, 1) * 100. The
// floor of 1 avoids division by zero when both sides are zero and keeps
// the percentage from exploding when both values are tiny.
func percentDifference(absDiff, a, b decimal.Decimal) float64 {
	base := decimal.Max(a.Abs(), b.Abs(), decimal.NewFromInt(1))
	ratio, _ := absDiff.Div(base).Float64()
	return ratio * 100
}
