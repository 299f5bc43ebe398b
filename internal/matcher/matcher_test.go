package matcher

import (
	"testing"
	"time"

	"gst-reconciliation-service/internal/mapping"
	"gst-reconciliation-service/internal/models"

	"github.com/shopspring/decimal"
)

func resolveVariant(t *testing.T, v mapping.Variant, headers []string) *mapping.Resolved {
	t.Helper()

	m, err := mapping.Get(v)
	if err != nil {
		t.Fatalf("Get(%s) failed: %v", v, err)
	}
	resolved, err := m.Resolve(headers, headers)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	return resolved
}

func ewayHeaders() []string {
	return []string{
		"Invoice Number", "Invoice Date", "GSTIN/UIN of Recipient",
		"Invoice Value", "Taxable Value", "Tax Rate",
		"HSN Code", "E-Way Bill Number",
	}
}

func invoiceRecord(gstin, number, date string, value float64) models.Record {
	rec := models.Record{
		"GSTIN/UIN of Recipient": models.TextValue(gstin),
		"Invoice Number":         models.TextValue(number),
		"Invoice Value":          models.NumericValue(decimal.NewFromFloat(value)),
	}
	if d, err := time.Parse("2006-01-02", date); err == nil {
		rec["Invoice Date"] = models.DateValue(d)
	} else {
		rec["Invoice Date"] = models.InvalidValue(models.KindDate, date)
	}
	return rec
}

func tableOf(name string, records ...models.Record) *models.Table {
	t := models.NewTable(name)
	for _, r := range records {
		t.Append(r)
	}
	return t
}

func reconcile(t *testing.T, resolved *mapping.Resolved, config *Config, a, b *models.Table) *Result {
	t.Helper()

	engine, err := NewEngine(resolved, config)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	engine.LoadSourceA(a)
	engine.LoadSourceB(b)

	result, err := engine.Reconcile()
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	return result
}

func TestReconcileExactMatch(t *testing.T) {
	resolved := resolveVariant(t, mapping.VariantGSTR1EWay, ewayHeaders())

	a := tableOf("gstr1",
		invoiceRecord("27AAAAA0000A1Z5", "INV-001", "2024-04-10", 1000),
	)
	b := tableOf("eway",
		invoiceRecord("27AAAAA0000A1Z5", "INV-001", "2024-04-10", 1000),
	)

	result := reconcile(t, resolved, DefaultConfig(), a, b)

	if len(result.Matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(result.Matches))
	}
	if result.Matches[0].Strategy != StrategyExact {
		t.Errorf("expected exact strategy, got %s", result.Matches[0].Strategy)
	}
	if result.Matches[0].Fuzzy() {
		t.Error("exact match must not be fuzzy")
	}
	if len(result.Mismatches) != 0 || len(result.MissingInA) != 0 || len(result.MissingInB) != 0 {
		t.Errorf("unexpected non-empty buckets: %d mismatches, %d missing in A, %d missing in B",
			len(result.Mismatches), len(result.MissingInA), len(result.MissingInB))
	}
}

func TestReconcileToleranceSemantics(t *testing.T) {
	tests := []struct {
		name       string
		valueA     float64
		valueB     float64
		wantStatus string
	}{
		// Difference of 5 on a base of 1005: above the absolute
		// threshold but only 0.5% relative, so the pair stays clean.
		{"small relative difference", 1000, 1005, "match"},
		// Difference of 15: 1.48% relative, beyond both thresholds.
		{"material difference", 1000, 1015, "mismatch"},
		// Difference of exactly 1 never flags, whatever the base.
		{"at absolute threshold", 50, 51, "match"},
		{"identical", 1000, 1000, "match"},
	}

	resolved := resolveVariant(t, mapping.VariantGSTR1EWay, ewayHeaders())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := tableOf("gstr1",
				invoiceRecord("27AAAAA0000A1Z5", "INV-001", "2024-04-10", tt.valueA))
			b := tableOf("eway",
				invoiceRecord("27AAAAA0000A1Z5", "INV-001", "2024-04-10", tt.valueB))

			result := reconcile(t, resolved, DefaultConfig(), a, b)

			switch tt.wantStatus {
			case "match":
				if len(result.Matches) != 1 || len(result.Mismatches) != 0 {
					t.Errorf("expected clean match, got %d matches, %d mismatches",
						len(result.Matches), len(result.Mismatches))
				}
			case "mismatch":
				if len(result.Mismatches) != 1 {
					t.Fatalf("expected 1 mismatch, got %d", len(result.Mismatches))
				}
				diffs := result.Mismatches[0].Discrepancies
				if len(diffs) != 1 || diffs[0].Field != "Invoice Value" {
					t.Errorf("expected one Invoice Value discrepancy, got %v", diffs)
				}
			}
		})
	}
}

func TestReconcileMissingRecords(t *testing.T) {
	resolved := resolveVariant(t, mapping.VariantGSTR1EWay, ewayHeaders())

	a := tableOf("gstr1",
		invoiceRecord("27AAAAA0000A1Z5", "INV-001", "2024-04-10", 1000),
		invoiceRecord("27AAAAA0000A1Z5", "INV-002", "2024-04-11", 2000),
	)
	b := tableOf("eway",
		invoiceRecord("27AAAAA0000A1Z5", "INV-001", "2024-04-10", 1000),
		invoiceRecord("27AAAAA0000A1Z5", "INV-999", "2024-04-12", 3000),
	)

	result := reconcile(t, resolved, DefaultConfig(), a, b)

	if len(result.Matches) != 1 {
		t.Errorf("expected 1 match, got %d", len(result.Matches))
	}
	if len(result.MissingInB) != 1 || result.MissingInB[0].Text("Invoice Number") != "INV-002" {
		t.Errorf("expected INV-002 missing in B, got %v", result.MissingInB)
	}
	if len(result.MissingInA) != 1 || result.MissingInA[0].Text("Invoice Number") != "INV-999" {
		t.Errorf("expected INV-999 missing in A, got %v", result.MissingInA)
	}
}

// Every input record must land in exactly one result bucket.
func TestReconcilePartitionCompleteness(t *testing.T) {
	resolved := resolveVariant(t, mapping.VariantGSTR1EWay, ewayHeaders())

	a := tableOf("gstr1",
		invoiceRecord("27AAAAA0000A1Z5", "INV-001", "2024-04-10", 1000),
		invoiceRecord("27AAAAA0000A1Z5", "INV-002", "2024-04-11", 2000),
		invoiceRecord("29BBBBB0000B1Z5", "INV-003", "2024-04-12", 3000),
		invoiceRecord("29BBBBB0000B1Z5", "INV-004", "2024-04-13", 4000),
	)
	b := tableOf("eway",
		invoiceRecord("27AAAAA0000A1Z5", "INV-001", "2024-04-10", 1000),
		invoiceRecord("27AAAAA0000A1Z5", "INV-002", "2024-04-11", 2500),
		invoiceRecord("33CCCCC0000C1Z5", "INV-005", "2024-04-14", 5000),
	)

	result := reconcile(t, resolved, DefaultConfig(), a, b)

	pairCount := len(result.Matches) + len(result.Mismatches)
	gotA := pairCount + len(result.MissingInB)
	gotB := pairCount + len(result.MissingInA)
	if gotA != a.Len() {
		t.Errorf("source A records not partitioned: %d buckets for %d records", gotA, a.Len())
	}
	if gotB != b.Len() {
		t.Errorf("source B records not partitioned: %d buckets for %d records", gotB, b.Len())
	}
}

// Duplicate keys pair first-available in source order, and a consumed
// record never pairs twice.
func TestReconcileDuplicateKeys(t *testing.T) {
	resolved := resolveVariant(t, mapping.VariantGSTR1EWay, ewayHeaders())

	a := tableOf("gstr1",
		invoiceRecord("27AAAAA0000A1Z5", "INV-001", "2024-04-10", 1000),
		invoiceRecord("27AAAAA0000A1Z5", "INV-001", "2024-04-10", 1000),
	)
	b := tableOf("eway",
		invoiceRecord("27AAAAA0000A1Z5", "INV-001", "2024-04-10", 1000),
	)

	result := reconcile(t, resolved, DefaultConfig(), a, b)

	if got := len(result.Matches); got != 1 {
		t.Errorf("expected 1 match, got %d", got)
	}
	if got := len(result.MissingInB); got != 1 {
		t.Errorf("expected 1 leftover A record, got %d", got)
	}
}

// The same inputs must always produce the same outcome.
func TestReconcileDeterministic(t *testing.T) {
	resolved := resolveVariant(t, mapping.VariantGSTR1EWay, ewayHeaders())

	build := func() (*models.Table, *models.Table) {
		a := tableOf("gstr1",
			invoiceRecord("27AAAAA0000A1Z5", "INV-001", "2024-04-10", 1000),
			invoiceRecord("27AAAAA0000A1Z5", "INV-002", "2024-04-11", 2000),
			invoiceRecord("29BBBBB0000B1Z5", "SI-2024-00045", "2024-04-12", 3000),
		)
		b := tableOf("eway",
			invoiceRecord("27AAAAA0000A1Z5", "INV-001", "2024-04-10", 1000),
			invoiceRecord("29BBBBB0000B1Z5", "INV00045", "2024-04-12", 3000),
		)
		return a, b
	}

	a1, b1 := build()
	first := reconcile(t, resolved, DefaultConfig(), a1, b1)
	a2, b2 := build()
	second := reconcile(t, resolved, DefaultConfig(), a2, b2)

	if first.Summary.MatchedPairs != second.Summary.MatchedPairs ||
		first.Summary.MismatchedPairs != second.Summary.MismatchedPairs ||
		first.Summary.MissingInA != second.Summary.MissingInA ||
		first.Summary.MissingInB != second.Summary.MissingInB {
		t.Errorf("non-deterministic outcome: %+v vs %+v", first.Summary, second.Summary)
	}
	if len(first.Matches) != len(second.Matches) {
		t.Fatalf("match counts differ between runs: %d vs %d", len(first.Matches), len(second.Matches))
	}
	for i := range first.Matches {
		if first.Matches[i].Key != second.Matches[i].Key ||
			first.Matches[i].Strategy != second.Matches[i].Strategy {
			t.Errorf("match %d differs between runs", i)
		}
	}
}

// A messy transport-document number must fall through the cascade:
// "SI-2024-00045" and "INV00045" share the numeric core "00045".
func TestReconcileFallbackCascade(t *testing.T) {
	resolved := resolveVariant(t, mapping.VariantGSTR1EWay, ewayHeaders())

	a := tableOf("gstr1",
		invoiceRecord("27AAAAA0000A1Z5", "SI-2024-00045", "2024-04-10", 5000),
	)
	b := tableOf("eway",
		invoiceRecord("27AAAAA0000A1Z5", "INV00045", "2024-04-10", 5000),
	)

	result := reconcile(t, resolved, DefaultConfig(), a, b)

	if len(result.Matches) != 1 {
		t.Fatalf("expected 1 match, got %d (missing A=%d B=%d)",
			len(result.Matches), len(result.MissingInA), len(result.MissingInB))
	}
	if got := result.Matches[0].Strategy; got != StrategyNumericOnly {
		t.Errorf("expected numeric_only strategy, got %s", got)
	}
}

// Prefix variants of the same document number pair on the normalized
// text key, one cascade step before the numeric core.
func TestReconcileNormalizedTextKey(t *testing.T) {
	resolved := resolveVariant(t, mapping.VariantGSTR1EWay, ewayHeaders())

	a := tableOf("gstr1",
		invoiceRecord("27AAAAA0000A1Z5", "INV-2024/00045", "2024-04-10", 5000),
	)
	b := tableOf("eway",
		invoiceRecord("27AAAAA0000A1Z5", "inv 202400045", "2024-04-10", 5000),
	)

	result := reconcile(t, resolved, DefaultConfig(), a, b)

	if len(result.Matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(result.Matches))
	}
	if got := result.Matches[0].Strategy; got != StrategyNormalizedText {
		t.Errorf("expected normalized_text strategy, got %s", got)
	}
}

func TestReconcileAmountSimilarityFallback(t *testing.T) {
	resolved := resolveVariant(t, mapping.VariantGSTR1EWay, ewayHeaders())

	// Unrelated document numbers, same counterparty, values Rs. 4 apart.
	a := tableOf("gstr1",
		invoiceRecord("27AAAAA0000A1Z5", "ALPHA", "2024-04-10", 7500),
	)
	b := tableOf("eway",
		invoiceRecord("27AAAAA0000A1Z5", "OMEGA", "2024-04-11", 7504),
	)

	result := reconcile(t, resolved, DefaultConfig(), a, b)

	if len(result.Matches) != 1 {
		t.Fatalf("expected 1 fuzzy match, got %d", len(result.Matches))
	}
	pair := result.Matches[0]
	if pair.Strategy != StrategyAmountSimilarity {
		t.Errorf("expected amount_similarity strategy, got %s", pair.Strategy)
	}
	if !pair.Fuzzy() {
		t.Error("amount-similarity match must be flagged fuzzy")
	}
	if result.Summary.FuzzyMatches != 1 {
		t.Errorf("expected 1 fuzzy match in summary, got %d", result.Summary.FuzzyMatches)
	}
}

func TestReconcileAmountSimilarityRespectsCounterparty(t *testing.T) {
	resolved := resolveVariant(t, mapping.VariantGSTR1EWay, ewayHeaders())

	// Same value but different counterparties: never paired.
	a := tableOf("gstr1",
		invoiceRecord("27AAAAA0000A1Z5", "ALPHA", "2024-04-10", 7500),
	)
	b := tableOf("eway",
		invoiceRecord("29BBBBB0000B1Z5", "OMEGA", "2024-04-10", 7500),
	)

	result := reconcile(t, resolved, DefaultConfig(), a, b)

	if len(result.Matches) != 0 {
		t.Errorf("expected no matches across counterparties, got %d", len(result.Matches))
	}
}

// Variants without fallbacks enabled must stay on exact keys: the books
// variants treat a renumbered invoice as two one-sided records.
func TestReconcileExactOnlyVariant(t *testing.T) {
	headers := []string{
		"GSTIN/UIN of Recipient", "Invoice Number", "Invoice Date",
		"Invoice Value", "Taxable Value",
	}
	resolved := resolveVariant(t, mapping.VariantGSTR1Books, headers)

	a := tableOf("gstr1",
		invoiceRecord("27AAAAA0000A1Z5", "SI-2024-00045", "2024-04-10", 5000),
	)
	b := tableOf("books",
		invoiceRecord("27AAAAA0000A1Z5", "INV00045", "2024-04-10", 5000),
	)

	result := reconcile(t, resolved, DefaultConfig(), a, b)

	if len(result.Matches) != 0 {
		t.Errorf("exact-only variant must not fall back, got %d matches", len(result.Matches))
	}
	if len(result.MissingInA) != 1 || len(result.MissingInB) != 1 {
		t.Errorf("expected one-sided records, got missing A=%d B=%d",
			len(result.MissingInA), len(result.MissingInB))
	}
}

func TestReconcileSummary(t *testing.T) {
	resolved := resolveVariant(t, mapping.VariantGSTR1EWay, ewayHeaders())

	a := tableOf("gstr1",
		invoiceRecord("27AAAAA0000A1Z5", "INV-001", "2024-04-10", 1000),
		invoiceRecord("27AAAAA0000A1Z5", "INV-002", "2024-04-11", 2000),
	)
	b := tableOf("eway",
		invoiceRecord("27AAAAA0000A1Z5", "INV-001", "2024-04-10", 1000),
	)

	result := reconcile(t, resolved, DefaultConfig(), a, b)
	s := result.Summary

	if s.TotalSourceA != 2 || s.TotalSourceB != 1 {
		t.Errorf("wrong totals: A=%d B=%d", s.TotalSourceA, s.TotalSourceB)
	}
	if s.MatchedPairs != 1 || s.MissingInB != 1 {
		t.Errorf("wrong counts: matched=%d missingInB=%d", s.MatchedPairs, s.MissingInB)
	}
	// One pair out of three records: 2/3 of all records are matched.
	if s.MatchPercentage < 66.0 || s.MatchPercentage > 67.0 {
		t.Errorf("expected match percentage near 66.7, got %.2f", s.MatchPercentage)
	}

	total, ok := s.FieldTotals["Invoice Value"]
	if !ok {
		t.Fatal("missing Invoice Value field total")
	}
	if !total.SourceA.Equal(decimal.NewFromInt(3000)) {
		t.Errorf("expected source A total 3000, got %s", total.SourceA)
	}
	if !total.Difference.Equal(decimal.NewFromInt(2000)) {
		t.Errorf("expected difference 2000, got %s", total.Difference)
	}
}

func TestNewEngineValidation(t *testing.T) {
	resolved := resolveVariant(t, mapping.VariantGSTR1EWay, ewayHeaders())

	if _, err := NewEngine(nil, DefaultConfig()); err == nil {
		t.Error("expected error for nil resolved mapping")
	}

	bad := DefaultConfig()
	bad.PercentageThreshold = 1.5
	if _, err := NewEngine(resolved, bad); err == nil {
		t.Error("expected error for invalid config")
	}

	engine, err := NewEngine(resolved, nil)
	if err != nil {
		t.Fatalf("nil config should select defaults: %v", err)
	}
	if _, err := engine.Reconcile(); err == nil {
		t.Error("expected error reconciling before loading tables")
	}
}
