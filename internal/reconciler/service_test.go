package reconciler

import (
	"context"
	"testing"
	"time"

	"gst-reconciliation-service/internal/mapping"
	"gst-reconciliation-service/internal/matcher"
	apperrors "gst-reconciliation-service/pkg/errors"

	"github.com/shopspring/decimal"
)

func TestServiceRowReconciliation(t *testing.T) {
	a := rawTable("gstr1",
		map[string]string{
			"GSTIN/UIN of Recipient": "27AAAAA0000A1Z5",
			"Invoice Number":         "INV-001",
			"Invoice Date":           "2024-04-10",
			"Invoice Value":          "1180",
			"Taxable Value":          "1000",
		},
		map[string]string{
			"GSTIN/UIN of Recipient": "27AAAAA0000A1Z5",
			"Invoice Number":         "INV-002",
			"Invoice Date":           "2024-04-11",
			"Invoice Value":          "2360",
			"Taxable Value":          "2000",
		},
	)
	// Register vocabulary: renamed by the normalizer, one amount off by
	// a material margin.
	b := rawTable("register",
		map[string]string{
			"Customer GSTIN": "27AAAAA0000A1Z5",
			"Invoice No.":    "INV-001",
			"Invoice Date":   "2024-04-10",
			"Invoice Value":  "1180",
			"Taxable Value":  "1000",
		},
		map[string]string{
			"Customer GSTIN": "27AAAAA0000A1Z5",
			"Invoice No.":    "INV-002",
			"Invoice Date":   "2024-04-11",
			"Invoice Value":  "2460",
			"Taxable Value":  "2000",
		},
	)

	service := NewService(nil)
	outcome, err := service.Reconcile(context.Background(), a, b, nil, Options{
		Variant: mapping.VariantGSTR1Books,
	})
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}

	if outcome.Row == nil {
		t.Fatal("expected a row-level result")
	}
	s := outcome.Row.Summary
	if s.MatchedPairs != 1 || s.MismatchedPairs != 1 {
		t.Errorf("expected 1 match and 1 mismatch, got %d and %d",
			s.MatchedPairs, s.MismatchedPairs)
	}
	if len(outcome.Row.Mismatches) == 1 {
		diffs := outcome.Row.Mismatches[0].Discrepancies
		if len(diffs) != 1 || diffs[0].Field != "Invoice Value" {
			t.Errorf("expected Invoice Value discrepancy, got %v", diffs)
		}
		if !diffs[0].AbsDiff.Equal(decimal.NewFromInt(100)) {
			t.Errorf("expected abs diff 100, got %s", diffs[0].AbsDiff)
		}
	}
}

// A date range that excludes every row of one source is a legal
// outcome, not a configuration error: the call still completes and the
// other side's records all land in a missing bucket.
func TestServiceDateFilterEmptiesOneSource(t *testing.T) {
	a := rawTable("gstr1", map[string]string{
		"GSTIN/UIN of Recipient": "27AAAAA0000A1Z5",
		"Invoice Number":         "INV-001",
		"Invoice Date":           "2023-11-20",
		"Invoice Value":          "1180",
	})
	b := rawTable("register", map[string]string{
		"Customer GSTIN": "27AAAAA0000A1Z5",
		"Invoice No.":    "INV-002",
		"Invoice Date":   "2024-04-10",
		"Invoice Value":  "2360",
	})

	from, _ := time.Parse("2006-01-02", "2024-04-01")
	to, _ := time.Parse("2006-01-02", "2024-06-30")

	service := NewService(nil)
	outcome, err := service.Reconcile(context.Background(), a, b, nil, Options{
		Variant: mapping.VariantGSTR1Books,
		Dates:   DateRange{From: from, To: to},
	})
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}

	if outcome.StatsA.RowsKept != 0 || outcome.StatsA.FilteredByDate != 1 {
		t.Errorf("source A should be fully filtered: %+v", outcome.StatsA)
	}
	s := outcome.Row.Summary
	if s.MatchedPairs != 0 || s.MismatchedPairs != 0 {
		t.Errorf("no pairs expected, got %d matched and %d mismatched",
			s.MatchedPairs, s.MismatchedPairs)
	}
	if s.MissingInA != 1 || s.MissingInB != 0 {
		t.Errorf("expected the register row in missing_in_a: %+v", s)
	}
}

func TestServiceMissingKeyColumnFails(t *testing.T) {
	a := rawTable("gstr1", map[string]string{
		"Invoice Number": "INV-001",
		"Invoice Date":   "2024-04-10",
		"Invoice Value":  "1180",
	})
	b := rawTable("register", map[string]string{
		"Customer GSTIN": "27AAAAA0000A1Z5",
		"Invoice No.":    "INV-001",
		"Invoice Date":   "2024-04-10",
		"Invoice Value":  "1180",
	})

	service := NewService(nil)
	_, err := service.Reconcile(context.Background(), a, b, nil, Options{
		Variant: mapping.VariantGSTR1Books,
	})
	if err == nil {
		t.Fatal("expected configuration error for missing key column")
	}
	if !apperrors.IsConfiguration(err) {
		t.Errorf("expected configuration category, got %v", err)
	}
}

func TestServiceInvalidThresholdsFail(t *testing.T) {
	a := rawTable("gstr1", map[string]string{"Invoice Number": "INV-001"})
	b := rawTable("register", map[string]string{"Invoice No.": "INV-001"})

	bad := matcher.DefaultConfig()
	bad.PercentageThreshold = 2.0

	service := NewService(nil)
	_, err := service.Reconcile(context.Background(), a, b, nil, Options{
		Variant:       mapping.VariantGSTR1Books,
		MatcherConfig: bad,
	})
	if err == nil {
		t.Fatal("expected error for invalid thresholds")
	}
	if !apperrors.IsConfiguration(err) {
		t.Errorf("expected configuration category, got %v", err)
	}
}

func TestServiceAggregateReconciliation(t *testing.T) {
	a := rawTable("gstr3b", map[string]string{
		"Table 3.1":             "118000",
		"Table 3.1(a)":          "100000",
		"Integrated Tax Amount": "18000",
	})
	b := rawTable("books", map[string]string{
		"Output Tax Ledger":           "118000",
		"Regular Supplies Output Tax": "100000",
		"IGST Output":                 "19000",
	})

	service := NewService(nil)
	outcome, err := service.Reconcile(context.Background(), a, b, nil, Options{
		Variant: mapping.VariantGSTR3BBooks,
	})
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}

	result := outcome.Aggregate
	if result == nil {
		t.Fatal("expected an aggregate result")
	}

	byField := make(map[string]AggregateLine)
	for _, line := range result.Lines {
		byField[line.Field] = line
	}

	if line := byField["Table 3.1"]; line.Status != LineMatched {
		t.Errorf("Table 3.1 should match, got %s", line.Status)
	}
	line := byField["Integrated Tax Amount"]
	if line.Status != LineDiscrepant {
		t.Errorf("IGST line should be discrepant, got %s", line.Status)
	}
	if !line.AbsDiff.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("expected abs diff 1000, got %s", line.AbsDiff)
	}
	if !result.HasDiscrepancy() {
		t.Error("result should report a discrepancy")
	}
}

// 3B tables with no GSTR-1 counterpart are surfaced, never judged
// against a fabricated zero.
func TestServiceAggregateReportedOnly(t *testing.T) {
	a := rawTable("gstr3b", map[string]string{
		"Table 3.1(b)": "50000",
		"Table 3.1(d)": "7500",
	})
	b := rawTable("gstr1", map[string]string{
		"Table 6: Zero rated supplies": "50000",
	})

	service := NewService(nil)
	outcome, err := service.Reconcile(context.Background(), a, b, nil, Options{
		Variant: mapping.VariantGSTR3BGSTR1,
	})
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}

	var reported *AggregateLine
	for i, line := range outcome.Aggregate.Lines {
		if line.Field == "Table 3.1(d)" {
			reported = &outcome.Aggregate.Lines[i]
		}
	}
	if reported == nil {
		t.Fatal("Table 3.1(d) line missing")
	}
	if reported.Status != LineReportedOnly {
		t.Errorf("expected reported_only, got %s", reported.Status)
	}
	if !reported.AmountA.Equal(decimal.NewFromInt(7500)) {
		t.Errorf("expected amount 7500, got %s", reported.AmountA)
	}
}

func TestServiceTurnoverReconciliation(t *testing.T) {
	a := rawTable("books",
		map[string]string{"Total Sales": "1000000", "Taxable Turnover": "800000"},
	)
	b := rawTable("returns",
		map[string]string{"Annual Aggregate Turnover": "1000000", "Taxable Turnover": "800000"},
	)
	c := rawTable("financials",
		map[string]string{
			"Revenue from Operations": "1050000",
			"Taxable Revenue":         "800000",
			"Other Income":            "25000",
		},
	)

	service := NewService(nil)
	outcome, err := service.Reconcile(context.Background(), a, b, c, Options{
		Variant: mapping.VariantTurnover,
	})
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}

	result := outcome.Turnover
	if result == nil {
		t.Fatal("expected a turnover result")
	}

	byField := make(map[string]TurnoverLine)
	for _, line := range result.Lines {
		byField[line.Field] = line
	}

	sales := byField["Total Sales"]
	if sales.Status != LineDiscrepant {
		t.Errorf("Total Sales should be discrepant, got %s", sales.Status)
	}
	if len(sales.Pairs) != 3 {
		t.Errorf("expected 3 pairwise comparisons, got %d", len(sales.Pairs))
	}
	if !sales.MaxAbsDiff.Equal(decimal.NewFromInt(50000)) {
		t.Errorf("expected max gap 50000, got %s", sales.MaxAbsDiff)
	}

	if taxable := byField["Taxable Turnover"]; taxable.Status != LineMatched {
		t.Errorf("Taxable Turnover should match, got %s", taxable.Status)
	}

	// Other Income lives only in the financial statements.
	if other := byField["Other Income"]; other.Status != LineReportedOnly {
		t.Errorf("Other Income should be reported only, got %s", other.Status)
	}
}

func TestServiceTurnoverRequiresThirdSource(t *testing.T) {
	a := rawTable("books", map[string]string{"Total Sales": "100"})
	b := rawTable("returns", map[string]string{"Annual Aggregate Turnover": "100"})

	service := NewService(nil)
	_, err := service.Reconcile(context.Background(), a, b, nil, Options{
		Variant: mapping.VariantTurnover,
	})
	if err == nil {
		t.Fatal("expected error without a third source")
	}
	if !apperrors.IsConfiguration(err) {
		t.Errorf("expected configuration category, got %v", err)
	}
}

func TestServiceContextCancellation(t *testing.T) {
	a := rawTable("gstr1", map[string]string{"Invoice Number": "INV-001"})
	b := rawTable("register", map[string]string{"Invoice No.": "INV-001"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	service := NewService(nil)
	if _, err := service.Reconcile(ctx, a, b, nil, Options{
		Variant: mapping.VariantGSTR1Books,
	}); err == nil {
		t.Error("expected error from cancelled context")
	}
}
