package matcher

import (
	"testing"

	"gst-reconciliation-service/internal/mapping"
	"gst-reconciliation-service/internal/models"
)

func TestExactKeyDerivation(t *testing.T) {
	resolved := resolveVariant(t, mapping.VariantGSTR1EWay, ewayHeaders())
	strategy := &exactKey{keyFields: resolved.KeyFields}

	// Casing and padding differences must derive the same key.
	a := invoiceRecord(" 27aaaaa0000a1z5 ", "inv-001", "2024-04-10", 1000)
	b := invoiceRecord("27AAAAA0000A1Z5", "INV-001", "2024-04-10", 1000)

	keyA, okA := strategy.Key(a)
	keyB, okB := strategy.Key(b)
	if !okA || !okB {
		t.Fatal("expected keys from both records")
	}
	if keyA != keyB {
		t.Errorf("keys differ: %q vs %q", keyA, keyB)
	}
}

func TestExactKeyUnknownDate(t *testing.T) {
	resolved := resolveVariant(t, mapping.VariantGSTR1EWay, ewayHeaders())
	strategy := &exactKey{keyFields: resolved.KeyFields}

	// An unparsable date maps onto a sentinel: two records with the same
	// garbage date still derive identical keys.
	a := invoiceRecord("27AAAAA0000A1Z5", "INV-001", "not-a-date", 1000)
	b := invoiceRecord("27AAAAA0000A1Z5", "INV-001", "31/31/9999", 1000)

	keyA, _ := strategy.Key(a)
	keyB, _ := strategy.Key(b)
	if keyA != keyB {
		t.Errorf("unknown dates should share a sentinel: %q vs %q", keyA, keyB)
	}
}

func TestExactKeyAllEmpty(t *testing.T) {
	resolved := resolveVariant(t, mapping.VariantGSTR1EWay, ewayHeaders())
	strategy := &exactKey{keyFields: resolved.KeyFields}

	empty := models.Record{
		"Invoice Number":         models.TextValue(""),
		"GSTIN/UIN of Recipient": models.TextValue(""),
		"Invoice Date":           models.InvalidValue(models.KindDate, ""),
	}
	if _, ok := strategy.Key(empty); ok {
		t.Error("record with no identity content must not derive a key")
	}
}

func TestNormalizedTextKey(t *testing.T) {
	resolved := resolveVariant(t, mapping.VariantGSTR1EWay, ewayHeaders())
	strategy := &normalizedTextKey{
		keyFields: resolved.KeyFields,
		docField:  "Invoice Number",
	}

	tests := []struct {
		docA, docB string
		same       bool
	}{
		{"INV-2024/00045", "inv 202400045", true},
		{"BILL-777", "777", true},
		{"INV-001", "INV-002", false},
	}

	for _, tt := range tests {
		a := invoiceRecord("27AAAAA0000A1Z5", tt.docA, "2024-04-10", 1000)
		b := invoiceRecord("27AAAAA0000A1Z5", tt.docB, "2024-04-10", 1000)
		keyA, _ := strategy.Key(a)
		keyB, _ := strategy.Key(b)
		if (keyA == keyB) != tt.same {
			t.Errorf("%q vs %q: same=%v, want %v (keys %q, %q)",
				tt.docA, tt.docB, keyA == keyB, tt.same, keyA, keyB)
		}
	}
}

func TestNumericOnlyKeyDropsDate(t *testing.T) {
	strategy := &numericOnlyKey{
		counterparty: "GSTIN/UIN of Recipient",
		docField:     "Invoice Number",
	}

	// Different dates, same trailing digits: keys must coincide.
	a := invoiceRecord("27AAAAA0000A1Z5", "SI-2024-00045", "2024-04-10", 1000)
	b := invoiceRecord("27AAAAA0000A1Z5", "INV00045", "2024-05-20", 1000)

	keyA, okA := strategy.Key(a)
	keyB, okB := strategy.Key(b)
	if !okA || !okB || keyA != keyB {
		t.Errorf("expected identical numeric keys, got %q and %q", keyA, keyB)
	}

	// No digits at all: no key.
	c := invoiceRecord("27AAAAA0000A1Z5", "DRAFT", "2024-04-10", 1000)
	if _, ok := strategy.Key(c); ok {
		t.Error("document without digits must not derive a numeric key")
	}
}

func TestKeyStrategiesCascadeOrder(t *testing.T) {
	resolved := resolveVariant(t, mapping.VariantGSTR1EWay, ewayHeaders())
	strategies := keyStrategies(resolved)

	want := []MatchStrategy{StrategyExact, StrategyNormalizedText, StrategyNumericOnly}
	if len(strategies) != len(want) {
		t.Fatalf("expected %d strategies, got %d", len(want), len(strategies))
	}
	for i, s := range strategies {
		if s.Strategy() != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], s.Strategy())
		}
	}
}

func TestKeyStrategiesExactOnly(t *testing.T) {
	headers := []string{
		"GSTIN/UIN of Recipient", "Invoice Number", "Invoice Date", "Invoice Value",
	}
	resolved := resolveVariant(t, mapping.VariantGSTR1Books, headers)

	strategies := keyStrategies(resolved)
	if len(strategies) != 1 || strategies[0].Strategy() != StrategyExact {
		t.Errorf("variant without fallbacks must use exact keys only, got %d strategies", len(strategies))
	}
}
