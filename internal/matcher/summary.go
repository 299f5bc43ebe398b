package matcher

import (
	"gst-reconciliation-service/internal/mapping"
	"gst-reconciliation-service/internal/models"

	"github.com/shopspring/decimal"
)

// FieldTotal carries the per-source sum of one value field and their
// difference. Totals run over every record of a source regardless of
// matching outcome, so they can legitimately disagree with the
// per-record discrepancy count (offsetting mismatches net out here but
// still appear in the mismatch bucket).
type FieldTotal struct {
	SourceA    decimal.Decimal `json:"source_a"`
	SourceB    decimal.Decimal `json:"source_b"`
	Difference decimal.Decimal `json:"difference"`
}

// Summary provides aggregate statistics about one reconciliation call.
type Summary struct {
	TotalSourceA int `json:"total_source_a"`
	TotalSourceB int `json:"total_source_b"`

	MatchedPairs    int `json:"matched_pairs"`
	MismatchedPairs int `json:"mismatched_pairs"`
	MissingInA      int `json:"missing_in_a"`
	MissingInB      int `json:"missing_in_b"`
	FuzzyMatches    int `json:"fuzzy_matches"`

	// MatchPercentage counts both sides of each clean pair against all
	// records of both sources, so one-sided records pull it down.
	MatchPercentage float64 `json:"match_percentage"`

	// FieldTotals maps each compared value field to its per-source sums.
	FieldTotals map[string]FieldTotal `json:"field_totals"`
}

// summarize computes the aggregate statistics for an assembled result.
func summarize(res *mapping.Resolved, tableA, tableB *models.Table, result *Result) Summary {
	s := Summary{
		TotalSourceA:    tableA.Len(),
		TotalSourceB:    tableB.Len(),
		MatchedPairs:    len(result.Matches),
		MismatchedPairs: len(result.Mismatches),
		MissingInA:      len(result.MissingInA),
		MissingInB:      len(result.MissingInB),
		FieldTotals:     make(map[string]FieldTotal, len(res.ValueFields)),
	}

	for _, pair := range result.Matches {
		if pair.Fuzzy() {
			s.FuzzyMatches++
		}
	}
	for _, pair := range result.Mismatches {
		if pair.Fuzzy() {
			s.FuzzyMatches++
		}
	}

	totalConsidered := s.TotalSourceA + s.TotalSourceB
	if totalConsidered > 0 {
		s.MatchPercentage = float64(s.MatchedPairs*2) / float64(totalConsidered) * 100
	}

	for _, field := range res.ValueFields {
		sumA := tableA.SumField(field)
		sumB := tableB.SumField(field)
		s.FieldTotals[field] = FieldTotal{
			SourceA:    sumA,
			SourceB:    sumB,
			Difference: sumA.Sub(sumB),
		}
	}

	return s
}
