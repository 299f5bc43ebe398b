package matcher

import (
	"strings"

	"gst-reconciliation-service/internal/mapping"
	"gst-reconciliation-service/internal/models"
)

// MatchStrategy identifies which key derivation paired two records.
// Strategies form a cascade from most to least specific; later ones are
// consulted only for records the earlier ones left unmatched.
type MatchStrategy int

const (
	// StrategyExact pairs on the full composite key.
	StrategyExact MatchStrategy = iota
	// StrategyNormalizedText pairs on prefix-stripped alphanumeric
	// document numbers.
	StrategyNormalizedText
	// StrategyNumericOnly pairs on the trailing digit run of the
	// document number, ignoring the date.
	StrategyNumericOnly
	// StrategyAmountSimilarity pairs on counterparty identity plus
	// near-equal invoice value. Always reported as fuzzy.
	StrategyAmountSimilarity
)

// String returns the string representation of the strategy.
func (s MatchStrategy) String() string {
	switch s {
	case StrategyExact:
		return "exact"
	case StrategyNormalizedText:
		return "normalized_text"
	case StrategyNumericOnly:
		return "numeric_only"
	case StrategyAmountSimilarity:
		return "amount_similarity"
	default:
		return "unknown"
	}
}

// IsFuzzy reports whether matches made by this strategy must be
// presented distinctly from exact matches.
func (s MatchStrategy) IsFuzzy() bool {
	return s == StrategyAmountSimilarity
}

// keyStrategy derives an optional match key from a record. Returning
// ok=false means the record cannot participate in this pass.
type keyStrategy interface {
	Strategy() MatchStrategy
	Key(r models.Record) (string, bool)
}

const keySeparator = "|"

// keyStrategies builds the enabled cascade for a resolved mapping, most
// specific first. The amount-similarity fallback is not key-based and is
// handled separately by the engine.
func keyStrategies(res *mapping.Resolved) []keyStrategy {
	m := res.Mapping

	strategies := []keyStrategy{
		&exactKey{keyFields: res.KeyFields},
	}

	docField := documentField(res)
	if docField == "" {
		return strategies
	}

	if m.Fallbacks.NormalizedText {
		strategies = append(strategies, &normalizedTextKey{
			keyFields: res.KeyFields,
			docField:  docField,
		})
	}

	if m.Fallbacks.NumericOnly {
		strategies = append(strategies, &numericOnlyKey{
			counterparty: m.CounterpartyField,
			docField:     docField,
		})
	}

	return strategies
}

// documentField picks the key field holding the document number: the
// text key that is not the counterparty tax ID.
func documentField(res *mapping.Resolved) string {
	for _, name := range res.KeyFields {
		f, ok := res.Mapping.FieldByName(name)
		if !ok || f.Kind != models.KindText {
			continue
		}
		if name == res.Mapping.CounterpartyField {
			continue
		}
		return name
	}
	return ""
}

// keyComponent renders one key field identically for both sources:
// trimmed and uppercased text, dates in canonical ISO form, with
// unparsable dates reduced to a sentinel that still compares
// deterministically.
func keyComponent(r models.Record, field string) string {
	v, ok := r.Get(field)
	if !ok {
		return ""
	}
	if v.Kind == models.KindDate {
		if !v.Valid {
			return "UNKNOWN"
		}
		return v.Date.Format("2006-01-02")
	}
	return models.NormalizeIdentifier(v.DisplayString())
}

// exactKey concatenates all key fields in mapping order.
type exactKey struct {
	keyFields []string
}

func (s *exactKey) Strategy() MatchStrategy { return StrategyExact }

func (s *exactKey) Key(r models.Record) (string, bool) {
	parts := make([]string, 0, len(s.keyFields))
	empty := true
	for _, field := range s.keyFields {
		c := keyComponent(r, field)
		if c != "" && c != "UNKNOWN" {
			empty = false
		}
		parts = append(parts, c)
	}
	if empty {
		return "", false
	}
	return strings.Join(parts, keySeparator), true
}

// normalizedTextKey replaces the document number with its normalized
// alphanumeric core, keeping the remaining key fields intact. Less
// specific than exactKey: distinct raw numbers can collapse onto one
// normalized form.
type normalizedTextKey struct {
	keyFields []string
	docField  string
}

func (s *normalizedTextKey) Strategy() MatchStrategy { return StrategyNormalizedText }

func (s *normalizedTextKey) Key(r models.Record) (string, bool) {
	doc := models.NormalizeDocumentNumber(r.Text(s.docField))
	if doc == "" {
		return "", false
	}

	parts := make([]string, 0, len(s.keyFields))
	for _, field := range s.keyFields {
		if field == s.docField {
			parts = append(parts, doc)
			continue
		}
		parts = append(parts, keyComponent(r, field))
	}
	return strings.Join(parts, keySeparator), true
}

// numericOnlyKey reduces the document number to its trailing digit run
// and drops the date entirely, keeping only counterparty identity. The
// least specific key form.
type numericOnlyKey struct {
	counterparty string
	docField     string
}

func (s *numericOnlyKey) Strategy() MatchStrategy { return StrategyNumericOnly }

func (s *numericOnlyKey) Key(r models.Record) (string, bool) {
	digits := models.NumericCore(r.Text(s.docField))
	if digits == "" {
		return "", false
	}

	if s.counterparty == "" {
		return digits, true
	}
	return keyComponent(r, s.counterparty) + keySeparator + digits, true
}
