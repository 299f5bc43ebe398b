// Package mapping holds the declarative field correspondences for each
// reconciliation variant.
//
// A Mapping describes, for one pair (or triple) of sources, how columns
// line up across vocabularies, which fields establish record identity,
// which are compared numerically, and which fallback key strategies the
// matcher may use. All mappings are static data resolved once at call
// start into an availability report; the matcher and differ never inspect
// raw column names themselves.
package mapping

import (
	"fmt"
	"sort"
	"strings"

	"gst-reconciliation-service/internal/models"
)

// Variant selects one predefined reconciliation configuration.
type Variant string

const (
	VariantGSTR1Books     Variant = "gstr1_books"
	VariantGSTR2Books     Variant = "gstr2_books"
	VariantGSTR3BGSTR1    Variant = "gstr3b_gstr1"
	VariantGSTR3BBooks    Variant = "gstr3b_books"
	VariantITCGSTR3B2B    Variant = "itc_gstr3b_gstr2b"
	VariantITCEligibility Variant = "itc_eligibility"
	VariantGSTR1EWay      Variant = "gstr1_eway"
	VariantGSTR2EWay      Variant = "gstr2_eway"
	VariantGSTR1EInvoice  Variant = "gstr1_einvoice"
	VariantTurnover       Variant = "turnover_recon"
)

// String returns the string representation of the variant.
func (v Variant) String() string {
	return string(v)
}

// ParseVariant validates and returns the variant named by s.
func ParseVariant(s string) (Variant, error) {
	v := Variant(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := registry[v]; !ok {
		return "", fmt.Errorf("unknown reconciliation variant '%s' (valid: %s)",
			s, strings.Join(variantNames(), ", "))
	}
	return v, nil
}

// AllVariants returns the registered variants in stable order.
func AllVariants() []Variant {
	names := variantNames()
	out := make([]Variant, len(names))
	for i, n := range names {
		out[i] = Variant(n)
	}
	return out
}

func variantNames() []string {
	names := make([]string, 0, len(registry))
	for v := range registry {
		names = append(names, string(v))
	}
	sort.Strings(names)
	return names
}

// Granularity describes at which level a variant compares its sources.
type Granularity int

const (
	// GranularityRow matches individual records on a composite key.
	GranularityRow Granularity = iota
	// GranularityAggregate compares per-field sums between two sources.
	GranularityAggregate
	// GranularityThreeSource compares per-field sums across three sources.
	GranularityThreeSource
)

// String returns the string representation of the granularity.
func (g Granularity) String() string {
	switch g {
	case GranularityRow:
		return "row"
	case GranularityAggregate:
		return "aggregate"
	case GranularityThreeSource:
		return "three_source"
	default:
		return "unknown"
	}
}

// Role describes how a mapped field participates in reconciliation.
type Role int

const (
	// RoleKey fields establish record identity; they feed the match key.
	RoleKey Role = iota
	// RoleValue fields are numeric and compared under tolerance.
	RoleValue
	// RoleAttribute fields are compared by exact string equality.
	RoleAttribute
	// RoleInfo fields are carried into reports but never compared.
	RoleInfo
)

// Field is one column correspondence. Name is the canonical (source-A)
// vocabulary; SourceB / SourceC list counterpart columns in the other
// sources. An empty counterpart list means the field has no equivalent on
// that side and is excluded from comparison there. It is never defaulted
// to zero in a way that would fabricate a match.
type Field struct {
	Name    string
	SourceB []string
	SourceC []string
	Role    Role
	Kind    models.FieldKind
}

// FallbackSet declares which key-builder fallback strategies a variant
// enables, in cascade order. All off means exact keys only.
type FallbackSet struct {
	NormalizedText   bool
	NumericOnly      bool
	AmountSimilarity bool
}

// Any reports whether at least one fallback strategy is enabled.
func (f FallbackSet) Any() bool {
	return f.NormalizedText || f.NumericOnly || f.AmountSimilarity
}

// Mapping is the full declarative configuration for one variant.
type Mapping struct {
	Variant     Variant
	SourceAName string
	SourceBName string
	SourceCName string
	Granularity Granularity

	// DateField names the canonical date column used for range filtering
	// and key derivation. Empty for aggregate variants.
	DateField string

	// CounterpartyField names the tax-ID key column consulted by the
	// amount-similarity fallback. Empty when the fallback is disabled.
	CounterpartyField string

	// AmountField names the canonical value column the amount-similarity
	// fallback compares on.
	AmountField string

	Fields    []Field
	Fallbacks FallbackSet
}

// Get returns the mapping registered for the variant.
func Get(v Variant) (*Mapping, error) {
	m, ok := registry[v]
	if !ok {
		return nil, fmt.Errorf("no mapping registered for variant '%s'", v)
	}
	return m, nil
}

// KeyFields returns the canonical names of the identity fields.
func (m *Mapping) KeyFields() []string {
	return m.fieldsByRole(RoleKey)
}

// ValueFields returns the canonical names of the numeric comparison fields.
func (m *Mapping) ValueFields() []string {
	return m.fieldsByRole(RoleValue)
}

// AttributeFields returns the canonical names of the exact-equality fields.
func (m *Mapping) AttributeFields() []string {
	return m.fieldsByRole(RoleAttribute)
}

func (m *Mapping) fieldsByRole(role Role) []string {
	var out []string
	for _, f := range m.Fields {
		if f.Role == role {
			out = append(out, f.Name)
		}
	}
	return out
}

// FieldByName returns the field definition for a canonical name.
func (m *Mapping) FieldByName(name string) (Field, bool) {
	for _, f := range m.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// RenameForSourceB maps each source-B column name onto the canonical
// vocabulary so the normalizer can align both tables.
func (m *Mapping) RenameForSourceB() map[string]string {
	out := make(map[string]string)
	for _, f := range m.Fields {
		for _, col := range f.SourceB {
			out[col] = f.Name
		}
	}
	return out
}

// RenameForSourceC maps each source-C column name onto the canonical
// vocabulary. Empty for two-source variants.
func (m *Mapping) RenameForSourceC() map[string]string {
	out := make(map[string]string)
	for _, f := range m.Fields {
		for _, col := range f.SourceC {
			out[col] = f.Name
		}
	}
	return out
}

// Resolved is the availability report produced once per reconciliation
// call: which declared fields are actually present on each side after
// normalization. Comparison components consult this instead of probing
// records for column existence.
type Resolved struct {
	Mapping *Mapping

	// KeyFields present on both sides; always the full declared key set
	// (resolution fails otherwise).
	KeyFields []string

	// ValueFields and AttributeFields present on both sides and therefore
	// comparable.
	ValueFields     []string
	AttributeFields []string

	// SkippedFields were declared but are missing from at least one side,
	// or have no counterpart column at all. Excluded from comparison.
	SkippedFields []string
}

// Resolve checks the mapping against the normalized headers of both
// sources. Missing key fields are a configuration error and abort the
// call; missing value or attribute fields merely shrink the comparable
// set.
func (m *Mapping) Resolve(headersA, headersB []string) (*Resolved, error) {
	hasA := headerSet(headersA)
	hasB := headerSet(headersB)

	res := &Resolved{Mapping: m}

	for _, f := range m.Fields {
		switch f.Role {
		case RoleKey:
			if !hasA[f.Name] {
				return nil, fmt.Errorf("variant %s: required key field '%s' missing from %s",
					m.Variant, f.Name, m.SourceAName)
			}
			if !hasB[f.Name] {
				return nil, fmt.Errorf("variant %s: required key field '%s' missing from %s",
					m.Variant, f.Name, m.SourceBName)
			}
			res.KeyFields = append(res.KeyFields, f.Name)
		case RoleValue:
			if len(f.SourceB) == 0 || !hasA[f.Name] || !hasB[f.Name] {
				res.SkippedFields = append(res.SkippedFields, f.Name)
				continue
			}
			res.ValueFields = append(res.ValueFields, f.Name)
		case RoleAttribute:
			if len(f.SourceB) == 0 || !hasA[f.Name] || !hasB[f.Name] {
				res.SkippedFields = append(res.SkippedFields, f.Name)
				continue
			}
			res.AttributeFields = append(res.AttributeFields, f.Name)
		}
	}

	if len(res.KeyFields) == 0 && m.Granularity == GranularityRow {
		return nil, fmt.Errorf("variant %s declares no key fields", m.Variant)
	}

	return res, nil
}

func headerSet(headers []string) map[string]bool {
	out := make(map[string]bool, len(headers))
	for _, h := range headers {
		out[strings.TrimSpace(h)] = true
	}
	return out
}
