// Package models defines the tabular data model shared by the
// reconciliation engine and its collaborators.
//
// Records are loaded from heterogeneous sources (GST return exports,
// accounting registers, e-way bill and e-invoice extracts) whose columns
// only partially overlap. A Record is therefore a loose field-name to
// Value mapping rather than a fixed struct; the mapping package decides
// which fields act as identity and which are compared numerically.
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FieldKind classifies how a field's raw cell content is interpreted.
type FieldKind int

const (
	// KindText leaves the cell content as a trimmed string.
	KindText FieldKind = iota
	// KindNumeric coerces the cell content to a decimal amount.
	KindNumeric
	// KindDate coerces the cell content to a calendar date.
	KindDate
)

// String returns the string representation of FieldKind
func (k FieldKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumeric:
		return "numeric"
	case KindDate:
		return "date"
	default:
		return "unknown"
	}
}

// Value is a single typed cell. Valid is false when coercion of the raw
// content failed: an invalid numeric compares as zero and an invalid date
// is treated as unknown. Both are recoverable data-quality conditions,
// not errors.
type Value struct {
	Kind   FieldKind
	Text   string
	Number decimal.Decimal
	Date   time.Time
	Valid  bool
}

// TextValue builds a valid text Value from a raw cell.
func TextValue(s string) Value {
	return Value{Kind: KindText, Text: strings.TrimSpace(s), Valid: true}
}

// NumericValue builds a valid numeric Value.
func NumericValue(d decimal.Decimal) Value {
	return Value{Kind: KindNumeric, Number: d, Valid: true}
}

// DateValue builds a valid date Value.
func DateValue(t time.Time) Value {
	return Value{Kind: KindDate, Date: t, Valid: true}
}

// InvalidValue builds an invalid Value of the given kind, preserving the
// raw text so reports can show what failed to parse.
func InvalidValue(kind FieldKind, raw string) Value {
	return Value{Kind: kind, Text: strings.TrimSpace(raw), Valid: false}
}

// Amount returns the numeric content, treating missing or invalid values
// as zero. This mirrors the coercion policy applied during preprocessing.
func (v Value) Amount() decimal.Decimal {
	if !v.Valid || v.Kind != KindNumeric {
		return decimal.Zero
	}
	return v.Number
}

// DisplayString renders the value for reports and keys.
func (v Value) DisplayString() string {
	if !v.Valid {
		return v.Text
	}
	switch v.Kind {
	case KindNumeric:
		return v.Number.String()
	case KindDate:
		return v.Date.Format("2006-01-02")
	default:
		return v.Text
	}
}

// IsZero reports whether the value is absent, invalid, or an empty/zero
// content for its kind.
func (v Value) IsZero() bool {
	if !v.Valid {
		return true
	}
	switch v.Kind {
	case KindNumeric:
		return v.Number.IsZero()
	case KindDate:
		return v.Date.IsZero()
	default:
		return v.Text == ""
	}
}

// Record is one row of a source table: a mapping from (already
// normalized) field name to typed cell value. Records have no identity of
// their own until the key builder derives a match key.
type Record map[string]Value

// Get returns the value for field and whether it is present.
func (r Record) Get(field string) (Value, bool) {
	v, ok := r[field]
	return v, ok
}

// Text returns the trimmed text content of field, or "" when the field is
// missing or invalid. Used for exact-equality attribute comparison.
func (r Record) Text(field string) string {
	v, ok := r[field]
	if !ok || !v.Valid {
		return ""
	}
	return v.DisplayString()
}

// Amount returns the numeric content of field with missing and invalid
// values coerced to zero.
func (r Record) Amount(field string) decimal.Decimal {
	return r[field].Amount()
}

// Date returns the date content of field and whether a valid date is
// present.
func (r Record) Date(field string) (time.Time, bool) {
	v, ok := r[field]
	if !ok || !v.Valid || v.Kind != KindDate {
		return time.Time{}, false
	}
	return v.Date, true
}

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Table is an ordered sequence of records from one source. Order is
// preserved from the source file; duplicate-key tie-breaking depends on it.
type Table struct {
	Name string

	// Headers is the declared column set from the source header row. It
	// may be empty for tables assembled in code; consumers fall back to
	// the names present in the records.
	Headers []string

	Records []Record
}

// NewTable creates an empty table for the named source.
func NewTable(name string) *Table {
	return &Table{Name: name}
}

// Append adds a record to the table.
func (t *Table) Append(r Record) {
	t.Records = append(t.Records, r)
}

// Len returns the number of records.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Records)
}

// SumField sums the numeric content of field across all records,
// independent of matching outcome.
func (t *Table) SumField(field string) decimal.Decimal {
	total := decimal.Zero
	if t == nil {
		return total
	}
	for _, r := range t.Records {
		total = total.Add(r.Amount(field))
	}
	return total
}

// String returns a short description of the table.
func (t *Table) String() string {
	return fmt.Sprintf("Table{Name: %s, Records: %d}", t.Name, t.Len())
}
