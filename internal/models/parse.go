package models

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
)

// ParseDecimalFromString parses a decimal amount from a raw cell,
// tolerating currency symbols and thousand separators commonly found in
// register exports.
func ParseDecimalFromString(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("amount string cannot be empty")
	}

	// Strip currency markers and grouping characters
	for _, sym := range []string{"₹", "Rs.", "Rs", "$", ","} {
		s = strings.ReplaceAll(s, sym, "")
	}
	s = strings.TrimSpace(s)

	// Accounting-style negatives: (1234.50)
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s = "-" + strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid decimal format '%s': %w", s, err)
	}

	return d, nil
}

// dateFormats are the layouts observed across GST portal exports, register
// dumps, and e-way bill extracts.
var dateFormats = []string{
	"2006-01-02",
	"02-01-2006",
	"02/01/2006",
	"01/02/2006",
	"2006/01/02",
	"02-Jan-2006",
	"2 Jan 2006",
	"Jan 2, 2006",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// ParseDateWithFormats attempts to parse a calendar date from a raw cell
// using the known layouts, in order.
func ParseDateWithFormats(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("date string cannot be empty")
	}

	var lastErr error
	for _, format := range dateFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		} else {
			lastErr = err
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse date '%s': %w", s, lastErr)
}

// NormalizeIdentifier uppercases and trims an identity field value so that
// both sources derive identical match keys regardless of casing or padding.
func NormalizeIdentifier(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

// documentPrefixes are sequencing prefixes that registers and portals
// prepend inconsistently to the same underlying document number.
var documentPrefixes = []string{"INV", "BILL", "TAX", "SI", "DOC", "EWB"}

// NormalizeDocumentNumber reduces a document number to its alphanumeric
// core: uppercased, non-alphanumerics removed, and one known sequencing
// prefix stripped. "SI-2024-00045" and "inv 2024/00045" normalize alike.
func NormalizeDocumentNumber(id string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(id) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	normalized := b.String()

	for _, prefix := range documentPrefixes {
		if strings.HasPrefix(normalized, prefix) && len(normalized) > len(prefix) {
			normalized = strings.TrimPrefix(normalized, prefix)
			break
		}
	}

	return normalized
}

// NumericCore extracts the trailing run of digits from an identifier,
// which is the document sequence number once register prefixes and year
// segments are discarded. "SI-2024-00045" and "INV00045" both reduce to
// "00045". The least specific key form, consulted only after the
// normalized form fails.
func NumericCore(id string) string {
	end := len(id)
	for end > 0 && !isDigit(id[end-1]) {
		end--
	}
	start := end
	for start > 0 && isDigit(id[start-1]) {
		start--
	}
	return id[start:end]
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// CoerceValue converts a raw cell into a typed Value per the declared
// kind. Failed coercions yield an invalid Value rather than an error:
// unknown dates and zeroed numerics degrade match quality but never abort
// a run.
func CoerceValue(kind FieldKind, raw string) Value {
	switch kind {
	case KindNumeric:
		d, err := ParseDecimalFromString(raw)
		if err != nil {
			return InvalidValue(KindNumeric, raw)
		}
		return NumericValue(d)
	case KindDate:
		t, err := ParseDateWithFormats(raw)
		if err != nil {
			return InvalidValue(KindDate, raw)
		}
		return DateValue(t)
	default:
		return TextValue(raw)
	}
}
