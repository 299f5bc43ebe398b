package reconciler

import (
	"strings"
	"time"

	"gst-reconciliation-service/internal/mapping"
	"gst-reconciliation-service/internal/models"
	"gst-reconciliation-service/pkg/logger"
)

// DateRange restricts a row-level reconciliation to rows whose date
// field falls inside [From, To]. A zero bound is open. Rows whose date
// failed to parse are never filtered out; an unknown date must not
// silently remove a record from the run.
type DateRange struct {
	From time.Time
	To   time.Time
}

// IsZero reports whether the range places no restriction at all.
func (r DateRange) IsZero() bool {
	return r.From.IsZero() && r.To.IsZero()
}

// Contains reports whether t falls inside the range.
func (r DateRange) Contains(t time.Time) bool {
	if !r.From.IsZero() && t.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && t.After(r.To) {
		return false
	}
	return true
}

// SourceStats counts what normalization did to one source table.
// Coercion failures are data-quality conditions, not errors; they are
// tallied here and surfaced in reports instead of aborting the run.
type SourceStats struct {
	RowsIn          int `json:"rows_in"`
	RowsKept        int `json:"rows_kept"`
	FilteredByDate  int `json:"filtered_by_date"`
	CoercedAmounts  int `json:"coerced_amounts"`
	UnknownDates    int `json:"unknown_dates"`
	UnmappedColumns int `json:"unmapped_columns"`
}

// Normalizer aligns a raw source table with the canonical vocabulary of
// one mapping: headers trimmed, counterpart columns renamed, cells
// coerced to their declared kinds, and the optional date-range filter
// applied. Raw tables are not modified.
type Normalizer struct {
	mapping *mapping.Mapping
	kinds   map[string]models.FieldKind
	log     logger.Logger
}

// NewNormalizer creates a normalizer for one mapping.
func NewNormalizer(m *mapping.Mapping, log logger.Logger) *Normalizer {
	if log == nil {
		log = logger.GetGlobalLogger()
	}

	kinds := make(map[string]models.FieldKind, len(m.Fields))
	for _, f := range m.Fields {
		kinds[f.Name] = f.Kind
	}

	return &Normalizer{
		mapping: m,
		kinds:   kinds,
		log:     log.WithComponent("normalizer"),
	}
}

// NormalizeSourceA normalizes the canonical-vocabulary table. No
// renaming is needed; only trimming, coercion, and the date filter.
func (n *Normalizer) NormalizeSourceA(t *models.Table, dates DateRange) (*models.Table, *SourceStats) {
	return n.normalize(t, nil, dates)
}

// NormalizeSourceB renames the second source's columns onto the
// canonical vocabulary, then trims, coerces, and filters.
func (n *Normalizer) NormalizeSourceB(t *models.Table, dates DateRange) (*models.Table, *SourceStats) {
	return n.normalize(t, n.mapping.RenameForSourceB(), dates)
}

// NormalizeSourceC renames the third source's columns onto the
// canonical vocabulary. Only three-source variants have one.
func (n *Normalizer) NormalizeSourceC(t *models.Table, dates DateRange) (*models.Table, *SourceStats) {
	return n.normalize(t, n.mapping.RenameForSourceC(), dates)
}

func (n *Normalizer) normalize(t *models.Table, rename map[string]string, dates DateRange) (*models.Table, *SourceStats) {
	stats := &SourceStats{RowsIn: t.Len()}
	out := models.NewTable(t.Name)
	out.Headers = normalizeHeaders(Headers(t), rename)
	unmapped := make(map[string]bool)

	for _, raw := range t.Records {
		rec := n.normalizeRecord(raw, rename, stats, unmapped)

		if !dates.IsZero() && n.mapping.DateField != "" {
			if d, ok := rec.Date(n.mapping.DateField); ok && !dates.Contains(d) {
				stats.FilteredByDate++
				continue
			}
		}

		out.Append(rec)
	}

	stats.RowsKept = out.Len()
	stats.UnmappedColumns = len(unmapped)

	n.log.WithFields(logger.Fields{
		"source":          t.Name,
		"rows_in":         stats.RowsIn,
		"rows_kept":       stats.RowsKept,
		"coerced_amounts": stats.CoercedAmounts,
		"unknown_dates":   stats.UnknownDates,
	}).Debug("normalized source table")

	return out, stats
}

// normalizeRecord builds one canonical-vocabulary record. Columns not
// declared by the mapping are carried along as text so reports can show
// them; they never participate in comparison. When several raw columns
// map onto the same canonical numeric field (the summary-table mappings
// do this) their amounts are summed.
func (n *Normalizer) normalizeRecord(raw models.Record, rename map[string]string, stats *SourceStats, unmapped map[string]bool) models.Record {
	rec := make(models.Record, len(raw))

	for col, cell := range raw {
		name := strings.TrimSpace(col)
		if rename != nil {
			if canonical, ok := rename[name]; ok {
				name = canonical
			}
		}

		kind, declared := n.kinds[name]
		if !declared {
			unmapped[name] = true
			rec[name] = models.TextValue(cell.Text)
			continue
		}

		v := models.CoerceValue(kind, cell.Text)
		if !v.Valid {
			switch kind {
			case models.KindNumeric:
				stats.CoercedAmounts++
			case models.KindDate:
				stats.UnknownDates++
			}
		}

		if prev, ok := rec[name]; ok && kind == models.KindNumeric {
			rec[name] = models.NumericValue(prev.Amount().Add(v.Amount()))
			continue
		}
		rec[name] = v
	}

	return rec
}

// normalizeHeaders maps the raw header set onto the canonical
// vocabulary, trimmed and deduplicated. The result is carried on the
// normalized table so mapping resolution sees every column the source
// declared, even when the date filter leaves no rows.
func normalizeHeaders(raw []string, rename map[string]string) []string {
	seen := make(map[string]bool, len(raw))
	out := make([]string, 0, len(raw))
	for _, h := range raw {
		name := strings.TrimSpace(h)
		if rename != nil {
			if canonical, ok := rename[name]; ok {
				name = canonical
			}
		}
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

// Headers returns the field names of the table: the declared header row
// when the loader captured one, otherwise the distinct names present in
// the records.
func Headers(t *models.Table) []string {
	if len(t.Headers) > 0 {
		return append([]string(nil), t.Headers...)
	}

	seen := make(map[string]bool)
	var out []string
	for _, rec := range t.Records {
		for name := range rec {
			if !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	return out
}
