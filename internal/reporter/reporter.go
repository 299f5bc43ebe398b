// Package reporter renders reconciliation outcomes for people and for
// downstream tooling: a console summary, machine-readable JSON and CSV,
// and a multi-sheet Excel workbook.
package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"gst-reconciliation-service/internal/mapping"
	"gst-reconciliation-service/internal/matcher"
	"gst-reconciliation-service/internal/reconciler"

	"github.com/shopspring/decimal"
)

// Format selects the output rendering.
type Format string

const (
	FormatConsole Format = "console"
	FormatJSON    Format = "json"
	FormatCSV     Format = "csv"
	FormatXLSX    Format = "xlsx"
)

// ParseFormat validates and returns the format named by s.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatConsole, FormatJSON, FormatCSV, FormatXLSX:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format '%s' (valid: console, json, csv, xlsx)", s)
	}
}

// Config contains configuration options for report generation.
type Config struct {
	Format Format

	// IncludeMatched also lists clean pairs, not just problems.
	IncludeMatched bool

	// MaxDetailRows caps per-bucket detail output on the console;
	// 0 means unlimited.
	MaxDetailRows int

	// OutputPath receives the workbook for the xlsx format. Other
	// formats write to Writer.
	OutputPath string

	Writer io.Writer
}

// DefaultConfig returns the default reporting configuration: a console
// summary on stdout.
func DefaultConfig() *Config {
	return &Config{
		Format:        FormatConsole,
		MaxDetailRows: 20,
		Writer:        os.Stdout,
	}
}

// Reporter renders outcomes according to its configuration.
type Reporter struct {
	config *Config
}

// NewReporter creates a reporter. A nil config selects the defaults.
func NewReporter(config *Config) *Reporter {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Writer == nil {
		config.Writer = os.Stdout
	}
	return &Reporter{config: config}
}

// Write renders the outcome in the configured format.
func (r *Reporter) Write(outcome *reconciler.Outcome) error {
	switch r.config.Format {
	case FormatJSON:
		return r.writeJSON(outcome)
	case FormatCSV:
		return r.writeCSV(outcome)
	case FormatXLSX:
		return r.writeWorkbook(outcome)
	default:
		return r.writeConsole(outcome)
	}
}

func (r *Reporter) writeJSON(outcome *reconciler.Outcome) error {
	enc := json.NewEncoder(r.config.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(outcome)
}

// sortedMismatches returns the mismatched pairs ordered by their largest
// flagged absolute difference, descending, so the worst gaps lead the
// report.
func sortedMismatches(result *matcher.Result) []*matcher.MatchedPair {
	out := make([]*matcher.MatchedPair, len(result.Mismatches))
	copy(out, result.Mismatches)
	sort.SliceStable(out, func(i, j int) bool {
		return maxAbsDiff(out[i]).GreaterThan(maxAbsDiff(out[j]))
	})
	return out
}

func maxAbsDiff(pair *matcher.MatchedPair) decimal.Decimal {
	max := decimal.Zero
	for _, d := range pair.Discrepancies {
		if d.Numeric && d.AbsDiff.GreaterThan(max) {
			max = d.AbsDiff
		}
	}
	return max
}

// reportColumns picks the identifying and compared columns shown for
// missing-record listings.
func reportColumns(variant mapping.Variant) []string {
	m, err := mapping.Get(variant)
	if err != nil {
		return nil
	}
	return append(m.KeyFields(), m.ValueFields()...)
}
