// Package parsers loads source tables from CSV and XLSX exports into
// the raw tabular model. Cells are kept as text; type coercion is the
// normalizer's job, not the loader's.
package parsers

import (
	"fmt"
	"strings"
)

// Config contains configuration options for the file loaders.
type Config struct {
	// Delimiter is the CSV field separator.
	Delimiter rune

	// SheetName selects the worksheet to read from an XLSX file. Empty
	// means the first sheet.
	SheetName string

	// SkipEmptyRows drops rows whose cells are all blank.
	SkipEmptyRows bool

	// TrimSpace trims surrounding whitespace from headers and cells.
	TrimSpace bool

	// MaxRows caps the number of data rows read; 0 means unlimited.
	MaxRows int
}

// DefaultConfig returns the default loader configuration.
func DefaultConfig() *Config {
	return &Config{
		Delimiter:     ',',
		SkipEmptyRows: true,
		TrimSpace:     true,
	}
}

// Validate checks the configuration for common errors.
func (c *Config) Validate() error {
	if c.Delimiter == 0 {
		return fmt.Errorf("delimiter cannot be empty")
	}
	if c.MaxRows < 0 {
		return fmt.Errorf("max rows cannot be negative, got %d", c.MaxRows)
	}
	return nil
}

func (c *Config) clean(s string) string {
	if c.TrimSpace {
		return strings.TrimSpace(s)
	}
	return s
}

func emptyRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
