// Package matcher provides the core record matching and comparison
// engine for GST reconciliation.
//
// The engine correlates records from two normalized tables on a derived
// composite key, classifies every record into exactly one of four
// buckets (matched, mismatched, missing on either side), and measures
// per-field numeric differences against configured tolerances.
//
// Matching proceeds in passes:
//  1. Exact composite key (invoice number, date, counterparty tax ID)
//  2. Normalized-text key (prefix-stripped document numbers), if enabled
//  3. Numeric-core key (trailing digit run), if enabled
//  4. Amount-similarity pairing within the same counterparty, if enabled
//
// Each pass only considers records the previous passes left unmatched,
// and a record consumed by any pass is never paired again.
//
// Example usage:
//
//	cfg := matcher.DefaultConfig()
//	engine, err := matcher.NewEngine(resolved, cfg)
//	engine.LoadSourceA(gstr1Table)
//	engine.LoadSourceB(ewayTable)
//
//	result, err := engine.Reconcile()
package matcher

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Config holds the tolerance parameters for one reconciliation call.
// Thresholds are threaded explicitly into each call rather than read
// from package state, so concurrent callers and tests can vary them
// freely.
type Config struct {
	// AmountThreshold is the absolute difference, in currency units,
	// below which a field difference is never a discrepancy.
	AmountThreshold decimal.Decimal `json:"amount_threshold"`

	// PercentageThreshold is the relative difference, as a fraction in
	// [0, 1), below which a field difference is never a discrepancy.
	// A difference is flagged only when it exceeds BOTH thresholds.
	PercentageThreshold float64 `json:"percentage_threshold"`

	// FuzzyAmountTolerance is the absolute difference under which the
	// amount-similarity fallback accepts a candidate.
	FuzzyAmountTolerance decimal.Decimal `json:"fuzzy_amount_tolerance"`

	// FuzzyPercentTolerance is the relative difference, as a fraction,
	// under which the amount-similarity fallback accepts a candidate.
	FuzzyPercentTolerance float64 `json:"fuzzy_percent_tolerance"`
}

// DefaultConfig returns the standard tolerances: Rs. 1 absolute and 1%
// relative, with the fuzzy fallback accepting candidates within Rs. 10
// or 1%.
func DefaultConfig() *Config {
	return &Config{
		AmountThreshold:       decimal.NewFromInt(1),
		PercentageThreshold:   0.01,
		FuzzyAmountTolerance:  decimal.NewFromInt(10),
		FuzzyPercentTolerance: 0.01,
	}
}

// StrictConfig returns tolerances for paise-level reconciliation.
func StrictConfig() *Config {
	return &Config{
		AmountThreshold:       decimal.NewFromFloat(0.01),
		PercentageThreshold:   0.0001,
		FuzzyAmountTolerance:  decimal.NewFromInt(1),
		FuzzyPercentTolerance: 0.001,
	}
}

// RelaxedConfig returns tolerances for exploratory matching against
// poor-quality register exports.
func RelaxedConfig() *Config {
	return &Config{
		AmountThreshold:       decimal.NewFromInt(100),
		PercentageThreshold:   0.05,
		FuzzyAmountTolerance:  decimal.NewFromInt(50),
		FuzzyPercentTolerance: 0.05,
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.AmountThreshold.IsNegative() {
		return fmt.Errorf("amount threshold cannot be negative: %s", c.AmountThreshold)
	}

	if c.PercentageThreshold < 0.0 || c.PercentageThreshold >= 1.0 {
		return fmt.Errorf("percentage threshold must be in [0, 1): %f", c.PercentageThreshold)
	}

	if c.FuzzyAmountTolerance.IsNegative() {
		return fmt.Errorf("fuzzy amount tolerance cannot be negative: %s", c.FuzzyAmountTolerance)
	}

	if c.FuzzyPercentTolerance < 0.0 || c.FuzzyPercentTolerance >= 1.0 {
		return fmt.Errorf("fuzzy percent tolerance must be in [0, 1): %f", c.FuzzyPercentTolerance)
	}

	return nil
}

// Clone creates a copy of the configuration.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}

	out := *c
	return &out
}

// String returns a human-readable description of the configuration.
func (c *Config) String() string {
	return fmt.Sprintf("Config{Amount: %s, Percentage: %.4f, FuzzyAmount: %s, FuzzyPercent: %.4f}",
		c.AmountThreshold, c.PercentageThreshold, c.FuzzyAmountTolerance, c.FuzzyPercentTolerance)
}
