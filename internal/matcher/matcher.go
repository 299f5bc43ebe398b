package matcher

import (
	"fmt"

	"gst-reconciliation-service/internal/mapping"
	"gst-reconciliation-service/internal/models"

	"github.com/shopspring/decimal"
)

// Engine is the core record matching engine. It is built fresh per
// reconciliation call and holds no state between calls.
type Engine struct {
	resolved *mapping.Resolved
	config   *Config

	tableA *models.Table
	tableB *models.Table
}

// MatchedPair is one A-record paired with one B-record, with the
// per-field comparison outcome.
type MatchedPair struct {
	RecordA  models.Record
	RecordB  models.Record
	Key      string
	Strategy MatchStrategy

	// Discrepancies lists every compared field whose difference exceeded
	// both thresholds (or, for attribute fields, differed at all).
	Discrepancies []FieldDiff
}

// HasDiscrepancy reports whether any compared field was flagged.
func (p *MatchedPair) HasDiscrepancy() bool {
	return len(p.Discrepancies) > 0
}

// Fuzzy reports whether the pair was made by the amount-similarity
// fallback and must be presented distinctly from exact matches.
func (p *MatchedPair) Fuzzy() bool {
	return p.Strategy.IsFuzzy()
}

// Result is the complete outcome of one reconciliation call. Every input
// record appears in exactly one bucket: as one side of a pair in Matches
// or Mismatches, or in one of the missing lists.
type Result struct {
	// Matches holds pairs with no discrepancy beyond tolerance.
	Matches []*MatchedPair

	// Mismatches holds pairs with at least one flagged field.
	Mismatches []*MatchedPair

	// MissingInA holds source-B records with no source-A counterpart.
	MissingInA []models.Record

	// MissingInB holds source-A records with no source-B counterpart.
	MissingInB []models.Record

	Summary Summary
}

// NewEngine creates a matching engine for one resolved mapping. A nil
// config selects the defaults.
func NewEngine(resolved *mapping.Resolved, config *Config) (*Engine, error) {
	if resolved == nil {
		return nil, fmt.Errorf("resolved mapping is required")
	}

	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid matcher configuration: %w", err)
	}

	return &Engine{
		resolved: resolved,
		config:   config,
	}, nil
}

// LoadSourceA loads the first (canonical-vocabulary) table.
func (e *Engine) LoadSourceA(t *models.Table) {
	e.tableA = t
}

// LoadSourceB loads the second table, already renamed into the canonical
// vocabulary by the normalizer.
func (e *Engine) LoadSourceB(t *models.Table) {
	e.tableB = t
}

// Reconcile partitions both loaded tables into the four result buckets.
// Output is deterministic for fixed input tables and iteration order;
// buckets are not sorted.
func (e *Engine) Reconcile() (*Result, error) {
	if e.tableA == nil {
		return nil, fmt.Errorf("source A must be loaded before reconciliation")
	}
	if e.tableB == nil {
		return nil, fmt.Errorf("source B must be loaded before reconciliation")
	}

	matchedA := make([]bool, e.tableA.Len())
	matchedB := make([]bool, e.tableB.Len())

	var pairs []*MatchedPair

	// Key-based passes, most specific strategy first. Each pass sees only
	// records every earlier pass left unmatched, so a consumed record can
	// never pair twice.
	for _, strategy := range keyStrategies(e.resolved) {
		pairs = append(pairs, e.runKeyPass(strategy, matchedA, matchedB)...)
	}

	// Final fallback: counterparty identity plus amount similarity.
	if e.resolved.Mapping.Fallbacks.AmountSimilarity {
		pairs = append(pairs, e.runAmountSimilarityPass(matchedA, matchedB)...)
	}

	result := &Result{}
	differ := newDiffer(e.resolved, e.config)

	for _, pair := range pairs {
		pair.Discrepancies = differ.Compare(pair.RecordA, pair.RecordB)
		if pair.HasDiscrepancy() {
			result.Mismatches = append(result.Mismatches, pair)
		} else {
			result.Matches = append(result.Matches, pair)
		}
	}

	for i, rec := range e.tableA.Records {
		if !matchedA[i] {
			result.MissingInB = append(result.MissingInB, rec)
		}
	}
	for i, rec := range e.tableB.Records {
		if !matchedB[i] {
			result.MissingInA = append(result.MissingInA, rec)
		}
	}

	result.Summary = summarize(e.resolved, e.tableA, e.tableB, result)

	return result, nil
}

// runKeyPass pairs unmatched records whose keys under the strategy
// coincide. Duplicate keys on the B side are consumed first-available in
// source iteration order; one B record pairs with at most one A record.
func (e *Engine) runKeyPass(strategy keyStrategy, matchedA, matchedB []bool) []*MatchedPair {
	// Queue of available B indexes per key, in source order.
	candidates := make(map[string][]int)
	for i, rec := range e.tableB.Records {
		if matchedB[i] {
			continue
		}
		key, ok := strategy.Key(rec)
		if !ok {
			continue
		}
		candidates[key] = append(candidates[key], i)
	}

	var pairs []*MatchedPair
	for i, rec := range e.tableA.Records {
		if matchedA[i] {
			continue
		}
		key, ok := strategy.Key(rec)
		if !ok {
			continue
		}

		queue := candidates[key]
		if len(queue) == 0 {
			continue
		}
		j := queue[0]
		candidates[key] = queue[1:]

		matchedA[i] = true
		matchedB[j] = true
		pairs = append(pairs, &MatchedPair{
			RecordA:  rec,
			RecordB:  e.tableB.Records[j],
			Key:      key,
			Strategy: strategy.Strategy(),
		})
	}

	return pairs
}

// runAmountSimilarityPass pairs leftover records that share a
// counterparty tax ID and carry near-equal invoice values. At most one
// fuzzy match is taken per A record, first-encountered in B source order.
func (e *Engine) runAmountSimilarityPass(matchedA, matchedB []bool) []*MatchedPair {
	m := e.resolved.Mapping
	if m.CounterpartyField == "" || m.AmountField == "" {
		return nil
	}

	var pairs []*MatchedPair
	for i, recA := range e.tableA.Records {
		if matchedA[i] {
			continue
		}

		party := keyComponent(recA, m.CounterpartyField)
		if party == "" {
			continue
		}
		amountA := recA.Amount(m.AmountField)

		for j, recB := range e.tableB.Records {
			if matchedB[j] {
				continue
			}
			if keyComponent(recB, m.CounterpartyField) != party {
				continue
			}
			if !e.amountsSimilar(amountA, recB.Amount(m.AmountField)) {
				continue
			}

			matchedA[i] = true
			matchedB[j] = true
			pairs = append(pairs, &MatchedPair{
				RecordA:  recA,
				RecordB:  recB,
				Key:      party,
				Strategy: StrategyAmountSimilarity,
			})
			break
		}
	}

	return pairs
}

// amountsSimilar accepts a fuzzy candidate when the values differ by
// less than the absolute tolerance or by less than the relative one.
func (e *Engine) amountsSimilar(a, b decimal.Decimal) bool {
	diff := a.Sub(b).Abs()
	if diff.LessThan(e.config.FuzzyAmountTolerance) {
		return true
	}

	base := decimal.Max(a.Abs(), b.Abs(), decimal.NewFromInt(1))
	ratio, _ := diff.Div(base).Float64()
	return ratio < e.config.FuzzyPercentTolerance
}
