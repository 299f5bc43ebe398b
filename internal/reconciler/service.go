// Package reconciler orchestrates one reconciliation call: mapping
// lookup, source normalization, and dispatch to the granularity-specific
// comparer. The matching engine itself lives in internal/matcher.
package reconciler

import (
	"context"
	"time"

	"gst-reconciliation-service/internal/mapping"
	"gst-reconciliation-service/internal/matcher"
	"gst-reconciliation-service/internal/models"
	apperrors "gst-reconciliation-service/pkg/errors"
	"gst-reconciliation-service/pkg/logger"
)

// Options configures one reconciliation call.
type Options struct {
	Variant mapping.Variant

	// MatcherConfig holds the comparison tolerances; nil selects the
	// defaults.
	MatcherConfig *matcher.Config

	// Dates restricts row-level variants to rows inside the range.
	// Ignored by aggregate variants, which have no date field.
	Dates DateRange
}

// Outcome is the complete result of one reconciliation call. Exactly
// one of Row, Aggregate, and Turnover is set, according to Granularity.
type Outcome struct {
	Variant     mapping.Variant     `json:"variant"`
	Granularity mapping.Granularity `json:"-"`

	Row       *matcher.Result  `json:"row,omitempty"`
	Aggregate *AggregateResult `json:"aggregate,omitempty"`
	Turnover  *TurnoverResult  `json:"turnover,omitempty"`

	// SkippedFields were declared by the mapping but missing from at
	// least one source; they were excluded from comparison.
	SkippedFields []string `json:"skipped_fields,omitempty"`

	StatsA *SourceStats `json:"stats_a,omitempty"`
	StatsB *SourceStats `json:"stats_b,omitempty"`
	StatsC *SourceStats `json:"stats_c,omitempty"`

	Duration time.Duration `json:"duration"`
}

// Service runs reconciliation calls. It is stateless between calls and
// safe for reuse.
type Service struct {
	log logger.Logger
}

// NewService creates a reconciliation service.
func NewService(log logger.Logger) *Service {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Service{log: log.WithComponent("reconciler")}
}

// Reconcile runs one call against the raw source tables. tableC is
// consulted only by three-source variants and may otherwise be nil.
// Configuration problems (unknown variant, missing key columns, invalid
// tolerances) abort with an error and nothing partial; data-quality
// problems never do.
func (s *Service) Reconcile(ctx context.Context, tableA, tableB, tableC *models.Table, opts Options) (*Outcome, error) {
	start := time.Now()

	m, err := mapping.Get(opts.Variant)
	if err != nil {
		return nil, apperrors.ConfigurationError(apperrors.CodeMissingMapping, opts.Variant.String(), err)
	}

	config := opts.MatcherConfig
	if config == nil {
		config = matcher.DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, apperrors.ConfigurationError(apperrors.CodeInvalidConfig, err.Error(), err)
	}

	if m.Granularity == mapping.GranularityThreeSource && tableC.Len() == 0 {
		return nil, apperrors.ConfigurationError(apperrors.CodeInvalidConfig,
			"variant "+m.Variant.String()+" requires a third source", nil)
	}

	s.log.WithFields(logger.Fields{
		"variant":     m.Variant,
		"granularity": m.Granularity.String(),
		"rows_a":      tableA.Len(),
		"rows_b":      tableB.Len(),
		"rows_c":      tableC.Len(),
	}).Info("starting reconciliation")

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	normalizer := NewNormalizer(m, s.log)
	normA, statsA := normalizer.NormalizeSourceA(tableA, opts.Dates)
	normB, statsB := normalizer.NormalizeSourceB(tableB, opts.Dates)

	outcome := &Outcome{
		Variant:     m.Variant,
		Granularity: m.Granularity,
		StatsA:      statsA,
		StatsB:      statsB,
	}

	switch m.Granularity {
	case mapping.GranularityRow:
		if err := s.reconcileRows(ctx, m, normA, normB, config, outcome); err != nil {
			return nil, err
		}
	case mapping.GranularityAggregate:
		outcome.Aggregate = compareAggregate(m, normA, normB, config)
	case mapping.GranularityThreeSource:
		normC, statsC := normalizer.NormalizeSourceC(tableC, opts.Dates)
		outcome.StatsC = statsC
		outcome.Turnover = compareTurnover(m, normA, normB, normC, config)
	}

	outcome.Duration = time.Since(start)

	s.log.WithFields(logger.Fields{
		"variant":  m.Variant,
		"duration": outcome.Duration,
	}).Info("reconciliation complete")

	return outcome, nil
}

func (s *Service) reconcileRows(ctx context.Context, m *mapping.Mapping, normA, normB *models.Table, config *matcher.Config, outcome *Outcome) error {
	resolved, err := m.Resolve(Headers(normA), Headers(normB))
	if err != nil {
		return apperrors.ConfigurationError(apperrors.CodeMissingKeyField, err.Error(), err)
	}
	outcome.SkippedFields = resolved.SkippedFields

	for _, field := range resolved.SkippedFields {
		s.log.WithFields(logger.Fields{
			"variant": m.Variant,
			"field":   field,
		}).Warn("field missing from a source, excluded from comparison")
	}

	engine, err := matcher.NewEngine(resolved, config)
	if err != nil {
		return apperrors.ConfigurationError(apperrors.CodeInvalidConfig, err.Error(), err)
	}
	engine.LoadSourceA(normA)
	engine.LoadSourceB(normB)

	if err := ctx.Err(); err != nil {
		return err
	}

	result, err := engine.Reconcile()
	if err != nil {
		return apperrors.ReconciliationError(apperrors.CodeMatchingFailed, "row matching", err)
	}
	outcome.Row = result

	return nil
}
