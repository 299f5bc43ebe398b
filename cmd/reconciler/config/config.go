// Package config builds component configurations from CLI flag values.
package config

import (
	"os"
	"time"

	"gst-reconciliation-service/internal/matcher"
	"gst-reconciliation-service/internal/reconciler"
	"gst-reconciliation-service/internal/reporter"
	apperrors "gst-reconciliation-service/pkg/errors"

	"github.com/shopspring/decimal"
)

// ParseDateRange builds a date-range filter from the --from/--to flag
// values. Empty strings leave the corresponding bound open.
func ParseDateRange(from, to string) (reconciler.DateRange, error) {
	var r reconciler.DateRange

	parse := func(s, flag string) (time.Time, error) {
		if s == "" {
			return time.Time{}, nil
		}
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return time.Time{}, apperrors.ValidationError(apperrors.CodeInvalidDate, flag, s, err)
		}
		return t, nil
	}

	var err error
	if r.From, err = parse(from, "from"); err != nil {
		return r, err
	}
	if r.To, err = parse(to, "to"); err != nil {
		return r, err
	}

	if !r.From.IsZero() && !r.To.IsZero() && r.To.Before(r.From) {
		return r, apperrors.ValidationError(apperrors.CodeInvalidDate, "to", to, nil).
			WithSuggestion("the --to date must not precede --from")
	}

	return r, nil
}

// CreateMatcherConfig builds the comparison tolerances from the CLI
// threshold flags.
func CreateMatcherConfig(amountThreshold, percentThreshold float64) (*matcher.Config, error) {
	config := matcher.DefaultConfig()
	config.AmountThreshold = decimal.NewFromFloat(amountThreshold)
	config.PercentageThreshold = percentThreshold

	if err := config.Validate(); err != nil {
		return nil, apperrors.ConfigurationError(apperrors.CodeInvalidConfig, err.Error(), err)
	}
	return config, nil
}

// CreateReportConfig builds the reporter configuration for the chosen
// output format and destination.
func CreateReportConfig(format, outputPath string, includeMatched bool) (*reporter.Config, error) {
	f, err := reporter.ParseFormat(format)
	if err != nil {
		return nil, apperrors.ConfigurationError(apperrors.CodeInvalidConfig, format, err)
	}

	config := reporter.DefaultConfig()
	config.Format = f
	config.IncludeMatched = includeMatched

	switch f {
	case reporter.FormatXLSX:
		if outputPath == "" {
			return nil, apperrors.ConfigurationError(apperrors.CodeInvalidConfig,
				"xlsx output requires --output", nil)
		}
		config.OutputPath = outputPath
	default:
		if outputPath != "" {
			file, err := os.Create(outputPath)
			if err != nil {
				return nil, apperrors.FileError(apperrors.CodeFilePermission, outputPath, err)
			}
			config.Writer = file
		}
	}

	// Machine-readable formats dump everything; truncation is a console
	// affordance.
	if f != reporter.FormatConsole {
		config.MaxDetailRows = 0
	}

	return config, nil
}
