package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gst-reconciliation-service/cmd/reconciler/config"
	"gst-reconciliation-service/internal/mapping"
	"gst-reconciliation-service/internal/models"
	"gst-reconciliation-service/internal/parsers"
	"gst-reconciliation-service/internal/reconciler"
	"gst-reconciliation-service/internal/reporter"
	apperrors "gst-reconciliation-service/pkg/errors"
	"gst-reconciliation-service/pkg/logger"

	"github.com/spf13/cobra"
)

var (
	variantName string
	sourceAPath string
	sourceBPath string
	sourceCPath string
	sheetA      string
	sheetB      string
	sheetC      string

	dateFrom string
	dateTo   string

	amountThreshold  float64
	percentThreshold float64

	outputFormat   string
	outputPath     string
	includeMatched bool
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile two or three source files",
	Long: `Reconcile runs one reconciliation variant against the given source
files. Sources may be CSV or XLSX exports; columns are matched by the
header names each variant declares.

Row-level variants (gstr1_books, gstr1_eway, ...) match individual
invoices and report mismatched amounts and one-sided records.
Summary-table variants (gstr3b_gstr1, itc_gstr3b_gstr2b, ...) compare
per-table sums. turnover_recon compares turnover components pairwise
across three sources and needs --source-c.`,
	RunE: runReconcile,
}

func init() {
	rootCmd.AddCommand(reconcileCmd)

	reconcileCmd.Flags().StringVar(&variantName, "variant", "", "reconciliation variant (see 'gst-recon variants')")
	reconcileCmd.Flags().StringVar(&sourceAPath, "source-a", "", "first source file (CSV or XLSX)")
	reconcileCmd.Flags().StringVar(&sourceBPath, "source-b", "", "second source file (CSV or XLSX)")
	reconcileCmd.Flags().StringVar(&sourceCPath, "source-c", "", "third source file, for three-source variants")
	reconcileCmd.Flags().StringVar(&sheetA, "sheet-a", "", "worksheet name for source A (XLSX only)")
	reconcileCmd.Flags().StringVar(&sheetB, "sheet-b", "", "worksheet name for source B (XLSX only)")
	reconcileCmd.Flags().StringVar(&sheetC, "sheet-c", "", "worksheet name for source C (XLSX only)")

	reconcileCmd.Flags().StringVar(&dateFrom, "from", "", "only rows dated on or after this date (YYYY-MM-DD)")
	reconcileCmd.Flags().StringVar(&dateTo, "to", "", "only rows dated on or before this date (YYYY-MM-DD)")

	reconcileCmd.Flags().Float64Var(&amountThreshold, "amount-threshold", 1.0, "absolute difference below which amounts are considered equal")
	reconcileCmd.Flags().Float64Var(&percentThreshold, "percent-threshold", 0.01, "relative difference (fraction) below which amounts are considered equal")

	reconcileCmd.Flags().StringVar(&outputFormat, "output-format", "console", "output format: console, json, csv, xlsx")
	reconcileCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file path (required for xlsx, optional otherwise)")
	reconcileCmd.Flags().BoolVar(&includeMatched, "include-matched", false, "also list clean matches in the report")

	reconcileCmd.MarkFlagRequired("variant")
	reconcileCmd.MarkFlagRequired("source-a")
	reconcileCmd.MarkFlagRequired("source-b")
}

func runReconcile(cmd *cobra.Command, args []string) error {
	log := logger.GetGlobalLogger().WithComponent("cli")

	variant, err := mapping.ParseVariant(variantName)
	if err != nil {
		return apperrors.ConfigurationError(apperrors.CodeUnknownVariant, variantName, err)
	}

	dates, err := config.ParseDateRange(dateFrom, dateTo)
	if err != nil {
		return err
	}

	matcherConfig, err := config.CreateMatcherConfig(amountThreshold, percentThreshold)
	if err != nil {
		return err
	}

	reportConfig, err := config.CreateReportConfig(outputFormat, outputPath, includeMatched)
	if err != nil {
		return err
	}

	tableA, err := loadSource(sourceAPath, sheetA)
	if err != nil {
		return err
	}
	tableB, err := loadSource(sourceBPath, sheetB)
	if err != nil {
		return err
	}

	var tableC *models.Table
	if sourceCPath != "" {
		tableC, err = loadSource(sourceCPath, sheetC)
		if err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	service := reconciler.NewService(logger.GetGlobalLogger())
	outcome, err := service.Reconcile(ctx, tableA, tableB, tableC, reconciler.Options{
		Variant:       variant,
		MatcherConfig: matcherConfig,
		Dates:         dates,
	})
	if err != nil {
		return err
	}

	log.WithFields(logger.Fields{
		"variant":  variant,
		"duration": time.Since(start),
	}).Debug("writing report")

	return reporter.NewReporter(reportConfig).Write(outcome)
}

func loadSource(path, sheet string) (*models.Table, error) {
	parserConfig := parsers.DefaultConfig()
	parserConfig.SheetName = sheet
	return parsers.Load(path, parserConfig)
}
