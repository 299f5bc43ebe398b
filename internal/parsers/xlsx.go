package parsers

import (
	"gst-reconciliation-service/internal/models"
	apperrors "gst-reconciliation-service/pkg/errors"

	"github.com/xuri/excelize/v2"
)

// XLSXLoader reads a worksheet of an Excel workbook into a raw table.
// GST portal downloads and most register exports arrive as XLSX.
type XLSXLoader struct {
	config *Config
}

// NewXLSXLoader creates an XLSX loader. A nil config selects the
// defaults.
func NewXLSXLoader(config *Config) (*XLSXLoader, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, apperrors.ConfigurationError(apperrors.CodeInvalidConfig, err.Error(), err)
	}
	return &XLSXLoader{config: config}, nil
}

// LoadFile reads the configured sheet (or the first one) of the
// workbook at path. Cells come back as formatted strings; coercion to
// amounts and dates happens downstream.
func (l *XLSXLoader) LoadFile(path string) (*models.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.FileError(apperrors.CodeFileCorrupted, path, err)
	}
	defer f.Close()

	sheet := l.config.SheetName
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, apperrors.ParseError(apperrors.CodeInvalidFormat, path, sheet, err)
	}
	if len(rows) == 0 {
		return nil, apperrors.ParseError(apperrors.CodeEmptyTable, path, sheet, nil)
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = l.config.clean(h)
	}

	table := models.NewTable(tableName(path))
	for _, h := range headers {
		if h != "" {
			table.Headers = append(table.Headers, h)
		}
	}

	for _, row := range rows[1:] {
		if l.config.SkipEmptyRows && emptyRow(row) {
			continue
		}

		rec := make(models.Record, len(headers))
		for i, h := range headers {
			if h == "" {
				continue
			}
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			rec[h] = models.TextValue(l.config.clean(cell))
		}
		table.Append(rec)

		if l.config.MaxRows > 0 && table.Len() >= l.config.MaxRows {
			break
		}
	}

	if table.Len() == 0 {
		return nil, apperrors.ParseError(apperrors.CodeEmptyTable, path, sheet, nil)
	}

	return table, nil
}
