package parsers

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gst-reconciliation-service/internal/models"
	apperrors "gst-reconciliation-service/pkg/errors"
)

// CSVLoader reads a delimited export into a raw table.
type CSVLoader struct {
	config *Config
}

// NewCSVLoader creates a CSV loader. A nil config selects the defaults.
func NewCSVLoader(config *Config) (*CSVLoader, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, apperrors.ConfigurationError(apperrors.CodeInvalidConfig, err.Error(), err)
	}
	return &CSVLoader{config: config}, nil
}

// LoadFile reads the CSV file at path. The first row is the header;
// every following row becomes one record keyed by the trimmed headers.
func (l *CSVLoader) LoadFile(path string) (*models.Table, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.FileError(apperrors.CodeFileNotFound, path, err)
		}
		if os.IsPermission(err) {
			return nil, apperrors.FileError(apperrors.CodeFilePermission, path, err)
		}
		return nil, apperrors.FileError(apperrors.CodeFileCorrupted, path, err)
	}
	defer file.Close()

	table, err := l.Load(file, tableName(path))
	if err != nil {
		if re, ok := apperrors.AsReconcilerError(err); ok {
			return nil, re.WithContext("file_path", path)
		}
		return nil, err
	}
	return table, nil
}

// Load reads CSV content from r into a table with the given name.
func (l *CSVLoader) Load(r io.Reader, name string) (*models.Table, error) {
	reader := csv.NewReader(r)
	reader.Comma = l.config.Delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, apperrors.ParseError(apperrors.CodeEmptyTable, name, "", err)
	}
	if err != nil {
		return nil, apperrors.ParseError(apperrors.CodeInvalidFormat, name, "", err)
	}

	headers := make([]string, len(header))
	for i, h := range header {
		headers[i] = l.config.clean(h)
	}

	table := models.NewTable(name)
	for _, h := range headers {
		if h != "" {
			table.Headers = append(table.Headers, h)
		}
	}

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperrors.ParseError(apperrors.CodeInvalidFormat, name, "", err)
		}

		if l.config.SkipEmptyRows && emptyRow(row) {
			continue
		}

		rec := make(models.Record, len(headers))
		for i, h := range headers {
			if h == "" || i >= len(row) {
				continue
			}
			rec[h] = models.TextValue(l.config.clean(row[i]))
		}
		table.Append(rec)

		if l.config.MaxRows > 0 && table.Len() >= l.config.MaxRows {
			break
		}
	}

	if table.Len() == 0 {
		return nil, apperrors.ParseError(apperrors.CodeEmptyTable, name, "", nil)
	}

	return table, nil
}

func tableName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
