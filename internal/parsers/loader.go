package parsers

import (
	"fmt"
	"path/filepath"
	"strings"

	"gst-reconciliation-service/internal/models"
	apperrors "gst-reconciliation-service/pkg/errors"
)

// Load reads the source file at path, dispatching on its extension.
// CSV and XLSX are supported; anything else is a file error.
func Load(path string, config *Config) (*models.Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		loader, err := NewCSVLoader(config)
		if err != nil {
			return nil, err
		}
		return loader.LoadFile(path)
	case ".xlsx", ".xlsm":
		loader, err := NewXLSXLoader(config)
		if err != nil {
			return nil, err
		}
		return loader.LoadFile(path)
	default:
		return nil, apperrors.FileError(apperrors.CodeFileCorrupted, path,
			fmt.Errorf("unsupported file extension '%s'", filepath.Ext(path))).
			WithSuggestion("provide a .csv or .xlsx export")
	}
}
