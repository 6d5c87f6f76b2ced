package sources

import (
	"context"
	"encoding/csv"
	"log/slog"
	"os"
	"strings"

	apperrors "clinicreport/internal/errors"
	"clinicreport/internal/validation"
	"clinicreport/pkg/contracts/domain"
)

const utf8BOM = "\ufeff"

// CSVSource reads the tracker from a CSV export
type CSVSource struct {
	path      string
	columns   ColumnMap
	validator *validation.FileValidator
	logger    *slog.Logger
}

// NewCSVSource creates a source for the CSV file at path
func NewCSVSource(path string, columns ColumnMap, logger *slog.Logger) *CSVSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVSource{
		path:      path,
		columns:   columns,
		validator: validation.NewFileValidator(logger),
		logger:    logger.With(slog.String("component", "csv_source")),
	}
}

// Fetch implements Source. A leading UTF-8 byte order mark is ignored and
// rows may have differing field counts.
func (s *CSVSource) Fetch(ctx context.Context) ([]domain.DailyRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := s.validator.ValidateTrackerFile(s.path, ".csv", ".txt"); err != nil {
		return nil, err
	}

	file, err := os.Open(s.path)
	if err != nil {
		return nil, apperrors.NewSourceError("open tracker csv", err).WithContext("path", s.path)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.NewParsingError("parse tracker csv", err).WithContext("path", s.path)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], utf8BOM)
	}

	records, err := s.columns.Records(StringRows(rows))
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "fetched tracker rows",
		slog.String("path", s.path),
		slog.Int("rows", len(records)))

	return records, nil
}
