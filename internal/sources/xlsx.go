package sources

import (
	"context"
	"log/slog"

	"github.com/xuri/excelize/v2"

	apperrors "clinicreport/internal/errors"
	"clinicreport/internal/validation"
	"clinicreport/pkg/contracts/domain"
)

// XLSXSource reads the tracker from an exported workbook
type XLSXSource struct {
	path      string
	sheet     string
	columns   ColumnMap
	validator *validation.FileValidator
	logger    *slog.Logger
}

// NewXLSXSource reads sheet from the workbook at path; an empty sheet name
// selects the first sheet.
func NewXLSXSource(path, sheet string, columns ColumnMap, logger *slog.Logger) *XLSXSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &XLSXSource{
		path:      path,
		sheet:     sheet,
		columns:   columns,
		validator: validation.NewFileValidator(logger),
		logger:    logger.With(slog.String("component", "xlsx_source")),
	}
}

// Fetch implements Source. Cells are read as displayed text.
func (s *XLSXSource) Fetch(ctx context.Context) ([]domain.DailyRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := s.validator.ValidateTrackerFile(s.path, ".xlsx", ".xlsm"); err != nil {
		return nil, err
	}

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, apperrors.NewSourceError("open tracker workbook", err).WithContext("path", s.path)
	}
	defer f.Close()

	sheet := s.sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, apperrors.NewSourceError("read tracker sheet", err).
			WithContext("path", s.path).
			WithContext("sheet", sheet)
	}

	records, err := s.columns.Records(StringRows(rows))
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "fetched tracker rows",
		slog.String("path", s.path),
		slog.String("sheet", sheet),
		slog.Int("rows", len(records)))

	return records, nil
}
