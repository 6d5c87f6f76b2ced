package sources

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"clinicreport/internal/config"
	apperrors "clinicreport/internal/errors"
	"clinicreport/pkg/contracts/domain"
)

// Source delivers the daily rows of the patient tracker
type Source interface {
	Fetch(ctx context.Context) ([]domain.DailyRecord, error)
}

// SourceFunc adapts a plain function to Source
type SourceFunc func(ctx context.Context) ([]domain.DailyRecord, error)

// Fetch calls f
func (f SourceFunc) Fetch(ctx context.Context) ([]domain.DailyRecord, error) {
	return f(ctx)
}

// New builds the source selected by cfg.Kind
func New(ctx context.Context, cfg config.SourceConfig, logger *slog.Logger) (Source, error) {
	columns := ColumnMapFromConfig(cfg.Columns)

	switch strings.ToLower(cfg.Kind) {
	case "sheets":
		return NewSheetsSource(ctx, SheetsConfig{
			SpreadsheetID:   cfg.SpreadsheetID,
			SheetName:       cfg.SheetName,
			CredentialsFile: cfg.CredentialsFile,
			Columns:         columns,
		}, logger)
	case "xlsx":
		return NewXLSXSource(cfg.Path, cfg.SheetName, columns, logger), nil
	case "csv":
		return NewCSVSource(cfg.Path, columns, logger), nil
	default:
		return nil, apperrors.NewConfigError(fmt.Sprintf("unknown source kind %q", cfg.Kind), nil)
	}
}

// ColumnMap names the tracker header cells the sources look for. Matching
// ignores case and surrounding whitespace.
type ColumnMap struct {
	Date              string
	NewPatients       string
	ReturningPatients string
	Comments          string
}

// DefaultColumnMap returns the header names of the clinic's tracker
func DefaultColumnMap() ColumnMap {
	return ColumnMap{
		Date:              config.DefaultDateColumn,
		NewPatients:       config.DefaultNewPatientsColumn,
		ReturningPatients: config.DefaultReturningPatientsColumn,
		Comments:          config.DefaultCommentsColumn,
	}
}

// ColumnMapFromConfig fills unset names from DefaultColumnMap
func ColumnMapFromConfig(c config.ColumnsConfig) ColumnMap {
	m := DefaultColumnMap()
	if c.Date != "" {
		m.Date = c.Date
	}
	if c.NewPatients != "" {
		m.NewPatients = c.NewPatients
	}
	if c.ReturningPatients != "" {
		m.ReturningPatients = c.ReturningPatients
	}
	if c.Comments != "" {
		m.Comments = c.Comments
	}
	return m
}

type columnIndex struct {
	date, newPatients, returningPatients, comments int
}

func (m ColumnMap) locate(header []any) (columnIndex, error) {
	idx := columnIndex{date: -1, newPatients: -1, returningPatients: -1, comments: -1}
	for i, cell := range header {
		name := strings.TrimSpace(cellText(cell))
		switch {
		case idx.date < 0 && strings.EqualFold(name, strings.TrimSpace(m.Date)):
			idx.date = i
		case idx.newPatients < 0 && strings.EqualFold(name, strings.TrimSpace(m.NewPatients)):
			idx.newPatients = i
		case idx.returningPatients < 0 && strings.EqualFold(name, strings.TrimSpace(m.ReturningPatients)):
			idx.returningPatients = i
		case idx.comments < 0 && m.Comments != "" && strings.EqualFold(name, strings.TrimSpace(m.Comments)):
			idx.comments = i
		}
	}

	var missing []string
	if idx.date < 0 {
		missing = append(missing, m.Date)
	}
	if idx.newPatients < 0 {
		missing = append(missing, m.NewPatients)
	}
	if idx.returningPatients < 0 {
		missing = append(missing, m.ReturningPatients)
	}
	if len(missing) > 0 {
		return idx, apperrors.NewSourceError("read tracker header",
			fmt.Errorf("columns not found: %q", missing))
	}
	return idx, nil
}

// Records maps spreadsheet rows to daily records. The first non-empty row is
// the header; rows whose cells are all empty are skipped. Row numbers are
// 1-based positions in rows. Count cells keep their raw value and a short
// row leaves its trailing fields unset. An empty sheet yields no records.
func (m ColumnMap) Records(rows [][]any) ([]domain.DailyRecord, error) {
	start := 0
	for start < len(rows) && blankRow(rows[start]) {
		start++
	}
	if start == len(rows) {
		return []domain.DailyRecord{}, nil
	}

	idx, err := m.locate(rows[start])
	if err != nil {
		return nil, err
	}

	records := make([]domain.DailyRecord, 0, len(rows)-start-1)
	for i := start + 1; i < len(rows); i++ {
		row := rows[i]
		if blankRow(row) {
			continue
		}
		rec := domain.DailyRecord{
			Row:               i + 1,
			DateText:          strings.TrimSpace(cellText(cellAt(row, idx.date))),
			NewPatients:       cellAt(row, idx.newPatients),
			ReturningPatients: cellAt(row, idx.returningPatients),
		}
		if idx.comments >= 0 {
			rec.Comment = cellText(cellAt(row, idx.comments))
		}
		records = append(records, rec)
	}

	return records, nil
}

// StringRows converts text rows, as returned by CSV and workbook readers, for
// use with Records.
func StringRows(rows [][]string) [][]any {
	out := make([][]any, len(rows))
	for i, row := range rows {
		cells := make([]any, len(row))
		for j, c := range row {
			cells[j] = c
		}
		out[i] = cells
	}
	return out
}

func cellAt(row []any, i int) any {
	if i < 0 || i >= len(row) {
		return nil
	}
	return row[i]
}

func cellText(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	case float64:
		return strconv.FormatFloat(c, 'f', -1, 64)
	default:
		return fmt.Sprint(c)
	}
}

func blankRow(row []any) bool {
	for _, c := range row {
		if strings.TrimSpace(cellText(c)) != "" {
			return false
		}
	}
	return true
}
