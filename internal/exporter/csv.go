package exporter

import (
	"encoding/csv"
	"fmt"
	"io"

	apperrors "clinicreport/internal/errors"
	"clinicreport/pkg/contracts/domain"
)

var weeklyHeader = []string{"Week End", "Total Px", "New Px", "Returning Px"}

// CSVRenderer writes the weekly breakdown followed by a Monthly Totals row
type CSVRenderer struct {
	// BOMPrefix adds a UTF-8 byte order mark so Excel detects the encoding
	BOMPrefix bool
}

// Render implements Renderer
func (r *CSVRenderer) Render(w io.Writer, doc *domain.ReportDocument) error {
	if r.BOMPrefix {
		if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return apperrors.NewRenderError("write csv bom", err)
		}
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(weeklyHeader); err != nil {
		return apperrors.NewRenderError("write csv header", err)
	}

	for i, week := range doc.Weeks {
		row := []string{
			FormatWeekEnd(week.WeekEnd),
			FormatCount(week.TotalPatients),
			FormatCount(week.TotalNew),
			FormatCount(week.TotalReturning),
		}
		if err := writer.Write(row); err != nil {
			return apperrors.NewRenderError(fmt.Sprintf("write csv week %d", i), err)
		}
	}

	totals := []string{
		"Monthly Totals",
		FormatCount(doc.TotalPatients),
		FormatCount(doc.TotalNewPatients),
		FormatCount(doc.TotalReturningPatients),
	}
	if err := writer.Write(totals); err != nil {
		return apperrors.NewRenderError("write csv totals", err)
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return apperrors.NewRenderError("flush csv", err)
	}
	return nil
}
