package exporter

import (
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "clinicreport/internal/errors"
	"clinicreport/pkg/contracts/domain"
)

// Sheet names of the workbook written by XLSXRenderer
const (
	SummarySheet  = "Summary"
	WeeklySheet   = "Weekly"
	CommentsSheet = "Comments"
)

// XLSXRenderer writes the report as a workbook with a summary sheet, the
// weekly breakdown and one comment per row.
type XLSXRenderer struct{}

// Render implements Renderer
func (r *XLSXRenderer) Render(w io.Writer, doc *domain.ReportDocument) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return apperrors.NewRenderError("rename summary sheet", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return apperrors.NewRenderError("create header style", err)
	}

	summary := [][]interface{}{
		{"Title", doc.Title},
		{"Author", doc.Author},
		{"Month", doc.PeriodLabel},
		{"Total Patients Tested", doc.TotalPatients},
		{"Total New Patients", doc.TotalNewPatients},
		{"Total Returning Patients", doc.TotalReturningPatients},
		{"Records", doc.Records},
		{"Skipped Rows", doc.SkippedRows},
		{"Missing Values", doc.MissingValues},
		{"Generated At", doc.GeneratedAt.UTC().Format("2006-01-02 15:04:05")},
	}
	if err := writeRows(f, SummarySheet, summary); err != nil {
		return err
	}
	if err := f.SetCellStyle(SummarySheet, "A1", cellName(1, len(summary)), bold); err != nil {
		return apperrors.NewRenderError("style summary sheet", err)
	}

	if _, err := f.NewSheet(WeeklySheet); err != nil {
		return apperrors.NewRenderError("create weekly sheet", err)
	}
	weekly := make([][]interface{}, 0, len(doc.Weeks)+2)
	weekly = append(weekly, []interface{}{weeklyHeader[0], weeklyHeader[1], weeklyHeader[2], weeklyHeader[3]})
	for _, week := range doc.Weeks {
		weekly = append(weekly, []interface{}{
			FormatWeekEnd(week.WeekEnd), week.TotalPatients, week.TotalNew, week.TotalReturning,
		})
	}
	weekly = append(weekly, []interface{}{
		"Monthly Totals", doc.TotalPatients, doc.TotalNewPatients, doc.TotalReturningPatients,
	})
	if err := writeRows(f, WeeklySheet, weekly); err != nil {
		return err
	}
	if err := f.SetCellStyle(WeeklySheet, "A1", "D1", bold); err != nil {
		return apperrors.NewRenderError("style weekly header", err)
	}
	last := len(weekly)
	if err := f.SetCellStyle(WeeklySheet, cellName(1, last), cellName(4, last), bold); err != nil {
		return apperrors.NewRenderError("style weekly totals", err)
	}

	if _, err := f.NewSheet(CommentsSheet); err != nil {
		return apperrors.NewRenderError("create comments sheet", err)
	}
	comments := [][]interface{}{{"Comments"}}
	if doc.Comments != "" {
		for _, line := range strings.Split(doc.Comments, "\n") {
			comments = append(comments, []interface{}{line})
		}
	}
	if err := writeRows(f, CommentsSheet, comments); err != nil {
		return err
	}
	if err := f.SetCellStyle(CommentsSheet, "A1", "A1", bold); err != nil {
		return apperrors.NewRenderError("style comments header", err)
	}

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return apperrors.NewRenderError("write workbook", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		if err := f.SetSheetRow(sheet, cellName(1, i+1), &row); err != nil {
			return apperrors.NewRenderError("write "+sheet+" row", err)
		}
	}
	return nil
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
