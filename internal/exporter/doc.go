// Package exporter renders a monthly report document into its output formats.
//
// Every format implements Renderer:
//
// LaTeXRenderer: the printable report, an article with a monthly summary
// block, a weekly longtable closed by a bold Monthly Totals row and the
// collected comments in a verbatim block.
//
// CSVRenderer: the weekly breakdown plus a totals row, optionally prefixed
// with a UTF-8 BOM for Excel.
//
// XLSXRenderer: a workbook with Summary, Weekly and Comments sheets.
//
// JSONRenderer: the document as JSON, used by the HTTP API.
//
// Example usage:
//
//	r, err := exporter.ForFormat(domain.ReportFormatLaTeX)
//	if err != nil {
//		return err
//	}
//	err = exporter.WriteFile("out/monthly_eye_clinic_report.tex", r, doc)
package exporter
