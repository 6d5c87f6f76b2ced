// Package sources reads the daily patient tracker.
//
// Every Source returns the tracker as domain.DailyRecord values with the raw
// count cells untouched; coercion happens later in dataprocessing. Columns
// are found by header name (see ColumnMap), so column order in the sheet does
// not matter:
//
//	Date   | New Px | Returning Px | Comments
//	14 Mar | 3      | 2            | ok
//
// SheetsSource reads a Google Sheets tab, XLSXSource a workbook and CSVSource
// a CSV export. New picks one from the source section of the configuration.
package sources
