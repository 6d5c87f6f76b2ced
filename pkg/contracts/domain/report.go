package domain

import (
	"fmt"
	"strings"
	"time"
)

// ReportPeriod identifies the month a report covers.
type ReportPeriod struct {
	Year  int        `json:"year" validate:"min=1900,max=9999"`
	Month time.Month `json:"month" validate:"min=1,max=12"`
}

// NewReportPeriod returns the period containing t.
func NewReportPeriod(t time.Time) ReportPeriod {
	return ReportPeriod{Year: t.Year(), Month: t.Month()}
}

// Label renders the period as "March, 2024".
func (p ReportPeriod) Label() string {
	return fmt.Sprintf("%s, %d", p.Month, p.Year)
}

// String implements fmt.Stringer.
func (p ReportPeriod) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// Start returns midnight UTC of the first day of the period.
func (p ReportPeriod) Start() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
}

// End returns midnight UTC of the last day of the period.
func (p ReportPeriod) End() time.Time {
	return p.Start().AddDate(0, 1, -1)
}

// Contains reports whether t falls on a day inside the period.
func (p ReportPeriod) Contains(t time.Time) bool {
	return t.Year() == p.Year && t.Month() == p.Month
}

// WeeklyBucket holds the sums for one week-ending boundary inside the period.
type WeeklyBucket struct {
	WeekEnd        time.Time `json:"week_end"`
	TotalPatients  float64   `json:"total_patients"`
	TotalNew       float64   `json:"total_new"`
	TotalReturning float64   `json:"total_returning"`
	Days           int       `json:"days"`
}

// MonthlySummary is the aggregate of every record in a reporting period.
type MonthlySummary struct {
	Period                 ReportPeriod   `json:"period"`
	TotalPatients          float64        `json:"total_patients"`
	TotalNewPatients       float64        `json:"total_new_patients"`
	TotalReturningPatients float64        `json:"total_returning_patients"`
	WeeklyBuckets          []WeeklyBucket `json:"weekly_buckets"`
	Comments               []string       `json:"comments"`

	// Data quality counters
	Records       int `json:"records"`
	SkippedRows   int `json:"skipped_rows"`
	MissingValues int `json:"missing_values"`
}

// CommentsText joins the collected comments with newlines.
func (s *MonthlySummary) CommentsText() string {
	return strings.Join(s.Comments, "\n")
}

// ReportDocument is everything a renderer needs to produce the monthly report.
type ReportDocument struct {
	Title                  string         `json:"title"`
	Author                 string         `json:"author,omitempty"`
	PeriodLabel            string         `json:"period_label"`
	Period                 ReportPeriod   `json:"period"`
	TotalPatients          float64        `json:"total_patients"`
	TotalNewPatients       float64        `json:"total_new_patients"`
	TotalReturningPatients float64        `json:"total_returning_patients"`
	Weeks                  []WeeklyBucket `json:"weeks"`
	Comments               string         `json:"comments"`
	Records                int            `json:"records"`
	SkippedRows            int            `json:"skipped_rows"`
	MissingValues          int            `json:"missing_values"`
	GeneratedAt            time.Time      `json:"generated_at"`
}

// NewReportDocument builds the renderer input from a summary.
func NewReportDocument(title, author string, summary *MonthlySummary, generatedAt time.Time) *ReportDocument {
	weeks := summary.WeeklyBuckets
	if weeks == nil {
		weeks = []WeeklyBucket{}
	}
	return &ReportDocument{
		Title:                  title,
		Author:                 author,
		PeriodLabel:            summary.Period.Label(),
		Period:                 summary.Period,
		TotalPatients:          summary.TotalPatients,
		TotalNewPatients:       summary.TotalNewPatients,
		TotalReturningPatients: summary.TotalReturningPatients,
		Weeks:                  weeks,
		Comments:               summary.CommentsText(),
		Records:                summary.Records,
		SkippedRows:            summary.SkippedRows,
		MissingValues:          summary.MissingValues,
		GeneratedAt:            generatedAt,
	}
}

// ReportFormat names an output format.
type ReportFormat string

const (
	ReportFormatLaTeX ReportFormat = "tex"
	ReportFormatCSV   ReportFormat = "csv"
	ReportFormatExcel ReportFormat = "xlsx"
	ReportFormatJSON  ReportFormat = "json"
)

// ParseReportFormat validates a format name.
func ParseReportFormat(s string) (ReportFormat, error) {
	switch f := ReportFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case ReportFormatLaTeX, ReportFormatCSV, ReportFormatExcel, ReportFormatJSON:
		return f, nil
	case "latex":
		return ReportFormatLaTeX, nil
	case "excel":
		return ReportFormatExcel, nil
	default:
		return "", fmt.Errorf("unsupported report format %q", s)
	}
}
