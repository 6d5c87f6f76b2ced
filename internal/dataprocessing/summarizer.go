package dataprocessing

import (
	"strings"

	"clinicreport/pkg/contracts/domain"
)

// Summarize computes the monthly totals and comment list of records, which
// are expected to be filtered to period already. Totals are sums of present
// values; comments keep input order and are kept verbatim; comments
// that are blank after trimming are dropped. WeeklyBuckets is left empty.
func Summarize(records []domain.NormalizedRecord, period domain.ReportPeriod) *domain.MonthlySummary {
	summary := &domain.MonthlySummary{
		Period:        period,
		WeeklyBuckets: []domain.WeeklyBucket{},
		Comments:      []string{},
		Records:       len(records),
	}

	for _, r := range records {
		if r.Total.Valid {
			summary.TotalPatients += r.Total.Value
		}

		if r.NewPatients.Valid {
			summary.TotalNewPatients += r.NewPatients.Value
		} else {
			summary.MissingValues++
		}

		if r.ReturningPatients.Valid {
			summary.TotalReturningPatients += r.ReturningPatients.Value
		} else {
			summary.MissingValues++
		}

		if strings.TrimSpace(r.Comment) != "" {
			summary.Comments = append(summary.Comments, r.Comment)
		}
	}

	return summary
}
