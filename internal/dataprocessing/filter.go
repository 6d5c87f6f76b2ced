package dataprocessing

import "clinicreport/pkg/contracts/domain"

// FilterMonth returns the records dated inside period, in input order.
// The input slice is not modified.
func FilterMonth(records []domain.NormalizedRecord, period domain.ReportPeriod) []domain.NormalizedRecord {
	out := make([]domain.NormalizedRecord, 0, len(records))
	for _, r := range records {
		if period.Contains(r.Date) {
			out = append(out, r)
		}
	}
	return out
}
