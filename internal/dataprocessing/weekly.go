package dataprocessing

import (
	"sort"
	"time"

	"clinicreport/pkg/contracts/domain"
)

// WeekEnding returns the first weekEnd weekday on or after date.
func WeekEnding(date time.Time, weekEnd time.Weekday) time.Time {
	offset := (int(weekEnd) - int(date.Weekday()) + 7) % 7
	return date.AddDate(0, 0, offset)
}

// WeeklyBuckets groups records by the week they end in. A bucket whose week
// ends after the last day of period is labelled with that last day instead.
// Counts are sums of present values; weeks without records get no bucket.
// Buckets are returned in ascending WeekEnd order.
func WeeklyBuckets(records []domain.NormalizedRecord, period domain.ReportPeriod, weekEnd time.Weekday) []domain.WeeklyBucket {
	last := period.End()
	byLabel := make(map[int64]*domain.WeeklyBucket)

	for _, r := range records {
		label := WeekEnding(r.Date, weekEnd)
		if label.After(last) {
			label = last
		}

		b, ok := byLabel[label.Unix()]
		if !ok {
			b = &domain.WeeklyBucket{WeekEnd: label}
			byLabel[label.Unix()] = b
		}

		b.Days++
		if r.Total.Valid {
			b.TotalPatients += r.Total.Value
		}
		if r.NewPatients.Valid {
			b.TotalNew += r.NewPatients.Value
		}
		if r.ReturningPatients.Valid {
			b.TotalReturning += r.ReturningPatients.Value
		}
	}

	buckets := make([]domain.WeeklyBucket, 0, len(byLabel))
	for _, b := range byLabel {
		buckets = append(buckets, *b)
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].WeekEnd.Before(buckets[j].WeekEnd)
	})

	return buckets
}
