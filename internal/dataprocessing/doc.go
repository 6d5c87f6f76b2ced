// Package dataprocessing turns raw patient tracker rows into a monthly summary.
//
// The pipeline runs in one pass inside Aggregator.AggregateFor:
//
//	ResolveDate / ResolveNearest   "14 Mar" + reference year -> 2024-03-14
//	FilterMonth                    keep rows inside the reporting month
//	Coerce                         raw cell -> domain.Count (missing on junk)
//	WeeklyBuckets                  sums per week-ending day, month-end clamped
//	Summarize                      monthly totals and comment list
//
// # Missing values
//
// A count that cannot be read as a number is the missing marker, never zero.
// A row total is missing when either of its parts is. Every sum in a summary
// or bucket adds the present values only, so one bad cell does not hide the
// rest of the month.
//
// # Weeks
//
// Weeks end on a configurable weekday, Sunday by default. A date is assigned
// to the first week-ending day on or after it; when that day falls in the next
// month the bucket is labelled with the last day of the reporting month.
// Weeks without rows produce no bucket.
//
// # Years
//
// Tracker dates carry no year. The caller supplies a reference year; with
// YearPolicyNearest each date may instead move to the adjacent year that puts
// it closest to the reporting month, which handles a January run over
// December rows.
package dataprocessing
