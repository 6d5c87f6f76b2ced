package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"clinicreport/internal/config"
	apperrors "clinicreport/internal/errors"
	"clinicreport/pkg/contracts/domain"
)

// BadDatePolicy decides what happens to a row whose date cannot be resolved
type BadDatePolicy string

const (
	// BadDateAbort fails the whole run on the first bad date
	BadDateAbort BadDatePolicy = "abort"
	// BadDateSkip drops the row with a warning and counts it
	BadDateSkip BadDatePolicy = "skip"
)

// AggregatorConfig fixes the policies of an aggregation run
type AggregatorConfig struct {
	WeekEnd    time.Weekday
	OnBadDate  BadDatePolicy
	YearPolicy YearPolicy
}

// DefaultAggregatorConfig returns weeks ending Sunday, abort on bad dates and
// a fixed reference year.
func DefaultAggregatorConfig() AggregatorConfig {
	return AggregatorConfig{
		WeekEnd:    time.Sunday,
		OnBadDate:  BadDateAbort,
		YearPolicy: YearPolicyFixed,
	}
}

// NewAggregatorConfig translates the report section of the configuration
func NewAggregatorConfig(rc config.ReportConfig) (AggregatorConfig, error) {
	cfg := DefaultAggregatorConfig()

	weekEnd, err := ParseWeekday(rc.WeekEndsOn)
	if err != nil {
		return cfg, apperrors.NewConfigError("report.week_ends_on", err)
	}
	cfg.WeekEnd = weekEnd

	switch p := BadDatePolicy(strings.ToLower(strings.TrimSpace(rc.OnBadDate))); p {
	case BadDateAbort, BadDateSkip:
		cfg.OnBadDate = p
	case "":
	default:
		return cfg, apperrors.NewConfigError("report.on_bad_date", fmt.Errorf("unknown policy %q", rc.OnBadDate))
	}

	yp, err := ParseYearPolicy(rc.YearPolicy)
	if err != nil {
		return cfg, apperrors.NewConfigError("report.year_policy", err)
	}
	cfg.YearPolicy = yp

	return cfg, nil
}

// Aggregator turns tracker rows into a monthly summary. It keeps no state
// between calls and is safe for concurrent use.
type Aggregator struct {
	cfg    AggregatorConfig
	logger *slog.Logger
}

// NewAggregator creates an aggregator with the given policies
func NewAggregator(cfg AggregatorConfig, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "aggregator")),
	}
}

// Config returns the policies of the aggregator
func (a *Aggregator) Config() AggregatorConfig {
	return a.cfg
}

// Aggregate summarizes records for period using the period's year as the
// reference year.
func (a *Aggregator) Aggregate(ctx context.Context, records []domain.DailyRecord, period domain.ReportPeriod) (*domain.MonthlySummary, error) {
	return a.AggregateFor(ctx, records, period, period.Year)
}

// AggregateFor resolves dates, keeps the rows inside period, coerces counts,
// builds weekly buckets and computes the monthly totals. referenceYear is
// the year given to the day/month tracker dates. With BadDateAbort the first
// unresolvable date fails the run with a *errors.DateParseError in the chain.
func (a *Aggregator) AggregateFor(ctx context.Context, records []domain.DailyRecord, period domain.ReportPeriod, referenceYear int) (*domain.MonthlySummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if period.Month < time.January || period.Month > time.December {
		return nil, apperrors.NewAppValidationError(fmt.Sprintf("month %d out of range", int(period.Month)))
	}
	if referenceYear == 0 {
		referenceYear = period.Year
	}

	normalized := make([]domain.NormalizedRecord, 0, len(records))
	skipped := 0

	for _, rec := range records {
		date, err := a.resolve(rec.DateText, referenceYear, period)
		if err != nil {
			if dpe, ok := apperrors.AsDateParseError(err); ok {
				dpe.Row = rec.Row
			}
			if a.cfg.OnBadDate != BadDateSkip {
				return nil, fmt.Errorf("resolve tracker dates: %w", err)
			}
			a.logger.WarnContext(ctx, "skipping row with invalid date",
				slog.Int("row", rec.Row),
				slog.String("date_text", rec.DateText),
				slog.String("error", err.Error()))
			skipped++
			continue
		}

		newCount := Coerce(rec.NewPatients)
		returning := Coerce(rec.ReturningPatients)
		normalized = append(normalized, domain.NormalizedRecord{
			Row:               rec.Row,
			Date:              date,
			NewPatients:       newCount,
			ReturningPatients: returning,
			Total:             newCount.Add(returning),
			Comment:           rec.Comment,
		})
	}

	inMonth := FilterMonth(normalized, period)

	summary := Summarize(inMonth, period)
	summary.WeeklyBuckets = WeeklyBuckets(inMonth, period, a.cfg.WeekEnd)
	summary.SkippedRows = skipped

	a.logger.DebugContext(ctx, "aggregated tracker rows",
		slog.String("period", period.String()),
		slog.Int("input_rows", len(records)),
		slog.Int("in_month", len(inMonth)),
		slog.Int("weeks", len(summary.WeeklyBuckets)),
		slog.Int("skipped_rows", skipped),
		slog.Int("missing_values", summary.MissingValues))

	return summary, nil
}

func (a *Aggregator) resolve(text string, referenceYear int, period domain.ReportPeriod) (time.Time, error) {
	if a.cfg.YearPolicy == YearPolicyNearest {
		return ResolveNearest(text, referenceYear, period)
	}
	return ResolveDate(text, referenceYear)
}
