package infrastructure

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"clinicreport/pkg/contracts/domain"
)

// Run outcomes recorded by ReportMetrics.RecordRun
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// ReportMetrics are the instruments of the report pipeline and its HTTP API
type ReportMetrics struct {
	RunsTotal        metric.Int64Counter
	StageDuration    metric.Float64Histogram
	RecordsProcessed metric.Int64Counter
	SkippedRows      metric.Int64Counter
	MissingValues    metric.Int64Counter
	PatientsReported metric.Float64Counter

	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
}

// NewReportMetrics creates the report instruments on meter
func NewReportMetrics(meter metric.Meter) (*ReportMetrics, error) {
	m := &ReportMetrics{}
	var err error

	if m.RunsTotal, err = meter.Int64Counter("clinic_report_runs",
		metric.WithDescription("Report generations by outcome")); err != nil {
		return nil, fmt.Errorf("create runs counter: %w", err)
	}
	if m.StageDuration, err = meter.Float64Histogram("clinic_report_stage_duration",
		metric.WithDescription("Duration of pipeline stages"),
		metric.WithUnit("s")); err != nil {
		return nil, fmt.Errorf("create stage histogram: %w", err)
	}
	if m.RecordsProcessed, err = meter.Int64Counter("clinic_report_records",
		metric.WithDescription("Tracker rows that fell inside the reporting month")); err != nil {
		return nil, fmt.Errorf("create records counter: %w", err)
	}
	if m.SkippedRows, err = meter.Int64Counter("clinic_report_skipped_rows",
		metric.WithDescription("Rows dropped for an unparseable date")); err != nil {
		return nil, fmt.Errorf("create skipped counter: %w", err)
	}
	if m.MissingValues, err = meter.Int64Counter("clinic_report_missing_values",
		metric.WithDescription("Patient counts that could not be coerced to a number")); err != nil {
		return nil, fmt.Errorf("create missing counter: %w", err)
	}
	if m.PatientsReported, err = meter.Float64Counter("clinic_report_patients",
		metric.WithDescription("Patients included in generated reports")); err != nil {
		return nil, fmt.Errorf("create patients counter: %w", err)
	}
	if m.HTTPRequestsTotal, err = meter.Int64Counter("clinic_http_requests",
		metric.WithDescription("HTTP requests by route and status")); err != nil {
		return nil, fmt.Errorf("create http counter: %w", err)
	}
	if m.HTTPRequestDuration, err = meter.Float64Histogram("clinic_http_request_duration",
		metric.WithDescription("HTTP request latency"),
		metric.WithUnit("s")); err != nil {
		return nil, fmt.Errorf("create http histogram: %w", err)
	}

	return m, nil
}

// RecordRun counts a finished generation
func (m *ReportMetrics) RecordRun(ctx context.Context, outcome string) {
	m.RunsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// RecordStage records how long a pipeline stage took
func (m *ReportMetrics) RecordStage(ctx context.Context, stage string, d time.Duration) {
	m.StageDuration.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.String("stage", stage)))
}

// RecordSummary adds the data-quality counters of a summary
func (m *ReportMetrics) RecordSummary(ctx context.Context, s *domain.MonthlySummary) {
	if s == nil {
		return
	}
	period := metric.WithAttributes(attribute.String("period", s.Period.String()))
	m.RecordsProcessed.Add(ctx, int64(s.Records), period)
	m.SkippedRows.Add(ctx, int64(s.SkippedRows), period)
	m.MissingValues.Add(ctx, int64(s.MissingValues), period)
	m.PatientsReported.Add(ctx, s.TotalPatients, period)
}

// RecordHTTPRequest records one served request
func (m *ReportMetrics) RecordHTTPRequest(ctx context.Context, method, route string, status int, d time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
		attribute.Int("status", status),
	)
	m.HTTPRequestsTotal.Add(ctx, 1, attrs)
	m.HTTPRequestDuration.Record(ctx, d.Seconds(), attrs)
}
