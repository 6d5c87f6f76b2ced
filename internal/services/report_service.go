package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"clinicreport/internal/config"
	"clinicreport/internal/dataprocessing"
	apperrors "clinicreport/internal/errors"
	"clinicreport/internal/exporter"
	"clinicreport/internal/infrastructure"
	"clinicreport/internal/sources"
	"clinicreport/internal/validation"
	"clinicreport/pkg/contracts/domain"
)

// Pipeline stages, used as span suffixes and metric attributes
const (
	StageFetch     = "fetch"
	StageAggregate = "aggregate"
	StageRender    = "render"
)

// ReportRequest asks for the report of one month
type ReportRequest struct {
	Period domain.ReportPeriod
	// ReferenceYear is the year applied to tracker dates; zero means Period.Year
	ReferenceYear int
	// Formats defaults to the configured formats when empty
	Formats []domain.ReportFormat
	// OutputDir and BaseName default to the configured values when empty
	OutputDir string
	BaseName  string
}

// ReportOutput is one rendered file
type ReportOutput struct {
	Format domain.ReportFormat `json:"format"`
	Path   string              `json:"path"`
}

// ReportResult is the outcome of Generate
type ReportResult struct {
	RunID    string                 `json:"run_id"`
	Document *domain.ReportDocument `json:"document"`
	Outputs  []ReportOutput         `json:"outputs"`
}

// ReportService fetches the patient tracker, aggregates one month and renders
// the report.
type ReportService struct {
	source        sources.Source
	aggregator    *dataprocessing.Aggregator
	report        config.ReportConfig
	sourceTimeout time.Duration
	tracer        trace.Tracer
	metrics       *infrastructure.ReportMetrics
	validate      *validator.Validate
	files         *validation.FileValidator
	logger        *slog.Logger
	group         singleflight.Group
	now           func() time.Time
}

// NewReportService wires a report service. providers supplies the tracer and
// meter; InitializeOTel returns no-op ones for disabled signals.
func NewReportService(
	source sources.Source,
	aggregator *dataprocessing.Aggregator,
	report config.ReportConfig,
	sourceTimeout time.Duration,
	providers *infrastructure.OTelProviders,
	logger *slog.Logger,
) (*ReportService, error) {
	if logger == nil {
		logger = slog.Default()
	}
	metrics, err := infrastructure.NewReportMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create report metrics: %w", err)
	}

	return &ReportService{
		source:        source,
		aggregator:    aggregator,
		report:        report,
		sourceTimeout: sourceTimeout,
		tracer:        providers.Tracer,
		metrics:       metrics,
		validate:      validator.New(),
		files:         validation.NewFileValidator(logger),
		logger:        infrastructure.WithComponent(logger, "report_service"),
		now:           time.Now,
	}, nil
}

// Metrics returns the instruments the service records into
func (s *ReportService) Metrics() *infrastructure.ReportMetrics {
	return s.metrics
}

// Generate builds the report for req.Period and writes every requested
// format to <output dir>/<base name>.<ext>.
func (s *ReportService) Generate(ctx context.Context, req ReportRequest) (result *ReportResult, err error) {
	runID := uuid.New().String()
	ctx = infrastructure.EnsureTraceID(ctx)
	ctx, span := s.tracer.Start(ctx, "report.generate",
		trace.WithAttributes(
			attribute.String("report.run_id", runID),
			attribute.String("report.period", req.Period.String()),
		))
	defer span.End()

	start := time.Now()
	defer func() {
		outcome := infrastructure.OutcomeSuccess
		if err != nil {
			outcome = infrastructure.OutcomeFailure
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			s.logger.ErrorContext(ctx, "report generation failed",
				slog.String("run_id", runID),
				slog.String("period", req.Period.String()),
				slog.String("error", err.Error()))
		}
		s.metrics.RecordRun(ctx, outcome)
		s.logger.DebugContext(ctx, "report run finished",
			slog.String("run_id", runID),
			slog.String("outcome", outcome),
			slog.Duration("duration", time.Since(start)))
	}()

	req, err = s.withDefaults(req)
	if err != nil {
		return nil, err
	}
	if err := s.files.ValidateOutputDirectory(req.OutputDir); err != nil {
		return nil, err
	}

	doc, err := s.document(ctx, req.Period, req.ReferenceYear)
	if err != nil {
		return nil, err
	}

	outputs := make([]ReportOutput, 0, len(req.Formats))
	for _, format := range req.Formats {
		path := filepath.Join(req.OutputDir, req.BaseName+"."+string(format))
		err := s.stage(ctx, StageRender, func(ctx context.Context) error {
			renderer, err := exporter.ForFormat(format)
			if err != nil {
				return err
			}
			return exporter.WriteFile(path, renderer, doc)
		}, attribute.String("report.format", string(format)))
		if err != nil {
			return nil, fmt.Errorf("render %s report: %w", format, err)
		}
		outputs = append(outputs, ReportOutput{Format: format, Path: path})
		s.logger.InfoContext(ctx, "report saved",
			slog.String("run_id", runID),
			slog.String("format", string(format)),
			slog.String("path", path))
	}

	return &ReportResult{RunID: runID, Document: doc, Outputs: outputs}, nil
}

// Summary returns the aggregated report document of a month without writing
// files. Concurrent calls for the same month share one fetch. The shared fetch
// outlives any single caller and is bounded by the source timeout only; a
// cancelled caller stops waiting without failing the others.
func (s *ReportService) Summary(ctx context.Context, period domain.ReportPeriod, referenceYear int) (*domain.ReportDocument, error) {
	if err := s.validatePeriod(period); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if referenceYear == 0 {
		referenceYear = period.Year
	}

	key := fmt.Sprintf("%s/%d", period, referenceYear)
	ch := s.group.DoChan(key, func() (interface{}, error) {
		return s.document(context.WithoutCancel(ctx), period, referenceYear)
	})

	select {
	case <-ctx.Done():
		s.logger.DebugContext(ctx, "summary caller gave up waiting", slog.String("period", period.String()))
		return nil, ctx.Err()
	case res := <-ch:
		if res.Shared {
			s.logger.DebugContext(ctx, "summary request coalesced", slog.String("period", period.String()))
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*domain.ReportDocument), nil
	}
}

// Render writes doc to w in format
func (s *ReportService) Render(ctx context.Context, w io.Writer, doc *domain.ReportDocument, format domain.ReportFormat) error {
	return s.stage(ctx, StageRender, func(ctx context.Context) error {
		renderer, err := exporter.ForFormat(format)
		if err != nil {
			return err
		}
		return renderer.Render(w, doc)
	}, attribute.String("report.format", string(format)))
}

func (s *ReportService) document(ctx context.Context, period domain.ReportPeriod, referenceYear int) (*domain.ReportDocument, error) {
	var records []domain.DailyRecord
	err := s.stage(ctx, StageFetch, func(ctx context.Context) error {
		if s.sourceTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.sourceTimeout)
			defer cancel()
		}
		var err error
		records, err = s.source.Fetch(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("fetch tracker rows: %w", err)
	}

	var summary *domain.MonthlySummary
	err = s.stage(ctx, StageAggregate, func(ctx context.Context) error {
		var err error
		summary, err = s.aggregator.AggregateFor(ctx, records, period, referenceYear)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("aggregate %s: %w", period, err)
	}

	s.metrics.RecordSummary(ctx, summary)
	s.logger.InfoContext(ctx, "month aggregated",
		slog.String("period", period.String()),
		slog.Int("records", summary.Records),
		slog.Int("weeks", len(summary.WeeklyBuckets)),
		slog.Int("skipped_rows", summary.SkippedRows),
		slog.Int("missing_values", summary.MissingValues))

	return domain.NewReportDocument(s.report.Title, s.report.Author, summary, s.now()), nil
}

// stage runs fn inside a report.<name> span and records its duration
func (s *ReportService) stage(ctx context.Context, name string, fn func(context.Context) error, attrs ...attribute.KeyValue) error {
	ctx, span := s.tracer.Start(ctx, "report."+name, trace.WithAttributes(attrs...))
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	s.metrics.RecordStage(ctx, name, time.Since(start))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (s *ReportService) withDefaults(req ReportRequest) (ReportRequest, error) {
	if err := s.validatePeriod(req.Period); err != nil {
		return req, err
	}
	if req.ReferenceYear == 0 {
		req.ReferenceYear = req.Period.Year
	}
	if req.OutputDir == "" {
		req.OutputDir = s.report.OutputDir
	}
	if req.OutputDir == "" {
		return req, apperrors.NewAppError(apperrors.ErrTypeValidation, "invalid report request", ErrOutputDirMissing)
	}
	if req.BaseName == "" {
		req.BaseName = s.report.BaseName
	}

	if len(req.Formats) == 0 {
		for _, name := range s.report.Formats {
			format, err := domain.ParseReportFormat(name)
			if err != nil {
				return req, apperrors.NewAppError(apperrors.ErrTypeValidation, "invalid configured format", err)
			}
			req.Formats = append(req.Formats, format)
		}
	}
	req.Formats = uniqueFormats(req.Formats)
	if len(req.Formats) == 0 {
		return req, apperrors.NewAppError(apperrors.ErrTypeValidation, "invalid report request", ErrNoFormats)
	}
	return req, nil
}

func (s *ReportService) validatePeriod(period domain.ReportPeriod) error {
	if err := s.validate.Struct(period); err != nil {
		return apperrors.NewAppError(apperrors.ErrTypeValidation, ErrInvalidPeriod.Error(), err).
			WithContext("period", period.String())
	}
	return nil
}

func uniqueFormats(formats []domain.ReportFormat) []domain.ReportFormat {
	seen := make(map[domain.ReportFormat]bool, len(formats))
	out := formats[:0:0]
	for _, f := range formats {
		if seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}
