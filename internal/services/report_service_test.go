package services

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinicreport/internal/config"
	"clinicreport/internal/dataprocessing"
	apperrors "clinicreport/internal/errors"
	"clinicreport/internal/infrastructure"
	"clinicreport/internal/shared/testutil"
	"clinicreport/internal/sources"
	"clinicreport/pkg/contracts/domain"
)

var march2024 = domain.ReportPeriod{Year: 2024, Month: time.March}

func newTestService(t *testing.T, src sources.Source, report config.ReportConfig) (*ReportService, *testutil.BufferedSlogHandler) {
	t.Helper()
	logger, logs := testutil.NewTestLogger(t)

	providers, err := infrastructure.InitializeOTel(config.TelemetryConfig{ServiceName: "test"}, "test", logger)
	require.NoError(t, err)

	svc, err := NewReportService(src, dataprocessing.NewAggregator(dataprocessing.DefaultAggregatorConfig(), logger),
		report, time.Second, providers, logger)
	require.NoError(t, err)
	svc.now = func() time.Time { return time.Date(2024, time.April, 1, 8, 0, 0, 0, time.UTC) }
	return svc, logs
}

func testReportConfig(t *testing.T) config.ReportConfig {
	rc := config.Default().Report
	rc.OutputDir = t.TempDir()
	return rc
}

func marchSource() sources.Source {
	return sources.SourceFunc(func(ctx context.Context) ([]domain.DailyRecord, error) {
		return testutil.MarchTracker(), nil
	})
}

func TestGenerateWritesEveryFormat(t *testing.T) {
	rc := testReportConfig(t)
	svc, logs := newTestService(t, marchSource(), rc)

	result, err := svc.Generate(context.Background(), ReportRequest{
		Period:  march2024,
		Formats: []domain.ReportFormat{domain.ReportFormatLaTeX, domain.ReportFormatCSV, domain.ReportFormatLaTeX},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, result.RunID)
	require.Len(t, result.Outputs, 2)
	assert.Equal(t, filepath.Join(rc.OutputDir, "monthly_eye_clinic_report.tex"), result.Outputs[0].Path)
	assert.Equal(t, filepath.Join(rc.OutputDir, "monthly_eye_clinic_report.csv"), result.Outputs[1].Path)

	tex, err := os.ReadFile(result.Outputs[0].Path)
	require.NoError(t, err)
	assert.Contains(t, string(tex), `\textbf{Total Patients Tested:} \> 11 \\`)

	doc := result.Document
	assert.Equal(t, "March, 2024", doc.PeriodLabel)
	assert.Equal(t, 11.0, doc.TotalPatients)
	assert.Equal(t, 8.0, doc.TotalNewPatients)
	assert.Equal(t, 7.0, doc.TotalReturningPatients)
	assert.Equal(t, "ok\nbusy day", doc.Comments)
	require.Len(t, doc.Weeks, 2)

	testutil.AssertLogContains(t, logs, slog.LevelInfo, "report saved")
	testutil.AssertNoErrors(t, logs)
}

func TestGenerateUsesConfiguredFormats(t *testing.T) {
	rc := testReportConfig(t)
	rc.Formats = []string{"json", "excel"}
	svc, _ := newTestService(t, marchSource(), rc)

	result, err := svc.Generate(context.Background(), ReportRequest{Period: march2024, BaseName: "march"})
	require.NoError(t, err)
	require.Len(t, result.Outputs, 2)
	assert.Equal(t, domain.ReportFormatJSON, result.Outputs[0].Format)
	assert.Equal(t, domain.ReportFormatExcel, result.Outputs[1].Format)
	assert.FileExists(t, filepath.Join(rc.OutputDir, "march.xlsx"))
}

func TestGenerateInvalidPeriod(t *testing.T) {
	svc, _ := newTestService(t, marchSource(), testReportConfig(t))

	_, err := svc.Generate(context.Background(), ReportRequest{Period: domain.ReportPeriod{Year: 2024, Month: 13}})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
}

func TestGenerateSourceFailure(t *testing.T) {
	src := sources.SourceFunc(func(ctx context.Context) ([]domain.DailyRecord, error) {
		return nil, apperrors.NewSourceError("sheet unavailable", errors.New("quota exceeded"))
	})
	rc := testReportConfig(t)
	svc, logs := newTestService(t, src, rc)

	_, err := svc.Generate(context.Background(), ReportRequest{Period: march2024})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeSource))
	testutil.AssertLogContains(t, logs, slog.LevelError, "report generation failed")

	entries, err := os.ReadDir(rc.OutputDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestGenerateAbortsOnBadDate(t *testing.T) {
	src := sources.SourceFunc(func(ctx context.Context) ([]domain.DailyRecord, error) {
		return []domain.DailyRecord{
			{Row: 2, DateText: "14 Mar", NewPatients: 1, ReturningPatients: 1},
			{Row: 3, DateText: "31 Feb", NewPatients: 1, ReturningPatients: 1},
		}, nil
	})
	svc, _ := newTestService(t, src, testReportConfig(t))

	_, err := svc.Generate(context.Background(), ReportRequest{Period: march2024})
	require.Error(t, err)
	dpe, ok := apperrors.AsDateParseError(err)
	require.True(t, ok)
	assert.Equal(t, 3, dpe.Row)
	assert.Equal(t, "31 Feb", dpe.Text)
}

func TestSummaryEmptyMonth(t *testing.T) {
	svc, _ := newTestService(t, marchSource(), testReportConfig(t))

	doc, err := svc.Summary(context.Background(), domain.ReportPeriod{Year: 2024, Month: time.February}, 0)
	require.NoError(t, err)
	assert.Zero(t, doc.TotalPatients)
	assert.Empty(t, doc.Weeks)
	assert.Equal(t, "", doc.Comments)
}

func TestSummaryCoalescesConcurrentRequests(t *testing.T) {
	var fetches atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})
	src := sources.SourceFunc(func(ctx context.Context) ([]domain.DailyRecord, error) {
		if fetches.Add(1) == 1 {
			close(started)
		}
		<-release
		return testutil.MarchTracker(), nil
	})
	svc, _ := newTestService(t, src, testReportConfig(t))

	const callers = 5
	var wg sync.WaitGroup
	docs := make([]*domain.ReportDocument, callers)
	errs := make([]error, callers)
	call := func(i int) {
		defer wg.Done()
		docs[i], errs[i] = svc.Summary(context.Background(), march2024, 0)
	}

	wg.Add(1)
	go call(0)
	<-started
	for i := 1; i < callers; i++ {
		wg.Add(1)
		go call(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, 11.0, docs[i].TotalPatients)
	}
	assert.Equal(t, int32(1), fetches.Load())
}

func TestSummaryCancelledCallerDoesNotFailOthers(t *testing.T) {
	var fetches atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})
	src := sources.SourceFunc(func(ctx context.Context) ([]domain.DailyRecord, error) {
		if fetches.Add(1) == 1 {
			close(started)
		}
		select {
		case <-release:
			return testutil.MarchTracker(), nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	})
	svc, _ := newTestService(t, src, testReportConfig(t))

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	defer cancelFirst()

	firstErr := make(chan error, 1)
	go func() {
		_, err := svc.Summary(firstCtx, march2024, 0)
		firstErr <- err
	}()
	<-started

	type result struct {
		doc *domain.ReportDocument
		err error
	}
	second := make(chan result, 1)
	go func() {
		doc, err := svc.Summary(context.Background(), march2024, 0)
		second <- result{doc: doc, err: err}
	}()
	time.Sleep(50 * time.Millisecond)

	cancelFirst()
	select {
	case err := <-firstErr:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("cancelled caller kept waiting for the shared fetch")
	}

	close(release)
	res := <-second
	require.NoError(t, res.err)
	assert.Equal(t, 11.0, res.doc.TotalPatients)
	assert.Equal(t, int32(1), fetches.Load())
}

func TestSummaryRespectsCancellation(t *testing.T) {
	src := sources.SourceFunc(func(ctx context.Context) ([]domain.DailyRecord, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	svc, _ := newTestService(t, src, testReportConfig(t))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.Summary(ctx, march2024, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
