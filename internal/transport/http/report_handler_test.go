package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "clinicreport/internal/errors"
	"clinicreport/internal/exporter"
	"clinicreport/internal/middleware"
	"clinicreport/internal/shared/testutil"
	"clinicreport/pkg/contracts/domain"
)

type stubReportService struct {
	doc          *domain.ReportDocument
	err          error
	renderErr    error
	gotPeriod    domain.ReportPeriod
	gotReference int
}

func (s *stubReportService) Summary(ctx context.Context, period domain.ReportPeriod, referenceYear int) (*domain.ReportDocument, error) {
	s.gotPeriod = period
	s.gotReference = referenceYear
	return s.doc, s.err
}

func (s *stubReportService) Render(ctx context.Context, w io.Writer, doc *domain.ReportDocument, format domain.ReportFormat) error {
	if s.renderErr != nil {
		return s.renderErr
	}
	r, err := exporter.ForFormat(format)
	if err != nil {
		return err
	}
	return r.Render(w, doc)
}

func marchDoc() *domain.ReportDocument {
	summary := &domain.MonthlySummary{
		Period:                 domain.ReportPeriod{Year: 2024, Month: time.March},
		TotalPatients:          11,
		TotalNewPatients:       8,
		TotalReturningPatients: 7,
		WeeklyBuckets: []domain.WeeklyBucket{
			{WeekEnd: time.Date(2024, time.March, 17, 0, 0, 0, 0, time.UTC), TotalPatients: 5, TotalNew: 3, TotalReturning: 6, Days: 2},
		},
		Comments: []string{"ok"},
	}
	return domain.NewReportDocument("Monthly Eye Clinic Report", "Eye Clinic", summary, time.Now())
}

func newTestRouter(t *testing.T, svc ReportServiceInterface) http.Handler {
	logger, _ := testutil.NewTestLogger(t)
	errHandler := apierrors.NewErrorHandler(logger, false)
	params := middleware.NewReportParams(errHandler, domain.ReportFormatLaTeX)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Mount("/api/reports", NewReportHandler(svc, params, "monthly_eye_clinic_report", logger, errHandler).Routes())
	return r
}

func TestGetSummary(t *testing.T) {
	svc := &stubReportService{doc: marchDoc()}
	router := newTestRouter(t, svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/reports/2024/3?reference_year=2023", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.ReportPeriod{Year: 2024, Month: time.March}, svc.gotPeriod)
	assert.Equal(t, 2023, svc.gotReference)

	var got domain.ReportDocument
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "March, 2024", got.PeriodLabel)
	assert.Equal(t, 11.0, got.TotalPatients)
}

func TestGetSummaryErrors(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		err        error
		wantStatus int
		wantType   string
	}{
		{"invalid month", "/api/reports/2024/13", nil, http.StatusBadRequest, apierrors.TypeValidation},
		{
			"bad tracker date", "/api/reports/2024/3",
			&apierrors.DateParseError{Row: 4, Text: "31 Feb", Year: 2024, Err: errors.New("day out of range")},
			http.StatusUnprocessableEntity, apierrors.TypeInvalidDate,
		},
		{
			"source down", "/api/reports/2024/3",
			apierrors.NewSourceError("read sheet", errors.New("403")),
			http.StatusBadGateway, apierrors.TypeSourceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(t, &stubReportService{err: tt.err})

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.target, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantType, body["type"])
			assert.NotEmpty(t, body["trace_id"])
		})
	}
}

func TestGetDocument(t *testing.T) {
	router := newTestRouter(t, &stubReportService{doc: marchDoc()})

	t.Run("default latex", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/reports/2024/3/document", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, exporter.ContentType(domain.ReportFormatLaTeX), rec.Header().Get("Content-Type"))
		assert.Equal(t, `attachment; filename="monthly_eye_clinic_report_2024-03.tex"`, rec.Header().Get("Content-Disposition"))
		assert.Contains(t, rec.Body.String(), `\textbf{Monthly Totals} & \textbf{11}`)
	})

	t.Run("csv", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/reports/2024/3/document?format=csv", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Body.String(), "2024-03-17,5,3,6\n")
	})

	t.Run("unsupported format", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/reports/2024/3/document?format=pdf", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGetDocumentRenderFailure(t *testing.T) {
	svc := &stubReportService{doc: marchDoc(), renderErr: apierrors.NewRenderError("template", errors.New("broken"))}
	router := newTestRouter(t, svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/reports/2024/3/document?format=tex", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, rec.Header().Get("Content-Disposition"))
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, apierrors.TypeRenderFailed, body["type"])
}
