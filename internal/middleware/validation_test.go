package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	apperrors "clinicreport/internal/errors"
	"clinicreport/internal/shared/testutil"
	"clinicreport/pkg/contracts/domain"
)

func newParamsRouter(t *testing.T, got *domain.ReportPeriod, format *domain.ReportFormat) http.Handler {
	logger, _ := testutil.NewTestLogger(t)
	params := NewReportParams(apperrors.NewErrorHandler(logger, false), domain.ReportFormatLaTeX)

	r := chi.NewRouter()
	r.With(params.Period, params.Format).Get("/reports/{year}/{month}", func(w http.ResponseWriter, r *http.Request) {
		*got, _ = PeriodFromContext(r.Context())
		*format, _ = FormatFromContext(r.Context())
	})
	return r
}

func TestReportParams(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		wantStatus int
		wantPeriod domain.ReportPeriod
		wantFormat domain.ReportFormat
	}{
		{"valid", "/reports/2024/3", http.StatusOK, domain.ReportPeriod{Year: 2024, Month: time.March}, domain.ReportFormatLaTeX},
		{"explicit format", "/reports/2024/12?format=CSV", http.StatusOK, domain.ReportPeriod{Year: 2024, Month: time.December}, domain.ReportFormatCSV},
		{"excel alias", "/reports/2024/1?format=excel", http.StatusOK, domain.ReportPeriod{Year: 2024, Month: time.January}, domain.ReportFormatExcel},
		{"month out of range", "/reports/2024/13", http.StatusBadRequest, domain.ReportPeriod{}, ""},
		{"month zero", "/reports/2024/0", http.StatusBadRequest, domain.ReportPeriod{}, ""},
		{"not a number", "/reports/2024/march", http.StatusBadRequest, domain.ReportPeriod{}, ""},
		{"bad format", "/reports/2024/3?format=pdf", http.StatusBadRequest, domain.ReportPeriod{}, ""},
		{"bad reference year", "/reports/2024/3?reference_year=last", http.StatusBadRequest, domain.ReportPeriod{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var period domain.ReportPeriod
			var format domain.ReportFormat
			router := newParamsRouter(t, &period, &format)

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.target, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantPeriod, period)
			assert.Equal(t, tt.wantFormat, format)
		})
	}
}

func TestReferenceYear(t *testing.T) {
	assert.Equal(t, 2023, ReferenceYear(httptest.NewRequest(http.MethodGet, "/?reference_year=2023", nil)))
	assert.Zero(t, ReferenceYear(httptest.NewRequest(http.MethodGet, "/", nil)))
}
