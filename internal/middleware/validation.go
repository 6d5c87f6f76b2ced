package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	apperrors "clinicreport/internal/errors"
	"clinicreport/pkg/contracts/domain"
)

type contextKey string

const (
	periodKey contextKey = "report_period"
	formatKey contextKey = "report_format"
)

// ReportParams validates the {year}/{month} route parameters and the optional
// format query parameter before the report handlers run.
type ReportParams struct {
	validator     *validator.Validate
	errHandler    *apperrors.ErrorHandler
	defaultFormat domain.ReportFormat
}

// NewReportParams creates the parameter validator. Requests without a format
// query parameter get defaultFormat.
func NewReportParams(errHandler *apperrors.ErrorHandler, defaultFormat domain.ReportFormat) *ReportParams {
	return &ReportParams{
		validator:     validator.New(),
		errHandler:    errHandler,
		defaultFormat: defaultFormat,
	}
}

// Period parses and validates the reporting period
func (p *ReportParams) Period(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		year, yerr := strconv.Atoi(chi.URLParam(r, "year"))
		month, merr := strconv.Atoi(chi.URLParam(r, "month"))
		if yerr != nil || merr != nil {
			p.errHandler.HandleError(w, r, apperrors.InvalidPeriod("Year and month must be numbers", map[string]string{
				"year":  chi.URLParam(r, "year"),
				"month": chi.URLParam(r, "month"),
			}))
			return
		}

		period := domain.ReportPeriod{Year: year, Month: time.Month(month)}
		if err := p.validator.Struct(period); err != nil {
			p.errHandler.HandleError(w, r, apperrors.InvalidPeriod("Invalid reporting period", err.Error()))
			return
		}

		if ref := r.URL.Query().Get("reference_year"); ref != "" {
			if _, err := strconv.Atoi(ref); err != nil {
				p.errHandler.HandleError(w, r, apperrors.ErrValidation("reference_year", "must be a number"))
				return
			}
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), periodKey, period)))
	})
}

// Format parses the format query parameter
func (p *ReportParams) Format(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		format := p.defaultFormat
		if raw := r.URL.Query().Get("format"); raw != "" {
			parsed, err := domain.ParseReportFormat(raw)
			if err != nil {
				p.errHandler.HandleError(w, r, apperrors.UnsupportedFormat(raw))
				return
			}
			format = parsed
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), formatKey, format)))
	})
}

// PeriodFromContext returns the period stored by ReportParams.Period
func PeriodFromContext(ctx context.Context) (domain.ReportPeriod, bool) {
	period, ok := ctx.Value(periodKey).(domain.ReportPeriod)
	return period, ok
}

// FormatFromContext returns the format stored by ReportParams.Format
func FormatFromContext(ctx context.Context) (domain.ReportFormat, bool) {
	format, ok := ctx.Value(formatKey).(domain.ReportFormat)
	return format, ok
}

// ReferenceYear returns the reference_year query parameter, zero when absent
func ReferenceYear(r *http.Request) int {
	year, _ := strconv.Atoi(r.URL.Query().Get("reference_year"))
	return year
}

