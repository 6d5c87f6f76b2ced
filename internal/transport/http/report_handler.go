package http

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "clinicreport/internal/errors"
	"clinicreport/internal/exporter"
	"clinicreport/internal/middleware"
)

// ReportHandler serves monthly reports with RFC 7807 errors
type ReportHandler struct {
	service      ReportServiceInterface
	params       *middleware.ReportParams
	baseName     string
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewReportHandler creates a report handler. baseName names downloaded files.
func NewReportHandler(service ReportServiceInterface, params *middleware.ReportParams, baseName string, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ReportHandler {
	return &ReportHandler{
		service:      service,
		params:       params,
		baseName:     baseName,
		logger:       logger.With(slog.String("component", "report_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the report routes
func (h *ReportHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/{year}/{month}", func(r chi.Router) {
		r.Use(h.params.Period)
		r.Get("/", h.GetSummary)
		r.With(h.params.Format).Get("/document", h.GetDocument)
	})

	return r
}

// GetSummary handles GET /api/reports/{year}/{month}
func (h *ReportHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	period, _ := middleware.PeriodFromContext(r.Context())

	doc, err := h.service.Summary(r.Context(), period, middleware.ReferenceYear(r))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, doc)
}

// GetDocument handles GET /api/reports/{year}/{month}/document?format=
func (h *ReportHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	period, _ := middleware.PeriodFromContext(ctx)
	format, _ := middleware.FormatFromContext(ctx)

	doc, err := h.service.Summary(ctx, period, middleware.ReferenceYear(r))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	// rendered into memory so a failure still yields a problem response
	var buf bytes.Buffer
	if err := h.service.Render(ctx, &buf, doc, format); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	filename := fmt.Sprintf("%s_%s.%s", h.baseName, period, format)
	w.Header().Set("Content-Type", exporter.ContentType(format))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.WarnContext(ctx, "failed to write report document",
			slog.String("period", period.String()),
			slog.String("error", err.Error()))
		return
	}

	h.logger.InfoContext(ctx, "report document served",
		slog.String("period", period.String()),
		slog.String("format", string(format)),
		slog.Int("bytes", buf.Len()))
}
