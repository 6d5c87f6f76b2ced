package http

import (
	"context"
	"io"

	"clinicreport/pkg/contracts/domain"
)

// ReportServiceInterface is the part of services.ReportService the HTTP layer uses
type ReportServiceInterface interface {
	Summary(ctx context.Context, period domain.ReportPeriod, referenceYear int) (*domain.ReportDocument, error)
	Render(ctx context.Context, w io.Writer, doc *domain.ReportDocument, format domain.ReportFormat) error
}
