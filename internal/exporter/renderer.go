package exporter

import (
	"io"

	apperrors "clinicreport/internal/errors"
	"clinicreport/pkg/contracts/domain"
)

// Renderer writes a report document in one output format
type Renderer interface {
	Render(w io.Writer, doc *domain.ReportDocument) error
}

// RendererFunc adapts a plain function to Renderer
type RendererFunc func(w io.Writer, doc *domain.ReportDocument) error

// Render calls f
func (f RendererFunc) Render(w io.Writer, doc *domain.ReportDocument) error {
	return f(w, doc)
}

// ForFormat returns the renderer of a report format
func ForFormat(format domain.ReportFormat) (Renderer, error) {
	switch format {
	case domain.ReportFormatLaTeX:
		return NewLaTeXRenderer(), nil
	case domain.ReportFormatCSV:
		return &CSVRenderer{}, nil
	case domain.ReportFormatExcel:
		return &XLSXRenderer{}, nil
	case domain.ReportFormatJSON:
		return &JSONRenderer{Indent: true}, nil
	default:
		return nil, apperrors.NewAppValidationError("unsupported report format " + string(format))
	}
}

// ContentType returns the MIME type of a report format
func ContentType(format domain.ReportFormat) string {
	switch format {
	case domain.ReportFormatLaTeX:
		return "application/x-tex; charset=utf-8"
	case domain.ReportFormatCSV:
		return "text/csv; charset=utf-8"
	case domain.ReportFormatExcel:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case domain.ReportFormatJSON:
		return "application/json"
	default:
		return "application/octet-stream"
	}
}
