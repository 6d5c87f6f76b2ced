package exporter

import (
	"encoding/json"
	"io"

	apperrors "clinicreport/internal/errors"
	"clinicreport/pkg/contracts/domain"
)

// JSONRenderer writes the whole report document as JSON
type JSONRenderer struct {
	Indent bool
}

// Render implements Renderer
func (r *JSONRenderer) Render(w io.Writer, doc *domain.ReportDocument) error {
	enc := json.NewEncoder(w)
	if r.Indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(doc); err != nil {
		return apperrors.NewRenderError("encode json report", err)
	}
	return nil
}
