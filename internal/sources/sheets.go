package sources

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	apperrors "clinicreport/internal/errors"
	"clinicreport/internal/security"
	"clinicreport/pkg/contracts/domain"
)

// SheetsConfig locates the tracker in Google Sheets
type SheetsConfig struct {
	SpreadsheetID string
	// SheetName is the tab to read; empty means the first tab
	SheetName string
	// CredentialsFile is a service-account JSON key. Empty uses the
	// application default credentials.
	CredentialsFile string
	Columns         ColumnMap
}

// SheetsSource reads tracker rows through the Sheets v4 API
type SheetsSource struct {
	svc    *sheets.Service
	cfg    SheetsConfig
	logger *slog.Logger
}

// NewSheetsSource creates a read-only Sheets client. Extra client options are
// appended after the credentials, so tests can point the client elsewhere.
func NewSheetsSource(ctx context.Context, cfg SheetsConfig, logger *slog.Logger, opts ...option.ClientOption) (*SheetsSource, error) {
	if cfg.SpreadsheetID == "" {
		return nil, apperrors.NewConfigError("spreadsheet id is required for a sheets source", nil)
	}
	if logger == nil {
		logger = slog.Default()
	}

	clientOpts := []option.ClientOption{option.WithScopes(sheets.SpreadsheetsReadonlyScope)}
	if cfg.CredentialsFile != "" {
		creds, err := security.LoadServiceAccount(cfg.CredentialsFile, logger)
		if err != nil {
			return nil, err
		}
		clientOpts = append(clientOpts, option.WithCredentialsJSON(creds.Data()))
	}
	clientOpts = append(clientOpts, opts...)

	svc, err := sheets.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, apperrors.NewSourceError("create sheets service", err)
	}

	return &SheetsSource{
		svc:    svc,
		cfg:    cfg,
		logger: logger.With(slog.String("component", "sheets_source")),
	}, nil
}

// Fetch reads the whole tab. Numbers arrive unformatted and date cells as
// their displayed text.
func (s *SheetsSource) Fetch(ctx context.Context) ([]domain.DailyRecord, error) {
	start := time.Now()

	sheetName := s.cfg.SheetName
	if sheetName == "" {
		first, err := s.firstSheet(ctx)
		if err != nil {
			return nil, err
		}
		sheetName = first
	}

	resp, err := s.svc.Spreadsheets.Values.Get(s.cfg.SpreadsheetID, a1Sheet(sheetName)).
		MajorDimension("ROWS").
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("FORMATTED_STRING").
		Context(ctx).
		Do()
	if err != nil {
		return nil, apperrors.NewSourceError("read tracker values", err).
			WithContext("spreadsheet_id", s.cfg.SpreadsheetID).
			WithContext("sheet", sheetName)
	}

	records, err := s.cfg.Columns.Records(resp.Values)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "fetched tracker rows",
		slog.String("sheet", sheetName),
		slog.Int("rows", len(records)),
		slog.Duration("duration", time.Since(start)))

	return records, nil
}

func (s *SheetsSource) firstSheet(ctx context.Context) (string, error) {
	ss, err := s.svc.Spreadsheets.Get(s.cfg.SpreadsheetID).
		Fields("sheets.properties.title").
		Context(ctx).
		Do()
	if err != nil {
		return "", apperrors.NewSourceError("read spreadsheet metadata", err).
			WithContext("spreadsheet_id", s.cfg.SpreadsheetID)
	}
	if len(ss.Sheets) == 0 || ss.Sheets[0].Properties == nil {
		return "", apperrors.NewSourceError(fmt.Sprintf("spreadsheet %s has no tabs", s.cfg.SpreadsheetID), nil)
	}
	return ss.Sheets[0].Properties.Title, nil
}

// a1Sheet quotes a tab name for use as an A1 range covering the whole tab
func a1Sheet(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}
