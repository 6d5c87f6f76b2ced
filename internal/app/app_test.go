package app

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinicreport/internal/config"
	"clinicreport/internal/infrastructure"
	"clinicreport/internal/shared/testutil"
	"clinicreport/internal/sources"
	"clinicreport/pkg/contracts/domain"
)

func newTestApplication(t *testing.T) *Application {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)

	cfg := config.Default()
	cfg.Report.OutputDir = t.TempDir()
	cfg.Server.Port = 0

	providers, err := infrastructure.InitializeOTel(cfg.Telemetry, config.AppVersion, logger)
	require.NoError(t, err)

	src := sources.SourceFunc(func(ctx context.Context) ([]domain.DailyRecord, error) {
		return testutil.MarchTracker(), nil
	})
	app, err := NewApplication(context.Background(), cfg, providers, logger, WithSource(src))
	require.NoError(t, err)
	return app
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestRouterReportEndpoints(t *testing.T) {
	app := newTestApplication(t)

	rec := get(t, app.Router, "/api/health")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = get(t, app.Router, "/api/reports/2024/3")
	require.Equal(t, http.StatusOK, rec.Code)
	var doc domain.ReportDocument
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, 11.0, doc.TotalPatients)
	assert.Equal(t, 8.0, doc.TotalNewPatients)
	assert.Equal(t, 7.0, doc.TotalReturningPatients)
	assert.Len(t, doc.Weeks, 2)

	rec = get(t, app.Router, "/api/reports/2024/3/document")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `\section*{Weekly Breakdown}`)

	rec = get(t, app.Router, "/api/reports/2024/13")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = get(t, app.Router, "/api/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouterMetrics(t *testing.T) {
	app := newTestApplication(t)

	require.Equal(t, http.StatusOK, get(t, app.Router, "/api/reports/2024/3").Code)

	rec := get(t, app.Router, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "clinic_http_requests_total")
	assert.Contains(t, body, "clinic_report_records_total")
}

func TestServeStopsOnCancel(t *testing.T) {
	app := newTestApplication(t)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Serve(ctx, listener) }()

	url := "http://" + listener.Addr().String() + "/api/health"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
