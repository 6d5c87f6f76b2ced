package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinicreport/internal/shared/testutil"
)

func writeTracker(t *testing.T, rows [][]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tracker.csv")
	f, err := os.Create(path)
	require.NoError(t, err)
	w := csv.NewWriter(f)
	require.NoError(t, w.WriteAll(rows))
	require.NoError(t, f.Close())
	return path
}

func TestRunWritesReports(t *testing.T) {
	tracker := writeTracker(t, testutil.MarchTrackerRows())
	out := filepath.Join(t.TempDir(), "reports")
	metrics := filepath.Join(t.TempDir(), "clinic.prom")

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{
		"-year", "2024", "-month", "3",
		"-source", tracker,
		"-formats", "tex,csv",
		"-out", out,
		"-metrics-file", metrics,
	}, &stdout, &stderr)

	require.Equal(t, 0, code, stderr.String())

	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Report for March, 2024 saved to "+filepath.Join(out, "monthly_eye_clinic_report.tex"), lines[0])

	tex, err := os.ReadFile(filepath.Join(out, "monthly_eye_clinic_report.tex"))
	require.NoError(t, err)
	assert.Contains(t, string(tex), `\textbf{Total New Patients:} \> 8 \\`)
	assert.Contains(t, string(tex), `2024-03-17 & 5 & 3 & 6 \\ \midrule`)

	data, err := os.ReadFile(filepath.Join(out, "monthly_eye_clinic_report.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Monthly Totals,11,8,7")

	prom, err := os.ReadFile(metrics)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "clinic_report_runs_total")
}

func TestRunBadDateFails(t *testing.T) {
	rows := testutil.MarchTrackerRows()
	rows = append(rows, []string{"31 Feb", "1", "1", ""})
	tracker := writeTracker(t, rows)

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{
		"-year", "2024", "-month", "3", "-source", tracker, "-out", t.TempDir(),
	}, &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "report generation failed")
	assert.Contains(t, stderr.String(), "31 Feb")
}

func TestRunInvalidFlags(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 2, run(context.Background(), []string{"-month", "march"}, &stdout, &stderr))
	assert.Equal(t, 2, run(context.Background(), []string{"extra"}, &stdout, &stderr))
}

func TestRunInvalidFormat(t *testing.T) {
	tracker := writeTracker(t, testutil.MarchTrackerRows())

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-source", tracker, "-formats", "pdf", "-out", t.TempDir()}, &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "failed to load configuration")
}

func TestRunSourceDirectoryUsesNewestExport(t *testing.T) {
	tracker := writeTracker(t, testutil.MarchTrackerRows())
	out := t.TempDir()

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{
		"-year", "2024", "-month", "3", "-source", filepath.Dir(tracker), "-formats", "json", "-out", out,
	}, &stdout, &stderr)

	require.Equal(t, 0, code, stderr.String())
	assert.FileExists(t, filepath.Join(out, "monthly_eye_clinic_report.json"))
}
