package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportPeriod(t *testing.T) {
	tests := []struct {
		name      string
		period    ReportPeriod
		wantLabel string
		wantEnd   time.Time
	}{
		{
			name:      "march leap year",
			period:    ReportPeriod{Year: 2024, Month: time.March},
			wantLabel: "March, 2024",
			wantEnd:   time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "february leap year",
			period:    ReportPeriod{Year: 2024, Month: time.February},
			wantLabel: "February, 2024",
			wantEnd:   time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "december",
			period:    ReportPeriod{Year: 2023, Month: time.December},
			wantLabel: "December, 2023",
			wantEnd:   time.Date(2023, time.December, 31, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantLabel, tt.period.Label())
			assert.Equal(t, tt.wantEnd, tt.period.End())
			assert.True(t, tt.period.Contains(tt.period.Start()))
			assert.True(t, tt.period.Contains(tt.period.End()))
			assert.False(t, tt.period.Contains(tt.period.End().AddDate(0, 0, 1)))
		})
	}
}

func TestCount(t *testing.T) {
	assert.Equal(t, NewCount(5), NewCount(3).Add(NewCount(2)))
	assert.False(t, NewCount(3).Add(Missing).Valid)
	assert.False(t, Missing.Add(NewCount(3)).Valid)

	data, err := json.Marshal(struct {
		A Count `json:"a"`
		B Count `json:"b"`
	}{A: NewCount(4), B: Missing})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":4,"b":null}`, string(data))

	var decoded struct {
		A Count `json:"a"`
		B Count `json:"b"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, NewCount(4), decoded.A)
	assert.Equal(t, Missing, decoded.B)
}

func TestParseReportFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    ReportFormat
		wantErr bool
	}{
		{in: "tex", want: ReportFormatLaTeX},
		{in: "LaTeX", want: ReportFormatLaTeX},
		{in: " csv ", want: ReportFormatCSV},
		{in: "excel", want: ReportFormatExcel},
		{in: "xlsx", want: ReportFormatExcel},
		{in: "json", want: ReportFormatJSON},
		{in: "pdf", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseReportFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewReportDocument(t *testing.T) {
	summary := &MonthlySummary{
		Period:                 ReportPeriod{Year: 2024, Month: time.March},
		TotalPatients:          11,
		TotalNewPatients:       8,
		TotalReturningPatients: 7,
		Comments:               []string{"ok", "busy day"},
		Records:                3,
		MissingValues:          1,
	}
	generated := time.Date(2024, time.April, 1, 9, 0, 0, 0, time.UTC)

	doc := NewReportDocument("Monthly Eye Clinic Report", "", summary, generated)

	assert.Equal(t, "March, 2024", doc.PeriodLabel)
	assert.Equal(t, "ok\nbusy day", doc.Comments)
	assert.NotNil(t, doc.Weeks)
	assert.Empty(t, doc.Weeks)
	assert.Equal(t, 1, doc.MissingValues)
	assert.Equal(t, generated, doc.GeneratedAt)
}
