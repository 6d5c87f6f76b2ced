// Package infrastructure wires logging and telemetry.
//
// InitializeLogger builds the JSON slog logger used by every binary; records
// logged with a context carrying a trace id (see EnsureTraceID) get a
// trace_id attribute. InitializeOTel sets up an optional stdout span exporter
// and a Prometheus-backed meter provider whose registry is served on /metrics
// by the server and written to a textfile by the CLI. ReportMetrics holds the
// report pipeline instruments.
package infrastructure
