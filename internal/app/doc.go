// Package app wires the report server together and manages its lifecycle.
//
// # Initialization Flow
//
//	1. cmd/clinic-report-server loads configuration, logging and telemetry
//	2. NewApplication builds the record source, aggregator and report service
//	3. setupRouter installs middleware, the report API and /metrics
//	4. Run serves until SIGINT/SIGTERM and shuts down within the configured timeout
//
// NewReportService is shared with cmd/clinic-report so both binaries run the
// same pipeline.
package app
