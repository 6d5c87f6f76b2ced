// Package services implements the report workflows shared by the CLI and the
// HTTP server.
//
// ReportService runs the pipeline in three traced stages:
//
//	fetch      read the patient tracker from the configured source
//	aggregate  resolve dates, keep the requested month, sum weeks and totals
//	render     write the report in each requested format
//
// Generate writes files and is used by cmd/clinic-report. Summary returns the
// aggregated document only and coalesces identical concurrent requests, which
// keeps the HTTP API from hammering the Sheets quota.
//
// Example:
//
//	svc, err := services.NewReportService(src, agg, cfg.Report, cfg.Source.Timeout, providers, logger)
//	if err != nil {
//		return err
//	}
//	result, err := svc.Generate(ctx, services.ReportRequest{
//		Period: domain.ReportPeriod{Year: 2024, Month: time.March},
//	})
package services
