// Package config loads the clinic report configuration.
//
// # Configuration Sources
//
// Configuration is assembled from the following sources in increasing order
// of precedence:
//
//	1. Default values (see Default)
//	2. A YAML file passed to Load, or clinic-report.yaml / configs/clinic-report.yaml
//	3. Environment variables prefixed with CLINIC_
//
// Relative paths in the YAML file are resolved against the file's directory.
//
// # Environment Variables
//
// Nested sections map to underscore separated names:
//
//	CLINIC_SOURCE_KIND=xlsx
//	CLINIC_SOURCE_PATH=/data/patient_tracker.xlsx
//	CLINIC_SOURCE_SPREADSHEET_ID=1AbC...
//	CLINIC_REPORT_ON_BAD_DATE=skip
//	CLINIC_REPORT_FORMATS=tex,xlsx
//	CLINIC_LOGGING_LEVEL=debug
//	CLINIC_SERVER_PORT=8080
//
// # Validation
//
// Load validates the merged result with go-playground/validator. A sheets
// source needs a spreadsheet id, file sources need a path, and every policy
// field must name a known value.
package config
