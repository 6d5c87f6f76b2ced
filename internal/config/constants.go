package config

import "time"

// Application constants
const (
	AppName    = "clinic-report"
	AppVersion = "1.0.0"

	// EnvPrefix namespaces every environment variable, e.g. CLINIC_SOURCE_KIND
	EnvPrefix = "CLINIC"

	// Tracker layout
	DefaultDateColumn              = "Date"
	DefaultNewPatientsColumn       = "New Px"
	DefaultReturningPatientsColumn = "Returning Px"
	DefaultCommentsColumn          = "Comments"

	// Report output
	DefaultReportTitle    = "Monthly Eye Clinic Report"
	DefaultReportAuthor   = "Eye Clinic"
	DefaultReportBaseName = "monthly_eye_clinic_report"

	// Policies
	BadDateAbort      = "abort"
	BadDateSkip       = "skip"
	YearPolicyFixed   = "fixed"
	YearPolicyNearest = "nearest"

	// Timeouts
	DefaultSourceTimeout    = 30 * time.Second
	ReportGenerationTimeout = 2 * time.Minute

	// Rate Limiting
	DefaultRateLimit = 5 // report requests per second
	DefaultBurstSize = 10
)
