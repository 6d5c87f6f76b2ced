package services

import "errors"

// Report service errors
var (
	ErrInvalidPeriod    = errors.New("invalid reporting period")
	ErrNoFormats        = errors.New("no report formats requested")
	ErrOutputDirMissing = errors.New("output directory not set")
)
