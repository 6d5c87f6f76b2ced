// Package http implements the HTTP handlers of the report server. Handlers
// only parse requests and format responses; report logic lives in
// internal/services and errors are answered as RFC 7807 problem details by
// internal/errors.ErrorHandler.
//
// # Routes
//
//	GET /api/health                                  health and version
//	GET /api/reports/{year}/{month}                  monthly summary as JSON
//	GET /api/reports/{year}/{month}/document?format= rendered report download
//
// The optional reference_year query parameter overrides the year applied to
// tracker dates.
package http
