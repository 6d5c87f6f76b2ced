// Package security loads the Google service-account key used by the Sheets
// record source and checks it before any API call is made.
package security
