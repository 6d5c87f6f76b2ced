// Package files locates tracker exports on disk. cmd/clinic-report uses it
// when -source names a directory: the most recently modified .xlsx, .xlsm or
// .csv file in that directory becomes the record source.
package files
