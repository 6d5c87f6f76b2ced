package testutil

import "clinicreport/pkg/contracts/domain"

// MarchTracker returns a small patient tracker for March 2024. Totals for the
// month are 8 new, 7 returning and 11 patients (the 15 Mar row has no usable
// new count); 14 and 15 Mar fall in the week ending 17 Mar, 21 Mar in the week
// ending 24 Mar. The trailing April row is outside the month.
func MarchTracker() []domain.DailyRecord {
	return []domain.DailyRecord{
		{Row: 2, DateText: "14 Mar", NewPatients: 3, ReturningPatients: 2, Comment: "ok"},
		{Row: 3, DateText: "15 Mar", NewPatients: "x", ReturningPatients: 4},
		{Row: 4, DateText: "21 Mar", NewPatients: 5, ReturningPatients: "1", Comment: "busy day"},
		{Row: 5, DateText: "2 Apr", NewPatients: 9, ReturningPatients: 9, Comment: "april"},
	}
}

// TrackerHeader is the default header row of the patient tracker
var TrackerHeader = []string{"Date", "New Px", "Returning Px", "Comments"}

// MarchTrackerRows renders MarchTracker as spreadsheet cell text, header first
func MarchTrackerRows() [][]string {
	return [][]string{
		TrackerHeader,
		{"14 Mar", "3", "2", "ok"},
		{"15 Mar", "x", "4", ""},
		{"21 Mar", "5", "1", "busy day"},
		{"2 Apr", "9", "9", "april"},
	}
}
