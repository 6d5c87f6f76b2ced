package dataprocessing

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	apperrors "clinicreport/internal/errors"
	"clinicreport/pkg/contracts/domain"
)

// YearPolicy decides which year a day/month tracker date belongs to
type YearPolicy string

const (
	// YearPolicyFixed applies the reference year to every record
	YearPolicyFixed YearPolicy = "fixed"
	// YearPolicyNearest picks reference year -1, 0 or +1, whichever puts the
	// date closest to the middle of the reporting month
	YearPolicyNearest YearPolicy = "nearest"
)

// dayMonthPattern is the tracker date grammar: a one or two digit day and an
// English month name, separated by whitespace.
var dayMonthPattern = regexp.MustCompile(`^(\d{1,2})\s+([A-Za-z]+)$`)

// dateLayouts accept abbreviated ("14 Mar") and full ("14 March") month names.
// time.Parse matches month names case-insensitively.
var dateLayouts = []string{"2 Jan 2006", "2 January 2006"}

// ResolveDate turns tracker text such as "14 Mar" into midnight UTC of that
// day in year. Impossible dates and text outside the grammar fail with a
// *errors.DateParseError and the zero time.
func ResolveDate(text string, year int) (time.Time, error) {
	m := dayMonthPattern.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return time.Time{}, &apperrors.DateParseError{Text: text, Year: year, Err: apperrors.ErrDateFormat}
	}

	candidate := fmt.Sprintf("%s %s %04d", m[1], m[2], year)

	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, candidate)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}

	return time.Time{}, &apperrors.DateParseError{Text: text, Year: year, Err: lastErr}
}

// ResolveNearest resolves text against referenceYear-1, referenceYear and
// referenceYear+1 and returns the date closest to the middle of period. It
// fails like ResolveDate when no candidate year yields a valid date.
func ResolveNearest(text string, referenceYear int, period domain.ReportPeriod) (time.Time, error) {
	mid := period.Start().Add(period.End().Sub(period.Start()) / 2)

	var (
		best     time.Time
		bestDist time.Duration
		found    bool
		firstErr error
	)
	for _, year := range []int{referenceYear, referenceYear - 1, referenceYear + 1} {
		t, err := ResolveDate(text, year)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		dist := t.Sub(mid)
		if dist < 0 {
			dist = -dist
		}
		if !found || dist < bestDist {
			best, bestDist, found = t, dist, true
		}
	}

	if !found {
		return time.Time{}, firstErr
	}
	return best, nil
}

// ParseYearPolicy validates a year policy name
func ParseYearPolicy(s string) (YearPolicy, error) {
	switch p := YearPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case YearPolicyFixed, YearPolicyNearest:
		return p, nil
	case "":
		return YearPolicyFixed, nil
	default:
		return "", fmt.Errorf("unknown year policy %q", s)
	}
}

// ParseWeekday maps an English weekday name ("sunday", "Sun") to time.Weekday
func ParseWeekday(s string) (time.Weekday, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "" {
		return time.Sunday, nil
	}
	for d := time.Sunday; d <= time.Saturday; d++ {
		full := strings.ToLower(d.String())
		if name == full || name == full[:3] {
			return d, nil
		}
	}
	return time.Sunday, fmt.Errorf("unknown weekday %q", s)
}
