package dataprocessing

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"clinicreport/pkg/contracts/domain"
)

// Coerce converts a raw cell value to a patient count. Numbers pass through
// unchanged; strings are trimmed, stripped of thousands separators and parsed.
// Empty strings, nil, booleans, NaN, infinities and every other value become
// the missing marker. Coerce never fails and returns an existing Count as is.
func Coerce(raw any) domain.Count {
	switch v := raw.(type) {
	case domain.Count:
		return v
	case nil, bool:
		return domain.Missing
	case float64:
		return finite(v)
	case float32:
		return finite(float64(v))
	case int:
		return domain.NewCount(float64(v))
	case int8:
		return domain.NewCount(float64(v))
	case int16:
		return domain.NewCount(float64(v))
	case int32:
		return domain.NewCount(float64(v))
	case int64:
		return domain.NewCount(float64(v))
	case uint:
		return domain.NewCount(float64(v))
	case uint8:
		return domain.NewCount(float64(v))
	case uint16:
		return domain.NewCount(float64(v))
	case uint32:
		return domain.NewCount(float64(v))
	case uint64:
		return domain.NewCount(float64(v))
	case json.Number:
		return parseCount(v.String())
	case string:
		return parseCount(v)
	default:
		return domain.Missing
	}
}

func parseCount(s string) domain.Count {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return domain.Missing
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return domain.Missing
	}
	return finite(f)
}

func finite(f float64) domain.Count {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return domain.Missing
	}
	return domain.NewCount(f)
}
