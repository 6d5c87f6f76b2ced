package domain

import (
	"encoding/json"
	"time"
)

// DailyRecord is one row of the patient tracker as delivered by a record source.
// Count fields hold the raw cell value; their type is not guaranteed.
type DailyRecord struct {
	Row               int    `json:"row"`
	DateText          string `json:"date"`
	NewPatients       any    `json:"new_patients,omitempty"`
	ReturningPatients any    `json:"returning_patients,omitempty"`
	Comment           string `json:"comment,omitempty"`
}

// Count is a coerced patient count. A Count that is not Valid is the missing
// marker and is distinct from zero.
type Count struct {
	Value float64
	Valid bool
}

// Missing is the zero Count.
var Missing = Count{}

// NewCount returns a present count.
func NewCount(v float64) Count {
	return Count{Value: v, Valid: true}
}

// Add returns the sum of two counts. The result is missing if either side is.
func (c Count) Add(other Count) Count {
	if !c.Valid || !other.Valid {
		return Missing
	}
	return NewCount(c.Value + other.Value)
}

// MarshalJSON encodes a missing count as null.
func (c Count) MarshalJSON() ([]byte, error) {
	if !c.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(c.Value)
}

// UnmarshalJSON decodes null as missing.
func (c *Count) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*c = Missing
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*c = NewCount(v)
	return nil
}

// NormalizedRecord is a DailyRecord with a resolved calendar date and coerced counts.
type NormalizedRecord struct {
	Row               int       `json:"row"`
	Date              time.Time `json:"date"`
	NewPatients       Count     `json:"new_patients"`
	ReturningPatients Count     `json:"returning_patients"`
	Total             Count     `json:"total"`
	Comment           string    `json:"comment,omitempty"`
}
