package dataprocessing

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"clinicreport/pkg/contracts/domain"
)

func TestCoerce(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want domain.Count
	}{
		{name: "int", raw: 3, want: domain.NewCount(3)},
		{name: "int64", raw: int64(12), want: domain.NewCount(12)},
		{name: "uint8", raw: uint8(7), want: domain.NewCount(7)},
		{name: "float", raw: 2.5, want: domain.NewCount(2.5)},
		{name: "float32", raw: float32(4), want: domain.NewCount(4)},
		{name: "zero is present", raw: 0, want: domain.NewCount(0)},
		{name: "negative", raw: -2, want: domain.NewCount(-2)},
		{name: "numeric string", raw: "4", want: domain.NewCount(4)},
		{name: "padded string", raw: "  6 ", want: domain.NewCount(6)},
		{name: "thousands separator", raw: "1,204", want: domain.NewCount(1204)},
		{name: "decimal string", raw: "2.75", want: domain.NewCount(2.75)},
		{name: "json number", raw: json.Number("9"), want: domain.NewCount(9)},
		{name: "text", raw: "x", want: domain.Missing},
		{name: "n/a", raw: "n/a", want: domain.Missing},
		{name: "empty string", raw: "", want: domain.Missing},
		{name: "blank string", raw: "   ", want: domain.Missing},
		{name: "nil", raw: nil, want: domain.Missing},
		{name: "bool", raw: true, want: domain.Missing},
		{name: "nan", raw: math.NaN(), want: domain.Missing},
		{name: "inf string", raw: "Inf", want: domain.Missing},
		{name: "slice", raw: []int{1}, want: domain.Missing},
		{name: "existing count", raw: domain.NewCount(5), want: domain.NewCount(5)},
		{name: "existing missing", raw: domain.Missing, want: domain.Missing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Coerce(tt.raw))
		})
	}
}

func TestCoerce_Idempotent(t *testing.T) {
	for _, raw := range []any{3, 4.5, "7", "junk", nil} {
		once := Coerce(raw)
		assert.Equal(t, once, Coerce(once))
		if once.Valid {
			assert.Equal(t, once, Coerce(once.Value))
		}
	}
}
