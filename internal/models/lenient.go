package models

import (
	"math"
	"strings"

	"github.com/spf13/cast"
)

// ToFloat coerces form and stored input to a number. Blank, non-numeric and
// non-finite values become 0.
func ToFloat(v any) float64 {
	if s, ok := v.(string); ok {
		v = strings.TrimSpace(s)
	}
	f, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// ToInt truncates ToFloat towards zero. Values outside the int range become 0.
func ToInt(v any) int {
	f := ToFloat(v)
	if f >= float64(math.MaxInt) || f < float64(math.MinInt) {
		return 0
	}
	return int(f)
}

func ToInt64(v any) int64 {
	f := ToFloat(v)
	if f >= float64(math.MaxInt64) || f < float64(math.MinInt64) {
		return 0
	}
	return int64(f)
}
