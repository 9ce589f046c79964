package value

import (
	"math"

	"github.com/spf13/cast"
)

// ToInt64 coerces v to an int64. Numbers are converted (floats truncate),
// strings and characters are parsed, anything else yields 0.
func ToInt64(v Value) int64 {
	switch v.kind {
	case KindInt:
		return v.i
	case KindFloat:
		if math.IsNaN(v.f) {
			return 0
		}
		return int64(v.f)
	case KindString, KindChar:
		return cast.ToInt64(v.String())
	default:
		return 0
	}
}

// ToInt coerces v to an int using the same rules as ToInt64.
func ToInt(v Value) int {
	return int(ToInt64(v))
}

// ToFloat64 coerces v to a float64. Numbers are converted, strings and
// characters are parsed, anything else yields 0.
func ToFloat64(v Value) float64 {
	switch v.kind {
	case KindInt:
		return float64(v.i)
	case KindFloat:
		return v.f
	case KindString, KindChar:
		return cast.ToFloat64(v.String())
	default:
		return 0
	}
}

// ToBool returns the boolean held by v, or false for any other kind.
func ToBool(v Value) bool {
	b, _ := v.AsBool()
	return b
}

// ToChar returns the character held by v, or 0 for any other kind.
func ToChar(v Value) rune {
	r, _ := v.AsChar()
	return r
}
