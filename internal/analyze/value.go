package analyze

import (
	"encoding/json"
	"strconv"
)

// UndefinedMarker is how an undefined metric renders in textual output.
// Metrics with a zero denominator report this marker, never 0, NaN, or Inf.
const UndefinedMarker = "undefined"

// Value is a scalar metric that may be undefined. The zero Value is undefined.
type Value struct {
	value   float64
	defined bool
}

func Defined(v float64) Value {
	return Value{value: v, defined: true}
}

func Undefined() Value {
	return Value{}
}

func (v Value) Defined() bool {
	return v.defined
}

// Float returns the metric value; ok is false when the metric is undefined.
func (v Value) Float() (float64, bool) {
	return v.value, v.defined
}

// Format renders the value with fixed decimal precision, or the undefined
// marker. prec follows strconv.FormatFloat.
func (v Value) Format(prec int) string {
	if !v.defined {
		return UndefinedMarker
	}
	return strconv.FormatFloat(v.value, 'f', prec, 64)
}

func (v Value) String() string {
	if !v.defined {
		return UndefinedMarker
	}
	return strconv.FormatFloat(v.value, 'g', -1, 64)
}

// MarshalJSON encodes undefined values as null so they survive a round trip
// without turning into zeros.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.defined {
		return []byte("null"), nil
	}
	return json.Marshal(v.value)
}

func (v *Value) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*v = Value{}
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*v = Defined(f)
	return nil
}
