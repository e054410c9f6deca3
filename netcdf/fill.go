package netcdf

import (
	"fmt"
	"math"
	"reflect"

	"github.com/meteocima/metfile/cube"
	"github.com/spf13/cast"
)

// DefaultMissingValue is the sentinel used for variables
// without a _FillValue or missing_value attribute.
const DefaultMissingValue = 9.96921e+36

const (
	fillValueAttr    = "_FillValue"
	missingValueAttr = "missing_value"
)

// missingValue selects the sentinel of a variable: its _FillValue
// attribute, else its missing_value attribute, else DefaultMissingValue.
// numeric is false when the selected attribute holds no number, in
// which case no value is ever masked.
func missingValue(attrs cube.Attrs) (sentinel float64, numeric bool, source string) {
	for _, name := range []string{fillValueAttr, missingValueAttr} {
		val, ok := attrs.Get(name)
		if !ok {
			continue
		}
		if _, isText := val.(string); isText {
			return math.NaN(), false, name
		}
		v, err := scalar(val)
		if err != nil {
			return math.NaN(), false, name
		}
		return v, true, name
	}
	return DefaultMissingValue, true, "default"
}

// maskMissing replaces, in place, every element equal to sentinel
// with NaN and returns how many were replaced. single compares in
// float32 precision, as stored by FLOAT variables.
func maskMissing(values []float64, sentinel float64, single bool) int {
	masked := 0
	sentinel32 := float32(sentinel)
	for i, v := range values {
		var match bool
		if single {
			match = float32(v) == sentinel32
		} else {
			match = v == sentinel
		}
		if match {
			values[i] = math.NaN()
			masked++
		}
	}
	return masked
}

// scalar converts a value holding exactly one element, either
// a bare value or a one element slice, to float64.
func scalar(value interface{}) (float64, error) {
	if value == nil {
		return 0, fmt.Errorf("%w: nil value", ErrAttributeConversion)
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Slice {
		if rv.Len() != 1 {
			return 0, fmt.Errorf("%w: %d elements", ErrAttributeConversion, rv.Len())
		}
		value = rv.Index(0).Interface()
	}
	res, err := cast.ToFloat64E(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrAttributeConversion, err)
	}
	return res, nil
}
