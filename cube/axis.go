package cube

import (
	"strconv"
	"time"
)

// Axis is a named dimension of a cube, with one
// coordinate value for every position along it.
type Axis struct {
	Name   string
	Values []float64
	Attrs  Attrs
}

// IndexAxis returns an axis whose coordinates
// are the positions 0..length-1. It is used for
// dimensions without a coordinate variable.
func IndexAxis(name string, length int) Axis {
	values := make([]float64, length)
	for i := range values {
		values[i] = float64(i)
	}
	return Axis{Name: name, Values: values}
}

// Len ...
func (ax Axis) Len() int {
	return len(ax.Values)
}

// IsTime returns whether the axis units are CF time units.
func (ax Axis) IsTime() bool {
	_, err := parseTimeUnits(ax.Attrs.Text("units"))
	return err == nil
}

// Times decodes every coordinate of a CF time axis.
func (ax Axis) Times() ([]time.Time, error) {
	units, err := parseTimeUnits(ax.Attrs.Text("units"))
	if err != nil {
		return nil, err
	}
	res := make([]time.Time, len(ax.Values))
	for i, v := range ax.Values {
		res[i] = units.at(v)
	}
	return res, nil
}

// Label renders the i-th coordinate as used in composite keys:
// RFC 3339 for time axes, shortest decimal form otherwise.
func (ax Axis) Label(i int) string {
	if units, err := parseTimeUnits(ax.Attrs.Text("units")); err == nil {
		if t := units.at(ax.Values[i]); !t.IsZero() {
			return t.Format(time.RFC3339)
		}
	}
	return strconv.FormatFloat(ax.Values[i], 'f', -1, 64)
}

func (ax Axis) take(idx []int) Axis {
	values := make([]float64, len(idx))
	for i, j := range idx {
		values[i] = ax.Values[j]
	}
	return Axis{Name: ax.Name, Values: values, Attrs: ax.Attrs}
}
