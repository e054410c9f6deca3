package cube

import (
	"errors"
	"fmt"
	"time"
)

// ErrNotOneDimensional is returned by ToSeries for
// cubes with more or less than one free dimension.
var ErrNotOneDimensional = errors.New("cube is not one-dimensional")

// Point is a single sample of a series.
type Point struct {
	// Coord is the raw coordinate value.
	Coord float64
	// Time is the decoded coordinate, zero when the
	// axis is not a CF time axis.
	Time  time.Time
	Value float64
}

// Series is an ordered sequence of samples.
type Series []Point

// ToSeries converts a one-dimensional cube into a series,
// keeping the axis order.
func (c *Cube) ToSeries() (Series, error) {
	if len(c.Axes) != 1 {
		return nil, fmt.Errorf("%w: `%s` has dimensions %v", ErrNotOneDimensional, c.Name, c.Dims())
	}
	ax := c.Axes[0]
	var times []time.Time
	if ax.IsTime() {
		times, _ = ax.Times()
	}

	res := make(Series, ax.Len())
	for i, coord := range ax.Values {
		res[i] = Point{Coord: coord, Value: c.At(i)}
		if times != nil {
			res[i].Time = times[i]
		}
	}
	return res, nil
}

// FlatSeries converts the cube into a series walking its buffer in
// row-major order. The coordinate of every sample is the one along
// dimension `name`, the other dimensions only multiply the samples.
// GroupBy leaves such dimensions behind for coordinate values that
// repeat along them.
func (c *Cube) FlatSeries(name string) (Series, error) {
	dim := c.Dim(name)
	if dim < 0 {
		return nil, fmt.Errorf("%w: `%s` in cube `%s`", ErrNoSuchDimension, name, c.Name)
	}
	ax := c.Axes[dim]
	var times []time.Time
	if ax.IsTime() {
		times, _ = ax.Times()
	}

	inner := 1
	for _, n := range c.Shape()[dim+1:] {
		inner *= n
	}
	res := make(Series, len(c.Data.Elements))
	for k, v := range c.Data.Elements {
		i := (k / inner) % ax.Len()
		res[k] = Point{Coord: ax.Values[i], Value: v}
		if times != nil {
			res[k].Time = times[i]
		}
	}
	return res, nil
}

// HasTimes returns whether the samples carry decoded times.
func (s Series) HasTimes() bool {
	return len(s) > 0 && !s[0].Time.IsZero()
}

// Between returns the samples with start <= Time < end.
func (s Series) Between(start, end time.Time) Series {
	res := Series{}
	for _, p := range s {
		if !p.Time.Before(start) && p.Time.Before(end) {
			res = append(res, p)
		}
	}
	return res
}
