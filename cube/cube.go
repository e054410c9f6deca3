// Package cube contains the labeled multi-dimensional
// array used to carry NetCDF variables around, together
// with the grouping operations used to reshape it into
// time series and GRIB-like messages.
package cube

import (
	"errors"
	"fmt"

	"github.com/ctessum/sparse"
)

var (
	// ErrShapeMismatch is returned when a buffer length does not
	// match the product of the axes lengths.
	ErrShapeMismatch = errors.New("buffer length does not match axes")
	// ErrNoSuchDimension ...
	ErrNoSuchDimension = errors.New("no such dimension")
)

// Cube is a labeled N-dimensional array extracted
// from a single variable.
type Cube struct {
	// Name of the variable the cube was loaded from.
	Name string
	// Axes holds one axis per dimension, in declared order.
	Axes []Axis
	// Scalars holds single-valued coordinates of dimensions
	// that were squeezed away by GroupBy.
	Scalars []Axis
	// Data is the row-major buffer of the cube.
	Data *sparse.DenseArray
	// Attrs are the attributes copied from the variable.
	Attrs Attrs
}

// New builds a cube over data. data is used as the
// cube buffer, it is not copied.
func New(name string, axes []Axis, data []float64, attrs Attrs) (*Cube, error) {
	shape := make([]int, len(axes))
	size := 1
	for i, ax := range axes {
		shape[i] = ax.Len()
		size *= shape[i]
	}
	if len(data) != size {
		return nil, fmt.Errorf("%w: cube `%s` has shape %v but %d values", ErrShapeMismatch, name, shape, len(data))
	}

	buf := sparse.ZerosDense(shape...)
	buf.Elements = data
	return &Cube{
		Name:  name,
		Axes:  axes,
		Data:  buf,
		Attrs: attrs,
	}, nil
}

// Dims returns the dimension names in declared order.
func (c *Cube) Dims() []string {
	dims := make([]string, len(c.Axes))
	for i, ax := range c.Axes {
		dims[i] = ax.Name
	}
	return dims
}

// Shape ...
func (c *Cube) Shape() []int {
	shape := make([]int, len(c.Axes))
	for i, ax := range c.Axes {
		shape[i] = ax.Len()
	}
	return shape
}

// Dim returns the position of dimension `name`, or -1.
func (c *Cube) Dim(name string) int {
	for i, ax := range c.Axes {
		if ax.Name == name {
			return i
		}
	}
	return -1
}

// Coord returns the axis named `name`, looking at
// the free dimensions first and then at the scalar ones.
func (c *Cube) Coord(name string) (Axis, bool) {
	if i := c.Dim(name); i >= 0 {
		return c.Axes[i], true
	}
	for _, ax := range c.Scalars {
		if ax.Name == name {
			return ax, true
		}
	}
	return Axis{}, false
}

// At returns the value at the given N-dimensional index.
func (c *Cube) At(index ...int) float64 {
	return c.Data.Get(index...)
}

// Clone returns a deep copy of the cube buffer and axes.
// Attribute values are shared.
func (c *Cube) Clone() *Cube {
	res := *c
	res.Axes = append([]Axis(nil), c.Axes...)
	res.Scalars = append([]Axis(nil), c.Scalars...)
	res.Data = c.Data.Copy()
	res.Attrs = c.Attrs.Clone()
	return &res
}

// Take returns a new cube holding only the positions
// idx along dimension dim, in the given order.
func (c *Cube) Take(dim int, idx []int) *Cube {
	shape := c.Shape()
	outShape := make([]int, len(shape))
	copy(outShape, shape)
	outShape[dim] = len(idx)

	outer, inner := 1, 1
	for _, n := range shape[:dim] {
		outer *= n
	}
	for _, n := range shape[dim+1:] {
		inner *= n
	}

	out := sparse.ZerosDense(outShape...)
	src := c.Data.Elements
	dst := out.Elements
	k := 0
	for o := 0; o < outer; o++ {
		base := o * shape[dim] * inner
		for _, i := range idx {
			copy(dst[k:k+inner], src[base+i*inner:base+(i+1)*inner])
			k += inner
		}
	}

	axes := make([]Axis, len(c.Axes))
	copy(axes, c.Axes)
	axes[dim] = c.Axes[dim].take(idx)

	return &Cube{
		Name:    c.Name,
		Axes:    axes,
		Scalars: append([]Axis(nil), c.Scalars...),
		Data:    out,
		Attrs:   c.Attrs.Clone(),
	}
}

// squeeze removes dimension dim, which must have length 1,
// moving its coordinate to Scalars. The receiver is modified.
func (c *Cube) squeeze(dim int) {
	c.Scalars = append(c.Scalars, c.Axes[dim])
	c.Axes = append(c.Axes[:dim:dim], c.Axes[dim+1:]...)

	elements := c.Data.Elements
	c.Data = sparse.ZerosDense(c.Shape()...)
	c.Data.Elements = elements
}
