package cube

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sample builds a (time=3, level=2, x=2) cube whose
// value at (t, l, x) is 100*t + 10*l + x.
func sample(t *testing.T) *Cube {
	t.Helper()
	axes := []Axis{
		{Name: "time", Values: []float64{0, 1, 2}, Attrs: Attrs{{Name: "units", Value: "hours since 2016-12-14 00:00:00"}}},
		{Name: "level", Values: []float64{850, 500}},
		IndexAxis("x", 2),
	}
	data := make([]float64, 0, 12)
	for ti := 0; ti < 3; ti++ {
		for l := 0; l < 2; l++ {
			for x := 0; x < 2; x++ {
				data = append(data, float64(100*ti+10*l+x))
			}
		}
	}
	c, err := New("T", axes, data, Attrs{{Name: "units", Value: "K"}})
	require.NoError(t, err)
	return c
}

func TestNewChecksShape(t *testing.T) {
	_, err := New("T", []Axis{IndexAxis("x", 3)}, []float64{1, 2}, nil)
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestShapeAndDims(t *testing.T) {
	c := sample(t)
	assert.Equal(t, []string{"time", "level", "x"}, c.Dims())
	assert.Equal(t, []int{3, 2, 2}, c.Shape())
	assert.Equal(t, 1, c.Dim("level"))
	assert.Equal(t, -1, c.Dim("ensemble"))
	assert.Equal(t, 211.0, c.At(2, 1, 1))
}

func TestTake(t *testing.T) {
	c := sample(t)
	sub := c.Take(1, []int{1})

	assert.Equal(t, []int{3, 1, 2}, sub.Shape())
	assert.Equal(t, []float64{500}, sub.Axes[1].Values)
	assert.Equal(t, []float64{10, 11, 110, 111, 210, 211}, sub.Data.Elements)
	assert.Equal(t, 110.0, sub.At(1, 0, 0))

	// the source cube is untouched
	assert.Equal(t, []float64{850, 500}, c.Axes[1].Values)
	assert.Len(t, c.Data.Elements, 12)
}

func TestTakeReorders(t *testing.T) {
	c := sample(t)
	sub := c.Take(0, []int{2, 0})
	assert.Equal(t, []float64{2, 0}, sub.Axes[0].Values)
	assert.Equal(t, 200.0, sub.At(0, 0, 0))
	assert.Equal(t, 11.0, sub.At(1, 1, 1))
}

func TestClone(t *testing.T) {
	c := sample(t)
	cl := c.Clone()
	cl.Data.Elements[0] = -1
	cl.Attrs.Set("units", "C")

	assert.Equal(t, 0.0, c.Data.Elements[0])
	assert.Equal(t, "K", c.Attrs.Text("units"))
	assert.Equal(t, c.Shape(), cl.Shape())
}

func TestCoord(t *testing.T) {
	c := sample(t)
	groups, err := c.GroupBy("level", true)
	require.NoError(t, err)

	sub := groups[0].Cube
	ax, ok := sub.Coord("level")
	require.True(t, ok)
	assert.Equal(t, []float64{850}, ax.Values)
	assert.Equal(t, -1, sub.Dim("level"))

	_, ok = sub.Coord("ensemble")
	assert.False(t, ok)
}

func TestAttrs(t *testing.T) {
	attrs := Attrs{{Name: "units", Value: "K"}, {Name: "title", Value: "t2m"}}
	attrs.Update(Attrs{{Name: "title", Value: "global"}, {Name: "source", Value: "cosmo"}})

	assert.Equal(t, Attrs{
		{Name: "units", Value: "K"},
		{Name: "title", Value: "global"},
		{Name: "source", Value: "cosmo"},
	}, attrs)
	_, ok := attrs.Get("_FillValue")
	assert.False(t, ok)
	assert.Equal(t, "", Attrs{{Name: "n", Value: []int32{1}}}.Text("n"))
}
