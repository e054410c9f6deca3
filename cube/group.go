package cube

import (
	"fmt"
	"math"
)

// Group is one split of a cube along a dimension.
type Group struct {
	// Value is the coordinate shared by every position in the group.
	Value float64
	// Label is Value rendered as in composite keys.
	Label string
	Cube  *Cube
}

// GroupBy splits the cube along dimension `name`, one group per
// distinct coordinate value. Groups follow the order in which
// values are first encountered, and every group keeps its positions
// in their original order. Positions with a NaN coordinate belong
// to no group.
//
// When squeeze is true, groups made of a single position lose the
// dimension, which moves to the cube Scalars.
func (c *Cube) GroupBy(name string, squeeze bool) ([]Group, error) {
	dim := c.Dim(name)
	if dim < 0 {
		return nil, fmt.Errorf("%w: `%s` in cube `%s`", ErrNoSuchDimension, name, c.Name)
	}

	ax := c.Axes[dim]
	var order []float64
	positions := map[float64][]int{}
	for i, v := range ax.Values {
		if math.IsNaN(v) {
			continue
		}
		if _, seen := positions[v]; !seen {
			order = append(order, v)
		}
		positions[v] = append(positions[v], i)
	}

	groups := make([]Group, 0, len(order))
	for _, v := range order {
		idx := positions[v]
		sub := c.Take(dim, idx)
		if squeeze && len(idx) == 1 {
			sub.squeeze(dim)
		}
		groups = append(groups, Group{
			Value: v,
			Label: ax.Label(idx[0]),
			Cube:  sub,
		})
	}
	return groups, nil
}
