// Package plot wraps a single gonum plot, drawing
// time series on it by method name.
package plot

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/meteocima/metfile/cube"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// ErrUnknownMethod is returned by PlotMethod for
// drawing methods that Subplot does not know.
var ErrUnknownMethod = errors.New("unknown drawing method")

type drawFunc func(xys plotter.XYs) ([]plot.Plotter, plot.Thumbnailer, error)

var methods = map[string]drawFunc{
	"plot": func(xys plotter.XYs) ([]plot.Plotter, plot.Thumbnailer, error) {
		l, err := plotter.NewLine(xys)
		if err != nil {
			return nil, nil, err
		}
		return []plot.Plotter{l}, l, nil
	},
	"step": func(xys plotter.XYs) ([]plot.Plotter, plot.Thumbnailer, error) {
		l, err := plotter.NewLine(xys)
		if err != nil {
			return nil, nil, err
		}
		l.StepStyle = plotter.PreStep
		return []plot.Plotter{l}, l, nil
	},
	"scatter": func(xys plotter.XYs) ([]plot.Plotter, plot.Thumbnailer, error) {
		s, err := plotter.NewScatter(xys)
		if err != nil {
			return nil, nil, err
		}
		return []plot.Plotter{s}, s, nil
	},
	"linepoints": func(xys plotter.XYs) ([]plot.Plotter, plot.Thumbnailer, error) {
		l, s, err := plotter.NewLinePoints(xys)
		if err != nil {
			return nil, nil, err
		}
		return []plot.Plotter{l, s}, l, nil
	},
}

// Subplot holds one plotting axes object.
type Subplot struct {
	ax     *plot.Plot
	series int
}

// New creates a subplot with the given title.
func New(title string) *Subplot {
	p := plot.New()
	p.Title.Text = title
	p.Add(plotter.NewGrid())
	return &Subplot{ax: p}
}

// PlotMethod draws data on the axes with the drawing
// method named `method`: plot, step, scatter or linepoints.
// A non empty label adds a legend entry. Series without
// valid samples draw nothing.
func (s *Subplot) PlotMethod(data cube.Series, method, label string) (*Subplot, error) {
	draw, ok := methods[method]
	if !ok {
		return s, fmt.Errorf("%w: `%s`", ErrUnknownMethod, method)
	}

	xys := extractData(data)
	if len(xys) == 0 {
		return s, nil
	}
	plotters, thumb, err := draw(xys)
	if err != nil {
		return s, fmt.Errorf("drawing %s: %w", method, err)
	}

	if data.HasTimes() {
		s.ax.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02\n15:04"}
	}

	if l, ok := plotters[0].(*plotter.Line); ok {
		l.Color = plotutil.Color(s.series)
	}
	if sc, ok := plotters[len(plotters)-1].(*plotter.Scatter); ok {
		sc.Color = plotutil.Color(s.series)
	}
	s.series++

	s.ax.Add(plotters...)
	if label != "" {
		s.ax.Legend.Add(label, thumb)
	}
	return s, nil
}

// Save renders the axes to path, the format
// follows the file extension.
func (s *Subplot) Save(path string, width, height vg.Length) error {
	return s.ax.Save(width, height, path)
}

// WriteTo renders the axes to w in format,
// one of the formats supported by Save.
func (s *Subplot) WriteTo(w io.Writer, width, height vg.Length, format string) error {
	wt, err := s.ax.WriterTo(width, height, format)
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}

// extractData converts a series to plottable points, dropping
// missing values. X is the unix time for decoded time series,
// the raw coordinate otherwise.
func extractData(data cube.Series) plotter.XYs {
	xys := make(plotter.XYs, 0, len(data))
	for _, p := range data {
		if math.IsNaN(p.Value) || math.IsInf(p.Value, 0) {
			continue
		}
		x := p.Coord
		if !p.Time.IsZero() {
			x = float64(p.Time.Unix())
		}
		xys = append(xys, plotter.XY{X: x, Y: p.Value})
	}
	return xys
}
