// Package netcdf reads meteorological NetCDF files into cubes and
// reshapes them into per-station time series or GRIB-like messages.
package netcdf

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/meteocima/metfile/cube"
	"github.com/sirupsen/logrus"
)

// TimeDimension is the dimension time series are indexed by.
const TimeDimension = "time"

// Handler reads a single NetCDF file. Every operation opens
// the file, reads what it needs and closes it again: no handle
// survives between calls.
type Handler struct {
	Path string
	Log  logrus.FieldLogger
}

// NewHandler ...
func NewHandler(path string) *Handler {
	return &Handler{
		Path: path,
		Log:  logrus.StandardLogger(),
	}
}

func (h *Handler) open() *Dataset {
	h.Log.WithField("path", h.Path).Debug("open dataset")
	return Open(h.Path)
}

// Probe returns whether the file can be opened as a NetCDF
// dataset. I/O and format failures give false; any other
// failure is returned.
func (h *Handler) Probe() (bool, error) {
	ds := h.open()
	ds.Close()
	if ds.Err == nil {
		return true, nil
	}
	if isOpenFailure(ds.Err) {
		h.Log.WithError(ds.Err).WithField("path", h.Path).Debug("not a NetCDF dataset")
		return false, nil
	}
	return false, ds.Err
}

// Variables returns the names of the data variables,
// coordinate variables excluded, in file order.
func (h *Handler) Variables() ([]string, error) {
	ds := h.open()
	names := ds.DataVariables()
	ds.Close()
	if ds.Err != nil {
		return nil, ds.Err
	}
	return names, nil
}

// LoadCube loads variable `name` as a cube, replacing
// missing values with NaN.
func (h *Handler) LoadCube(name string) (*cube.Cube, error) {
	ds := h.open()
	c := h.loadCube(ds, name)
	ds.Close()
	if ds.Err != nil {
		return nil, ds.Err
	}
	return c, nil
}

func (h *Handler) loadCube(ds *Dataset, name string) *cube.Cube {
	if ds.Err != nil {
		return nil
	}
	if !ds.HasVariable(name) {
		if ds.Err == nil {
			ds.Err = fmt.Errorf("%w: `%s` in `%s`", ErrVariableNotFound, name, ds.Path)
		}
		return nil
	}

	log := h.Log.WithFields(logrus.Fields{"path": ds.Path, "variable": name})
	log.Debug("load cube")

	dims := ds.Dimensions(name)
	lengths := ds.Lengths(name)
	attrs := ds.Attrs(name)
	values := ds.ReadFloat64(name)
	axes := make([]cube.Axis, len(dims))
	for i, dim := range dims {
		axes[i] = ds.Axis(dim, lengths[i])
	}
	if ds.Err != nil {
		return nil
	}

	sentinel, numeric, source := missingValue(attrs)
	if numeric {
		masked := maskMissing(values, sentinel, ds.Float32(name))
		log.WithFields(logrus.Fields{"sentinel": sentinel, "from": source, "masked": masked}).Debug("masked missing values")
	}

	c, err := cube.New(name, axes, values, attrs)
	if err != nil {
		ds.Err = err
		return nil
	}
	return c
}

var locationVariables = []struct {
	key, variable string
}{
	{"latitude", "lat"},
	{"longitude", "lon"},
	{"altitude", "zsl"},
}

// LocationAttrs reads the station location from the `lat`, `lon`
// and `zsl` variables into the keys latitude, longitude and altitude.
// Keys whose variable is absent or does not hold a single number
// are omitted. Only failures reading the dataset are returned.
func (h *Handler) LocationAttrs() (map[string]float64, error) {
	ds := h.open()
	res := map[string]float64{}
	for _, loc := range locationVariables {
		if !ds.HasVariable(loc.variable) {
			continue
		}
		values := ds.ReadFloat64(loc.variable)
		if ds.Err != nil {
			break
		}
		v, err := scalar(values)
		if err != nil {
			h.Log.WithError(err).WithField("variable", loc.variable).Debug("location skipped")
			continue
		}
		res[loc.key] = v
	}
	ds.Close()
	if ds.Err != nil {
		return nil, ds.Err
	}
	return res, nil
}

// Timeseries loads variable `name` and splits it into one series per
// combination of its non-time coordinates. Keys join the variable
// name and the coordinate labels with underscores, following the
// declared dimension order. A variable with only the time dimension
// yields a single series keyed by its name.
//
// A coordinate value repeated along its dimension gives a single
// series holding the samples of every repetition, flattened in
// row-major order. Distinct values rendering to the same label
// fail with ErrDuplicateKey.
func (h *Handler) Timeseries(name string) (map[string]cube.Series, error) {
	c, err := h.LoadCube(name)
	if err != nil {
		return nil, err
	}
	return splitTimeseries(c, h.Log)
}

func splitTimeseries(c *cube.Cube, log logrus.FieldLogger) (map[string]cube.Series, error) {
	if c.Dim(TimeDimension) < 0 {
		return nil, fmt.Errorf("%w: `%s` has no `%s` dimension", ErrMissingDimension, c.Name, TimeDimension)
	}

	keys := []string{c.Name}
	split := map[string]*cube.Cube{c.Name: c}
	for _, dim := range c.Dims() {
		if dim == TimeDimension {
			continue
		}
		var nextKeys []string
		next := map[string]*cube.Cube{}
		for _, key := range keys {
			groups, err := split[key].GroupBy(dim, true)
			if err != nil {
				return nil, err
			}
			for _, g := range groups {
				k := key + "_" + g.Label
				if _, dup := next[k]; dup {
					return nil, fmt.Errorf("%w: `%s` along `%s`", ErrDuplicateKey, k, dim)
				}
				nextKeys = append(nextKeys, k)
				next[k] = g.Cube
			}
		}
		keys, split = nextKeys, next
		log.WithFields(logrus.Fields{"dimension": dim, "splits": len(keys)}).Debug("split time series")
	}

	res := make(map[string]cube.Series, len(keys))
	for _, key := range keys {
		s, err := split[key].ToSeries()
		if errors.Is(err, cube.ErrNotOneDimensional) {
			log.WithFields(logrus.Fields{"series": key, "dimensions": split[key].Dims()}).Debug("flatten repeated coordinates")
			s, err = split[key].FlatSeries(TimeDimension)
		}
		if err != nil {
			return nil, fmt.Errorf("converting `%s` to a time series: %w", key, err)
		}
		res[key] = s
	}
	return res, nil
}

// Messages loads variable `name`, adds the dataset attributes to it
// (dataset values win on collision) and splits it along every
// dimension but the last two, mimicking GRIB messages. Dimensions
// whose name is a single character are never split. Every message
// keeps all the dimensions of the variable, the split ones with
// length 1.
func (h *Handler) Messages(name string) ([]*cube.Cube, error) {
	ds := h.open()
	c := h.loadCube(ds, name)
	global := ds.GlobalAttrs()
	ds.Close()
	if ds.Err != nil {
		return nil, ds.Err
	}
	c.Attrs.Update(global)
	return splitMessages(c, h.Log)
}

func splitMessages(c *cube.Cube, log logrus.FieldLogger) ([]*cube.Cube, error) {
	split := []*cube.Cube{c}
	dims := c.Dims()
	if len(dims) <= 2 {
		return split, nil
	}

	for _, dim := range dims[:len(dims)-2] {
		if utf8.RuneCountInString(dim) <= 1 {
			continue
		}
		var next []*cube.Cube
		for _, sub := range split {
			groups, err := sub.GroupBy(dim, false)
			if err != nil {
				return nil, err
			}
			for _, g := range groups {
				next = append(next, g.Cube)
			}
		}
		split = next
		log.WithFields(logrus.Fields{"dimension": dim, "length": c.Axes[c.Dim(dim)].Len()}).Debug("split messages")
	}
	return split, nil
}
