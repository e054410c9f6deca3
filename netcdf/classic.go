package netcdf

import (
	"fmt"
	"os"

	"github.com/ctessum/cdf"
	"github.com/meteocima/metfile/cube"
)

// classic reads CDF-1 and CDF-2 files.
type classic struct {
	file    *os.File
	cdf     *cdf.File
	numRecs int
}

// openClassic parses the header of f, taking
// ownership of it. f is closed on failure.
func openClassic(path string, f *os.File) (st store, err error) {
	// the cdf header parser panics on some malformed inputs
	defer func() {
		if r := recover(); r != nil {
			f.Close()
			st, err = nil, fmt.Errorf("%w: `%s`: %v", ErrFormat, path, r)
		}
	}()

	cf, err := cdf.Open(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: `%s`: %w", ErrFormat, path, err)
	}
	if errs := cf.Header.Check(); len(errs) > 0 {
		f.Close()
		return nil, fmt.Errorf("%w: `%s`: %w", ErrFormat, path, errs[0])
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	return &classic{
		file:    f,
		cdf:     cf,
		numRecs: int(cf.Header.NumRecs(info.Size())),
	}, nil
}

func (c *classic) close() error {
	return c.file.Close()
}

func (c *classic) variables() []string {
	return c.cdf.Header.Variables()
}

func (c *classic) dimensions(name string) []string {
	return c.cdf.Header.Dimensions(name)
}

// lengths computes the length of the record dimension from the file size.
func (c *classic) lengths(name string) []int {
	lengths := append([]int(nil), c.cdf.Header.Lengths(name)...)
	if c.cdf.Header.IsRecordVariable(name) {
		lengths[0] = c.numRecs
	}
	return lengths
}

func (c *classic) float32(name string) bool {
	_, ok := c.cdf.Header.ZeroValue(name, 0).([]float32)
	return ok
}

func (c *classic) attrs(name string) (cube.Attrs, error) {
	names := c.cdf.Header.Attributes(name)
	res := make(cube.Attrs, 0, len(names))
	for _, a := range names {
		res = append(res, cube.Attr{Name: a, Value: c.cdf.Header.GetAttribute(name, a)})
	}
	return res, nil
}

func (c *classic) read(name string) ([]float64, error) {
	lengths := c.lengths(name)
	n := 1
	for _, l := range lengths {
		n *= l
	}

	// record variables need an explicit end corner,
	// the reader stops after the first record otherwise
	var end []int
	if c.cdf.Header.IsRecordVariable(name) {
		end = make([]int, len(lengths))
		for i, l := range lengths {
			end[i] = l - 1
		}
	}

	r := c.cdf.Reader(name, nil, end)
	if r == nil {
		return nil, ErrVariableNotFound
	}
	buf := r.Zero(n)
	if _, err := r.Read(buf); err != nil {
		return nil, err
	}

	_, isText := c.cdf.Header.ZeroValue(name, 0).(string)
	return toFloat64(buf, isText), nil
}

func toFloat64(buf interface{}, isText bool) []float64 {
	var res []float64
	switch values := buf.(type) {
	case []uint8:
		res = make([]float64, len(values))
		for i, v := range values {
			if isText {
				res[i] = float64(v)
			} else {
				res[i] = float64(int8(v))
			}
		}
	case []int16:
		res = make([]float64, len(values))
		for i, v := range values {
			res[i] = float64(v)
		}
	case []int32:
		res = make([]float64, len(values))
		for i, v := range values {
			res[i] = float64(v)
		}
	case []float32:
		res = make([]float64, len(values))
		for i, v := range values {
			res[i] = float64(v)
		}
	case []float64:
		res = values
	}
	return res
}
