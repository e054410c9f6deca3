package netcdf

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/meteocima/metfile/cube"
)

// store is the format specific part of a Dataset.
// Names passed to it always exist in the file.
type store interface {
	variables() []string
	dimensions(name string) []string
	lengths(name string) []int
	float32(name string) bool
	// attrs returns the attributes of a variable,
	// or of the dataset when name is empty.
	attrs(name string) (cube.Attrs, error)
	read(name string) ([]float64, error)
	close() error
}

var hdf5Signature = []byte("\x89HDF\r\n\x1a\n")

// Dataset is an opened NetCDF file, either classic
// (CDF-1 and CDF-2) or NetCDF-4.
//
// Once an operation fails, Err holds the failure and
// every following call returns zero values without
// touching the file. Close always releases the file.
type Dataset struct {
	Path string
	Err  error

	store store
}

// Open opens the dataset at path and reads its header. The
// format is chosen from the leading bytes of the file.
func Open(path string) (ds *Dataset) {
	ds = &Dataset{Path: path}

	f, err := os.Open(path)
	if err != nil {
		ds.Err = err
		return ds
	}

	magic := make([]byte, len(hdf5Signature))
	n, _ := io.ReadFull(f, magic)
	if n == len(magic) && bytes.Equal(magic, hdf5Signature) {
		f.Close()
		ds.store, ds.Err = openNetCDF4(path)
		return ds
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		ds.Err = err
		return ds
	}
	ds.store, ds.Err = openClassic(path, f)
	return ds
}

// Close ...
func (ds *Dataset) Close() {
	if ds.store == nil {
		return
	}
	err := ds.store.close()
	ds.store = nil
	if ds.Err == nil && err != nil {
		ds.Err = err
	}
}

func (ds *Dataset) closed() bool {
	if ds.Err != nil {
		return true
	}
	if ds.store == nil {
		ds.Err = fmt.Errorf("dataset `%s` already closed", ds.Path)
		return true
	}
	return false
}

// Variables returns the names of all variables,
// coordinate variables included, in file order.
func (ds *Dataset) Variables() []string {
	if ds.closed() {
		return nil
	}
	return ds.store.variables()
}

// DataVariables returns the names of the variables that
// are not coordinate variables, in file order.
func (ds *Dataset) DataVariables() []string {
	var res []string
	for _, v := range ds.Variables() {
		if !ds.IsCoordinate(v) {
			res = append(res, v)
		}
	}
	return res
}

// HasVariable ...
func (ds *Dataset) HasVariable(name string) bool {
	for _, v := range ds.Variables() {
		if v == name {
			return true
		}
	}
	return false
}

// IsCoordinate returns whether variable `name` is a coordinate
// variable, i.e. one-dimensional over a dimension named like it.
func (ds *Dataset) IsCoordinate(name string) bool {
	dims := ds.Dimensions(name)
	return len(dims) == 1 && dims[0] == name
}

// Dimensions returns the dimension names of a variable.
func (ds *Dataset) Dimensions(name string) []string {
	if !ds.HasVariable(name) {
		return nil
	}
	return ds.store.dimensions(name)
}

// Lengths returns the dimension lengths of a variable.
func (ds *Dataset) Lengths(name string) []int {
	if !ds.HasVariable(name) {
		return nil
	}
	return ds.store.lengths(name)
}

// Float32 returns whether a variable is stored as 32 bit floats.
func (ds *Dataset) Float32(name string) bool {
	if !ds.HasVariable(name) {
		return false
	}
	return ds.store.float32(name)
}

// Attrs returns the attributes of a variable in file order.
func (ds *Dataset) Attrs(name string) cube.Attrs {
	if !ds.HasVariable(name) {
		return nil
	}
	return ds.attrs(name)
}

// GlobalAttrs returns the dataset level attributes.
func (ds *Dataset) GlobalAttrs() cube.Attrs {
	if ds.closed() {
		return nil
	}
	return ds.attrs("")
}

func (ds *Dataset) attrs(name string) cube.Attrs {
	res, err := ds.store.attrs(name)
	if err != nil {
		ds.Err = fmt.Errorf("reading attributes of `%s` from `%s`: %w", name, ds.Path, err)
		return nil
	}
	return res
}

// ReadFloat64 reads all the values of a variable,
// converted to float64. BYTE values are signed.
func (ds *Dataset) ReadFloat64(name string) []float64 {
	if ds.closed() {
		return nil
	}

	if !ds.HasVariable(name) {
		ds.Err = fmt.Errorf("%w: `%s` in `%s`", ErrVariableNotFound, name, ds.Path)
		return nil
	}

	n := 1
	for _, l := range ds.store.lengths(name) {
		n *= l
	}
	if n == 0 {
		return []float64{}
	}

	values, err := ds.store.read(name)
	if err != nil {
		ds.Err = fmt.Errorf("reading `%s` from `%s`: %w", name, ds.Path, err)
		return nil
	}
	return values
}

// Axis returns the axis for dimension `dim` of the given length,
// read from the coordinate variable when there is one.
func (ds *Dataset) Axis(dim string, length int) cube.Axis {
	if ds.closed() {
		return cube.Axis{}
	}
	if !ds.IsCoordinate(dim) {
		return cube.IndexAxis(dim, length)
	}
	values := ds.ReadFloat64(dim)
	if len(values) != length {
		return cube.IndexAxis(dim, length)
	}
	return cube.Axis{Name: dim, Values: values, Attrs: ds.Attrs(dim)}
}
