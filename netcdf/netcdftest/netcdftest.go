// Package netcdftest writes small NetCDF classic
// and NetCDF-4 files for tests.
package netcdftest

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/ctessum/cdf"
	"github.com/meteocima/metfile/cube"
	"github.com/robert-malhotra/go-hdf5/hdf5"
	"github.com/stretchr/testify/require"
)

// Var is a variable of a test file. Data is a slice of
// the storage type, []float32 for FLOAT variables.
type Var struct {
	Name  string
	Dims  []string
	Data  interface{}
	Attrs cube.Attrs
}

// File describes a test file. A zero length
// marks the record dimension.
type File struct {
	Dims    []string
	Lengths []int
	Global  cube.Attrs
	Vars    []Var
}

// Write stores the file as a NetCDF classic file in a
// temporary directory and returns its path.
func (fx File) Write(t testing.TB) string {
	t.Helper()

	h := cdf.NewHeader(fx.Dims, fx.Lengths)
	for _, a := range fx.Global {
		h.AddAttribute("", a.Name, a.Value)
	}
	for _, v := range fx.Vars {
		h.AddVariable(v.Name, v.Dims, v.Data)
		for _, a := range v.Attrs {
			h.AddAttribute(v.Name, a.Name, a.Value)
		}
	}
	h.Define()

	path := filepath.Join(t.TempDir(), "fixture.nc")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	cf, err := cdf.Create(f, h)
	require.NoError(t, err)

	for _, v := range fx.Vars {
		w := cf.Writer(v.Name, nil, nil)
		_, err := w.Write(v.Data)
		if err != io.EOF {
			require.NoError(t, err, v.Name)
		}
	}
	require.NoError(t, cdf.UpdateNumRecs(f))
	return path
}

// WriteNetCDF4 stores the file as a NetCDF-4 file in a temporary
// directory and returns its path. Every dimension becomes a dimension
// scale, holding the coordinate variable named like it when there is
// one. Global attributes are not written.
func (fx File) WriteNetCDF4(t testing.TB) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "fixture.nc4")
	f, err := hdf5.Create(path)
	require.NoError(t, err)
	root := f.Root()

	coords := map[string]Var{}
	for _, v := range fx.Vars {
		if len(v.Dims) == 1 && v.Dims[0] == v.Name {
			coords[v.Name] = v
		}
	}

	for id, dim := range fx.Dims {
		opts := []hdf5.DatasetOption{
			hdf5.WithAttribute("CLASS", "DIMENSION_SCALE"),
			hdf5.WithAttribute("_Netcdf4Dimid", int32(id)),
		}
		data := interface{}(make([]float32, fx.Lengths[id]))
		if v, ok := coords[dim]; ok {
			data = v.Data
			opts = append(opts, hdf5.WithAttribute("NAME", dim))
			for _, a := range v.Attrs {
				opts = append(opts, hdf5.WithAttribute(a.Name, a.Value))
			}
		} else {
			name := fmt.Sprintf("This is a netCDF dimension but not a netCDF variable.%10d", fx.Lengths[id])
			opts = append(opts, hdf5.WithAttribute("NAME", name))
		}
		_, err := root.CreateDataset(dim, data, opts...)
		require.NoError(t, err, dim)
	}

	for _, v := range fx.Vars {
		if _, ok := coords[v.Name]; ok {
			continue
		}
		var opts []hdf5.DatasetOption
		for _, a := range v.Attrs {
			opts = append(opts, hdf5.WithAttribute(a.Name, a.Value))
		}
		_, err := root.CreateDataset(v.Name, nest(v.Data, fx.shape(v)), opts...)
		require.NoError(t, err, v.Name)
	}

	require.NoError(t, f.Close())
	return path
}

func (fx File) shape(v Var) []int {
	var res []int
	for _, d := range v.Dims {
		for i, name := range fx.Dims {
			if name == d {
				res = append(res, fx.Lengths[i])
			}
		}
	}
	return res
}

// nest reshapes a flat slice into nested slices of the given
// shape, the layout the HDF5 writer takes dimensions from.
func nest(data interface{}, shape []int) interface{} {
	flat := reflect.ValueOf(data)
	if len(shape) <= 1 {
		return data
	}
	size := flat.Len() / shape[0]
	t := reflect.TypeOf(data)
	for range shape[1:] {
		t = reflect.SliceOf(t)
	}
	res := reflect.MakeSlice(t, shape[0], shape[0])
	for i := 0; i < shape[0]; i++ {
		part := flat.Slice(i*size, (i+1)*size).Interface()
		res.Index(i).Set(reflect.ValueOf(nest(part, shape[1:])))
	}
	return res.Interface()
}

// Seq32 returns n consecutive values from start.
func Seq32(n int, start float32) []float32 {
	res := make([]float32, n)
	for i := range res {
		res[i] = start + float32(i)
	}
	return res
}

// Seq64 returns n consecutive values from start.
func Seq64(n int, start float64) []float64 {
	res := make([]float64, n)
	for i := range res {
		res[i] = start + float64(i)
	}
	return res
}

// Station writes a (time=4, height=2, ensemble=3) station file
// with time, height and location variables. The value of T at
// (t, h, e) is 100*t + 10*h + e.
func Station(t testing.TB) string {
	t.Helper()
	return StationFile().Write(t)
}

// StationFile describes the file written by Station.
func StationFile() File {
	data := make([]float32, 0, 24)
	for ti := 0; ti < 4; ti++ {
		for hi := 0; hi < 2; hi++ {
			for ei := 0; ei < 3; ei++ {
				data = append(data, float32(100*ti+10*hi+ei))
			}
		}
	}
	return File{
		Dims:    []string{"time", "height", "ensemble"},
		Lengths: []int{4, 2, 3},
		Global:  cube.Attrs{{Name: "title", Value: "Wettermast Hamburg"}},
		Vars: []Var{
			{Name: "time", Dims: []string{"time"}, Data: []float64{0, 1, 2, 3},
				Attrs: cube.Attrs{{Name: "units", Value: "hours since 2016-12-14 00:00:00"}}},
			{Name: "height", Dims: []string{"height"}, Data: []float32{2, 10}},
			{Name: "T", Dims: []string{"time", "height", "ensemble"}, Data: data,
				Attrs: cube.Attrs{{Name: "units", Value: "K"}}},
			{Name: "lat", Dims: []string{}, Data: []float32{53.519}},
			{Name: "lon", Dims: []string{}, Data: []float32{10.103}},
		},
	}
}
