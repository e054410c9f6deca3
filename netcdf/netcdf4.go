package netcdf

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/meteocima/metfile/cube"
	"github.com/robert-malhotra/go-hdf5/hdf5"
	"github.com/spf13/cast"
)

// Attributes of the HDF5 dimension scale machinery,
// never shown as NetCDF attributes.
var hiddenAttrs = map[string]bool{
	"CLASS":               true,
	"NAME":                true,
	"DIMENSION_LIST":      true,
	"REFERENCE_LIST":      true,
	"_Netcdf4Dimid":       true,
	"_Netcdf4Coordinates": true,
	"_NCProperties":       true,
	"_nc3_strict":         true,
}

const (
	dimensionScale = "DIMENSION_SCALE"
	// prefix of the NAME of scales that are dimensions only
	pureDimension  = "This is a netCDF dimension but not a netCDF variable"
	phonyDimension = "phony_dim_"
)

type scale struct {
	name   string
	length int
	dimid  int
	order  int
}

// netcdf4 reads NetCDF-4 files, the root group only.
//
// Dimension lists are object references the HDF5 reader cannot
// follow, so the dimensions of a variable are matched to the
// dimension scales of the file by length, in dimension id order,
// each scale at most once per variable. Axes matching no scale get
// a phony_dim_N dimension shared by all axes of the same length.
type netcdf4 struct {
	file     *hdf5.File
	vars     []string
	datasets map[string]*hdf5.Dataset
	dims     map[string][]string
}

func openNetCDF4(path string) (st store, err error) {
	defer func() {
		if r := recover(); r != nil {
			st, err = nil, fmt.Errorf("%w: `%s`: %v", ErrFormat, path, r)
		}
	}()

	f, err := hdf5.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: `%s`: %w", ErrFormat, path, err)
	}
	nc, err := readNetCDF4(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: `%s`: %w", ErrFormat, path, err)
	}
	return nc, nil
}

func readNetCDF4(f *hdf5.File) (*netcdf4, error) {
	members, err := f.Root().Members()
	if err != nil {
		return nil, err
	}

	st := &netcdf4{
		file:     f,
		datasets: map[string]*hdf5.Dataset{},
		dims:     map[string][]string{},
	}
	var scales []scale
	for _, name := range members {
		d, err := f.Root().OpenDataset(name)
		if err != nil {
			// subgroups are not supported
			continue
		}
		if textAttr(d, "CLASS") != dimensionScale {
			st.vars = append(st.vars, name)
			st.datasets[name] = d
			continue
		}

		sc := scale{name: name, dimid: len(members) + len(scales), order: len(scales)}
		if shape := d.Shape(); len(shape) == 1 {
			sc.length = int(shape[0])
		}
		if id, ok := intAttr(d, "_Netcdf4Dimid"); ok {
			sc.dimid = id
		}
		scales = append(scales, sc)
		if !strings.HasPrefix(textAttr(d, "NAME"), pureDimension) {
			st.vars = append(st.vars, name)
			st.datasets[name] = d
			st.dims[name] = []string{name}
		}
	}
	sort.SliceStable(scales, func(i, j int) bool {
		if scales[i].dimid != scales[j].dimid {
			return scales[i].dimid < scales[j].dimid
		}
		return scales[i].order < scales[j].order
	})

	phony := map[int][]string{}
	for _, name := range st.vars {
		if _, ok := st.dims[name]; ok {
			continue
		}
		shape := st.datasets[name].Shape()
		dims := make([]string, len(shape))
		used := map[string]bool{}
		for i, l := range shape {
			for _, sc := range scales {
				if sc.length == int(l) && !used[sc.name] {
					dims[i] = sc.name
					break
				}
			}
			if dims[i] == "" {
				for _, p := range phony[int(l)] {
					if !used[p] {
						dims[i] = p
						break
					}
				}
			}
			if dims[i] == "" {
				dims[i] = fmt.Sprintf("%s%d", phonyDimension, countPhony(phony))
				phony[int(l)] = append(phony[int(l)], dims[i])
			}
			used[dims[i]] = true
		}
		st.dims[name] = dims
	}
	return st, nil
}

func countPhony(phony map[int][]string) int {
	n := 0
	for _, names := range phony {
		n += len(names)
	}
	return n
}

func (st *netcdf4) close() error {
	return st.file.Close()
}

func (st *netcdf4) variables() []string {
	return st.vars
}

func (st *netcdf4) dimensions(name string) []string {
	return st.dims[name]
}

func (st *netcdf4) lengths(name string) []int {
	shape := st.datasets[name].Shape()
	res := make([]int, len(shape))
	for i, l := range shape {
		res[i] = int(l)
	}
	return res
}

func (st *netcdf4) float32(name string) bool {
	t, err := st.datasets[name].GoType()
	return err == nil && t.Kind() == reflect.Float32
}

// attrHolder is implemented by both groups and datasets.
type attrHolder interface {
	Attrs() []string
	Attr(name string) *hdf5.Attribute
}

func (st *netcdf4) attrs(name string) (cube.Attrs, error) {
	var holder attrHolder = st.file.Root()
	if name != "" {
		holder = st.datasets[name]
	}

	var res cube.Attrs
	for _, a := range holder.Attrs() {
		if hiddenAttrs[a] {
			continue
		}
		v, err := holder.Attr(a).Value()
		if err != nil {
			return nil, fmt.Errorf("attribute `%s`: %w", a, err)
		}
		if s, ok := v.(string); ok {
			v = strings.TrimRight(s, "\x00")
		}
		res = append(res, cube.Attr{Name: a, Value: v})
	}
	return res, nil
}

func (st *netcdf4) read(name string) ([]float64, error) {
	return st.datasets[name].ReadFloat64()
}

func textAttr(d *hdf5.Dataset, name string) string {
	a := d.Attr(name)
	if a == nil {
		return ""
	}
	v, err := a.Value()
	if err != nil {
		return ""
	}
	s, _ := v.(string)
	return strings.TrimRight(s, "\x00")
}

func intAttr(d *hdf5.Dataset, name string) (int, bool) {
	a := d.Attr(name)
	if a == nil {
		return 0, false
	}
	v, err := a.Value()
	if err != nil {
		return 0, false
	}
	f, err := scalar(v)
	if err != nil {
		return 0, false
	}
	return cast.ToInt(f), true
}
