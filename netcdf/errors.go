package netcdf

import (
	"errors"
	"io"
	"io/fs"
)

var (
	// ErrFormat is returned when a file exists but is
	// not a valid NetCDF classic dataset.
	ErrFormat = errors.New("not a valid NetCDF dataset")
	// ErrVariableNotFound is returned when the requested
	// variable is absent from the dataset.
	ErrVariableNotFound = errors.New("variable not found")
	// ErrMissingDimension is returned when a time series is
	// requested from a variable without a time dimension.
	ErrMissingDimension = errors.New("missing dimension")
	// ErrAttributeConversion is returned when a value cannot be
	// converted to a single float.
	ErrAttributeConversion = errors.New("value is not a single scalar")
	// ErrDuplicateKey is returned when two different coordinate
	// values render to the same time series key.
	ErrDuplicateKey = errors.New("duplicate time series key")
)

// isOpenFailure reports whether err comes from opening
// the file or parsing its header.
func isOpenFailure(err error) bool {
	var pathErr *fs.PathError
	return errors.Is(err, ErrFormat) ||
		errors.As(err, &pathErr) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF)
}
