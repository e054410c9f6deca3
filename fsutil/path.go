package fsutil

import (
	"fmt"
	"path/filepath"
)

// Path is a local filesystem path.
type Path string

// Join ...
func (pt Path) Join(part string) Path {
	return Path(filepath.Join(string(pt), part))
}

// JoinP ...
func (pt Path) JoinP(part Path) Path {
	return Path(filepath.Join(string(pt), string(part)))
}

// JoinF ...
func (pt Path) JoinF(part string, args ...interface{}) Path {
	partF := fmt.Sprintf(part, args...)
	return Path(filepath.Join(string(pt), partF))
}

// IsAbs ...
func (pt Path) IsAbs() bool {
	return filepath.IsAbs(string(pt))
}

// Dir returns all but the last element of the path.
func (pt Path) Dir() Path {
	return Path(filepath.Dir(string(pt)))
}

// Filename returns the last element of the path.
func (pt Path) Filename() string {
	return filepath.Base(string(pt))
}

// Resolve returns pt unchanged when it is absolute,
// otherwise pt joined to base.
func (pt Path) Resolve(base Path) Path {
	if pt.IsAbs() {
		return pt
	}
	return base.JoinP(pt)
}

// Abs ...
func (pt Path) Abs() (Path, error) {
	abs, err := filepath.Abs(string(pt))
	return Path(abs), err
}

func (pt Path) String() string {
	return string(pt)
}
