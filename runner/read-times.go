package runner

import (
	"os"

	"github.com/meteocima/metfile/fsutil"
	"github.com/parro-it/fileargs"
)

// ReadTimes reads the arguments file `file`, relative to `dir`:
// the configuration file name followed by one
// `YYYYMMDDHH HOURS` period per line.
func ReadTimes(dir fsutil.Path, file string) (*fileargs.FileArguments, error) {
	fsys := os.DirFS(dir.String())
	return fileargs.ReadFile(fsys, file)
}
