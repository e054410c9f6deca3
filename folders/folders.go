package folders

import (
	"time"

	"github.com/meteocima/metfile/conf"
	"github.com/meteocima/metfile/fsutil"
)

func dirName(startDate time.Time) string {
	return startDate.Format("2006010215")
}

// DataDir is the directory holding the
// exported series of the run starting at startDate.
func DataDir(startDate time.Time) fsutil.Path {
	return conf.Config.DataPath.Join(dirName(startDate))
}

// PlotDir is the directory holding the
// plots of the run starting at startDate.
func PlotDir(startDate time.Time) fsutil.Path {
	return conf.Config.PlotPath.Join(dirName(startDate))
}

func StationsFile(startDate time.Time) fsutil.Path {
	return DataDir(startDate).Join("stations.toml")
}

func StationData(startDate time.Time, station, ext string) fsutil.Path {
	return DataDir(startDate).JoinF("%s.%s", station, ext)
}

func StationPlot(startDate time.Time, station, variable string) fsutil.Path {
	return PlotDir(startDate).JoinF("%s_%s.png", station, variable)
}
