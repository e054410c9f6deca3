// Package runner extracts the time series of every configured
// station for a list of run periods, exporting and plotting them.
package runner

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/meteocima/metfile/conf"
	"github.com/meteocima/metfile/cube"
	"github.com/meteocima/metfile/export"
	"github.com/meteocima/metfile/folders"
	"github.com/meteocima/metfile/fsutil"
	"github.com/meteocima/metfile/logging"
	"github.com/meteocima/metfile/netcdf"
	"github.com/meteocima/metfile/plot"
	"github.com/parro-it/fileargs"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/plot/vg"
)

var (
	// ErrNotNetCDF is returned for station files
	// that cannot be read as NetCDF datasets.
	ErrNotNetCDF = errors.New("not a NetCDF dataset")
	// ErrMissingFile is returned for station
	// files that do not exist.
	ErrMissingFile = errors.New("station file not found")
)

var logTemplate *logging.Template
var log logrus.FieldLogger = logrus.StandardLogger()

// Init initializes the system by reading configuration
// from `cfgFile` and opening the system log.
func Init(cfgFile fsutil.Path) error {
	err := conf.Init(cfgFile)
	if err != nil {
		return err
	}

	var dir fsutil.Path
	var fileName string
	if conf.Config.Log.Enabled {
		dir = conf.Config.Log.Path
		fileName = conf.Config.Log.FileName
	}

	if err := Close(); err != nil {
		return err
	}
	logTemplate, err = logging.NewTemplate(dir, fileName, conf.Config.Log.Level)
	if err != nil {
		return err
	}
	log = logTemplate.Logger("system")
	return nil
}

// Close releases the system log.
func Close() error {
	if logTemplate == nil {
		return nil
	}
	err := logTemplate.Close()
	logTemplate = nil
	log = logrus.StandardLogger()
	return err
}

func stationLogger(name string) logrus.FieldLogger {
	if logTemplate == nil {
		return logrus.StandardLogger().WithField("component", name)
	}
	return logTemplate.Logger(name)
}

// Run extracts the series of every configured
// station for each period in `periods`.
func Run(periods []*fileargs.Period) error {
	for _, period := range periods {
		log.WithField("period", period.String()).Info("starting run")

		stations := make([]conf.Station, len(conf.Config.Stations))
		for i, st := range conf.Config.Stations {
			st.Location = cloneLocation(st.Location)
			stations[i] = st
		}

		// outputs of a previous run of the same period
		tr := fsutil.Transaction{Root: conf.Config.BasePath}
		tr.RmDir(folders.DataDir(period.Start))
		tr.RmDir(folders.PlotDir(period.Start))
		if tr.Err != nil {
			return tr.Err
		}

		for i := range stations {
			if err := RunStation(&stations[i], period); err != nil {
				return fmt.Errorf("station %s: %w", stations[i].Name, err)
			}
		}

		tr.MkDir(folders.DataDir(period.Start))
		tr.WriteFile(folders.StationsFile(period.Start), func(w io.Writer) error {
			return conf.WriteStations(w, stations)
		})
		if tr.Err != nil {
			return tr.Err
		}

		log.WithField("period", period.String()).Info("run completed")
	}
	return nil
}

func cloneLocation(location map[string]float64) map[string]float64 {
	res := make(map[string]float64, len(location))
	for key, value := range location {
		res[key] = value
	}
	return res
}

// RunStation extracts the series of the variables of `st`
// falling inside `period`. Location values missing from `st`
// are filled from the location variables of the station file.
// Series are written below the data path, and plotted below
// the plot path when st.Plot names a drawing method.
func RunStation(st *conf.Station, period *fileargs.Period) error {
	slog := stationLogger(st.Name)

	tr := fsutil.Transaction{Root: conf.Config.BasePath}
	if !tr.Exists(st.File) {
		if tr.Err != nil {
			return tr.Err
		}
		return fmt.Errorf("%w: %s", ErrMissingFile, st.File)
	}

	h := netcdf.NewHandler(st.File.String())
	h.Log = slog

	ok, err := h.Probe()
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotNetCDF, st.File)
	}

	location, err := h.LocationAttrs()
	if err != nil {
		return err
	}
	if st.Location == nil {
		st.Location = map[string]float64{}
	}
	for key, value := range location {
		if _, ok := st.Location[key]; !ok {
			st.Location[key] = value
		}
	}

	start := period.Start
	end := period.Start.Add(period.Duration)

	byVariable := map[string]map[string]cube.Series{}
	all := map[string]cube.Series{}
	for _, variable := range st.Variables {
		series, err := h.Timeseries(variable)
		if err != nil {
			return err
		}
		for key, s := range series {
			if len(s) > 0 && !s.HasTimes() {
				slog.WithField("series", key).Warn("time axis is not a CF time axis, series exported whole")
			} else {
				series[key] = s.Between(start, end)
			}
			all[key] = series[key]
		}
		byVariable[variable] = series
		slog.WithFields(logrus.Fields{
			"variable": variable,
			"series":   len(series),
		}).Debug("extracted")
	}

	tr.MkDir(folders.DataDir(start))
	tr.WriteFile(folders.StationData(start, st.Name, "parquet"), func(w io.Writer) error {
		return export.WriteParquet(w, all)
	})
	tr.WriteFile(folders.StationData(start, st.Name, "csv.gz"), func(w io.Writer) error {
		return export.WriteCSVGz(w, all)
	})
	if tr.Err != nil {
		return tr.Err
	}

	if st.Plot == "" {
		return nil
	}
	return plotStation(st, start, byVariable)
}

func plotStation(st *conf.Station, start time.Time, byVariable map[string]map[string]cube.Series) error {
	tr := fsutil.Transaction{Root: conf.Config.BasePath}
	tr.MkDir(folders.PlotDir(start))

	for _, variable := range st.Variables {
		series := byVariable[variable]
		keys := make([]string, 0, len(series))
		for key := range series {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		sp := plot.New(fmt.Sprintf("%s %s", st.Name, variable))
		for _, key := range keys {
			label := strings.TrimPrefix(strings.TrimPrefix(key, variable), "_")
			if _, err := sp.PlotMethod(series[key], st.Plot, label); err != nil {
				return err
			}
		}

		tr.WriteFile(folders.StationPlot(start, st.Name, variable), func(w io.Writer) error {
			return sp.WriteTo(w, 20*vg.Centimeter, 10*vg.Centimeter, "png")
		})
	}
	return tr.Err
}
