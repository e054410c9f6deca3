package conf

// This module contains data structures
// used to keep configuration variables
// of the forecasting system.

import (
	"fmt"
	"io"

	"github.com/BurntSushi/toml"
	"github.com/meteocima/metfile/fsutil"
)

// LogConf configures the log file of the system.
type LogConf struct {
	Enabled  bool        `toml:"enabled"`
	Path     fsutil.Path `toml:"path"`
	FileName string      `toml:"file_name"`
	Level    string      `toml:"level"`
}

// ComponentsConf points to the configuration
// files of the system components.
type ComponentsConf struct {
	BasePath fsutil.Path `toml:"base_path"`
	Stations fsutil.Path `toml:"stations"`
}

// Station is a measurement site whose NetCDF file
// is reshaped into time series.
type Station struct {
	Name      string             `toml:"name"`
	File      fsutil.Path        `toml:"file"`
	Variables []string           `toml:"variables"`
	Location  map[string]float64 `toml:"location"`
	// Plot is the drawing method used to plot the
	// station series. No plot is drawn when empty.
	Plot string `toml:"plot"`
}

type stationsFile struct {
	Station []Station `toml:"station"`
}

// Configuration contains all configuration
// sub structures
type Configuration struct {
	Name       string         `toml:"name"`
	BasePath   fsutil.Path    `toml:"base_path"`
	DataPath   fsutil.Path    `toml:"data_path"`
	PlotPath   fsutil.Path    `toml:"plot_path"`
	Log        LogConf        `toml:"log"`
	Components ComponentsConf `toml:"components"`

	Stations []Station `toml:"-"`
}

// Config is the runtime configuration read from file.
var Config Configuration

func withDefault(p fsutil.Path, def string) fsutil.Path {
	if p == "" {
		return fsutil.Path(def)
	}
	return p
}

// Init initializes the system by reading configuration
// from `confFile`. A relative base_path is resolved against
// the directory of `confFile`, and every other relative path
// against its own base.
func Init(confFile fsutil.Path) error {
	Config = Configuration{}

	if _, err := toml.DecodeFile(confFile.String(), &Config); err != nil {
		return fmt.Errorf("cannot read configuration %s: %w", confFile, err)
	}

	base := Config.BasePath.Resolve(confFile.Dir())
	Config.BasePath = base
	Config.DataPath = withDefault(Config.DataPath, "data").Resolve(base)
	Config.PlotPath = withDefault(Config.PlotPath, "graphs").Resolve(base)
	Config.Log.Path = withDefault(Config.Log.Path, "logs").Resolve(base)
	Config.Components.BasePath = withDefault(Config.Components.BasePath, "configs").Resolve(base)

	if Config.Components.Stations == "" {
		return nil
	}

	Config.Components.Stations = Config.Components.Stations.Resolve(Config.Components.BasePath)
	stations, err := ReadStations(Config.Components.Stations)
	if err != nil {
		return err
	}
	for i := range stations {
		stations[i].File = stations[i].File.Resolve(base)
	}
	Config.Stations = stations
	return nil
}

// ReadStations reads the station list in `file`.
func ReadStations(file fsutil.Path) ([]Station, error) {
	var content stationsFile
	if _, err := toml.DecodeFile(file.String(), &content); err != nil {
		return nil, fmt.Errorf("cannot read stations %s: %w", file, err)
	}
	return content.Station, nil
}

// WriteStations encodes `stations` to `w`
// in the format read by ReadStations.
func WriteStations(w io.Writer, stations []Station) error {
	return toml.NewEncoder(w).Encode(stationsFile{Station: stations})
}
