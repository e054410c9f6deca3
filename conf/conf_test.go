package conf

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/meteocima/metfile/fsutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixture(filePath string) fsutil.Path {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		panic("cannot retrieve the source file path")
	} else {
		file = filepath.Dir(filepath.Dir(file))
	}

	return fsutil.Path(file).Join("fixtures").Join(filePath)
}

func TestInitDefaults(t *testing.T) {
	require.NoError(t, Init(fixture("system.toml")))

	base := fixture(".")
	assert.Equal(t, "wettermast", Config.Name)
	assert.Equal(t, base, Config.BasePath)
	assert.Equal(t, base.Join("data"), Config.DataPath)
	assert.Equal(t, base.Join("graphs"), Config.PlotPath)
	assert.Equal(t, base.Join("logs"), Config.Log.Path)
	assert.True(t, Config.Log.Enabled)
	assert.Equal(t, "system.log", Config.Log.FileName)
	assert.Equal(t, base.Join("configs"), Config.Components.BasePath)
	assert.Equal(t, base.Join("configs/stations.toml"), Config.Components.Stations)

	require.Len(t, Config.Stations, 2)
	st := Config.Stations[0]
	assert.Equal(t, "wettermast", st.Name)
	assert.Equal(t, base.Join("data/wettermast.nc"), st.File)
	assert.Equal(t, []string{"T", "RH"}, st.Variables)
	assert.Equal(t, map[string]float64{"latitude": 53.519, "longitude": 10.103}, st.Location)
	assert.Equal(t, "step", st.Plot)

	assert.Equal(t, fsutil.Path("/srv/fcst/data/harbour.nc"), Config.Stations[1].File)
	assert.Empty(t, Config.Stations[1].Plot)
}

func TestInitPaths(t *testing.T) {
	dir := fsutil.Path(t.TempDir())
	cfg := dir.Join("system.toml")
	err := os.WriteFile(cfg.String(), []byte(`
name = "paths"
base_path = "fcst"
data_path = "/var/data"
plot_path = "png"
`), 0644)
	require.NoError(t, err)

	require.NoError(t, Init(cfg))
	assert.Equal(t, dir.Join("fcst"), Config.BasePath)
	assert.Equal(t, fsutil.Path("/var/data"), Config.DataPath)
	assert.Equal(t, dir.Join("fcst/png"), Config.PlotPath)
	assert.False(t, Config.Log.Enabled)
	assert.Empty(t, Config.Stations)
}

func TestInitErrors(t *testing.T) {
	assert.Error(t, Init(fixture("missing.toml")))

	dir := fsutil.Path(t.TempDir())
	cfg := dir.Join("system.toml")
	require.NoError(t, os.WriteFile(cfg.String(), []byte("[components]\nstations = \"none.toml\"\n"), 0644))
	assert.Error(t, Init(cfg))
}

func TestWriteStations(t *testing.T) {
	file := fsutil.Path(t.TempDir()).Join("stations.toml")
	stations := []Station{{
		Name:      "wettermast",
		File:      "/srv/fcst/data/wettermast.nc",
		Variables: []string{"T"},
		Location:  map[string]float64{"altitude": 0.5},
	}}
	f, err := os.Create(file.String())
	require.NoError(t, err)
	require.NoError(t, WriteStations(f, stations))
	require.NoError(t, f.Close())

	read, err := ReadStations(file)
	require.NoError(t, err)
	assert.Equal(t, stations, read)
}
