package runner

import (
	"bytes"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/meteocima/metfile/conf"
	"github.com/meteocima/metfile/export"
	"github.com/meteocima/metfile/fsutil"
	"github.com/meteocima/metfile/netcdf/netcdftest"
	"github.com/parquet-go/parquet-go"
	"github.com/parro-it/fileargs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const systemConf = `
name = "wettermast"
base_path = %q

[log]
enabled = true
file_name = "system.log"
level = "debug"

[components]
stations = "stations.toml"
`

const stationsConf = `
[[station]]
name = "wettermast"
file = %q
variables = ["T"]
plot = "step"

[station.location]
altitude = 0.3
`

func setup(t *testing.T, stationFile string) fsutil.Path {
	t.Helper()
	base := fsutil.Path(t.TempDir())
	require.NoError(t, os.MkdirAll(base.Join("configs").String(), 0755))

	cfg := base.Join("system.toml")
	err := os.WriteFile(cfg.String(), []byte(fmt.Sprintf(systemConf, base)), 0644)
	require.NoError(t, err)
	err = os.WriteFile(base.Join("configs/stations.toml").String(), []byte(fmt.Sprintf(stationsConf, stationFile)), 0644)
	require.NoError(t, err)

	require.NoError(t, Init(cfg))
	t.Cleanup(func() { Close() })
	return base
}

func TestRun(t *testing.T) {
	base := setup(t, netcdftest.Station(t))
	start := time.Date(2016, 12, 14, 1, 0, 0, 0, time.UTC)

	err := Run([]*fileargs.Period{{Start: start, Duration: 2 * time.Hour}})
	require.NoError(t, err)

	out := base.Join("data/2016121401")
	content, err := os.ReadFile(out.Join("wettermast.parquet").String())
	require.NoError(t, err)
	rows, err := parquet.Read[export.Row](bytes.NewReader(content), int64(len(content)))
	require.NoError(t, err)

	require.Len(t, rows, 12)
	assert.Equal(t, export.Row{Key: "T_10_0", Time: start.UnixMilli(), Coord: 1, Value: 110}, rows[0])
	assert.Equal(t, export.Row{Key: "T_10_0", Time: start.Add(time.Hour).UnixMilli(), Coord: 2, Value: 210}, rows[1])
	assert.Equal(t, "T_2_2", rows[11].Key)
	assert.Equal(t, float64(202), rows[11].Value)

	_, err = os.Stat(out.Join("wettermast.csv.gz").String())
	assert.NoError(t, err)
	_, err = os.Stat(base.Join("graphs/2016121401/wettermast_T.png").String())
	assert.NoError(t, err)

	var stations struct {
		Station []conf.Station `toml:"station"`
	}
	_, err = toml.DecodeFile(out.Join("stations.toml").String(), &stations)
	require.NoError(t, err)
	require.Len(t, stations.Station, 1)
	location := stations.Station[0].Location
	assert.InDelta(t, 53.519, location["latitude"], 1e-5)
	assert.InDelta(t, 10.103, location["longitude"], 1e-5)
	assert.Equal(t, 0.3, location["altitude"])
	assert.Equal(t, map[string]float64{"altitude": 0.3}, conf.Config.Stations[0].Location)

	logContent, err := os.ReadFile(base.Join("logs/system.log").String())
	require.NoError(t, err)
	assert.Contains(t, string(logContent), "component=wettermast")
	assert.Contains(t, string(logContent), "run completed")
}

func TestRunUndecodableTimeAxis(t *testing.T) {
	file := netcdftest.File{
		Dims:    []string{"time"},
		Lengths: []int{3},
		Vars: []netcdftest.Var{
			{Name: "time", Dims: []string{"time"}, Data: []float64{0, 1, 2}},
			{Name: "T", Dims: []string{"time"}, Data: []float64{1, 2, 3}},
		},
	}.Write(t)
	base := setup(t, file)
	start := time.Date(2016, 12, 14, 0, 0, 0, 0, time.UTC)

	err := Run([]*fileargs.Period{{Start: start, Duration: 24 * time.Hour}})
	require.NoError(t, err)

	content, err := os.ReadFile(base.Join("data/2016121400/wettermast.parquet").String())
	require.NoError(t, err)
	rows, err := parquet.Read[export.Row](bytes.NewReader(content), int64(len(content)))
	require.NoError(t, err)

	// without decodable times no sample can be placed in the
	// period, so every sample is kept
	assert.Equal(t, []export.Row{
		{Key: "T", Time: 0, Coord: 0, Value: 1},
		{Key: "T", Time: 0, Coord: 1, Value: 2},
		{Key: "T", Time: 0, Coord: 2, Value: 3},
	}, rows)

	logContent, err := os.ReadFile(base.Join("logs/system.log").String())
	require.NoError(t, err)
	assert.Contains(t, string(logContent), "not a CF time axis")
}

func TestRunMissingFile(t *testing.T) {
	setup(t, fsutil.Path(t.TempDir()).Join("station.nc").String())

	err := Run([]*fileargs.Period{{Start: time.Now(), Duration: time.Hour}})
	assert.ErrorIs(t, err, ErrMissingFile)
}

func TestRunRemovesStaleOutputs(t *testing.T) {
	base := setup(t, netcdftest.Station(t))
	start := time.Date(2016, 12, 14, 1, 0, 0, 0, time.UTC)

	stale := base.Join("data/2016121401/old-station.parquet")
	require.NoError(t, os.MkdirAll(stale.Dir().String(), 0755))
	require.NoError(t, os.WriteFile(stale.String(), []byte("stale"), 0644))

	err := Run([]*fileargs.Period{{Start: start, Duration: 2 * time.Hour}})
	require.NoError(t, err)

	_, err = os.Stat(stale.String())
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(base.Join("data/2016121401/wettermast.parquet").String())
	assert.NoError(t, err)
}

func TestRunNotNetCDF(t *testing.T) {
	file := fsutil.Path(t.TempDir()).Join("station.nc")
	require.NoError(t, os.WriteFile(file.String(), []byte("time,T\n0,271.5\n"), 0644))
	setup(t, file.String())

	err := Run([]*fileargs.Period{{Start: time.Now(), Duration: time.Hour}})
	assert.ErrorIs(t, err, ErrNotNetCDF)
}
