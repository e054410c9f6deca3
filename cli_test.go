package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/meteocima/metfile/fsutil"
	"github.com/meteocima/metfile/netcdf/netcdftest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "metfile ver. development\n", out)
}

func TestProbeAndVars(t *testing.T) {
	path := netcdftest.Station(t)

	out, err := execute(t, "probe", path)
	require.NoError(t, err)
	assert.Equal(t, "true\n", out)

	out, err = execute(t, "probe", filepath.Join(t.TempDir(), "missing.nc"))
	require.NoError(t, err)
	assert.Equal(t, "false\n", out)

	out, err = execute(t, "vars", path)
	require.NoError(t, err)
	assert.Equal(t, "T\nlat\nlon\n", out)
}

func TestLocation(t *testing.T) {
	out, err := execute(t, "location", netcdftest.Station(t))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "latitude=53.5"))
	assert.True(t, strings.HasPrefix(lines[1], "longitude=10.1"))
}

func TestTimeseries(t *testing.T) {
	path := netcdftest.Station(t)

	out, err := execute(t, "timeseries", path, "T")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 1+6*4)
	assert.Equal(t, "key,time,coord,value", lines[0])
	assert.Equal(t, "T_10_0,1481673600000,0,10", lines[1])

	parquetFile := filepath.Join(t.TempDir(), "T.parquet")
	_, err = execute(t, "timeseries", path, "T", "--out", parquetFile)
	require.NoError(t, err)
	_, err = os.Stat(parquetFile)
	assert.NoError(t, err)

	_, err = execute(t, "timeseries", path, "missing")
	assert.Error(t, err)
}

func TestMessages(t *testing.T) {
	out, err := execute(t, "messages", netcdftest.Station(t), "T")
	require.NoError(t, err)
	assert.Equal(t, strings.Join([]string{
		"0 T [1 2 3] time=2016-12-14T00:00:00Z",
		"1 T [1 2 3] time=2016-12-14T01:00:00Z",
		"2 T [1 2 3] time=2016-12-14T02:00:00Z",
		"3 T [1 2 3] time=2016-12-14T03:00:00Z",
	}, "\n")+"\n", out)
}

func TestPlot(t *testing.T) {
	image := filepath.Join(t.TempDir(), "T.png")
	_, err := execute(t, "plot", netcdftest.Station(t), "T", image, "--method", "step")
	require.NoError(t, err)
	_, err = os.Stat(image)
	assert.NoError(t, err)

	_, err = execute(t, "plot", netcdftest.Station(t), "T", image, "--method", "bars")
	assert.Error(t, err)
}

func TestRun(t *testing.T) {
	wd := fsutil.Path(t.TempDir())
	station := netcdftest.Station(t)
	cfg := fmt.Sprintf("name = \"cli\"\n\n[components]\nstations = %q\n", wd.Join("stations.toml"))
	require.NoError(t, os.WriteFile(wd.Join(ConfigFile).String(), []byte(cfg), 0644))
	stations := fmt.Sprintf("[[station]]\nname = \"wettermast\"\nfile = %q\nvariables = [\"T\"]\n", station)
	require.NoError(t, os.WriteFile(wd.Join("stations.toml").String(), []byte(stations), 0644))

	_, err := execute(t, "run", wd.String(), "2016121400", "2016121403")
	require.NoError(t, err)
	_, err = os.Stat(wd.Join("data/2016121400/wettermast.parquet").String())
	assert.NoError(t, err)

	_, err = execute(t, "run", wd.String(), "2016121400")
	assert.Error(t, err)
}

func TestDatesFromArgs(t *testing.T) {
	dates, err := datesFromArgs([]string{"wd", "2020112600", "2020112800"}, "/wd")
	require.NoError(t, err)
	require.Len(t, dates.Periods, 1)
	assert.Equal(t, time.Date(2020, 11, 26, 0, 0, 0, 0, time.UTC), dates.Periods[0].Start)
	assert.Equal(t, 48*time.Hour, dates.Periods[0].Duration)
	assert.Equal(t, "/wd/metfile.toml", dates.CfgPath)

	_, err = datesFromArgs([]string{"wd", "20201126", "2020112800"}, "/wd")
	assert.Error(t, err)
}

func TestReadInputArgs(t *testing.T) {
	wd := fsutil.Path(t.TempDir())
	require.NoError(t, os.MkdirAll(wd.Join("inputs").String(), 0755))
	content := "system.toml\n2020112600 24\n"
	require.NoError(t, os.WriteFile(wd.Join(ArgumentsFile).String(), []byte(content), 0644))

	dates, err := readInputArgs(wd)
	require.NoError(t, err)
	assert.Equal(t, wd.Join("system.toml").String(), dates.CfgPath)
	require.Len(t, dates.Periods, 1)
	assert.Equal(t, 24*time.Hour, dates.Periods[0].Duration)
}
