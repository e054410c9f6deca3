package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/meteocima/metfile/export"
	"github.com/meteocima/metfile/fsutil"
	"github.com/meteocima/metfile/netcdf"
	"github.com/meteocima/metfile/plot"
	"github.com/meteocima/metfile/runner"
	"github.com/parro-it/fileargs"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gonum.org/v1/plot/vg"
)

// Version of the command
var Version string = "development"

// ArgumentsFile is read, relative to the workdir, when
// `run` is called without start and end dates.
const ArgumentsFile = "inputs/arguments.txt"

// ConfigFile is the configuration used, relative to the
// workdir, when `run` is called with start and end dates.
const ConfigFile = "metfile.toml"

const runUsage = `run extracts the series of every configured station.

To choose which dates to elaborate you can use startdate and enddate arguments if you need a single period.
Otherwise, you omit this two arguments, and an inputs/arguments.txt will be read that contains all the periods
to run. Format for dates is YYYYMMDDHH.

workdir must be set to the path of a directory containing a prepared environment.`

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           "metfile",
		Short:         "Read meteorological NetCDF files as time series and messages.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			}
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug messages")

	root.AddCommand(
		probeCmd(),
		varsCmd(),
		locationCmd(),
		timeseriesCmd(),
		messagesCmd(),
		plotCmd(),
		runCmd(),
		versionCmd(),
	)
	return root
}

func probeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "probe <file>",
		Short: "Tell whether file is a readable NetCDF dataset.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := netcdf.NewHandler(args[0]).Probe()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ok)
			return nil
		},
	}
}

func varsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "vars <file>",
		Short: "List the data variables of file.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := netcdf.NewHandler(args[0]).Variables()
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func locationCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "location <file>",
		Short: "Print the station location stored in file.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			location, err := netcdf.NewHandler(args[0]).LocationAttrs()
			if err != nil {
				return err
			}
			keys := make([]string, 0, len(location))
			for key := range location {
				keys = append(keys, key)
			}
			sort.Strings(keys)
			for _, key := range keys {
				fmt.Fprintf(cmd.OutOrStdout(), "%s=%v\n", key, location[key])
			}
			return nil
		},
	}
}

func timeseriesCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "timeseries <file> <variable>",
		Short: "Split a variable into one time series per non-time coordinate.",
		Long: `timeseries splits a variable into one time series per combination
of its non-time coordinates. Series are printed as CSV, or written
to --out as Parquet (.parquet) or gzip compressed CSV (.csv.gz).`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			series, err := netcdf.NewHandler(args[0]).Timeseries(args[1])
			if err != nil {
				return err
			}
			if out == "" {
				return export.WriteCSV(cmd.OutOrStdout(), series)
			}

			tr := fsutil.Transaction{Root: "."}
			tr.WriteFile(fsutil.Path(out), func(w io.Writer) error {
				switch {
				case strings.HasSuffix(out, ".parquet"):
					return export.WriteParquet(w, series)
				case strings.HasSuffix(out, ".csv.gz"):
					return export.WriteCSVGz(w, series)
				default:
					return export.WriteCSV(w, series)
				}
			})
			return tr.Err
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file")
	return cmd
}

func messagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "messages <file> <variable>",
		Short: "Split a variable into 2-D messages and list them.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			messages, err := netcdf.NewHandler(args[0]).Messages(args[1])
			if err != nil {
				return err
			}
			for i, msg := range messages {
				fields := []string{fmt.Sprint(i), msg.Name, fmt.Sprint(msg.Shape())}
				for _, dim := range msg.Dims() {
					if ax, _ := msg.Coord(dim); ax.Len() == 1 {
						fields = append(fields, fmt.Sprintf("%s=%s", ax.Name, ax.Label(0)))
					}
				}
				fmt.Fprintln(cmd.OutOrStdout(), strings.Join(fields, " "))
			}
			return nil
		},
	}
}

func plotCmd() *cobra.Command {
	var method string
	cmd := &cobra.Command{
		Use:   "plot <file> <variable> <image>",
		Short: "Plot every time series of a variable into image.",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			series, err := netcdf.NewHandler(args[0]).Timeseries(args[1])
			if err != nil {
				return err
			}
			keys := make([]string, 0, len(series))
			for key := range series {
				keys = append(keys, key)
			}
			sort.Strings(keys)

			sp := plot.New(args[1])
			for _, key := range keys {
				if _, err := sp.PlotMethod(series[key], method, key); err != nil {
					return err
				}
			}
			return sp.Save(args[2], 20*vg.Centimeter, 10*vg.Centimeter)
		},
	}
	cmd.Flags().StringVarP(&method, "method", "m", "plot", "drawing method: plot, step, scatter or linepoints")
	return cmd
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <workdir> [startdate enddate]",
		Short: "Extract the series of every configured station.",
		Long:  runUsage,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 && len(args) != 3 {
				return fmt.Errorf("accepts 1 or 3 args, received %d", len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			absWd, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			wd := fsutil.Path(absWd)

			var dates *fileargs.FileArguments
			if len(args) == 1 {
				dates, err = readInputArgs(wd)
			} else {
				dates, err = datesFromArgs(args, wd)
			}
			if err != nil {
				return err
			}

			if err := runner.Init(fsutil.Path(dates.CfgPath)); err != nil {
				return err
			}
			defer runner.Close()

			return runner.Run(dates.Periods)
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version of the command.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "metfile ver. %s\n", Version)
		},
	}
}

func datesFromArgs(args []string, wd fsutil.Path) (*fileargs.FileArguments, error) {
	startDate, err := time.Parse("2006010215", args[1])
	if err != nil {
		return nil, err
	}
	endDate, err := time.Parse("2006010215", args[2])
	if err != nil {
		return nil, err
	}

	return &fileargs.FileArguments{
		Periods: []*fileargs.Period{{
			Start:    startDate,
			Duration: endDate.Sub(startDate),
		}},
		CfgPath: wd.Join(ConfigFile).String(),
	}, nil
}

func readInputArgs(wd fsutil.Path) (*fileargs.FileArguments, error) {
	dates, err := runner.ReadTimes(wd, ArgumentsFile)
	if err != nil {
		return nil, err
	}
	dates.CfgPath = fsutil.Path(dates.CfgPath).Resolve(wd).String()
	return dates, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
