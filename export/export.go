// Package export writes extracted time series to
// Parquet and gzip compressed CSV files.
package export

import (
	"encoding/csv"
	"io"
	"sort"
	"strconv"

	"github.com/klauspost/pgzip"
	"github.com/meteocima/metfile/cube"
	"github.com/parquet-go/parquet-go"
)

// Row is a single sample of a keyed series,
// as stored in exported files.
type Row struct {
	Key   string  `parquet:"key"`
	Time  int64   `parquet:"time"`
	Coord float64 `parquet:"coord"`
	Value float64 `parquet:"value"`
}

var header = []string{"key", "time", "coord", "value"}

// Rows flattens series into rows, with keys
// in sorted order. Time is in unix milliseconds,
// or 0 for series without decoded times.
func Rows(series map[string]cube.Series) []Row {
	keys := make([]string, 0, len(series))
	for key := range series {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	rows := []Row{}
	for _, key := range keys {
		for _, p := range series[key] {
			row := Row{Key: key, Coord: p.Coord, Value: p.Value}
			if !p.Time.IsZero() {
				row.Time = p.Time.UnixMilli()
			}
			rows = append(rows, row)
		}
	}
	return rows
}

// WriteCSV writes series as CSV text, header included.
func WriteCSV(w io.Writer, series map[string]cube.Series) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, row := range Rows(series) {
		err := cw.Write([]string{
			row.Key,
			strconv.FormatInt(row.Time, 10),
			strconv.FormatFloat(row.Coord, 'f', -1, 64),
			strconv.FormatFloat(row.Value, 'f', -1, 64),
		})
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVGz writes series as gzip compressed CSV.
func WriteCSVGz(w io.Writer, series map[string]cube.Series) error {
	gz := pgzip.NewWriter(w)
	if err := WriteCSV(gz, series); err != nil {
		gz.Close()
		return err
	}
	return gz.Close()
}

// WriteParquet writes series as a Parquet file to w.
func WriteParquet(w io.Writer, series map[string]cube.Series) error {
	pw := parquet.NewGenericWriter[Row](w)
	if _, err := pw.Write(Rows(series)); err != nil {
		pw.Close()
		return err
	}
	return pw.Close()
}
