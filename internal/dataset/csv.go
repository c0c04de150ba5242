/*
Package dataset reads and writes series as two column CSV files of time points and values
*/
package dataset

import (
	"encoding/csv"
	"go-ml.dev/pkg/forecast/series"
	"go-ml.dev/pkg/forecast/tsindex"
	"go-ml.dev/pkg/iokit"
	"go-ml.dev/pkg/zorros/zorros"
	"io"
	"math"
	"strconv"
	"strings"
)

/*
Format describes the CSV layout
*/
type Format struct {
	Index  string // int, period or datetime
	Freq   string
	Header bool
}

func (f Format) kind() (tsindex.Kind, tsindex.Freq, error) {
	kind, err := tsindex.ParseKind(f.Index)
	if err != nil {
		return kind, tsindex.Freq{}, err
	}
	if kind == tsindex.Int {
		return kind, tsindex.Freq{}, nil
	}
	freq, err := tsindex.ParseFreq(f.Freq)
	return kind, freq, err
}

/*
Source is the URL input (http, s3, gs) when path has a scheme and the local file otherwise
*/
func Source(path string) iokit.Input {
	if strings.Contains(path, "://") {
		return iokit.Url(path)
	}
	return iokit.File(path)
}

/*
Read reads series from the input, compressed input is decompressed,
empty values are NaN
*/
func Read(input iokit.Input, format Format) (series.Series, error) {
	kind, freq, err := format.kind()
	if err != nil {
		return series.Series{}, err
	}
	rd, err := iokit.Compressed(input).Open()
	if err != nil {
		return series.Series{}, zorros.Wrapf(err, "failed to open data: %v", err)
	}
	defer rd.Close()
	cr := csv.NewReader(rd)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	idx := tsindex.Index{}
	vals := []float64{}
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return series.Series{}, zorros.Wrapf(err, "failed to read csv: %v", err)
		}
		if line == 1 && format.Header {
			continue
		}
		if len(rec) < 2 {
			return series.Series{}, zorros.Errorf("line %d: expected time point and value, got %d fields", line, len(rec))
		}
		p, err := tsindex.ParsePoint(kind, freq, rec[0])
		if err != nil {
			return series.Series{}, zorros.Wrapf(err, "line %d: %v", line, err)
		}
		v := math.NaN()
		if s := strings.TrimSpace(rec[1]); s != "" {
			if v, err = strconv.ParseFloat(s, 64); err != nil {
				return series.Series{}, zorros.Errorf("line %d: bad value `%v`", line, rec[1])
			}
		}
		idx = append(idx, p)
		vals = append(vals, v)
	}
	if len(vals) == 0 {
		return series.Series{}, zorros.Errorf("no data rows")
	}
	return series.New(idx, vals)
}

/*
Write writes the frame as CSV with the time point column named by index
*/
func Write(w io.Writer, index string, f series.Frame) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{index}, f.Names()...)); err != nil {
		return zorros.Trace(err)
	}
	for i, p := range f.Index() {
		row := []string{p.String()}
		for _, v := range f.Row(i) {
			s := ""
			if !math.IsNaN(v) {
				s = strconv.FormatFloat(v, 'g', -1, 64)
			}
			row = append(row, s)
		}
		if err := cw.Write(row); err != nil {
			return zorros.Trace(err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return zorros.Trace(err)
	}
	return nil
}
