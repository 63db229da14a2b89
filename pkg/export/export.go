package export

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/kilianp07/epf/core/epf"
	"github.com/kilianp07/epf/core/logger"
)

// Format names an output format.
type Format string

const (
	FormatCSV    Format = "csv"
	FormatJSON   Format = "json"
	FormatSQLite Format = "sqlite"
	FormatChart  Format = "chart"
	FormatInflux Format = "influx"
)

// Formats lists every supported format.
var Formats = []Format{FormatCSV, FormatJSON, FormatSQLite, FormatChart, FormatInflux}

// ParseFormats validates format names. Duplicates are dropped.
func ParseFormats(names []string) ([]Format, error) {
	out := make([]Format, 0, len(names))
	seen := make(map[Format]bool)
	for _, n := range names {
		f := Format(strings.ToLower(strings.TrimSpace(n)))
		if !isFormat(f) {
			return nil, fmt.Errorf("unknown output format %q", n)
		}
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out, nil
}

func isFormat(f Format) bool {
	for _, k := range Formats {
		if k == f {
			return true
		}
	}
	return false
}

// WriteCSV writes t to w with a header row. Timestamps use
// epf.TimestampLayout and missing values are empty cells.
func WriteCSV(w io.Writer, t epf.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns()); err != nil {
		return err
	}
	rec := make([]string, len(t.Columns()))
	for i := 0; i < t.Len(); i++ {
		for j, v := range t.Values(i) {
			rec[j] = epf.FormatValue(v)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

type jsonTable struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// WriteJSON writes t to w as {"name", "columns", "rows"}. Missing values
// are null.
func WriteJSON(w io.Writer, t epf.Table) error {
	out := jsonTable{Name: t.Name(), Columns: t.Columns(), Rows: make([][]any, t.Len())}
	for i := range out.Rows {
		vals := t.Values(i)
		for j, v := range vals {
			if f, ok := v.(float64); ok && math.IsNaN(f) {
				vals[j] = nil
			}
		}
		out.Rows[i] = vals
	}
	enc := json.NewEncoder(w)
	return enc.Encode(out)
}

// Exporter writes a dataset in the configured formats.
type Exporter struct {
	Dir     string
	Formats []Format
	// Influx receives the target series when FormatInflux is selected.
	Influx *InfluxWriter
	Log    logger.Logger
}

// Export writes ds under Dir and returns the paths of the files written.
func (e *Exporter) Export(ctx context.Context, ds *epf.Dataset) ([]string, error) {
	log := e.Log
	if log == nil {
		log = logger.NopLogger{}
	}
	if err := epf.EnsureResultsDir(e.Dir); err != nil {
		return nil, err
	}

	var written []string
	for _, f := range e.Formats {
		switch f {
		case FormatCSV, FormatJSON:
			for _, t := range ds.Tables() {
				path := filepath.Join(e.Dir, strings.ToUpper(t.Name())+"."+string(f))
				if err := writeFile(path, t, f); err != nil {
					return written, err
				}
				written = append(written, path)
			}
		case FormatSQLite:
			path := filepath.Join(e.Dir, "epf.sqlite")
			if err := writeSQLite(ctx, path, ds); err != nil {
				return written, err
			}
			written = append(written, path)
		case FormatChart:
			path := filepath.Join(e.Dir, "chart.html")
			html, err := PriceChartHTML(ds.Y)
			if err != nil {
				return written, err
			}
			if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
				return written, &epf.IOError{Op: "write", Path: path, Err: err}
			}
			written = append(written, path)
		case FormatInflux:
			if e.Influx == nil {
				return written, fmt.Errorf("influx output selected but not configured")
			}
			n, err := e.Influx.WriteDataset(ctx, ds)
			if err != nil {
				return written, err
			}
			log.Infof("wrote %d points to influx", n)
		default:
			return written, fmt.Errorf("unknown output format %q", f)
		}
	}
	log.Debugw("dataset exported", map[string]any{"dir": e.Dir, "files": len(written)})
	return written, nil
}

func writeFile(path string, t epf.Table, f Format) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return &epf.IOError{Op: "create", Path: path, Err: err}
	}
	defer func() {
		if cerr := file.Close(); err == nil && cerr != nil {
			err = &epf.IOError{Op: "close", Path: path, Err: cerr}
		}
	}()
	if f == FormatJSON {
		err = WriteJSON(file, t)
	} else {
		err = WriteCSV(file, t)
	}
	if err != nil {
		return &epf.IOError{Op: "write", Path: path, Err: err}
	}
	return nil
}
