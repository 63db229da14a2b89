package epf

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"
)

// featureExogenous is how many exogenous series the CSV loader keeps in X.
const featureExogenous = 2

var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
	// Slash dates are month first.
	"01/02/2006 15:04",
	"01/02/2006",
}

// rawRecord is a parsed row before it is split into Y and X.
type rawRecord struct {
	ts        time.Time
	target    float64
	exogenous []float64
}

func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp format")
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

// readCSV parses a raw dataset file. The header row only fixes the column
// count; its names are replaced positionally.
func readCSV(path string) ([]rawRecord, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, &IOError{Op: "open", Path: path, Err: err}
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	r.ReuseRecord = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, 0, &ParseError{Path: path, Line: 1, Err: errors.New("empty file")}
	}
	if err != nil {
		return nil, 0, csvError(path, err)
	}
	if len(header) < 2 {
		return nil, 0, &ParseError{Path: path, Line: 1, Err: fmt.Errorf("need at least 2 columns, got %d", len(header))}
	}
	nExo := len(header) - 2

	var records []rawRecord
	line := 1
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, 0, csvError(path, err)
		}
		line++
		rec, err := parseRow(row, nExo)
		if err != nil {
			var pe *ParseError
			if errors.As(err, &pe) {
				pe.Path, pe.Line = path, line
			}
			return nil, 0, err
		}
		records = append(records, rec)
	}
	return records, nExo, nil
}

func csvError(path string, err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &ParseError{Path: path, Line: pe.Line, Err: pe.Err}
	}
	return &IOError{Op: "read", Path: path, Err: err}
}

func parseRow(row []string, nExo int) (rawRecord, error) {
	ts, err := parseTimestamp(row[0])
	if err != nil {
		return rawRecord{}, &ParseError{Column: ColTimestamp, Value: row[0], Err: err}
	}
	target, err := parseFloat(row[1])
	if err != nil {
		return rawRecord{}, &ParseError{Column: ColTarget, Value: row[1], Err: err}
	}
	exo := make([]float64, nExo)
	for i := range exo {
		v, err := parseFloat(row[i+2])
		if err != nil {
			return rawRecord{}, &ParseError{Column: ExogenousColumn(i + 1), Value: row[i+2], Err: err}
		}
		exo[i] = v
	}
	return rawRecord{ts: ts, target: target, exogenous: exo}, nil
}

// buildTables splits parsed records of one region into Y and X, keeping at
// most keep exogenous columns (keep < 0 keeps all). Row order is preserved.
func buildTables(region string, records []rawRecord, nExo, keep int) (*TargetTable, *FeatureTable) {
	if keep < 0 || keep > nExo {
		keep = nExo
	}
	y := &TargetTable{Rows: make([]TargetRow, len(records))}
	x := &FeatureTable{Rows: make([]FeatureRow, len(records))}
	for i := 1; i <= keep; i++ {
		x.ExogenousColumns = append(x.ExogenousColumns, ExogenousColumn(i))
	}

	var seen [7]bool
	for i, rec := range records {
		wd := weekdayIndex(rec.ts)
		seen[wd] = true
		y.Rows[i] = TargetRow{RegionID: region, Timestamp: rec.ts, Value: rec.target}
		x.Rows[i] = FeatureRow{
			RegionID:  region,
			Timestamp: rec.ts,
			Exogenous: slices.Clone(rec.exogenous[:keep]),
			Weekday:   wd,
		}
	}
	for d, ok := range seen {
		if ok {
			x.DayColumns = append(x.DayColumns, d)
		}
	}
	return y, x
}
