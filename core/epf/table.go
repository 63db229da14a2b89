package epf

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// Column names shared by the output tables.
const (
	ColRegionID  = "region_id"
	ColTimestamp = "timestamp"
	ColTarget    = "target_value"
	ColWeekday   = "weekday_index"

	exogenousPrefix = "exogenous_"
	dayPrefix       = "day_"
	staticPrefix    = "static_"
)

// TimestampLayout is used when timestamps are rendered as text.
const TimestampLayout = "2006-01-02 15:04:05"

// Table is the read-only view shared by Y, X and S for exporters.
type Table interface {
	Name() string
	Columns() []string
	Len() int
	// Values returns row i in column order. Cells are string, time.Time,
	// float64 or int.
	Values(i int) []any
}

// Dataset bundles the outputs of a load. S is nil for single-region loads.
type Dataset struct {
	Y *TargetTable
	X *FeatureTable
	S *StaticTable
}

// Tables returns the non-nil tables in Y, X, S order.
func (d *Dataset) Tables() []Table {
	out := []Table{d.Y, d.X}
	if d.S != nil {
		out = append(out, d.S)
	}
	return out
}

// TargetRow is one observation of the target series.
type TargetRow struct {
	RegionID  string
	Timestamp time.Time
	Value     float64
}

// TargetTable is Y: {region_id, timestamp, target_value}.
type TargetTable struct {
	Rows []TargetRow
}

func (t *TargetTable) Name() string { return "y" }
func (t *TargetTable) Len() int     { return len(t.Rows) }

func (t *TargetTable) Columns() []string {
	return []string{ColRegionID, ColTimestamp, ColTarget}
}

func (t *TargetTable) Values(i int) []any {
	r := t.Rows[i]
	return []any{r.RegionID, r.Timestamp, r.Value}
}

// FeatureRow is one row of X. Exogenous is aligned with the owning table's
// ExogenousColumns; a region lacking a column holds NaN there.
type FeatureRow struct {
	RegionID  string
	Timestamp time.Time
	Exogenous []float64
	// Weekday is 0 for Monday through 6 for Sunday.
	Weekday int
}

// FeatureTable is X: {region_id, timestamp, exogenous_*, weekday_index, day_*}.
//
// The day dummies are sparse: DayColumns only lists the weekdays observed in
// the data, in ascending order.
type FeatureTable struct {
	ExogenousColumns []string
	DayColumns       []int
	Rows             []FeatureRow
}

func (t *FeatureTable) Name() string { return "x" }
func (t *FeatureTable) Len() int     { return len(t.Rows) }

func (t *FeatureTable) Columns() []string {
	cols := make([]string, 0, 3+len(t.ExogenousColumns)+len(t.DayColumns))
	cols = append(cols, ColRegionID, ColTimestamp)
	cols = append(cols, t.ExogenousColumns...)
	cols = append(cols, ColWeekday)
	for _, d := range t.DayColumns {
		cols = append(cols, DayColumn(d))
	}
	return cols
}

func (t *FeatureTable) Values(i int) []any {
	r := t.Rows[i]
	vals := make([]any, 0, 3+len(r.Exogenous)+len(t.DayColumns))
	vals = append(vals, r.RegionID, r.Timestamp)
	for _, v := range r.Exogenous {
		vals = append(vals, v)
	}
	vals = append(vals, r.Weekday)
	for _, d := range t.DayColumns {
		vals = append(vals, t.Day(i, d))
	}
	return vals
}

// Day returns the day_{weekday} indicator of row i.
func (t *FeatureTable) Day(i, weekday int) int {
	if t.Rows[i].Weekday == weekday {
		return 1
	}
	return 0
}

// StaticRow holds the one-hot region indicators of a region.
type StaticRow struct {
	RegionID   string
	Indicators []int
}

// StaticTable is S: one row per region, one static_{region} column per region.
type StaticTable struct {
	Regions []string
	Rows    []StaticRow
}

func (t *StaticTable) Name() string { return "s" }
func (t *StaticTable) Len() int     { return len(t.Rows) }

func (t *StaticTable) Columns() []string {
	cols := make([]string, 0, 1+len(t.Regions))
	cols = append(cols, ColRegionID)
	for _, r := range t.Regions {
		cols = append(cols, StaticColumn(r))
	}
	return cols
}

func (t *StaticTable) Values(i int) []any {
	r := t.Rows[i]
	vals := make([]any, 0, 1+len(r.Indicators))
	vals = append(vals, r.RegionID)
	for _, v := range r.Indicators {
		vals = append(vals, v)
	}
	return vals
}

// Indicator returns static_{region} for row i, or -1 if region is not a column.
func (t *StaticTable) Indicator(i int, region string) int {
	for j, r := range t.Regions {
		if r == region {
			return t.Rows[i].Indicators[j]
		}
	}
	return -1
}

// ExogenousColumn names the i-th (1-based) exogenous column.
func ExogenousColumn(i int) string { return exogenousPrefix + strconv.Itoa(i) }

// DayColumn names the indicator of a weekday.
func DayColumn(weekday int) string { return dayPrefix + strconv.Itoa(weekday) }

// StaticColumn names the indicator of a region.
func StaticColumn(region string) string { return staticPrefix + region }

// FormatValue renders a cell the way the CSV exports write it. NaN becomes
// an empty cell.
func FormatValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case time.Time:
		return x.Format(TimestampLayout)
	case float64:
		if math.IsNaN(x) {
			return ""
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	default:
		return fmt.Sprint(x)
	}
}

// weekdayIndex maps time.Weekday (Sunday=0) to Monday=0..Sunday=6.
func weekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}
