package export

import (
	"bytes"
	"fmt"
	"slices"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/kilianp07/epf/core/epf"
)

// PriceChartHTML renders the target series of y as a line chart, one series
// per region over the union of timestamps. Gaps are left empty.
func PriceChartHTML(y *epf.TargetTable) (string, error) {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Electricity prices"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Date & Time"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Price"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
	)

	var stamps []time.Time
	var regions []string
	byRegion := make(map[string]map[time.Time]float64)
	for _, r := range y.Rows {
		if _, ok := byRegion[r.RegionID]; !ok {
			byRegion[r.RegionID] = make(map[time.Time]float64)
			regions = append(regions, r.RegionID)
		}
		byRegion[r.RegionID][r.Timestamp] = r.Value
		stamps = append(stamps, r.Timestamp)
	}
	slices.SortFunc(stamps, time.Time.Compare)
	stamps = slices.CompactFunc(stamps, time.Time.Equal)

	xAxis := make([]string, len(stamps))
	for i, ts := range stamps {
		xAxis[i] = ts.Format("2006-01-02 15:04")
	}
	line.SetXAxis(xAxis)
	for _, region := range regions {
		data := make([]opts.LineData, len(stamps))
		for i, ts := range stamps {
			if v, ok := byRegion[region][ts]; ok {
				data[i] = opts.LineData{Value: v}
			} else {
				data[i] = opts.LineData{Value: nil}
			}
		}
		line.AddSeries(region, data)
	}

	var buf bytes.Buffer
	if err := line.Render(&buf); err != nil {
		return "", fmt.Errorf("failed to render chart: %w", err)
	}
	return buf.String(), nil
}
