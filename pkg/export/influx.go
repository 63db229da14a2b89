package export

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/kilianp07/epf/core/epf"
)

// DefaultMeasurement is the measurement target points are written to.
const DefaultMeasurement = "epf_price"

const influxBatch = 5000

// InfluxConfig locates the bucket the series are written to.
type InfluxConfig struct {
	URL         string `json:"url"`
	Token       string `json:"token"`
	Org         string `json:"org"`
	Bucket      string `json:"bucket"`
	Measurement string `json:"measurement"`
}

// InfluxWriter writes datasets as InfluxDB points.
type InfluxWriter struct {
	client      influxdb2.Client
	writeAPI    api.WriteAPIBlocking
	measurement string
}

// NewInfluxWriter creates a writer for cfg.
func NewInfluxWriter(cfg InfluxConfig) *InfluxWriter {
	base := strings.TrimSuffix(cfg.URL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 30 * time.Second}))
	m := cfg.Measurement
	if m == "" {
		m = DefaultMeasurement
	}
	return &InfluxWriter{client: client, writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket), measurement: m}
}

// WriteDataset writes one point per row of ds.Y, tagged by region_id, with
// the target and the row's exogenous values as fields. NaN values are
// omitted and rows left without any field are skipped. It returns the number
// of points written.
func (w *InfluxWriter) WriteDataset(ctx context.Context, ds *epf.Dataset) (int, error) {
	batch := make([]*write.Point, 0, min(influxBatch, ds.Y.Len()))
	written := 0
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := w.writeAPI.WritePoint(ctx, batch...); err != nil {
			return err
		}
		written += len(batch)
		batch = batch[:0]
		return nil
	}

	for i, r := range ds.Y.Rows {
		p := write.NewPointWithMeasurement(w.measurement).
			AddTag(epf.ColRegionID, r.RegionID)
		if !math.IsNaN(r.Value) {
			p.AddField(epf.ColTarget, r.Value)
		}
		if ds.X != nil && i < ds.X.Len() {
			for j, v := range ds.X.Rows[i].Exogenous {
				if !math.IsNaN(v) {
					p.AddField(ds.X.ExogenousColumns[j], v)
				}
			}
		}
		if len(p.FieldList()) == 0 {
			continue
		}
		p.SetTime(r.Timestamp)
		batch = append(batch, p)
		if len(batch) == influxBatch {
			if err := flush(); err != nil {
				return written, err
			}
		}
	}
	return written, flush()
}

// Close releases the client.
func (w *InfluxWriter) Close() { w.client.Close() }
