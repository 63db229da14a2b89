package epf

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kilianp07/epf/connectors/source"
	"github.com/kilianp07/epf/core/metrics"
)

// Three rows per region, deliberately out of chronological order for BE.
var fixtures = map[string]string{
	"BE": "Date,Price,Exogenous 1,Exogenous 2\n" +
		"2015-01-05 00:00:00,40.1,100,200\n" +
		"2015-01-03 00:00:00,38.0,101,201\n" +
		"2015-01-04 00:00:00,39.5,102,202\n",
	"FR": "Date,Price,Exogenous 1,Exogenous 2,Exogenous 3\n" +
		"2015-01-06 00:00:00,50.0,300,400,1\n" +
		"2015-01-07 00:00:00,51.0,301,401,2\n" +
		"2015-01-08 00:00:00,52.0,302,402,3\n",
	"NP": "Date,Price,Grid load forecast,Wind power forecast\n" +
		"2016-12-26 00:00:00,30.1,1000,10\n" +
		"2016-12-26 01:00:00,29.8,1001,11\n" +
		"2016-12-27 00:00:00,28.7,1002,12\n",
	"PJM": "Date,Zonal COMED price,System load forecast\n" +
		"2016-12-26 00:00:00,25.0,9000\n" +
		"2016-12-25 23:00:00,24.0,9100\n" +
		"2016-12-27 00:00:00,26.0,9200\n",
	"DE": "Date,Price,Ampirion Load Forecast,PV+Wind Forecast\n" +
		"2016-01-04 00:00:00,22.0,500,50\n" +
		"2016-01-05 00:00:00,23.0,501,51\n" +
		"2016-01-06 00:00:00,24.0,502,52\n",
}

type fixtureServer struct {
	*httptest.Server
	hits  atomic.Int32
	mu    sync.Mutex
	paths []string
}

func newFixtureServer(t *testing.T, files map[string]string) *fixtureServer {
	t.Helper()
	fs := &fixtureServer{}
	fs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fs.hits.Add(1)
		fs.mu.Lock()
		fs.paths = append(fs.paths, r.URL.Path)
		fs.mu.Unlock()
		body, ok := files[strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/"), ".csv")]
		if !ok {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(fs.Close)
	return fs
}

func (fs *fixtureServer) loader(opts ...Option) *Loader {
	opts = append([]Option{WithSourceURL(fs.URL + "/")}, opts...)
	return NewLoader(source.NewHTTPClient(), opts...)
}

// writeDataset seeds directory/epf/datasets with the given files.
func writeDataset(t *testing.T, directory string, files map[string]string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(DatasetDir(directory), 0o755))
	for g, body := range files {
		require.NoError(t, os.WriteFile(DatasetFile(directory, g), []byte(body), 0o644))
	}
}

type recordingSink struct {
	mu        sync.Mutex
	loads     []metrics.LoadEvent
	downloads []metrics.DownloadEvent
	panels    []metrics.PanelEvent
}

func (s *recordingSink) RecordLoad(ev metrics.LoadEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads = append(s.loads, ev)
	return nil
}

func (s *recordingSink) RecordDownload(ev metrics.DownloadEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.downloads = append(s.downloads, ev)
	return nil
}

func (s *recordingSink) RecordPanel(ev metrics.PanelEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.panels = append(s.panels, ev)
	return nil
}

type recordingNotifier struct {
	groups []string
}

func (n *recordingNotifier) DatasetReady(_ context.Context, group, _ string) error {
	n.groups = append(n.groups, group)
	return nil
}

// requireAligned checks the positional join invariant between Y and X.
func requireAligned(t *testing.T, ds *Dataset) {
	t.Helper()
	require.Equal(t, ds.Y.Len(), ds.X.Len(), "Y and X row counts differ")
	for i := range ds.Y.Rows {
		require.Equal(t, ds.Y.Rows[i].RegionID, ds.X.Rows[i].RegionID, "region mismatch at %d", i)
		require.True(t, ds.Y.Rows[i].Timestamp.Equal(ds.X.Rows[i].Timestamp), "timestamp mismatch at %d", i)
	}
}
