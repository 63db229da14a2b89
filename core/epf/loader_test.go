package epf

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownload_FetchesEveryGroupOnce(t *testing.T) {
	srv := newFixtureServer(t, fixtures)
	sink := &recordingSink{}
	notifier := &recordingNotifier{}
	l := srv.loader(WithMetrics(sink), WithNotifier(notifier))
	dir := t.TempDir()

	require.NoError(t, l.Download(context.Background(), dir))
	require.NoError(t, l.Download(context.Background(), dir))

	assert.EqualValues(t, 5, srv.hits.Load(), "second call must not hit the network")
	for _, g := range Groups() {
		data, err := os.ReadFile(DatasetFile(dir, g))
		require.NoError(t, err)
		assert.Equal(t, fixtures[g], string(data))
	}
	assert.Equal(t, Groups(), notifier.groups)
	require.Len(t, sink.downloads, 5)
	for _, ev := range sink.downloads {
		assert.True(t, ev.Success)
		assert.EqualValues(t, len(fixtures[ev.Region]), ev.Bytes)
	}
}

func TestDownload_Failure(t *testing.T) {
	files := map[string]string{"NP": fixtures["NP"], "PJM": fixtures["PJM"]}
	srv := newFixtureServer(t, files)
	sink := &recordingSink{}
	l := srv.loader(WithMetrics(sink))
	dir := t.TempDir()

	err := l.Download(context.Background(), dir)
	var de *DownloadError
	require.True(t, errors.As(err, &de), "expected DownloadError, got %v", err)
	assert.Equal(t, "BE", de.Group)
	assert.Equal(t, srv.URL+"/BE.csv", de.URL)

	_, statErr := os.Stat(DatasetFile(dir, "BE"))
	assert.True(t, os.IsNotExist(statErr), "failed download must not leave a file")
	parts, _ := filepath.Glob(filepath.Join(DatasetDir(dir), "*.part"))
	assert.Empty(t, parts)

	require.Len(t, sink.downloads, 3)
	assert.False(t, sink.downloads[2].Success)
}

func TestDownload_DirectoryGateSkipsMissingFiles(t *testing.T) {
	srv := newFixtureServer(t, fixtures)
	dir := t.TempDir()
	writeDataset(t, dir, map[string]string{"BE": fixtures["BE"]})

	require.NoError(t, srv.loader().Download(context.Background(), dir))
	assert.Zero(t, srv.hits.Load())
	_, err := os.Stat(DatasetFile(dir, "FR"))
	assert.True(t, os.IsNotExist(err))
}

func TestLoad_FetchesMissingGroupFile(t *testing.T) {
	srv := newFixtureServer(t, fixtures)
	dir := t.TempDir()
	writeDataset(t, dir, map[string]string{"BE": fixtures["BE"]})

	ds, err := srv.loader().Load(context.Background(), dir, "FR")
	require.NoError(t, err)
	assert.EqualValues(t, 1, srv.hits.Load())
	assert.Equal(t, []string{"/FR.csv"}, srv.paths)
	assert.Equal(t, 3, ds.Y.Len())
}

func TestLoad_SingleRegion(t *testing.T) {
	srv := newFixtureServer(t, fixtures)
	sink := &recordingSink{}
	clock := clockwork.NewFakeClockAt(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	l := srv.loader(WithMetrics(sink), WithClock(clock))

	ds, err := l.Load(context.Background(), t.TempDir(), "BE")
	require.NoError(t, err)
	assert.Nil(t, ds.S)
	requireAligned(t, ds)

	require.Equal(t, 3, ds.Y.Len())
	for _, r := range ds.Y.Rows {
		assert.Equal(t, "BE", r.RegionID)
	}
	// File order is kept for a single region.
	assert.Equal(t, time.Date(2015, 1, 5, 0, 0, 0, 0, time.UTC), ds.Y.Rows[0].Timestamp)
	assert.Equal(t, 40.1, ds.Y.Rows[0].Value)

	assert.Equal(t, []string{"region_id", "timestamp", "target_value"}, ds.Y.Columns())
	assert.Equal(t, []string{
		"region_id", "timestamp", "exogenous_1", "exogenous_2", "weekday_index", "day_0", "day_5", "day_6",
	}, ds.X.Columns())

	assert.Equal(t, []float64{100, 200}, ds.X.Rows[0].Exogenous)
	assert.Equal(t, 0, ds.X.Rows[0].Weekday)
	assert.Equal(t, 5, ds.X.Rows[1].Weekday)
	assert.Equal(t, 6, ds.X.Rows[2].Weekday)
	assert.Equal(t, []any{"BE", ds.X.Rows[1].Timestamp, 101.0, 201.0, 5, 0, 1, 0}, ds.X.Values(1))

	require.Len(t, sink.loads, 1)
	assert.Equal(t, "BE", sink.loads[0].Region)
	assert.Equal(t, 3, sink.loads[0].Rows)
	assert.NotEmpty(t, sink.loads[0].RunID)
	assert.Equal(t, clock.Now(), sink.loads[0].Time)
}

func TestLoad_KeepsFirstTwoExogenous(t *testing.T) {
	srv := newFixtureServer(t, fixtures)
	ds, err := srv.loader().Load(context.Background(), t.TempDir(), "FR")
	require.NoError(t, err)
	assert.Equal(t, []string{"exogenous_1", "exogenous_2"}, ds.X.ExogenousColumns)
	assert.Equal(t, []float64{300, 400}, ds.X.Rows[0].Exogenous)
}

func TestLoad_FewerExogenous(t *testing.T) {
	srv := newFixtureServer(t, fixtures)
	ds, err := srv.loader().Load(context.Background(), t.TempDir(), "PJM")
	require.NoError(t, err)
	assert.Equal(t, []string{"exogenous_1"}, ds.X.ExogenousColumns)
}

func TestLoad_UnknownGroup(t *testing.T) {
	srv := newFixtureServer(t, fixtures)
	dir := t.TempDir()

	_, err := srv.loader().Load(context.Background(), dir, "ES")
	var ug *UnknownGroupError
	require.True(t, errors.As(err, &ug), "expected UnknownGroupError, got %v", err)
	assert.Zero(t, srv.hits.Load())
	_, statErr := os.Stat(DatasetDir(dir))
	assert.True(t, os.IsNotExist(statErr))
}

func TestLoad_ParseErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		line   int
		column string
	}{
		{
			name:   "bad timestamp",
			body:   "Date,Price,A,B\n2015-01-03 00:00:00,1,2,3\nyesterday,1,2,3\n",
			line:   3,
			column: ColTimestamp,
		},
		{
			name:   "bad target",
			body:   "Date,Price,A,B\n2015-01-03 00:00:00,n/a,2,3\n",
			line:   2,
			column: ColTarget,
		},
		{
			name:   "bad exogenous",
			body:   "Date,Price,A,B\n2015-01-03 00:00:00,1,2,\n",
			line:   2,
			column: "exogenous_2",
		},
		{
			name: "ragged row",
			body: "Date,Price,A,B\n2015-01-03 00:00:00,1,2\n",
			line: 2,
		},
		{
			name: "single column",
			body: "Date\n2015-01-03 00:00:00\n",
			line: 1,
		},
		{
			name: "empty file",
			body: "",
			line: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeDataset(t, dir, map[string]string{"BE": tt.body})
			srv := newFixtureServer(t, nil)

			_, err := srv.loader().Load(context.Background(), dir, "BE")
			var pe *ParseError
			require.True(t, errors.As(err, &pe), "expected ParseError, got %v", err)
			assert.Equal(t, tt.line, pe.Line)
			assert.Equal(t, tt.column, pe.Column)
			assert.Equal(t, DatasetFile(dir, "BE"), pe.Path)
		})
	}
}

func TestLoad_TimestampLayouts(t *testing.T) {
	dir := t.TempDir()
	body := "Date,Price\n" +
		"2015-01-03 00:00:00,1\n" +
		"2015-01-03T01:00:00,2\n" +
		"2015-01-03T02:00:00Z,3\n" +
		"2015-01-03 03:00,4\n" +
		"2015-01-04,5\n" +
		"01/02/2016 06:00,6\n" +
		"12/31/2016,7\n"
	writeDataset(t, dir, map[string]string{"BE": body})

	ds, err := newFixtureServer(t, nil).loader().Load(context.Background(), dir, "BE")
	require.NoError(t, err)
	require.Equal(t, 7, ds.Y.Len())
	assert.Equal(t, time.Date(2015, 1, 3, 3, 0, 0, 0, time.UTC), ds.Y.Rows[3].Timestamp)
	assert.Equal(t, time.Date(2016, 1, 2, 6, 0, 0, 0, time.UTC), ds.Y.Rows[5].Timestamp)
	assert.Equal(t, 5, ds.X.Rows[5].Weekday)
	assert.Equal(t, time.Date(2016, 12, 31, 0, 0, 0, 0, time.UTC), ds.Y.Rows[6].Timestamp)
	assert.Empty(t, ds.X.ExogenousColumns)
	assert.Equal(t, []int{5, 6}, ds.X.DayColumns)
}

func TestLoad_DownloadErrorPropagates(t *testing.T) {
	srv := newFixtureServer(t, nil)
	_, err := srv.loader().Load(context.Background(), t.TempDir(), "NP")
	var de *DownloadError
	require.True(t, errors.As(err, &de), "expected DownloadError, got %v", err)
	assert.Equal(t, "NP", de.Group)
}

func TestEnsureResultsDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results", "nested")
	require.NoError(t, EnsureResultsDir(path))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	require.NoError(t, EnsureResultsDir(path))
}
