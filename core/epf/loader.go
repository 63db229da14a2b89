package epf

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/kilianp07/epf/connectors"
	"github.com/kilianp07/epf/connectors/source"
	"github.com/kilianp07/epf/core/logger"
	"github.com/kilianp07/epf/core/metrics"
)

// SourceURL is the default location of the raw dataset files.
const SourceURL = "https://sandbox.zenodo.org/api/files/da5b2c6f-8418-4550-a7d0-7f2497b40f1b/"

// Notifier is told when a raw dataset file has been written locally.
type Notifier interface {
	DatasetReady(ctx context.Context, group, path string) error
}

// NopNotifier ignores notifications.
type NopNotifier struct{}

func (NopNotifier) DatasetReady(context.Context, string, string) error { return nil }

// Loader downloads and reshapes the EPF datasets.
type Loader struct {
	fetcher   connectors.Fetcher
	sourceURL string
	log       logger.Logger
	sink      metrics.MetricsSink
	notifier  Notifier
	clock     clockwork.Clock
}

// Option configures a Loader.
type Option func(*Loader)

// WithSourceURL overrides SourceURL. The group file name is appended to it
// verbatim, so it should end with a slash.
func WithSourceURL(u string) Option { return func(l *Loader) { l.sourceURL = u } }

// WithLogger sets the logger.
func WithLogger(log logger.Logger) Option { return func(l *Loader) { l.log = log } }

// WithMetrics sets the metrics sink.
func WithMetrics(s metrics.MetricsSink) Option { return func(l *Loader) { l.sink = s } }

// WithNotifier sets the notifier called after each downloaded file.
func WithNotifier(n Notifier) Option { return func(l *Loader) { l.notifier = n } }

// WithClock sets the clock used to time loads and downloads.
func WithClock(c clockwork.Clock) Option { return func(l *Loader) { l.clock = c } }

// NewLoader creates a Loader fetching files through f.
func NewLoader(f connectors.Fetcher, opts ...Option) *Loader {
	l := &Loader{
		fetcher:   f,
		sourceURL: SourceURL,
		log:       logger.NopLogger{},
		sink:      metrics.NopSink{},
		notifier:  NopNotifier{},
		clock:     clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

var defaultLoader = NewLoader(source.NewHTTPClient())

// Load loads a single region with the default loader.
func Load(ctx context.Context, directory, group string) (*Dataset, error) {
	return defaultLoader.Load(ctx, directory, group)
}

// LoadGroups loads a panel of regions with the default loader.
func LoadGroups(ctx context.Context, directory string, groups []string) (*Dataset, error) {
	return defaultLoader.LoadGroups(ctx, directory, groups)
}

// Download fetches the raw files with the default loader.
func Download(ctx context.Context, directory string) error {
	return defaultLoader.Download(ctx, directory)
}

// DatasetDir is where the raw files of directory live.
func DatasetDir(directory string) string {
	return filepath.Join(directory, "epf", "datasets")
}

// DatasetFile is the raw file of group under directory.
func DatasetFile(directory, group string) string {
	return filepath.Join(DatasetDir(directory), group+".csv")
}

// EnsureResultsDir creates the directory outputs are written to.
func EnsureResultsDir(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return &IOError{Op: "mkdir", Path: path, Err: err}
	}
	return nil
}

// Download fetches every registered group into directory/epf/datasets.
//
// The existence of the dataset directory gates the whole step: when it
// exists nothing is fetched, even if some group file is missing. Load
// compensates by fetching a missing file on demand.
func (l *Loader) Download(ctx context.Context, directory string) error {
	dir := DatasetDir(directory)
	_, err := os.Stat(dir)
	if err == nil {
		l.log.Debugf("dataset directory %s exists, skipping download", dir)
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return &IOError{Op: "stat", Path: dir, Err: err}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &IOError{Op: "mkdir", Path: dir, Err: err}
	}
	l.log.Infof("downloading %d datasets into %s", len(regions), dir)
	for _, g := range Groups() {
		if err := l.fetch(ctx, dir, g); err != nil {
			return err
		}
	}
	return nil
}

// fetch downloads one group file. The body goes to a temporary file that is
// renamed into place, so a failed transfer never leaves a truncated file.
func (l *Loader) fetch(ctx context.Context, dir, group string) error {
	url := l.sourceURL + group + ".csv"
	dst := filepath.Join(dir, group+".csv")
	start := l.clock.Now()

	tmp, err := os.CreateTemp(dir, group+".*.part")
	if err != nil {
		return &IOError{Op: "create", Path: dir, Err: err}
	}
	n, ferr := l.fetcher.Fetch(ctx, url, tmp)
	cerr := tmp.Close()
	if ferr == nil && cerr != nil {
		ferr = cerr
	}
	if ferr == nil {
		if err := os.Rename(tmp.Name(), dst); err != nil {
			_ = os.Remove(tmp.Name())
			return &IOError{Op: "rename", Path: dst, Err: err}
		}
	} else {
		_ = os.Remove(tmp.Name())
	}

	l.recordDownload(metrics.DownloadEvent{
		Region:   group,
		URL:      url,
		Bytes:    n,
		Success:  ferr == nil,
		Duration: l.clock.Since(start),
		Time:     start,
	})
	if ferr != nil {
		l.log.Errorf("download %s failed: %v", group, ferr)
		return &DownloadError{Group: group, URL: url, Err: ferr}
	}
	l.log.Debugw("dataset downloaded", map[string]any{"group": group, "bytes": n, "path": dst})

	if err := l.notifier.DatasetReady(ctx, group, dst); err != nil {
		l.log.Warnf("notify %s ready: %v", group, err)
	}
	return nil
}

// Load reads one region. S is nil in the result.
func (l *Loader) Load(ctx context.Context, directory, group string) (*Dataset, error) {
	return l.load(ctx, directory, group, uuid.NewString())
}

func (l *Loader) load(ctx context.Context, directory, group, runID string) (*Dataset, error) {
	region, err := GetGroup(group)
	if err != nil {
		return nil, err
	}
	if err := l.Download(ctx, directory); err != nil {
		return nil, err
	}

	path := DatasetFile(directory, region.Name)
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		l.log.Infof("%s missing from %s, fetching it", region.Name, DatasetDir(directory))
		if err := l.fetch(ctx, DatasetDir(directory), region.Name); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, &IOError{Op: "stat", Path: path, Err: err}
	}

	start := l.clock.Now()
	records, nExo, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	y, x := buildTables(region.Name, records, nExo, featureExogenous)

	elapsed := l.clock.Since(start)
	l.log.Debugw("dataset loaded", map[string]any{
		"run_id":   runID,
		"group":    region.Name,
		"rows":     y.Len(),
		"duration": elapsed.String(),
	})
	if err := l.sink.RecordLoad(metrics.LoadEvent{
		RunID:    runID,
		Region:   region.Name,
		Rows:     y.Len(),
		Duration: elapsed,
		Time:     start,
	}); err != nil {
		l.log.Warnf("record load metrics: %v", err)
	}
	return &Dataset{Y: y, X: x}, nil
}

// LoadGroups loads each group in order and assembles a panel sorted by
// (region_id, timestamp) with its static table. Any failure discards the
// whole panel.
func (l *Loader) LoadGroups(ctx context.Context, directory string, groups []string) (*Dataset, error) {
	if len(groups) == 0 {
		return nil, ErrNoGroups
	}
	for _, g := range groups {
		if _, err := GetGroup(g); err != nil {
			return nil, err
		}
	}

	runID := uuid.NewString()
	parts := make([]*Dataset, 0, len(groups))
	for _, g := range groups {
		ds, err := l.load(ctx, directory, g, runID)
		if err != nil {
			return nil, err
		}
		parts = append(parts, ds)
	}
	panel := assemble(parts)

	l.log.Infof("panel %s assembled: %d rows, %d regions", runID, panel.Y.Len(), panel.S.Len())
	if r, ok := l.sink.(metrics.PanelRecorder); ok {
		if err := r.RecordPanel(metrics.PanelEvent{
			RunID:   runID,
			Regions: panel.S.Regions,
			Rows:    panel.Y.Len(),
			Time:    l.clock.Now(),
		}); err != nil {
			l.log.Warnf("record panel metrics: %v", err)
		}
	}
	return panel, nil
}

func (l *Loader) recordDownload(ev metrics.DownloadEvent) {
	r, ok := l.sink.(metrics.DownloadRecorder)
	if !ok {
		return
	}
	if err := r.RecordDownload(ev); err != nil {
		l.log.Warnf("record download metrics: %v", err)
	}
}
