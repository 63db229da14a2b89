package cmd

import (
	"bytes"
	"encoding/json"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/kilianp07/epf/infra/logger"
)

// setup writes a file:// dataset mirror and a config pointing at it.
func setup(t *testing.T) (cfgPath, dataDir string) {
	t.Helper()
	src := t.TempDir()
	files := map[string]string{
		"BE":  "Date,Price,A,B\n2015-01-05 00:00:00,40,1,2\n2015-01-03 00:00:00,39,1,2\n",
		"FR":  "Date,Price,A,B\n2015-01-05 00:00:00,50,3,4\n",
		"NP":  "Date,Price,A,B\n2016-12-26 00:00:00,30,5,6\n",
		"PJM": "Date,Price,A\n2016-12-26 00:00:00,20,7\n",
		"DE":  "Date,Price,A,B\n2016-01-04 00:00:00,22,8,9\n",
	}
	for g, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(src, g+".csv"), []byte(body), 0o644))
	}
	dataDir = t.TempDir()
	cfg := "dataset:\n" +
		"  directory: \"" + dataDir + "\"\n" +
		"  source_url: \"" + (&url.URL{Scheme: "file", Path: src + "/"}).String() + "\"\n" +
		"log:\n  level: error\n"
	cfgPath = filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))
	return cfgPath, dataDir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestGroupsCmd(t *testing.T) {
	out, err := run(t, "groups")
	require.NoError(t, err)
	assert.Contains(t, out, "GROUP")
	for _, g := range []string{"NP", "PJM", "BE", "FR", "DE"} {
		assert.Contains(t, out, g)
	}
	assert.Contains(t, out, "2016-12-27")
}

func TestLoadCmd_Panel(t *testing.T) {
	cfg, _ := setup(t)
	results := filepath.Join(t.TempDir(), "out")

	out, err := run(t, "-c", cfg, "load", "--out", results, "--format", "csv,json", "BE", "FR")
	require.NoError(t, err)
	assert.Contains(t, out, "y: 3 rows")
	assert.Contains(t, out, "s: 2 rows")
	for _, name := range []string{"Y.csv", "X.csv", "S.csv", "Y.json", "X.json", "S.json"} {
		assert.FileExists(t, filepath.Join(results, name))
	}

	s, err := os.ReadFile(filepath.Join(results, "S.csv"))
	require.NoError(t, err)
	assert.Equal(t, "region_id,static_BE,static_FR\nBE,1,0\nFR,0,1\n", string(s))
}

func TestDownloadCmd(t *testing.T) {
	cfg, dataDir := setup(t)
	out, err := run(t, "-c", cfg, "download")
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(dataDir, "epf", "datasets"))
	for _, g := range []string{"NP", "PJM", "BE", "FR", "DE"} {
		assert.FileExists(t, filepath.Join(dataDir, "epf", "datasets", g+".csv"))
	}

	other := t.TempDir()
	_, err = run(t, "-c", cfg, "download", "--dir", other)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(other, "epf", "datasets", "DE.csv"))
}

func TestDownloadCmd_MissingSource(t *testing.T) {
	cfg, dataDir := setup(t)
	t.Setenv("K_DATASET__SOURCE_URL", "file://"+filepath.Join(t.TempDir(), "empty")+"/")
	_, err := run(t, "-c", cfg, "download")
	assert.ErrorContains(t, err, "NP")
	assert.NoFileExists(t, filepath.Join(dataDir, "epf", "datasets", "NP.csv"))
}

func TestDescribeCmd(t *testing.T) {
	cfg, _ := setup(t)
	out, err := run(t, "-c", cfg, "describe", "BE")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "MEAN")
	assert.Contains(t, lines[1], "BE")
	assert.Contains(t, lines[1], "39.50")
}

func TestLoadCmd_Errors(t *testing.T) {
	cfg, _ := setup(t)

	_, err := run(t, "-c", cfg, "load")
	assert.Error(t, err, "groups are required")

	_, err = run(t, "-c", cfg, "load", "ES")
	assert.ErrorContains(t, err, "ES")

	_, err = run(t, "-c", cfg, "load", "--format", "parquet", "BE")
	assert.ErrorContains(t, err, "parquet")

	_, err = run(t, "-c", filepath.Join(t.TempDir(), "missing.yaml"), "groups")
	assert.ErrorContains(t, err, "load config")
}

func TestWorkbookCmd(t *testing.T) {
	cfg, _ := setup(t)
	path := filepath.Join(t.TempDir(), "book.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"GOLD", "Close", "Volume"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"2024-01-02", 2050.5, 10.0}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())
	results := t.TempDir()

	out, err := run(t, "-c", cfg, "workbook", "--out", results, path)
	require.NoError(t, err)
	assert.Contains(t, out, "y: 1 rows")

	y, err := os.ReadFile(filepath.Join(results, "Y.csv"))
	require.NoError(t, err)
	assert.Equal(t, "region_id,timestamp,target_value\nGOLD,2024-01-02 00:00:00,2050.5\n", string(y))
}

func TestRootCmd_DevEnvSelectsConsoleLogs(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("log:\n  level: info\n"), 0o644))
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	t.Cleanup(func() {
		logger.SetOutput(os.Stderr)
		_ = logger.Configure("info", "")
	})

	_, err := run(t, "-c", cfgPath, "groups")
	require.NoError(t, err)
	logger.New("cmd").Infof("console ready")

	out := strings.TrimSpace(buf.String())
	assert.Contains(t, out, "console ready")
	assert.False(t, json.Valid([]byte(out)), "expected console output, got %q", out)
}
