package cache

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aemoncannon/far-search-mode/internal/model"
)

func zipOf(t *testing.T, files map[string]string) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return &buf
}

func newCache(t *testing.T) *LogCache {
	t.Helper()
	lc, err := NewLogCache(filepath.Join(t.TempDir(), "logs"), 10, time.Hour)
	require.NoError(t, err)
	return lc
}

func TestStoreRunLogs(t *testing.T) {
	lc := newCache(t)
	archive := zipOf(t, map[string]string{
		"0_build.txt":          "build log",
		"1_test.txt":           "test log",
		"build/1_Set up.txt":   "step",
		"test/2_Run tests.txt": "step",
	})

	files, err := lc.StoreRunLogs(7, 1, archive)
	require.NoError(t, err)
	assert.Len(t, files, 4)
	assert.True(t, lc.HasRun(7, 1))
	assert.False(t, lc.HasRun(7, 2))

	data, err := os.ReadFile(filepath.Join(lc.Dir(), "run-7-attempt-1", "0_build.txt"))
	require.NoError(t, err)
	assert.Equal(t, "build log", string(data))
}

func TestStoreRunLogsRejectsEscapingEntries(t *testing.T) {
	lc := newCache(t)
	archive := zipOf(t, map[string]string{"../../evil.txt": "x"})

	_, err := lc.StoreRunLogs(1, 1, archive)
	assert.Error(t, err)
}

func TestRunFilesPrefersRootLogs(t *testing.T) {
	lc := newCache(t)
	_, err := lc.StoreRunLogs(7, 1, zipOf(t, map[string]string{
		"0_build.txt":        "build log",
		"1_test.txt":         "test log",
		"build/1_Set up.txt": "step",
	}))
	require.NoError(t, err)

	files, err := lc.RunFiles(7, 1)
	require.NoError(t, err)
	dir := filepath.Join(lc.Dir(), "run-7-attempt-1")
	assert.Equal(t, []string{
		filepath.Join(dir, "0_build.txt"),
		filepath.Join(dir, "1_test.txt"),
	}, files)
}

func TestRunFilesFallsBackToSteps(t *testing.T) {
	lc := newCache(t)
	_, err := lc.StoreRunLogs(8, 1, zipOf(t, map[string]string{
		"build/1_Set up.txt":  "a",
		"build/2_Compile.txt": "b",
	}))
	require.NoError(t, err)

	files, err := lc.RunFiles(8, 1)
	require.NoError(t, err)
	assert.Len(t, files, 2)
	for _, f := range files {
		assert.Equal(t, "build", JobName(f))
	}
}

func TestRunFilesMissingRun(t *testing.T) {
	_, err := newCache(t).RunFiles(99, 1)
	assert.Error(t, err)
}

func TestParseRootLogName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"0_Build & Deploy.txt", "Build & Deploy"},
		{"12_test.txt", "test"},
		{"build_all.txt", "build_all"},
		{"_x.txt", "_x"},
		{"plain.txt", "plain"},
	}
	for _, tt := range tests {
		if got := parseRootLogName(tt.in); got != tt.want {
			t.Errorf("parseRootLogName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMetaRoundTripAndDelete(t *testing.T) {
	lc := newCache(t)
	_, err := lc.StoreRunLogs(5, 2, zipOf(t, map[string]string{"0_a.txt": "a"}))
	require.NoError(t, err)

	meta := MetaFor(model.Run{ID: 5, RunAttempt: 2, Name: "CI", HeadBranch: "main"})
	require.NoError(t, lc.WriteMeta(meta))

	got, err := lc.ReadMeta(5, 2)
	require.NoError(t, err)
	assert.Equal(t, "CI", got.WorkflowName)
	assert.Equal(t, "main", got.Branch)

	require.NoError(t, lc.DeleteEntry(5, 2))
	assert.False(t, lc.HasRun(5, 2))
}

func TestEvictOversized(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	lc, err := NewLogCache(dir, 0, time.Hour)
	require.NoError(t, err)
	_, err = lc.StoreRunLogs(1, 1, zipOf(t, map[string]string{"0_a.txt": "aaaa"}))
	require.NoError(t, err)

	require.NoError(t, lc.Evict())

	_, err = os.Stat(filepath.Join(dir, "run-1-attempt-1"))
	assert.True(t, os.IsNotExist(err))
	assert.False(t, lc.HasRun(1, 1))
}

func TestEvictRemovesOldestRunWhole(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	lc := &LogCache{dir: dir, maxSize: 10, ttl: time.Hour}

	_, err := lc.StoreRunLogs(1, 1, zipOf(t, map[string]string{
		"0_build.txt":       "aaaa",
		"build/1_setup.txt": "aaaa",
	}))
	require.NoError(t, err)
	_, err = lc.StoreRunLogs(2, 1, zipOf(t, map[string]string{"0_build.txt": "bbbb"}))
	require.NoError(t, err)

	old := time.Now().Add(-30 * time.Minute)
	require.NoError(t, os.Chtimes(lc.runDir(1, 1), old, old))

	require.NoError(t, lc.Evict())

	_, err = os.Stat(lc.runDir(1, 1))
	assert.True(t, os.IsNotExist(err), "older run is removed as a whole")
	assert.True(t, lc.HasRun(2, 1))
	files, err := lc.RunFiles(2, 1)
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestEvictExpiredRun(t *testing.T) {
	lc := newCache(t)
	_, err := lc.StoreRunLogs(3, 1, zipOf(t, map[string]string{"0_a.txt": "a"}))
	require.NoError(t, err)
	_, err = lc.StoreRunLogs(4, 1, zipOf(t, map[string]string{"0_a.txt": "a"}))
	require.NoError(t, err)

	old := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(lc.runDir(3, 1), old, old))

	require.NoError(t, lc.Evict())

	_, err = os.Stat(lc.runDir(3, 1))
	assert.True(t, os.IsNotExist(err))
	assert.True(t, lc.HasRun(4, 1))
}
