package cache

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/aemoncannon/far-search-mode/internal/model"
)

const metaFile = "meta.json"

// LogCache keeps extracted run log archives on disk so each job log has a
// stable path that can be searched and opened like any other file.
type LogCache struct {
	dir     string
	maxSize int64         // max total cache size in bytes
	ttl     time.Duration // cache entry TTL
}

// CacheMeta describes the run a cache entry was downloaded for.
type CacheMeta struct {
	RunID        int64     `json:"run_id"`
	Attempt      int       `json:"attempt"`
	WorkflowName string    `json:"workflow_name"`
	DisplayTitle string    `json:"display_title"`
	Branch       string    `json:"branch"`
	HeadSHA      string    `json:"head_sha"`
	StoredAt     time.Time `json:"stored_at"`
}

func MetaFor(run model.Run) CacheMeta {
	return CacheMeta{
		RunID:        run.ID,
		Attempt:      run.Attempt(),
		WorkflowName: run.Name,
		DisplayTitle: run.DisplayTitle,
		Branch:       run.HeadBranch,
		HeadSHA:      run.HeadSHA,
		StoredAt:     time.Now(),
	}
}

func NewLogCache(dir string, maxSizeMB int, ttl time.Duration) (*LogCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log cache dir: %w", err)
	}
	return &LogCache{
		dir:     dir,
		maxSize: int64(maxSizeMB) * 1024 * 1024,
		ttl:     ttl,
	}, nil
}

func (lc *LogCache) Dir() string {
	return lc.dir
}

func (lc *LogCache) runDir(runID int64, attempt int) string {
	return filepath.Join(lc.dir, fmt.Sprintf("run-%d-attempt-%d", runID, attempt))
}

func (lc *LogCache) HasRun(runID int64, attempt int) bool {
	info, err := os.Stat(lc.runDir(runID, attempt))
	if err != nil {
		return false
	}
	return info.IsDir() && time.Since(info.ModTime()) < lc.ttl
}

// StoreRunLogs extracts a zip archive of run logs into the cache and
// returns the extracted file paths, sorted.
func (lc *LogCache) StoreRunLogs(runID int64, attempt int, zipData io.Reader) ([]string, error) {
	data, err := io.ReadAll(zipData)
	if err != nil {
		return nil, fmt.Errorf("read zip data: %w", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}

	dir := lc.runDir(runID, attempt)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create run log dir: %w", err)
	}

	var files []string
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		localPath := filepath.Join(dir, filepath.Clean(f.Name))
		if !strings.HasPrefix(localPath, dir+string(filepath.Separator)) {
			return nil, fmt.Errorf("archive entry %q escapes cache dir", f.Name)
		}
		if err := extract(f, localPath); err != nil {
			return nil, fmt.Errorf("extract %s: %w", f.Name, err)
		}
		files = append(files, localPath)
	}
	sort.Strings(files)
	return files, nil
}

func extract(f *zip.File, localPath string) error {
	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return err
	}
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	out, err := os.Create(localPath)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// RunFiles lists the cached log files of a run attempt. GitHub archives
// carry one full log per job at the root ("0_build.txt") plus per-step
// files in a directory per job; the root files are preferred when present.
func (lc *LogCache) RunFiles(runID int64, attempt int) ([]string, error) {
	dir := lc.runDir(runID, attempt)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read run dir: %w", err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".txt") {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) > 0 {
		return files, nil
	}

	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		steps, err := os.ReadDir(filepath.Join(dir, e.Name()))
		if err != nil {
			continue
		}
		for _, s := range steps {
			if !s.IsDir() {
				files = append(files, filepath.Join(dir, e.Name(), s.Name()))
			}
		}
	}
	return files, nil
}

// JobName returns the job a cached log file belongs to, for display.
func JobName(path string) string {
	dir := filepath.Base(filepath.Dir(path))
	if strings.HasPrefix(dir, "run-") {
		return parseRootLogName(filepath.Base(path))
	}
	return dir
}

// parseRootLogName extracts the job name from a root-level log filename.
// GitHub Actions zips contain files like "0_Build & Deploy.txt" where the
// number prefix is the job index. This returns "Build & Deploy".
func parseRootLogName(filename string) string {
	name := strings.TrimSuffix(filename, ".txt")
	if idx := strings.Index(name, "_"); idx > 0 {
		prefix := name[:idx]
		allDigits := true
		for _, c := range prefix {
			if c < '0' || c > '9' {
				allDigits = false
				break
			}
		}
		if allDigits {
			return name[idx+1:]
		}
	}
	return name
}

// Evict removes expired run directories, then the oldest remaining ones
// until the cache fits in maxSize. A run is always removed as a whole so a
// partly evicted run never looks cached.
func (lc *LogCache) Evict() error {
	type cacheEntry struct {
		path    string
		modTime time.Time
		size    int64
	}

	dirs, err := os.ReadDir(lc.dir)
	if err != nil {
		return err
	}

	var entries []cacheEntry
	var totalSize int64
	for _, d := range dirs {
		if !d.IsDir() || !strings.HasPrefix(d.Name(), "run-") {
			continue
		}
		info, err := d.Info()
		if err != nil {
			continue
		}
		path := filepath.Join(lc.dir, d.Name())
		size, err := dirSize(path)
		if err != nil {
			return err
		}
		entries = append(entries, cacheEntry{path: path, modTime: info.ModTime(), size: size})
		totalSize += size
	}

	now := time.Now()
	remaining := entries[:0]
	for _, e := range entries {
		if now.Sub(e.modTime) > lc.ttl {
			if err := os.RemoveAll(e.path); err != nil {
				return err
			}
			totalSize -= e.size
		} else {
			remaining = append(remaining, e)
		}
	}
	entries = remaining

	if totalSize > lc.maxSize {
		sort.Slice(entries, func(i, j int) bool {
			return entries[i].modTime.Before(entries[j].modTime)
		})
		for _, e := range entries {
			if totalSize <= lc.maxSize {
				break
			}
			if err := os.RemoveAll(e.path); err != nil {
				return err
			}
			totalSize -= e.size
		}
	}
	return nil
}

func dirSize(dir string) (int64, error) {
	var size int64
	err := filepath.Walk(dir, func(_ string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		size += info.Size()
		return nil
	})
	return size, err
}

func (lc *LogCache) WriteMeta(meta CacheMeta) error {
	path := filepath.Join(lc.runDir(meta.RunID, meta.Attempt), metaFile)
	data, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (lc *LogCache) ReadMeta(runID int64, attempt int) (*CacheMeta, error) {
	data, err := os.ReadFile(filepath.Join(lc.runDir(runID, attempt), metaFile))
	if err != nil {
		return nil, err
	}
	var meta CacheMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// DeleteEntry removes a single cache entry.
func (lc *LogCache) DeleteEntry(runID int64, attempt int) error {
	return os.RemoveAll(lc.runDir(runID, attempt))
}
