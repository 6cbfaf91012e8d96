package sources

import (
	"context"
	"fmt"
	"io"

	"github.com/aemoncannon/far-search-mode/internal/cache"
	"github.com/aemoncannon/far-search-mode/internal/logger"
	"github.com/aemoncannon/far-search-mode/internal/model"
)

// RunLogClient is the part of the GitHub client used to fetch run logs.
type RunLogClient interface {
	GetRun(ctx context.Context, runID int64) (*model.Run, error)
	LatestRun(ctx context.Context) (*model.Run, error)
	DownloadRunAttemptLogs(ctx context.Context, runID int64, attempt int) (io.ReadCloser, error)
}

// RunLogs are the cached log files of one workflow run.
type RunLogs struct {
	Run   model.Run
	Files []string
}

// FetchRunLogs makes sure the logs of runID are in the cache and returns
// their paths. A runID of 0 selects the latest completed run. With
// refresh set any cached copy is discarded first.
func FetchRunLogs(ctx context.Context, client RunLogClient, lc *cache.LogCache, runID int64, refresh bool) (*RunLogs, error) {
	var (
		run *model.Run
		err error
	)
	if runID == 0 {
		run, err = client.LatestRun(ctx)
	} else {
		run, err = client.GetRun(ctx, runID)
	}
	if err != nil {
		return nil, err
	}
	attempt := run.Attempt()

	if refresh {
		if err := lc.DeleteEntry(run.ID, attempt); err != nil {
			return nil, fmt.Errorf("drop cached logs: %w", err)
		}
	}

	if !cachedComplete(lc, run.ID, attempt) {
		logger.Info("downloading logs for run %d attempt %d", run.ID, attempt)
		body, err := client.DownloadRunAttemptLogs(ctx, run.ID, attempt)
		if err != nil {
			return nil, fmt.Errorf("download logs for run %d: %w", run.ID, err)
		}
		defer body.Close()
		if _, err := lc.StoreRunLogs(run.ID, attempt, body); err != nil {
			return nil, fmt.Errorf("store logs for run %d: %w", run.ID, err)
		}
		// The meta file is written last and marks the entry complete.
		if err := lc.WriteMeta(cache.MetaFor(*run)); err != nil {
			logger.Warn("write cache meta: %v", err)
		}
		if err := lc.Evict(); err != nil {
			logger.Warn("evict log cache: %v", err)
		}
	} else {
		logger.Debug("run %d attempt %d served from cache", run.ID, attempt)
	}

	files, err := lc.RunFiles(run.ID, attempt)
	if err != nil {
		return nil, err
	}
	return &RunLogs{Run: *run, Files: files}, nil
}

// cachedComplete reports whether a fresh, fully stored copy of the run is
// cached. An entry without readable meta was interrupted mid-store.
func cachedComplete(lc *cache.LogCache, runID int64, attempt int) bool {
	if !lc.HasRun(runID, attempt) {
		return false
	}
	meta, err := lc.ReadMeta(runID, attempt)
	if err != nil || meta.RunID != runID || meta.Attempt != attempt {
		logger.Debug("run %d attempt %d cache entry incomplete, refetching", runID, attempt)
		return false
	}
	return true
}
