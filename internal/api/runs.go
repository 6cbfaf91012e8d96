package api

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/aemoncannon/far-search-mode/internal/model"
)

var ErrNoRuns = errors.New("no workflow runs found")

type RunsFilter struct {
	Branch  string
	Status  string
	PerPage int
}

func (f RunsFilter) QueryString() string {
	v := url.Values{}
	if f.Branch != "" {
		v.Set("branch", f.Branch)
	}
	if f.Status != "" {
		v.Set("status", f.Status)
	}
	if f.PerPage > 0 {
		v.Set("per_page", strconv.Itoa(f.PerPage))
	} else {
		v.Set("per_page", "30")
	}
	return "?" + v.Encode()
}

func (c *Client) ListRuns(ctx context.Context, filter RunsFilter) (*model.RunsResponse, error) {
	var resp model.RunsResponse
	if err := c.Get(ctx, "actions/runs"+filter.QueryString(), &resp); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return &resp, nil
}

func (c *Client) GetRun(ctx context.Context, runID int64) (*model.Run, error) {
	var run model.Run
	if err := c.Get(ctx, fmt.Sprintf("actions/runs/%d", runID), &run); err != nil {
		return nil, fmt.Errorf("get run %d: %w", runID, err)
	}
	return &run, nil
}

// LatestRun returns the most recent completed run.
func (c *Client) LatestRun(ctx context.Context) (*model.Run, error) {
	resp, err := c.ListRuns(ctx, RunsFilter{Status: "completed", PerPage: 1})
	if err != nil {
		return nil, err
	}
	if len(resp.Runs) == 0 {
		return nil, ErrNoRuns
	}
	return &resp.Runs[0], nil
}
