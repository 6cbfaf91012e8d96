package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// DownloadRunAttemptLogs downloads the log archive for a run attempt.
// GitHub answers with a 302 redirect to a short-lived archive URL.
func (c *Client) DownloadRunAttemptLogs(ctx context.Context, runID int64, attempt int) (io.ReadCloser, error) {
	return c.downloadLogs(ctx, c.repoPath(fmt.Sprintf("actions/runs/%d/attempts/%d/logs", runID, attempt)))
}

func (c *Client) downloadLogs(ctx context.Context, apiPath string) (io.ReadCloser, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	// Copy so the redirect policy does not leak into the shared client.
	httpClient := *c.http
	httpClient.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}

	url := fmt.Sprintf("%s/%s", c.baseURL, apiPath)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build log request: %w", err)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("log request failed: %w", err)
	}
	c.recordRate(resp)

	// The archive URL is pre-signed; it must be fetched without auth headers.
	if resp.StatusCode == http.StatusFound || resp.StatusCode == http.StatusTemporaryRedirect {
		location := resp.Header.Get("Location")
		resp.Body.Close()
		if location == "" {
			return nil, fmt.Errorf("redirect with no Location header")
		}
		redirectReq, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
		if err != nil {
			return nil, fmt.Errorf("create redirect request: %w", err)
		}
		resp, err = http.DefaultClient.Do(redirectReq)
		if err != nil {
			return nil, fmt.Errorf("follow redirect: %w", err)
		}
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %d downloading logs", resp.StatusCode)
	}

	return resp.Body, nil
}
