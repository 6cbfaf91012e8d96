package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	ghAPI "github.com/cli/go-gh/v2/pkg/api"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://api.github.com"

	// requestRate stays under the authenticated limit of 5000/hour.
	requestRate = 1.2
)

type Client struct {
	rest    *ghAPI.RESTClient
	http    *http.Client
	baseURL string
	owner   string
	repo    string
	limiter *rate.Limiter

	mu   sync.Mutex
	rate RateLimit
}

type RateLimit struct {
	Remaining int
	Limit     int
	Reset     int64
}

func NewClient(owner, repo string) (*Client, error) {
	rest, err := ghAPI.DefaultRESTClient()
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub client (is gh authenticated?): %w", err)
	}
	httpClient, err := ghAPI.DefaultHTTPClient()
	if err != nil {
		return nil, fmt.Errorf("create http client: %w", err)
	}
	return &Client{
		rest:    rest,
		http:    httpClient,
		baseURL: defaultBaseURL,
		owner:   owner,
		repo:    repo,
		limiter: rate.NewLimiter(rate.Limit(requestRate), 1),
	}, nil
}

func (c *Client) repoPath(path string) string {
	return fmt.Sprintf("repos/%s/%s/%s", c.owner, c.repo, path)
}

func (c *Client) Get(ctx context.Context, path string, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	return c.rest.DoWithContext(ctx, http.MethodGet, c.repoPath(path), nil, result)
}

// RateLimit returns the quota reported by the last log download.
func (c *Client) RateLimit() RateLimit {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rate
}

func (c *Client) recordRate(resp *http.Response) {
	rl := ParseRateLimit(resp)
	if rl.Limit == 0 {
		return
	}
	c.mu.Lock()
	c.rate = rl
	c.mu.Unlock()
}

func ParseRateLimit(resp *http.Response) RateLimit {
	rl := RateLimit{}
	if resp == nil {
		return rl
	}
	rl.Remaining, _ = strconv.Atoi(resp.Header.Get("X-RateLimit-Remaining"))
	rl.Limit, _ = strconv.Atoi(resp.Header.Get("X-RateLimit-Limit"))
	rl.Reset, _ = strconv.ParseInt(resp.Header.Get("X-RateLimit-Reset"), 10, 64)
	return rl
}
