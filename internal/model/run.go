package model

import "time"

// Run is a GitHub Actions workflow run whose logs can be searched.
type Run struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	DisplayTitle string    `json:"display_title"`
	Status       string    `json:"status"`
	Conclusion   string    `json:"conclusion"`
	RunNumber    int       `json:"run_number"`
	RunAttempt   int       `json:"run_attempt"`
	Event        string    `json:"event"`
	HeadBranch   string    `json:"head_branch"`
	HeadSHA      string    `json:"head_sha"`
	Actor        Actor     `json:"actor"`
	CreatedAt    time.Time `json:"created_at"`
}

type Actor struct {
	Login string `json:"login"`
}

type RunsResponse struct {
	TotalCount int   `json:"total_count"`
	Runs       []Run `json:"workflow_runs"`
}

// Attempt returns the run attempt, treating a missing value as the first.
func (r Run) Attempt() int {
	if r.RunAttempt < 1 {
		return 1
	}
	return r.RunAttempt
}

func (r Run) ShortSHA() string {
	if len(r.HeadSHA) >= 7 {
		return r.HeadSHA[:7]
	}
	return r.HeadSHA
}
