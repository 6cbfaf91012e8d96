package api

import (
	"context"
	"io"
	"os"
	"testing"
)

func TestIntegrationLatestRunLogs(t *testing.T) {
	if os.Getenv("FAR_SEARCH_INTEGRATION") == "" {
		t.Skip("Set FAR_SEARCH_INTEGRATION=1 to run integration tests")
	}

	client, err := NewClient("cli", "cli")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	ctx := context.Background()
	run, err := client.LatestRun(ctx)
	if err != nil {
		t.Fatalf("LatestRun: %v", err)
	}
	t.Logf("Latest run #%d %s [%s] attempt %d", run.RunNumber, run.DisplayTitle, run.Conclusion, run.RunAttempt)

	body, err := client.DownloadRunAttemptLogs(ctx, run.ID, run.RunAttempt)
	if err != nil {
		t.Fatalf("DownloadRunAttemptLogs: %v", err)
	}
	defer body.Close()

	n, _ := io.Copy(io.Discard, body)
	if n == 0 {
		t.Error("expected a non-empty log archive")
	}
}
