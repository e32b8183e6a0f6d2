package workers

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestProcessStats_LogsUntilContextEnds(t *testing.T) {
	req := require.New(t)
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	worker := NewProcessStatsWorker(log, 20*time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	err := worker.Run(ctx)
	req.ErrorIs(err, context.DeadlineExceeded)

	var stats []string
	for _, line := range strings.Split(buf.String(), "\n") {
		if strings.Contains(line, `msg="Process stats"`) {
			stats = append(stats, line)
		}
	}
	req.NotEmpty(stats)
	req.Contains(stats[0], "rss_bytes=")
	req.Contains(stats[0], "cpu_percent=")
	req.NotContains(buf.String(), "Failed to collect self stats")
}
