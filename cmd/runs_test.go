package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/housing-eda/internal/store"
)

func TestFormatRunsList(t *testing.T) {
	start := time.Date(2026, 3, 10, 9, 15, 0, 0, time.UTC)
	finished := start.Add(3 * time.Second)

	runs := []store.Run{
		{
			ID:         "abc12345-6789-0000-0000-000000000000",
			Command:    "map",
			Args:       []string{"--houses", "houses.csv"},
			Status:     store.RunStatusComplete,
			Artifacts:  []string{"data/map.html", "data/map.png"},
			StartedAt:  start,
			FinishedAt: &finished,
		},
		{
			ID:        "def12345-6789-0000-0000-000000000000",
			Command:   "explore",
			Status:    store.RunStatusRunning,
			StartedAt: start.Add(time.Minute),
		},
	}

	var buf bytes.Buffer
	formatRunsList(&buf, runs)

	output := buf.String()
	assert.Contains(t, output, "ID")
	assert.Contains(t, output, "COMMAND")
	assert.Contains(t, output, "STATUS")
	assert.Contains(t, output, "abc12345")
	assert.Contains(t, output, "map")
	assert.Contains(t, output, "complete")
	assert.Contains(t, output, "2026-03-10 09:15")
	assert.Contains(t, output, "3s")
	assert.Contains(t, output, "explore")
	assert.Contains(t, output, "running")
	// Unfinished runs show a dash instead of a duration.
	assert.Contains(t, output, "-")
}

func TestFormatRunsList_FailedRun(t *testing.T) {
	start := time.Date(2026, 3, 10, 9, 15, 0, 0, time.UTC)
	finished := start.Add(time.Second)

	runs := []store.Run{
		{
			ID:         "fed12345-6789-0000-0000-000000000000",
			Command:    "corr",
			Status:     store.RunStatusFailed,
			Error:      "corr: need at least two numeric columns",
			StartedAt:  start,
			FinishedAt: &finished,
		},
	}

	var buf bytes.Buffer
	formatRunsList(&buf, runs)

	output := buf.String()
	assert.Contains(t, output, "failed")
	assert.Contains(t, output, "corr: need at least two numeric")
}

func TestTruncateID(t *testing.T) {
	assert.Equal(t, "abc12345", truncateID("abc12345-6789-0000-0000-000000000000"))
	assert.Equal(t, "short", truncateID("short"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 40))
	assert.Equal(t, "aaaaaaa...", truncate("aaaaaaaaaaaaaaaaaaaa", 10))
}
