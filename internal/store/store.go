// Package store persists run history and the boundary download cache in a
// local SQLite database.
package store

import (
	"context"
	"time"
)

// RunStatus tracks the lifecycle of a recorded CLI invocation.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run is one recorded CLI invocation.
type Run struct {
	ID         string     `json:"id"`
	Command    string     `json:"command"`
	Args       []string   `json:"args,omitempty"`
	Status     RunStatus  `json:"status"`
	Artifacts  []string   `json:"artifacts,omitempty"`
	Error      string     `json:"error,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status  RunStatus `json:"status,omitempty"`
	Command string    `json:"command,omitempty"`
	Limit   int       `json:"limit,omitempty"`
	Offset  int       `json:"offset,omitempty"`
}

// Boundary is a cached boundary download: where it came from, where it
// landed on disk, and the ETag it was fetched with.
type Boundary struct {
	URL       string    `json:"url"`
	Path      string    `json:"path"`
	ETag      string    `json:"etag,omitempty"`
	FetchedAt time.Time `json:"fetched_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Store defines the persistence interface for run history and the
// boundary cache.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, command string, args []string) (*Run, error)
	CompleteRun(ctx context.Context, runID string, artifacts []string) error
	FailRun(ctx context.Context, runID string, runErr error) error
	GetRun(ctx context.Context, runID string) (*Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]Run, error)

	// Boundary cache
	GetBoundary(ctx context.Context, url string) (*Boundary, error)
	PutBoundary(ctx context.Context, url, path, etag string, ttl time.Duration) error
	DeleteExpired(ctx context.Context) (int, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
