package main

import (
	"context"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/sells-group/housing-eda/internal/store"
)

// openRunStore opens the run-history store. Recording is best-effort: any
// failure is logged and reported as nil so the command itself still runs.
func openRunStore(ctx context.Context) store.Store {
	if err := os.MkdirAll(filepath.Dir(cfg.Store.Path), 0o755); err != nil {
		zap.L().Warn("run store unavailable", zap.Error(err))
		return nil
	}
	st, err := store.NewSQLite(cfg.Store.Path)
	if err != nil {
		zap.L().Warn("run store unavailable", zap.Error(err))
		return nil
	}
	if err := st.Migrate(ctx); err != nil {
		zap.L().Warn("run store migrate failed", zap.Error(err))
		_ = st.Close()
		return nil
	}
	return st
}

// argsFromCommandLine returns everything after the subcommand name so a
// run row captures the invocation as typed.
func argsFromCommandLine() []string {
	if len(os.Args) > 2 {
		return os.Args[2:]
	}
	return nil
}

// recordStart inserts a running row for this invocation.
func recordStart(ctx context.Context, st store.Store, command string, args []string) *store.Run {
	if st == nil {
		return nil
	}
	run, err := st.CreateRun(ctx, command, args)
	if err != nil {
		zap.L().Warn("record run start failed", zap.Error(err))
		return nil
	}
	return run
}

// recordOutcome finishes the row as complete or failed.
func recordOutcome(ctx context.Context, st store.Store, run *store.Run, artifacts []string, runErr error) {
	if st == nil || run == nil {
		return
	}
	var err error
	if runErr != nil {
		err = st.FailRun(ctx, run.ID, runErr)
	} else {
		err = st.CompleteRun(ctx, run.ID, artifacts)
	}
	if err != nil {
		zap.L().Warn("record run outcome failed", zap.String("run_id", run.ID), zap.Error(err))
	}
}
