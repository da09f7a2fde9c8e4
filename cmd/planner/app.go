package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/pkordes/travel-planner/internal/collab"
	"github.com/pkordes/travel-planner/internal/config"
	"github.com/pkordes/travel-planner/internal/remote"
	"github.com/pkordes/travel-planner/internal/storage"
)

const memoryDB = ":memory:"

// app bundles the pieces every command needs.
type app struct {
	cfg   config.PlannerConfig
	log   *slog.Logger
	ctrl  *collab.Controller
	local *storage.LocalStore
	// closeKV releases the local store.
	closeKV func() error
}

// openApp wires local storage, the bin store client and the controller.
// logOut receives the JSON logs.
func openApp(cfg config.PlannerConfig, logOut io.Writer) (*app, error) {
	logger := config.NewLogger(logOut, cfg.LogLevel)

	var (
		kv      storage.KV
		closeKV = func() error { return nil }
	)
	if cfg.DBPath == memoryDB {
		kv = storage.NewMemoryKV()
	} else {
		sqlite, err := storage.OpenSQLiteKV(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open local store: %w", err)
		}
		kv, closeKV = sqlite, sqlite.Close
	}

	client := remote.New(remote.Options{
		BaseURL:           cfg.BinURL,
		APIKey:            cfg.APIKey,
		RequestsPerSecond: cfg.RemoteRateLimit,
		Burst:             2,
	})

	local := storage.NewLocalStore(kv, logger)
	ctrl := collab.New(local, client, collab.Options{
		PollInterval: cfg.PollInterval,
		Logger:       logger,
	})

	return &app{cfg: cfg, log: logger, ctrl: ctrl, local: local, closeKV: closeKV}, nil
}

// load restores the document and reports a failed join to out without
// failing: the planner always falls back to the local document.
func (a *app) load(ctx context.Context, shareID string, out io.Writer) {
	_, mode, err := a.ctrl.LoadInitialDocument(ctx, shareID)
	if err != nil && shareID != "" {
		fmt.Fprintf(out, "Could not join shared trip %q: %v\n", shareID, err)
	}
	a.log.Debug("document loaded", "mode", mode.String())
}

func (a *app) Close() {
	a.ctrl.Close()
	if err := a.closeKV(); err != nil {
		a.log.Error("close local store", "error", err)
	}
}

// stderrLogs is where commands send JSON logs by default.
var stderrLogs io.Writer = os.Stderr
