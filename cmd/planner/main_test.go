package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/travel-planner/internal/domain"
	"github.com/pkordes/travel-planner/internal/storage"
)

// fakeBins answers the three bin store routes for a single bin "bin1".
func fakeBins(t *testing.T) *httptest.Server {
	t.Helper()
	var (
		mu     sync.Mutex
		record json.RawMessage
	)
	respond := func(w http.ResponseWriter, status int) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]any{"record": record, "metadata": map[string]string{"id": "bin1"}})
	}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /bins", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		record, _ = io.ReadAll(r.Body)
		respond(w, http.StatusCreated)
	})
	mux.HandleFunc("GET /bins/bin1/latest", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		respond(w, http.StatusOK)
	})
	mux.HandleFunc("PUT /bins/bin1", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		record, _ = io.ReadAll(r.Body)
		respond(w, http.StatusOK)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func run(t *testing.T, args ...string) string {
	t.Helper()
	stderrLogs = io.Discard
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())
	return out.String()
}

func seed(t *testing.T, path string, doc domain.Document) {
	t.Helper()
	kv, err := storage.OpenSQLiteKV(path)
	require.NoError(t, err)
	defer kv.Close()
	require.NoError(t, storage.NewLocalStore(kv, slog.New(slog.DiscardHandler)).Save(context.Background(), doc))
}

func rememberedShareID(t *testing.T, path string) (string, bool) {
	t.Helper()
	kv, err := storage.OpenSQLiteKV(path)
	require.NoError(t, err)
	defer kv.Close()
	return storage.NewLocalStore(kv, slog.New(slog.DiscardHandler)).ShareID(context.Background())
}

func TestShow_PrintsDaysInOrder(t *testing.T) {
	t.Setenv("BIN_URL", fakeBins(t).URL)
	path := filepath.Join(t.TempDir(), "planner.db")
	doc := domain.NewDocument()
	doc.TripTitle = "Bangkok"
	doc.UpsertActivity(domain.Activity{ID: 1, Date: "2024-01-11", Time: "10:00", Name: "Market"})
	doc.UpsertActivity(domain.Activity{ID: 2, Date: "2024-01-10", Time: "09:00", Name: "Temple", Location: "Wat Pho"})
	seed(t, path, doc)

	out := run(t, "--db", path, "show")

	assert.Contains(t, out, "Bangkok")
	assert.Contains(t, out, "Temple @ Wat Pho")
	first := strings.Index(out, "2024-01-10")
	second := strings.Index(out, "2024-01-11")
	require.NotEqual(t, -1, first)
	require.NotEqual(t, -1, second)
	assert.Less(t, first, second)
}

func TestShow_EmptyTrip(t *testing.T) {
	t.Setenv("BIN_URL", fakeBins(t).URL)

	out := run(t, "--db", filepath.Join(t.TempDir(), "planner.db"), "show")

	assert.Contains(t, out, "(untitled trip)")
	assert.Contains(t, out, "No activities yet.")
}

func TestShareThenLeave(t *testing.T) {
	t.Setenv("BIN_URL", fakeBins(t).URL)
	path := filepath.Join(t.TempDir(), "planner.db")

	out := run(t, "--db", path, "share")
	assert.Contains(t, out, "Share id: bin1")
	id, ok := rememberedShareID(t, path)
	require.True(t, ok)
	assert.Equal(t, "bin1", id)

	out = run(t, "--db", path, "show")
	assert.Contains(t, out, "Shared as bin1")

	run(t, "--db", path, "leave")
	_, ok = rememberedShareID(t, path)
	assert.False(t, ok)
}

func TestInvalidConfigFails(t *testing.T) {
	t.Setenv("POLL_INTERVAL", "1s")
	stderrLogs = io.Discard
	cmd := newRootCmd()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"--db", ":memory:", "show"})

	err := cmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "POLL_INTERVAL")
}
