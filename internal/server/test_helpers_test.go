package server

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"flipquiz/internal/blob"
	"flipquiz/internal/config"
	"flipquiz/internal/store"
)

func newTestServer(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()
	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Skipf("skipping test; listen unavailable: %v", err)
	}
	ts := &httptest.Server{
		Listener: listener,
		Config:   &http.Server{Handler: handler},
	}
	ts.Start()
	return ts
}

type testEnv struct {
	srv   *Server
	store *store.Store
	blobs *blob.Memory
	ts    *httptest.Server
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.JWTSecret = "test-secret"
	cfg.RateLimitPerMinute = 0
	cfg.AutosaveIntervalMS = 50
	cfg.CanvasWidth = 60
	cfg.CanvasHeight = 40
	cfg.BroadcastWidth = 30
	cfg.BroadcastHeight = 20
	return cfg
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithConfig(t, testConfig())
}

func newTestEnvWithConfig(t *testing.T, cfg config.Config) *testEnv {
	t.Helper()
	blobs := blob.NewMemory("/blobs")
	st := store.New(store.NewMemoryRepository(), blobs, nil, store.Options{
		DefaultMaxParticipants: 3,
		MaxParticipantsLimit:   10,
	})
	srv := New(st, cfg)
	srv.ServeBlobs(blobs)
	ts := newTestServer(t, srv.Handler())
	t.Cleanup(ts.Close)
	return &testEnv{srv: srv, store: st, blobs: blobs, ts: ts}
}

// token signs uid in and returns a session token for it.
func (e *testEnv) token(t *testing.T, uid string) string {
	t.Helper()
	identity := store.Identity{UID: uid, DisplayName: "User " + uid, Email: uid + "@example.com"}
	if _, err := e.store.UpsertProfile(context.Background(), identity); err != nil {
		t.Fatalf("upsert profile: %v", err)
	}
	token, err := e.srv.Sessions().Issue(identity)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}
