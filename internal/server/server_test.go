package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/catalystkit/docsession/pkg/sessionstore"
	"github.com/catalystkit/docsession/pkg/sessionstore/codec"
)

func newTestServer() (*Server, sessionstore.Backend) {
	backend := sessionstore.NewMemoryBackend(0)
	store := sessionstore.NewStore(backend)
	return NewServer(&ServerOptions{Port: 0, Store: store, Backend: backend}), backend
}

func TestHealthEndpoint(t *testing.T) {
	s, _ := newTestServer()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	s.Engine.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestSweepEndpoint(t *testing.T) {
	s, backend := newTestServer()
	ctx := context.Background()

	past := time.Now().Add(-time.Hour).Unix()
	if err := s.Options.Store.Put(ctx, "user:stale", codec.String("x")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Options.Store.Put(ctx, "expires:stale", codec.Int(past)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/sweep", nil)
	s.Engine.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	_, found, err := backend.FindProjected(ctx, "stale")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found {
		t.Error("stale session should have been swept")
	}
}
