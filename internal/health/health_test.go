package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHealth_AllChecksPass(t *testing.T) {
	s := NewServer("127.0.0.1:0", "v1")
	s.RegisterCheck("rpc", func(context.Context) (bool, string) { return true, "block 42" })

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("unexpected content type %q", ct)
	}

	var status Status
	if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if status.Status != "ok" || status.Version != "v1" {
		t.Errorf("unexpected status %+v", status)
	}
	if c := status.Checks["rpc"]; !c.Healthy || c.Message != "block 42" {
		t.Errorf("unexpected rpc check %+v", c)
	}
}

func TestHealth_FailingCheckDegrades(t *testing.T) {
	s := NewServer("127.0.0.1:0", "")
	s.RegisterCheck("rpc", func(context.Context) (bool, string) { return true, "" })
	s.RegisterCheck("wallet", func(context.Context) (bool, string) { return false, "not connected" })

	tests := []struct {
		path string
		code int
	}{
		{"/health", http.StatusServiceUnavailable},
		{"/ready", http.StatusServiceUnavailable},
		{"/live", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if rec.Code != tt.code {
				t.Errorf("expected %d, got %d", tt.code, rec.Code)
			}
		})
	}
}

func TestServer_StartStop(t *testing.T) {
	s := NewServer("127.0.0.1:0", "")
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	resp, err := http.Get("http://" + s.Addr().String() + "/live")
	if err != nil {
		t.Fatalf("GET /live: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		t.Errorf("Stop: %v", err)
	}
}
