package httpclient

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestNew_AppliesDefaultHeaders(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if got := r.Header.Get("X-Api-Key"); got != "secret" {
			t.Errorf("expected default header, got %q", got)
		}
		if got := r.Header.Get("User-Agent"); got != "whitelist-dapp/test" {
			t.Errorf("unexpected user agent %q", got)
		}
		if got := r.Header.Get("X-Override"); got != "caller" {
			t.Errorf("caller header must win, got %q", got)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, err := New(
		WithName("sepolia"),
		WithUserAgent("whitelist-dapp/test"),
		WithTimeout(2*time.Second),
		WithHeaders(map[string]string{
			"X-Api-Key":  "secret",
			"X-Override": "default",
		}),
	)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if client.Timeout != 2*time.Second {
		t.Errorf("expected timeout 2s, got %s", client.Timeout)
	}

	req, _ := http.NewRequest(http.MethodGet, server.URL, nil)
	req.Header.Set("X-Override", "caller")

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	if hits.Load() != 1 {
		t.Errorf("expected 1 request, got %d", hits.Load())
	}
}

func TestNew_TransportError(t *testing.T) {
	client, err := New(WithTimeout(500 * time.Millisecond))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	// Closed server: connection refused surfaces as an error, not a panic in the counter.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	if _, err := client.Get(url); err == nil {
		t.Error("expected error from closed server")
	}
}

func TestNew_ZeroTimeoutKeepsDefault(t *testing.T) {
	client, err := New(WithTimeout(0), WithName(""))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if client.Timeout != defaultRequestTimeout {
		t.Errorf("expected default timeout, got %s", client.Timeout)
	}
}
