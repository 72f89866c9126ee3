package di

import (
	"sync"
	"sync/atomic"
	"testing"
)

type greeter struct{ name string }

func TestFactoryRunsOnce(t *testing.T) {
	c := NewContainer()
	var calls atomic.Int32
	token := NewToken[*greeter]("greeter")

	RegisterToken(c, token, func(ServiceRegistry) *greeter {
		calls.Add(1)
		return &greeter{name: "crypto devs"}
	})

	var wg sync.WaitGroup
	results := make([]*greeter, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = GetToken(c, token)
		}(i)
	}
	wg.Wait()

	if calls.Load() != 1 {
		t.Fatalf("factory called %d times", calls.Load())
	}
	for _, g := range results {
		if g != results[0] {
			t.Fatal("expected the same instance for every Get")
		}
	}
}

func TestFactoryResolvesDependencies(t *testing.T) {
	c := NewContainer()
	c.Register("name", "whitelist")

	token := NewToken[*greeter]("greeter")
	RegisterToken(c, token, func(sr ServiceRegistry) *greeter {
		return &greeter{name: sr.Get("name").(string)}
	})

	if got := GetToken(c, token).name; got != "whitelist" {
		t.Errorf("name = %q", got)
	}
}

func TestOverrideBeforeResolve(t *testing.T) {
	c := NewContainer()
	token := NewToken[string]("presenter")

	RegisterToken(c, token, func(ServiceRegistry) string { return "console" })
	RegisterToken(c, token, func(ServiceRegistry) string { return "tui" })

	if got := GetToken(c, token); got != "tui" {
		t.Errorf("got %q, want last registration", got)
	}
}

func TestHasAndMissing(t *testing.T) {
	c := NewContainer()
	if c.Has("missing") {
		t.Error("Has should be false for unknown names")
	}

	defer func() {
		if recover() == nil {
			t.Error("expected panic for unregistered service")
		}
	}()
	c.Get("missing")
}
