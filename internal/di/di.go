// Package di provides a small lazy service container with typed tokens.
package di

import (
	"fmt"
	"sync"
)

// ServiceRegistry resolves services by name.
type ServiceRegistry interface {
	Get(name string) any
	Has(name string) bool
}

// Container registers services and resolves them.
type Container interface {
	ServiceRegistry
	Register(name string, instance any)
	RegisterFactory(name string, factory func(ServiceRegistry) any)
}

type entry struct {
	once     sync.Once
	factory  func(ServiceRegistry) any
	instance any
}

type container struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

// NewContainer creates an empty container.
func NewContainer() Container {
	return &container{entries: make(map[string]*entry)}
}

// Register stores a ready instance under name.
func (c *container) Register(name string, instance any) {
	e := &entry{instance: instance}
	e.once.Do(func() {})

	c.mu.Lock()
	c.entries[name] = e
	c.mu.Unlock()
}

// RegisterFactory stores a factory invoked once, on first Get.
func (c *container) RegisterFactory(name string, factory func(ServiceRegistry) any) {
	c.mu.Lock()
	c.entries[name] = &entry{factory: factory}
	c.mu.Unlock()
}

// Get resolves name, panicking when nothing is registered.
func (c *container) Get(name string) any {
	c.mu.RLock()
	e, ok := c.entries[name]
	c.mu.RUnlock()

	if !ok {
		panic(fmt.Sprintf("di: service %q not registered", name))
	}

	e.once.Do(func() {
		e.instance = e.factory(c)
	})
	return e.instance
}

// Has reports whether name is registered.
func (c *container) Has(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.entries[name]
	return ok
}

// Token is a typed service key.
type Token[T any] struct {
	name string
}

// NewToken creates a token for the service named name.
func NewToken[T any](name string) Token[T] {
	return Token[T]{name: name}
}

// Name returns the registry key of the token.
func (t Token[T]) Name() string {
	return t.name
}

// RegisterToken registers a typed factory for token.
func RegisterToken[T any](c Container, token Token[T], factory func(ServiceRegistry) T) {
	c.RegisterFactory(token.name, func(sr ServiceRegistry) any {
		return factory(sr)
	})
}

// GetToken resolves a typed service.
func GetToken[T any](sr ServiceRegistry, token Token[T]) T {
	return sr.Get(token.name).(T)
}
