// Package credential stores the single API key the dashboard authenticates
// with.
package credential

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
)

// ErrNotFound is returned by Get when no key has been stored.
var ErrNotFound = errors.New("credential not found")

// EnvVar is the environment variable that overrides the stored key.
const EnvVar = "TUBEDASH_API_KEY"

// Store is an opaque get/set/clear slot for the API key.
type Store interface {
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, value string) error
	Clear(ctx context.Context) error
}

// Memory is an in-process Store.
type Memory struct {
	mu    sync.Mutex
	value string
	set   bool
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Get(_ context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.set {
		return "", ErrNotFound
	}
	return m.value, nil
}

func (m *Memory) Set(_ context.Context, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.value, m.set = value, true
	return nil
}

func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.value, m.set = "", false
	return nil
}

// envOverride reads the key from an environment variable before falling
// back to the wrapped store. Writes always go to the wrapped store.
type envOverride struct {
	Store
	name   string
	lookup func(string) (string, bool)
}

// WithEnvOverride wraps s so that a non-blank value in the named environment
// variable takes precedence for Get.
func WithEnvOverride(s Store, name string) Store {
	return &envOverride{Store: s, name: name, lookup: os.LookupEnv}
}

func (e *envOverride) Get(ctx context.Context) (string, error) {
	if v, ok := e.lookup(e.name); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v), nil
	}
	return e.Store.Get(ctx)
}

// Lookup returns the stored key, treating a missing or blank key as "".
func Lookup(ctx context.Context, s Store) (string, error) {
	v, err := s.Get(ctx)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(v), nil
}

// Mask hides all but the last four characters of a key for display.
func Mask(key string) string {
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}
