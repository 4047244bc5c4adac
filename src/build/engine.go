// Package build compiles the networking library and its test binaries for a
// resolved backend, forwarding dependency search paths and feature flags to
// the underlying build tool.
package build

import (
	"fmt"
	"sort"
	"sync"

	"github.com/sofmeright/netrig/src/backend"
)

// Engine maps one backend to its compiler feature flags.
type Engine interface {
	Name() backend.Name
	FeatureFlags(spec backend.Spec) ([]string, error)
}

var (
	registryMu sync.RWMutex
	registry   = map[backend.Name]func() Engine{}
)

// Register adds an engine constructor to the global registry.
// Called from init() in each engine file.
func Register(name backend.Name, constructor func() Engine) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("build: duplicate engine registration: %s", name))
	}
	registry[name] = constructor
}

// Get returns a new instance of the engine for the named backend.
func Get(name backend.Name) (Engine, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	ctor, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("build: no engine for backend %q: %w", name, backend.ErrUnknownBackend)
	}
	return ctor(), nil
}

// All returns sorted names of all registered engines.
func All() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, string(name))
	}
	sort.Strings(names)
	return names
}
