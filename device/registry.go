package device

import (
	"fmt"
	"sort"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Backend names accepted by Select and the -backend flag.
const (
	BackendAuto   = "auto"
	BackendVulkan = "vulkan"
	BackendMetal  = "metal"
	BackendDX12   = "dx12"
	BackendGL     = "gl"
	// BackendEmpty is the hal Empty variant: the software rasterizer when
	// hal/allbackends is linked, the noop device when hal/noop is.
	BackendEmpty = "empty"
)

// BackendFactory creates a hal backend.
type BackendFactory func() (hal.Backend, error)

var (
	registryMu sync.RWMutex
	backends   = make(map[string]BackendFactory)
	// First available wins.
	backendPriority = []string{BackendVulkan, BackendMetal, BackendDX12, BackendGL, BackendEmpty}
)

func init() {
	for name, variant := range map[string]gputypes.Backend{
		BackendVulkan: gputypes.BackendVulkan,
		BackendMetal:  gputypes.BackendMetal,
		BackendDX12:   gputypes.BackendDX12,
		BackendGL:     gputypes.BackendGL,
		BackendEmpty:  gputypes.BackendEmpty,
	} {
		Register(name, variantFactory(variant))
	}
}

// variantFactory looks the variant up in the hal registry, falling back to
// a registered hal factory.
func variantFactory(v gputypes.Backend) BackendFactory {
	return func() (hal.Backend, error) {
		if b, ok := hal.GetBackend(v); ok {
			return b, nil
		}
		b, err := hal.CreateBackend(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrBackendNotAvailable, v, err)
		}
		return b, nil
	}
}

// Register registers a backend factory under name, replacing any previous one.
func Register(name string, factory BackendFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	backends[name] = factory
}

// Unregister removes a backend. Used by tests.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(backends, name)
}

// IsRegistered reports whether name has a factory.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := backends[name]
	return ok
}

// Available returns the names whose factory currently yields a backend,
// sorted.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(backends))
	for name, factory := range backends {
		if b, err := factory(); err == nil && b != nil {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Get creates the backend registered under name.
func Get(name string) (hal.Backend, error) {
	registryMu.RLock()
	factory, ok := backends[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrBackendNotAvailable, name)
	}
	b, err := factory()
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, fmt.Errorf("%w: %q", ErrBackendNotAvailable, name)
	}
	return b, nil
}

// Default returns the highest priority backend that is available, then
// any other registered one.
func Default() (hal.Backend, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	for _, name := range backendPriority {
		if factory, ok := backends[name]; ok {
			if b, err := factory(); err == nil && b != nil {
				return b, nil
			}
		}
	}
	for _, factory := range backends {
		if b, err := factory(); err == nil && b != nil {
			return b, nil
		}
	}
	return nil, ErrBackendNotAvailable
}

// MustDefault returns Default or panics.
func MustDefault() hal.Backend {
	b, err := Default()
	if err != nil {
		panic(err)
	}
	return b
}

// Select resolves a backend name. Empty and "auto" mean Default.
func Select(name string) (hal.Backend, error) {
	if name == "" || name == BackendAuto {
		return Default()
	}
	return Get(name)
}
