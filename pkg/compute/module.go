package compute

import (
	"fmt"
	"sync"

	"github.com/samcharles93/levelz/pkg/driver"
)

// Module owns one compiled binary handle. The Session it was compiled
// under must outlive it; the module holds no owning reference back.
type Module struct {
	api      driver.API
	handle   driver.ModuleHandle
	buildLog string

	mu       sync.Mutex
	released bool
}

// BuildLog returns the compiler log captured when the module was
// created. It may be non-empty even on success (warnings).
func (m *Module) BuildLog() string { return m.buildLog }

// Kernel creates the named entry point. Use TryKernel for entry points
// that are allowed to be absent.
func (m *Module) Kernel(name string) (*Kernel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.released {
		return nil, ErrModuleReleased
	}

	handle, res := m.api.KernelCreate(m.handle, name)
	if err := driver.Check(m.api, "zeKernelCreate", res); err != nil {
		return nil, fmt.Errorf("compute: kernel %q: %w", name, err)
	}
	return &Kernel{api: m.api, handle: handle, name: name}, nil
}

// TryKernel creates the named entry point, reporting absence instead
// of failing. Some modules ship optional auxiliary kernels (a required
// "count" variant plus an optional "matrix" one); callers detect
// absence here and select a fallback algorithm.
func (m *Module) TryKernel(name string) (*Kernel, bool) {
	k, err := m.Kernel(name)
	if err != nil {
		return nil, false
	}
	return k, true
}

// Close destroys the module handle. Idempotent.
func (m *Module) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.released {
		return nil
	}
	m.released = true
	if m.handle == 0 {
		return nil
	}
	err := driver.Check(m.api, "zeModuleDestroy", m.api.ModuleDestroy(m.handle))
	m.handle = 0
	return err
}
