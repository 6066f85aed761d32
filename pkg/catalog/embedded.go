package catalog

import (
	"io/fs"
	"sync"
)

// EmbeddedSet maps device targets to embedded kernel filesystems. A
// registered fs.FS holds one file per kernel, named "<kernel>.spv" at
// its root; builds register their go:embed trees here at init time.
type EmbeddedSet struct {
	mu      sync.RWMutex
	targets map[string]fs.FS
}

// NewEmbeddedSet returns an empty set.
func NewEmbeddedSet() *EmbeddedSet {
	return &EmbeddedSet{targets: make(map[string]fs.FS)}
}

// Register associates an embedded filesystem with a device target,
// replacing any previous registration.
func (e *EmbeddedSet) Register(target string, fsys fs.FS) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.targets[target] = fsys
}

// Targets lists the registered device targets.
func (e *EmbeddedSet) Targets() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]string, 0, len(e.targets))
	for t := range e.targets {
		out = append(out, t)
	}
	return out
}

// Read returns the embedded binary for the kernel under the target,
// if both are present.
func (e *EmbeddedSet) Read(target, kernel string) ([]byte, bool) {
	e.mu.RLock()
	fsys, ok := e.targets[target]
	e.mu.RUnlock()
	if !ok {
		return nil, false
	}
	data, err := fs.ReadFile(fsys, kernel+kernelExt)
	if err != nil {
		return nil, false
	}
	return data, true
}
