package catalog

import (
	"sync"
	"sync/atomic"
)

// TargetCache holds the process-wide resolved device target. The value
// is set exactly once, either by an explicit Set override or by running
// the detect function the first time a target-aware resolution tier
// needs it. Reads after that are lock-free.
type TargetCache struct {
	v      atomic.Pointer[string]
	mu     sync.Mutex
	detect func() string
}

// NewTargetCache creates a cache that calls detect at most once. A nil
// detect yields the fallback target.
func NewTargetCache(detect func() string) *TargetCache {
	if detect == nil {
		detect = func() string { return FallbackTarget }
	}
	return &TargetCache{detect: detect}
}

// Set pins the target, overriding any past or future detection.
func (c *TargetCache) Set(target string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.v.Store(&target)
}

// Target returns the cached target, detecting on first use.
func (c *TargetCache) Target() string {
	if t := c.v.Load(); t != nil {
		return *t
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if t := c.v.Load(); t != nil {
		return *t
	}
	t := c.detect()
	c.v.Store(&t)
	return t
}
