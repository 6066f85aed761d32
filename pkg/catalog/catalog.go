// Package catalog resolves logical kernel names to SPIR-V binary bytes
// through an ordered, device-target-aware search over explicit paths,
// environment overrides, content directories, and embedded resources.
package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/samcharles93/levelz/internal/logger"
)

const (
	envPrefix  = "LEVELZ_"
	envSuffix  = "_SPIRV"
	contentDir = "kernels"
	kernelExt  = ".spv"

	// FallbackTarget is the broadest-compatible device target. Every
	// embedded kernel ships a variant for it.
	FallbackTarget = "tgllp"
)

// Tier identifies which step of the search produced a resolution.
type Tier int

const (
	TierExplicitPath Tier = iota + 1
	TierEnv
	TierContentFlat
	TierContentTarget
	TierWorkingDir
	TierEmbeddedTarget
	TierEmbeddedFallback
)

func (t Tier) String() string {
	switch t {
	case TierExplicitPath:
		return "explicit path"
	case TierEnv:
		return "environment override"
	case TierContentFlat:
		return "content directory"
	case TierContentTarget:
		return "content directory (per-target)"
	case TierWorkingDir:
		return "working directory"
	case TierEmbeddedTarget:
		return "embedded (target)"
	case TierEmbeddedFallback:
		return "embedded (fallback)"
	default:
		return fmt.Sprintf("tier %d", int(t))
	}
}

// Resolution is a successful lookup: the binary plus where it came
// from, for provenance logging.
type Resolution struct {
	Data []byte
	Tier Tier
	Path string
}

// NotFoundError reports an exhausted search. Its message names the
// exact environment variable and file name the caller could supply.
type NotFoundError struct {
	Kernel string
	EnvVar string
	File   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("catalog: no binary for kernel %q: set %s to a .spv path or place %s in the %s directory",
		e.Kernel, e.EnvVar, e.File, contentDir)
}

// EnvVar returns the per-kernel override variable name,
// LEVELZ_<NAME>_SPIRV with the kernel name uppercased.
func EnvVar(kernel string) string {
	name := strings.ToUpper(strings.ReplaceAll(kernel, "-", "_"))
	return envPrefix + name + envSuffix
}

// Catalog performs tiered kernel-binary resolution. The zero value is
// not usable; construct with New.
type Catalog struct {
	baseDir  string
	targets  *TargetCache
	embedded *EmbeddedSet
	log      logger.Logger
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithBaseDir overrides the content root, which defaults to the
// executable's directory.
func WithBaseDir(dir string) Option { return func(c *Catalog) { c.baseDir = dir } }

// WithTargetCache supplies the device-target source consulted by the
// target-aware tiers.
func WithTargetCache(tc *TargetCache) Option { return func(c *Catalog) { c.targets = tc } }

// WithEmbedded supplies the embedded binary set.
func WithEmbedded(e *EmbeddedSet) Option { return func(c *Catalog) { c.embedded = e } }

// WithLogger sets the catalog logger.
func WithLogger(l logger.Logger) Option { return func(c *Catalog) { c.log = l } }

// New creates a Catalog. Without options it searches next to the
// executable, has no embedded binaries, and assumes the fallback
// target.
func New(opts ...Option) *Catalog {
	c := &Catalog{}
	for _, opt := range opts {
		opt(c)
	}
	if c.baseDir == "" {
		if exe, err := os.Executable(); err == nil {
			c.baseDir = filepath.Dir(exe)
		} else {
			c.baseDir = "."
		}
	}
	if c.targets == nil {
		c.targets = NewTargetCache(nil)
	}
	if c.embedded == nil {
		c.embedded = NewEmbeddedSet()
	}
	if c.log == nil {
		c.log = logger.Default()
	}
	return c
}

// Resolve finds the binary for a logical kernel name. Tiers are tried
// in order and the first hit wins; the device target is fetched only
// when a target-aware tier is reached. explicitPath may be empty.
func (c *Catalog) Resolve(kernel, explicitPath string) (*Resolution, error) {
	file := kernel + kernelExt

	if explicitPath != "" {
		if res, ok := c.readFile(TierExplicitPath, explicitPath); ok {
			return res, nil
		}
	}

	envVar := EnvVar(kernel)
	if p := os.Getenv(envVar); p != "" {
		if res, ok := c.readFile(TierEnv, p); ok {
			return res, nil
		}
	}

	if res, ok := c.readFile(TierContentFlat, filepath.Join(c.baseDir, contentDir, file)); ok {
		return res, nil
	}

	target := c.targets.Target()
	if res, ok := c.readFile(TierContentTarget, filepath.Join(c.baseDir, contentDir, target, file)); ok {
		return res, nil
	}

	if res, ok := c.readFile(TierWorkingDir, file); ok {
		return res, nil
	}

	if data, ok := c.embedded.Read(target, kernel); ok {
		return c.found(&Resolution{Data: data, Tier: TierEmbeddedTarget, Path: target + "/" + file}), nil
	}
	if target != FallbackTarget {
		if data, ok := c.embedded.Read(FallbackTarget, kernel); ok {
			return c.found(&Resolution{Data: data, Tier: TierEmbeddedFallback, Path: FallbackTarget + "/" + file}), nil
		}
	}

	return nil, &NotFoundError{Kernel: kernel, EnvVar: envVar, File: file}
}

func (c *Catalog) readFile(tier Tier, path string) (*Resolution, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	return c.found(&Resolution{Data: data, Tier: tier, Path: path}), true
}

func (c *Catalog) found(r *Resolution) *Resolution {
	c.log.Debug("kernel binary resolved", "tier", r.Tier.String(), "path", r.Path, "bytes", len(r.Data))
	return r
}
