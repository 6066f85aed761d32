package catalog

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"testing/fstest"

	"github.com/samcharles93/levelz/internal/logger"
)

func writeKernel(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func countingCache(target string, calls *atomic.Int32) *TargetCache {
	return NewTargetCache(func() string {
		calls.Add(1)
		return target
	})
}

func TestEnvVar(t *testing.T) {
	t.Parallel()

	tests := []struct{ kernel, want string }{
		{"fitness", "LEVELZ_FITNESS_SPIRV"},
		{"spiking-neuron", "LEVELZ_SPIKING_NEURON_SPIRV"},
		{"pso", "LEVELZ_PSO_SPIRV"},
	}
	for _, tc := range tests {
		if got := EnvVar(tc.kernel); got != tc.want {
			t.Errorf("EnvVar(%q) = %q, want %q", tc.kernel, got, tc.want)
		}
	}
}

func TestResolveExplicitPath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	data := []byte{0x03, 0x02, 0x23, 0x07, 0x01}
	path := filepath.Join(dir, "custom.spv")
	writeKernel(t, path, data)

	c := New(WithBaseDir(dir), WithLogger(logger.Discard()))
	res, err := c.Resolve("fitness", path)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Tier != TierExplicitPath {
		t.Fatalf("tier = %v", res.Tier)
	}
	if !bytes.Equal(res.Data, data) {
		t.Fatalf("data mismatch")
	}
	if res.Path != path {
		t.Fatalf("path = %q", res.Path)
	}
}

func TestResolveExplicitPathMissingFallsThrough(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	data := []byte("flat")
	writeKernel(t, filepath.Join(dir, "kernels", "fitness.spv"), data)

	c := New(WithBaseDir(dir), WithLogger(logger.Discard()))
	res, err := c.Resolve("fitness", filepath.Join(dir, "does-not-exist.spv"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Tier != TierContentFlat {
		t.Fatalf("tier = %v, want content directory", res.Tier)
	}
}

func TestResolveEnvOverride(t *testing.T) {
	dir := t.TempDir()
	envData := []byte("from-env")
	envPath := filepath.Join(dir, "override.spv")
	writeKernel(t, envPath, envData)
	// A flat content hit exists too; the env tier must win.
	writeKernel(t, filepath.Join(dir, "kernels", "fitness.spv"), []byte("flat"))
	t.Setenv("LEVELZ_FITNESS_SPIRV", envPath)

	c := New(WithBaseDir(dir), WithLogger(logger.Discard()))
	res, err := c.Resolve("fitness", "")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Tier != TierEnv {
		t.Fatalf("tier = %v, want environment override", res.Tier)
	}
	if !bytes.Equal(res.Data, envData) {
		t.Fatalf("data = %q", res.Data)
	}
}

func TestResolveFlatSkipsTargetDetection(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeKernel(t, filepath.Join(dir, "kernels", "fitness.spv"), []byte("flat"))
	writeKernel(t, filepath.Join(dir, "kernels", "bmg-g21", "fitness.spv"), []byte("per-target"))

	var calls atomic.Int32
	c := New(
		WithBaseDir(dir),
		WithTargetCache(countingCache("bmg-g21", &calls)),
		WithLogger(logger.Discard()),
	)
	res, err := c.Resolve("fitness", "")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Tier != TierContentFlat {
		t.Fatalf("tier = %v", res.Tier)
	}
	if n := calls.Load(); n != 0 {
		t.Fatalf("target detection ran %d times for a flat hit", n)
	}
}

func TestResolveContentTarget(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	data := []byte("per-target")
	writeKernel(t, filepath.Join(dir, "kernels", "bmg-g21", "fitness.spv"), data)

	var calls atomic.Int32
	c := New(
		WithBaseDir(dir),
		WithTargetCache(countingCache("bmg-g21", &calls)),
		WithLogger(logger.Discard()),
	)
	res, err := c.Resolve("fitness", "")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Tier != TierContentTarget {
		t.Fatalf("tier = %v", res.Tier)
	}
	if !bytes.Equal(res.Data, data) {
		t.Fatal("data mismatch")
	}

	// Target detection is cached across resolutions.
	if _, err := c.Resolve("fitness", ""); err != nil {
		t.Fatalf("second Resolve: %v", err)
	}
	if n := calls.Load(); n != 1 {
		t.Fatalf("target detection ran %d times, want 1", n)
	}
}

func TestResolveWorkingDir(t *testing.T) {
	work := t.TempDir()
	t.Chdir(work)
	data := []byte("cwd")
	writeKernel(t, filepath.Join(work, "fitness.spv"), data)

	c := New(WithBaseDir(t.TempDir()), WithLogger(logger.Discard()))
	res, err := c.Resolve("fitness", "")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Tier != TierWorkingDir {
		t.Fatalf("tier = %v", res.Tier)
	}
	if !bytes.Equal(res.Data, data) {
		t.Fatal("data mismatch")
	}
}

func TestResolveEmbeddedTarget(t *testing.T) {
	t.Parallel()

	data := []byte{0x03, 0x02, 0x23, 0x07}
	emb := NewEmbeddedSet()
	emb.Register("bmg-g21", fstest.MapFS{
		"fitness.spv": &fstest.MapFile{Data: data},
	})

	tc := NewTargetCache(nil)
	tc.Set("bmg-g21")
	c := New(
		WithBaseDir(t.TempDir()),
		WithTargetCache(tc),
		WithEmbedded(emb),
		WithLogger(logger.Discard()),
	)
	res, err := c.Resolve("fitness", "")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Tier != TierEmbeddedTarget {
		t.Fatalf("tier = %v", res.Tier)
	}
	if !bytes.Equal(res.Data, data) {
		t.Fatal("embedded bytes altered")
	}
}

func TestResolveEmbeddedFallback(t *testing.T) {
	t.Parallel()

	data := []byte("fallback-variant")
	emb := NewEmbeddedSet()
	emb.Register(FallbackTarget, fstest.MapFS{
		"fitness.spv": &fstest.MapFile{Data: data},
	})

	tc := NewTargetCache(nil)
	tc.Set("bmg-g21")
	c := New(
		WithBaseDir(t.TempDir()),
		WithTargetCache(tc),
		WithEmbedded(emb),
		WithLogger(logger.Discard()),
	)
	res, err := c.Resolve("fitness", "")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Tier != TierEmbeddedFallback {
		t.Fatalf("tier = %v", res.Tier)
	}
	if !bytes.Equal(res.Data, data) {
		t.Fatal("data mismatch")
	}
}

func TestResolveNotFound(t *testing.T) {
	t.Parallel()

	c := New(WithBaseDir(t.TempDir()), WithLogger(logger.Discard()))
	_, err := c.Resolve("fitness", "")
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if nf.Kernel != "fitness" {
		t.Errorf("Kernel = %q", nf.Kernel)
	}
	msg := err.Error()
	for _, want := range []string{"LEVELZ_FITNESS_SPIRV", "fitness.spv"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q: %s", want, msg)
		}
	}
}
