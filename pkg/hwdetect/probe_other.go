//go:build !linux

package hwdetect

// Only Linux exposes DRM render nodes; elsewhere the driver probe is
// the cheapest check available.
func renderNodePresent() bool { return true }
