//go:build linux

package hwdetect

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// DRM render nodes occupy minor numbers 128..191.
const (
	renderMinorFirst = 128
	renderMinorLast  = 191
)

// renderNodePresent reports whether any DRM render node exists. A
// missing /dev/dri means no GPU driver is loaded, so the Level Zero
// probe can be skipped entirely.
func renderNodePresent() bool {
	for minor := renderMinorFirst; minor <= renderMinorLast; minor++ {
		path := fmt.Sprintf("/dev/dri/renderD%d", minor)
		if err := unix.Access(path, unix.F_OK); err == nil {
			return true
		}
	}
	return false
}
