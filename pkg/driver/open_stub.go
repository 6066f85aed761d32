//go:build !levelzero

package driver

// Open fails when the binary was built without the levelzero tag.
func Open() (API, error) {
	return nil, ErrUnavailable
}

// Available reports whether a native binding was compiled in.
func Available() bool { return false }
