package driver

import (
	"errors"
	"fmt"
)

// ErrUnavailable is returned by Open when the binary was built without
// the levelzero tag or the loader library cannot be reached.
var ErrUnavailable = errors.New("driver: level zero loader not available")

// CallError is a failed native call: the operation, its result code,
// and the driver's last-error text when one was available.
type CallError struct {
	Op     string
	Code   Result
	Detail string
}

func (e *CallError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s failed: 0x%x (%s)", e.Op, int32(e.Code), e.Code)
	}
	return fmt.Sprintf("%s failed: 0x%x (%s): %s", e.Op, int32(e.Code), e.Code, e.Detail)
}

// Check converts a native result into an error, attaching the driver's
// last-error description. Returns nil on success.
func Check(api API, op string, r Result) error {
	if r.Ok() {
		return nil
	}
	return &CallError{Op: op, Code: r, Detail: api.LastError()}
}
