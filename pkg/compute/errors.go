package compute

import (
	"errors"
	"fmt"

	"github.com/samcharles93/levelz/pkg/driver"
)

// Closed-object errors are distinct from native failures: no driver
// call is attempted once an owner has been torn down.
var (
	ErrSessionClosed  = errors.New("compute: session closed")
	ErrModuleReleased = errors.New("compute: module released")
	ErrKernelReleased = errors.New("compute: kernel released")
	ErrBufferFreed    = errors.New("compute: buffer freed")
)

// BuildError is a failed module compilation. The driver reports
// SPIR-V validation problems only through the build log, so the log
// text travels with the result code.
type BuildError struct {
	Code   driver.Result
	Detail string
	Log    string
}

func (e *BuildError) Error() string {
	msg := fmt.Sprintf("module build failed: 0x%x (%s)", int32(e.Code), e.Code)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Log != "" {
		msg += "\nbuild log:\n" + e.Log
	}
	return msg
}
