package compute

import (
	"sync"
	"unsafe"

	"github.com/samcharles93/levelz/pkg/driver"
)

// DeviceMemory is anything that exposes a device-visible allocation,
// typically a *Buffer.
type DeviceMemory interface {
	Pointer() unsafe.Pointer
}

// Kernel owns a compiled entry-point handle. Arguments are bound
// positionally, 0-based, and each slot may be re-set independently
// before a launch.
//
// Scalar arguments are passed by their exact declared byte width. No
// check is made that the width matches the kernel's actual parameter
// type; a mismatch is undefined behavior at the native boundary.
type Kernel struct {
	api    driver.API
	handle driver.KernelHandle
	name   string

	mu       sync.Mutex
	released bool
}

// Name returns the entry-point name.
func (k *Kernel) Name() string { return k.name }

// SetGroupSize configures the local work-group shape used by
// subsequent launches. Device maxima are not checked here.
func (k *Kernel) SetGroupSize(x, y, z uint32) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.released {
		return ErrKernelReleased
	}
	return driver.Check(k.api, "zeKernelSetGroupSize", k.api.KernelSetGroupSize(k.handle, x, y, z))
}

// SetArgBuffer binds a device allocation to the argument slot.
func (k *Kernel) SetArgBuffer(index int, mem DeviceMemory) error {
	return k.SetArgPointer(index, mem.Pointer())
}

// SetArgPointer binds a raw device pointer to the argument slot.
func (k *Kernel) SetArgPointer(index int, p unsafe.Pointer) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.released {
		return ErrKernelReleased
	}
	return driver.Check(k.api, "zeKernelSetArgumentValue", k.api.KernelSetArgBuffer(k.handle, uint32(index), p))
}

// SetArgInt32 binds a 32-bit signed scalar to the argument slot.
func (k *Kernel) SetArgInt32(index int, v int32) error {
	return k.setScalar(index, unsafe.Pointer(&v), 4)
}

// SetArgUint32 binds a 32-bit unsigned scalar to the argument slot.
func (k *Kernel) SetArgUint32(index int, v uint32) error {
	return k.setScalar(index, unsafe.Pointer(&v), 4)
}

// SetArgFloat32 binds a 32-bit float scalar to the argument slot.
func (k *Kernel) SetArgFloat32(index int, v float32) error {
	return k.setScalar(index, unsafe.Pointer(&v), 4)
}

func (k *Kernel) setScalar(index int, p unsafe.Pointer, size uint64) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.released {
		return ErrKernelReleased
	}
	return driver.Check(k.api, "zeKernelSetArgumentValue", k.api.KernelSetArgValue(k.handle, uint32(index), size, p))
}

// Close destroys the kernel handle. Idempotent.
func (k *Kernel) Close() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.released {
		return nil
	}
	k.released = true
	if k.handle == 0 {
		return nil
	}
	err := driver.Check(k.api, "zeKernelDestroy", k.api.KernelDestroy(k.handle))
	k.handle = 0
	return err
}
