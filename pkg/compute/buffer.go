package compute

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/samcharles93/levelz/pkg/driver"
)

// bufferAlignment is the allocation alignment requested for shared
// memory. 64 bytes covers every vector width the kernels use.
const bufferAlignment = 64

// Element is the set of fixed-width types a Buffer can hold.
type Element interface {
	~int32 | ~uint32 | ~int64 | ~uint64 | ~float32 | ~float64
}

// Buffer is one unified (host and device visible) allocation sized for
// a fixed number of elements. It borrows the owning session's context;
// the session must outlive the buffer.
//
// Nothing prevents the host from mutating a buffer that is bound to an
// in-flight launch; keeping writes ordered against launches is the
// caller's responsibility.
type Buffer[T Element] struct {
	api   driver.API
	ctx   driver.ContextHandle
	ptr   unsafe.Pointer
	count int

	mu    sync.Mutex
	freed bool
}

// NewBuffer allocates shared memory for count elements of T on the
// session's device.
func NewBuffer[T Element](s *Session, count int) (*Buffer[T], error) {
	if count < 0 {
		return nil, fmt.Errorf("compute: negative buffer size %d", count)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrSessionClosed
	}

	var zero T
	size := uint64(count) * uint64(unsafe.Sizeof(zero))
	if size == 0 {
		// Zero-length buffers still hold a valid allocation so the
		// pointer can be bound as a kernel argument.
		size = uint64(unsafe.Sizeof(zero))
	}
	ptr, res := s.api.AllocShared(s.ctx, s.dev, size, bufferAlignment)
	if err := driver.Check(s.api, "zeMemAllocShared", res); err != nil {
		return nil, err
	}
	return &Buffer[T]{api: s.api, ctx: s.ctx, ptr: ptr, count: count}, nil
}

// Len returns the element capacity fixed at allocation.
func (b *Buffer[T]) Len() int { return b.count }

// ByteLen returns the capacity in bytes.
func (b *Buffer[T]) ByteLen() int {
	var zero T
	return b.count * int(unsafe.Sizeof(zero))
}

// Pointer returns the device-visible base address for argument binding.
func (b *Buffer[T]) Pointer() unsafe.Pointer { return b.ptr }

// Write copies src into the allocation. It fails if src exceeds the
// buffer's capacity.
func (b *Buffer[T]) Write(src []T) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.freed {
		return ErrBufferFreed
	}
	if len(src) > b.count {
		return fmt.Errorf("compute: write of %d elements exceeds buffer capacity %d", len(src), b.count)
	}
	if len(src) == 0 {
		return nil
	}
	copy(unsafe.Slice((*T)(b.ptr), b.count), src)
	return nil
}

// ReadTo copies the full buffer into dst. It fails if dst is smaller
// than the buffer.
func (b *Buffer[T]) ReadTo(dst []T) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.freed {
		return ErrBufferFreed
	}
	if len(dst) < b.count {
		return fmt.Errorf("compute: destination of %d elements smaller than buffer length %d", len(dst), b.count)
	}
	if b.count == 0 {
		return nil
	}
	copy(dst, unsafe.Slice((*T)(b.ptr), b.count))
	return nil
}

// ToSlice copies the full buffer into a fresh slice.
func (b *Buffer[T]) ToSlice() ([]T, error) {
	out := make([]T, b.count)
	if err := b.ReadTo(out); err != nil {
		return nil, err
	}
	return out, nil
}

// Free releases the allocation through the owning context. Idempotent.
func (b *Buffer[T]) Free() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.freed {
		return nil
	}
	b.freed = true
	err := driver.Check(b.api, "zeMemFree", b.api.Free(b.ctx, b.ptr))
	b.ptr = nil
	return err
}
