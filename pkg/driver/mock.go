package driver

import (
	"slices"
	"sync"
	"unsafe"
)

// Mock is an in-memory API implementation for tests. It hands out fake
// handles, backs shared allocations with Go memory, and records every
// call so tests can assert ordering, teardown, and leak-freedom.
//
// Configure failure injection by op name before use:
//
//	m := driver.NewMock("Intel(R) Arc(TM) B580 Graphics")
//	m.Fail["zeCommandQueueCreate"] = driver.ResultErrorOutOfHostMemory
type Mock struct {
	// Fail maps a native op name to the result it should return.
	// Ops not present succeed.
	Fail map[string]Result
	// ErrorText is returned by LastError.
	ErrorText string
	// BuildLog is returned by ModuleCreate, on success and failure.
	BuildLog string
	// KernelNames lists the entry points present in created modules.
	// Empty means every requested name exists.
	KernelNames []string

	mu       sync.Mutex
	names    []string
	calls    []string
	next     uintptr
	allocs   map[unsafe.Pointer][]byte
	launches [][3]uint32
}

const mockDeviceBase = 0x1000

// NewMock creates a Mock exposing one driver with the given devices.
// No names means enumeration succeeds but yields zero devices.
func NewMock(deviceNames ...string) *Mock {
	return &Mock{
		Fail:   make(map[string]Result),
		names:  deviceNames,
		next:   1,
		allocs: make(map[unsafe.Pointer][]byte),
	}
}

func (m *Mock) step(op string) Result {
	m.calls = append(m.calls, op)
	if r, ok := m.Fail[op]; ok {
		return r
	}
	return ResultSuccess
}

func (m *Mock) handle() uintptr {
	m.next++
	return m.next
}

// Calls returns the recorded op names in call order.
func (m *Mock) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.calls)
}

// CallCount returns how many times op was invoked.
func (m *Mock) CallCount(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c == op {
			n++
		}
	}
	return n
}

// OutstandingAllocs returns the number of shared allocations that have
// not been freed.
func (m *Mock) OutstandingAllocs() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.allocs)
}

// Launches returns the group counts of every appended kernel launch.
func (m *Mock) Launches() [][3]uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.launches)
}

func (m *Mock) Init() Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.step("zeInit")
}

func (m *Mock) Drivers() ([]DriverHandle, Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r := m.step("zeDriverGet"); !r.Ok() {
		return nil, r
	}
	return []DriverHandle{1}, ResultSuccess
}

func (m *Mock) Devices(DriverHandle) ([]DeviceHandle, Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r := m.step("zeDeviceGet"); !r.Ok() {
		return nil, r
	}
	devs := make([]DeviceHandle, len(m.names))
	for i := range m.names {
		devs[i] = DeviceHandle(mockDeviceBase + i)
	}
	return devs, ResultSuccess
}

func (m *Mock) DeviceName(dev DeviceHandle) (string, Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r := m.step("zeDeviceGetProperties"); !r.Ok() {
		return "", r
	}
	i := int(dev) - mockDeviceBase
	if i < 0 || i >= len(m.names) {
		return "", ResultErrorInvalidNullHandle
	}
	return m.names[i], ResultSuccess
}

func (m *Mock) ContextCreate(DriverHandle) (ContextHandle, Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r := m.step("zeContextCreate"); !r.Ok() {
		return 0, r
	}
	return ContextHandle(m.handle()), ResultSuccess
}

func (m *Mock) ContextDestroy(ContextHandle) Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.step("zeContextDestroy")
}

func (m *Mock) QueueCreate(ContextHandle, DeviceHandle) (QueueHandle, Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r := m.step("zeCommandQueueCreate"); !r.Ok() {
		return 0, r
	}
	return QueueHandle(m.handle()), ResultSuccess
}

func (m *Mock) QueueDestroy(QueueHandle) Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.step("zeCommandQueueDestroy")
}

func (m *Mock) QueueExecute(QueueHandle, ListHandle) Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.step("zeCommandQueueExecuteCommandLists")
}

func (m *Mock) QueueSynchronize(QueueHandle, uint64) Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.step("zeCommandQueueSynchronize")
}

func (m *Mock) ListCreate(ContextHandle, DeviceHandle) (ListHandle, Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r := m.step("zeCommandListCreate"); !r.Ok() {
		return 0, r
	}
	return ListHandle(m.handle()), ResultSuccess
}

func (m *Mock) ListDestroy(ListHandle) Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.step("zeCommandListDestroy")
}

func (m *Mock) ListReset(ListHandle) Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.step("zeCommandListReset")
}

func (m *Mock) ListClose(ListHandle) Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.step("zeCommandListClose")
}

func (m *Mock) AppendLaunch(_ ListHandle, _ KernelHandle, gx, gy, gz uint32) Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r := m.step("zeCommandListAppendLaunchKernel"); !r.Ok() {
		return r
	}
	m.launches = append(m.launches, [3]uint32{gx, gy, gz})
	return ResultSuccess
}

func (m *Mock) AppendBarrier(ListHandle) Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.step("zeCommandListAppendBarrier")
}

func (m *Mock) AppendCopy(_ ListHandle, dst, src unsafe.Pointer, size uint64) Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r := m.step("zeCommandListAppendMemoryCopy"); !r.Ok() {
		return r
	}
	copy(unsafe.Slice((*byte)(dst), size), unsafe.Slice((*byte)(src), size))
	return ResultSuccess
}

func (m *Mock) ModuleCreate(ContextHandle, DeviceHandle, []byte, int) (ModuleHandle, string, Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r := m.step("zeModuleCreate"); !r.Ok() {
		return 0, m.BuildLog, r
	}
	return ModuleHandle(m.handle()), m.BuildLog, ResultSuccess
}

func (m *Mock) ModuleDestroy(ModuleHandle) Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.step("zeModuleDestroy")
}

func (m *Mock) KernelCreate(_ ModuleHandle, name string) (KernelHandle, Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r := m.step("zeKernelCreate"); !r.Ok() {
		return 0, r
	}
	if len(m.KernelNames) > 0 && !slices.Contains(m.KernelNames, name) {
		return 0, ResultErrorInvalidKernelName
	}
	return KernelHandle(m.handle()), ResultSuccess
}

func (m *Mock) KernelDestroy(KernelHandle) Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.step("zeKernelDestroy")
}

func (m *Mock) KernelSetGroupSize(KernelHandle, uint32, uint32, uint32) Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.step("zeKernelSetGroupSize")
}

func (m *Mock) KernelSetArgValue(KernelHandle, uint32, uint64, unsafe.Pointer) Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.step("zeKernelSetArgumentValue")
}

func (m *Mock) KernelSetArgBuffer(KernelHandle, uint32, unsafe.Pointer) Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.step("zeKernelSetArgumentValue")
}

func (m *Mock) AllocShared(_ ContextHandle, _ DeviceHandle, size, _ uint64) (unsafe.Pointer, Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r := m.step("zeMemAllocShared"); !r.Ok() {
		return nil, r
	}
	if size == 0 {
		size = 1
	}
	buf := make([]byte, size)
	p := unsafe.Pointer(&buf[0])
	m.allocs[p] = buf
	return p, ResultSuccess
}

func (m *Mock) Free(_ ContextHandle, p unsafe.Pointer) Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r := m.step("zeMemFree"); !r.Ok() {
		return r
	}
	if _, ok := m.allocs[p]; !ok {
		return ResultErrorInvalidArgument
	}
	delete(m.allocs, p)
	return ResultSuccess
}

func (m *Mock) LastError() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ErrorText
}
