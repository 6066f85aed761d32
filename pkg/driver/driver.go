// Package driver is the boundary to the native Level Zero loader. It
// exposes the fixed C-ABI surface the compute layer needs as a narrow
// Go interface, so the rest of the module can run against the real
// binding (build tag levelzero), the unavailable stub, or the Mock.
package driver

import "unsafe"

// Opaque native handles. The driver owns the referenced objects; these
// values are only tokens passed back across the ABI.
type (
	DriverHandle  uintptr
	DeviceHandle  uintptr
	ContextHandle uintptr
	QueueHandle   uintptr
	ListHandle    uintptr
	ModuleHandle  uintptr
	KernelHandle  uintptr
)

// TimeoutInfinite blocks a synchronize call until the queue drains.
const TimeoutInfinite = ^uint64(0)

// API is the native driver surface. Every call returns a Result;
// ResultSuccess means the out-parameters are valid. Implementations
// must be safe for use from a single goroutine per handle chain;
// cross-chain concurrency is the driver's problem, not ours.
type API interface {
	Init() Result

	Drivers() ([]DriverHandle, Result)
	Devices(drv DriverHandle) ([]DeviceHandle, Result)
	DeviceName(dev DeviceHandle) (string, Result)

	ContextCreate(drv DriverHandle) (ContextHandle, Result)
	ContextDestroy(ctx ContextHandle) Result

	QueueCreate(ctx ContextHandle, dev DeviceHandle) (QueueHandle, Result)
	QueueDestroy(q QueueHandle) Result
	QueueExecute(q QueueHandle, list ListHandle) Result
	QueueSynchronize(q QueueHandle, timeoutNS uint64) Result

	ListCreate(ctx ContextHandle, dev DeviceHandle) (ListHandle, Result)
	ListDestroy(list ListHandle) Result
	ListReset(list ListHandle) Result
	ListClose(list ListHandle) Result
	AppendLaunch(list ListHandle, k KernelHandle, gx, gy, gz uint32) Result
	AppendBarrier(list ListHandle) Result
	AppendCopy(list ListHandle, dst, src unsafe.Pointer, size uint64) Result

	ModuleCreate(ctx ContextHandle, dev DeviceHandle, spirv []byte, logCap int) (ModuleHandle, string, Result)
	ModuleDestroy(m ModuleHandle) Result

	KernelCreate(m ModuleHandle, name string) (KernelHandle, Result)
	KernelDestroy(k KernelHandle) Result
	KernelSetGroupSize(k KernelHandle, x, y, z uint32) Result
	KernelSetArgValue(k KernelHandle, index uint32, size uint64, p unsafe.Pointer) Result
	KernelSetArgBuffer(k KernelHandle, index uint32, p unsafe.Pointer) Result

	AllocShared(ctx ContextHandle, dev DeviceHandle, size, alignment uint64) (unsafe.Pointer, Result)
	Free(ctx ContextHandle, p unsafe.Pointer) Result

	// LastError returns the driver's most recent error description,
	// or "" when none is available.
	LastError() string
}
