//go:build levelzero

package driver

/*
#cgo LDFLAGS: -lze_loader

#include <stddef.h>
#include <stdint.h>
#include <stdlib.h>
#include <string.h>

// Minimal Level Zero forward declarations so building does not require
// the ze_api.h headers, only the loader library at link time.
typedef int ze_result_t;
typedef void* ze_driver_handle_t;
typedef void* ze_device_handle_t;
typedef void* ze_context_handle_t;
typedef void* ze_command_queue_handle_t;
typedef void* ze_command_list_handle_t;
typedef void* ze_module_handle_t;
typedef void* ze_module_build_log_handle_t;
typedef void* ze_kernel_handle_t;
typedef void* ze_event_handle_t;
typedef void* ze_fence_handle_t;

#define LZ_STRUCTURE_TYPE_DEVICE_PROPERTIES     0x3
#define LZ_STRUCTURE_TYPE_CONTEXT_DESC          0xd
#define LZ_STRUCTURE_TYPE_COMMAND_QUEUE_DESC    0xe
#define LZ_STRUCTURE_TYPE_COMMAND_LIST_DESC     0xf
#define LZ_STRUCTURE_TYPE_DEVICE_MEM_ALLOC_DESC 0x15
#define LZ_STRUCTURE_TYPE_HOST_MEM_ALLOC_DESC   0x16
#define LZ_STRUCTURE_TYPE_MODULE_DESC           0x17
#define LZ_STRUCTURE_TYPE_KERNEL_DESC           0x18

typedef struct {
	uint32_t stype;
	const void* pNext;
	uint32_t flags;
} lz_context_desc_t;

typedef struct {
	uint32_t stype;
	const void* pNext;
	uint32_t ordinal;
	uint32_t index;
	uint32_t flags;
	int mode;
	int priority;
} lz_command_queue_desc_t;

typedef struct {
	uint32_t stype;
	const void* pNext;
	uint32_t commandQueueGroupOrdinal;
	uint32_t flags;
} lz_command_list_desc_t;

typedef struct {
	uint32_t groupCountX;
	uint32_t groupCountY;
	uint32_t groupCountZ;
} lz_group_count_t;

typedef struct {
	uint32_t stype;
	const void* pNext;
	int format;
	size_t inputSize;
	const uint8_t* pInputModule;
	const char* pBuildFlags;
	const void* pConstants;
} lz_module_desc_t;

typedef struct {
	uint32_t stype;
	const void* pNext;
	uint32_t flags;
	const char* pKernelName;
} lz_kernel_desc_t;

typedef struct {
	uint32_t stype;
	const void* pNext;
	uint32_t flags;
	uint32_t ordinal;
} lz_device_mem_alloc_desc_t;

typedef struct {
	uint32_t stype;
	const void* pNext;
	uint32_t flags;
} lz_host_mem_alloc_desc_t;

typedef struct {
	uint32_t stype;
	const void* pNext;
	int type;
	uint32_t vendorId;
	uint32_t deviceId;
	uint32_t flags;
	uint32_t subdeviceId;
	uint32_t coreClockRate;
	uint64_t maxMemAllocSize;
	uint32_t maxHardwareContexts;
	uint32_t maxCommandQueuePriority;
	uint32_t numThreadsPerEU;
	uint32_t physicalEUSimdWidth;
	uint32_t numEUsPerSubslice;
	uint32_t numSubslicesPerSlice;
	uint32_t numSlices;
	uint64_t timerResolution;
	uint32_t timestampValidBits;
	uint32_t kernelTimestampValidBits;
	uint8_t uuid[16];
	char name[256];
} lz_device_properties_t;

extern ze_result_t zeInit(uint32_t flags);
extern ze_result_t zeDriverGet(uint32_t* pCount, ze_driver_handle_t* phDrivers);
extern ze_result_t zeDriverGetLastErrorDescription(ze_driver_handle_t hDriver, const char** ppString);
extern ze_result_t zeDeviceGet(ze_driver_handle_t hDriver, uint32_t* pCount, ze_device_handle_t* phDevices);
extern ze_result_t zeDeviceGetProperties(ze_device_handle_t hDevice, lz_device_properties_t* pProperties);
extern ze_result_t zeContextCreate(ze_driver_handle_t hDriver, const lz_context_desc_t* desc, ze_context_handle_t* phContext);
extern ze_result_t zeContextDestroy(ze_context_handle_t hContext);
extern ze_result_t zeCommandQueueCreate(ze_context_handle_t hContext, ze_device_handle_t hDevice, const lz_command_queue_desc_t* desc, ze_command_queue_handle_t* phCommandQueue);
extern ze_result_t zeCommandQueueDestroy(ze_command_queue_handle_t hCommandQueue);
extern ze_result_t zeCommandQueueExecuteCommandLists(ze_command_queue_handle_t hCommandQueue, uint32_t numCommandLists, ze_command_list_handle_t* phCommandLists, ze_fence_handle_t hFence);
extern ze_result_t zeCommandQueueSynchronize(ze_command_queue_handle_t hCommandQueue, uint64_t timeout);
extern ze_result_t zeCommandListCreate(ze_context_handle_t hContext, ze_device_handle_t hDevice, const lz_command_list_desc_t* desc, ze_command_list_handle_t* phCommandList);
extern ze_result_t zeCommandListDestroy(ze_command_list_handle_t hCommandList);
extern ze_result_t zeCommandListReset(ze_command_list_handle_t hCommandList);
extern ze_result_t zeCommandListClose(ze_command_list_handle_t hCommandList);
extern ze_result_t zeCommandListAppendLaunchKernel(ze_command_list_handle_t hCommandList, ze_kernel_handle_t hKernel, const lz_group_count_t* pLaunchFuncArgs, ze_event_handle_t hSignalEvent, uint32_t numWaitEvents, ze_event_handle_t* phWaitEvents);
extern ze_result_t zeCommandListAppendBarrier(ze_command_list_handle_t hCommandList, ze_event_handle_t hSignalEvent, uint32_t numWaitEvents, ze_event_handle_t* phWaitEvents);
extern ze_result_t zeCommandListAppendMemoryCopy(ze_command_list_handle_t hCommandList, void* dstptr, const void* srcptr, size_t size, ze_event_handle_t hSignalEvent, uint32_t numWaitEvents, ze_event_handle_t* phWaitEvents);
extern ze_result_t zeModuleCreate(ze_context_handle_t hContext, ze_device_handle_t hDevice, const lz_module_desc_t* desc, ze_module_handle_t* phModule, ze_module_build_log_handle_t* phBuildLog);
extern ze_result_t zeModuleDestroy(ze_module_handle_t hModule);
extern ze_result_t zeModuleBuildLogGetString(ze_module_build_log_handle_t hModuleBuildLog, size_t* pSize, char* pBuildLog);
extern ze_result_t zeModuleBuildLogDestroy(ze_module_build_log_handle_t hModuleBuildLog);
extern ze_result_t zeKernelCreate(ze_module_handle_t hModule, const lz_kernel_desc_t* desc, ze_kernel_handle_t* phKernel);
extern ze_result_t zeKernelDestroy(ze_kernel_handle_t hKernel);
extern ze_result_t zeKernelSetGroupSize(ze_kernel_handle_t hKernel, uint32_t groupSizeX, uint32_t groupSizeY, uint32_t groupSizeZ);
extern ze_result_t zeKernelSetArgumentValue(ze_kernel_handle_t hKernel, uint32_t argIndex, size_t argSize, const void* pArgValue);
extern ze_result_t zeMemAllocShared(ze_context_handle_t hContext, const lz_device_mem_alloc_desc_t* deviceDesc, const lz_host_mem_alloc_desc_t* hostDesc, size_t size, size_t alignment, ze_device_handle_t hDevice, void** pptr);
extern ze_result_t zeMemFree(ze_context_handle_t hContext, void* ptr);

static int lzDeviceName(ze_device_handle_t dev, char* out, size_t cap) {
	lz_device_properties_t props;
	memset(&props, 0, sizeof(props));
	props.stype = LZ_STRUCTURE_TYPE_DEVICE_PROPERTIES;
	ze_result_t res = zeDeviceGetProperties(dev, &props);
	if (res != 0) {
		return (int)res;
	}
	strncpy(out, props.name, cap - 1);
	out[cap - 1] = '\0';
	return 0;
}

static int lzContextCreate(ze_driver_handle_t drv, ze_context_handle_t* out) {
	lz_context_desc_t desc;
	memset(&desc, 0, sizeof(desc));
	desc.stype = LZ_STRUCTURE_TYPE_CONTEXT_DESC;
	return (int)zeContextCreate(drv, &desc, out);
}

static int lzQueueCreate(ze_context_handle_t ctx, ze_device_handle_t dev, ze_command_queue_handle_t* out) {
	lz_command_queue_desc_t desc;
	memset(&desc, 0, sizeof(desc));
	desc.stype = LZ_STRUCTURE_TYPE_COMMAND_QUEUE_DESC;
	return (int)zeCommandQueueCreate(ctx, dev, &desc, out);
}

static int lzListCreate(ze_context_handle_t ctx, ze_device_handle_t dev, ze_command_list_handle_t* out) {
	lz_command_list_desc_t desc;
	memset(&desc, 0, sizeof(desc));
	desc.stype = LZ_STRUCTURE_TYPE_COMMAND_LIST_DESC;
	return (int)zeCommandListCreate(ctx, dev, &desc, out);
}

static int lzAppendLaunch(ze_command_list_handle_t list, ze_kernel_handle_t kernel, uint32_t gx, uint32_t gy, uint32_t gz) {
	lz_group_count_t groups = { gx, gy, gz };
	return (int)zeCommandListAppendLaunchKernel(list, kernel, &groups, NULL, 0, NULL);
}

static int lzModuleCreate(ze_context_handle_t ctx, ze_device_handle_t dev, const uint8_t* spirv, size_t size, ze_module_handle_t* out, char* logBuf, size_t logCap) {
	lz_module_desc_t desc;
	memset(&desc, 0, sizeof(desc));
	desc.stype = LZ_STRUCTURE_TYPE_MODULE_DESC;
	desc.format = 0; // SPIR-V intermediate language
	desc.inputSize = size;
	desc.pInputModule = spirv;

	ze_module_build_log_handle_t logHandle = NULL;
	ze_result_t res = zeModuleCreate(ctx, dev, &desc, out, &logHandle);

	if (logBuf != NULL && logCap > 0) {
		logBuf[0] = '\0';
		if (logHandle != NULL) {
			size_t logSize = logCap;
			zeModuleBuildLogGetString(logHandle, &logSize, logBuf);
			logBuf[logCap - 1] = '\0';
		}
	}
	if (logHandle != NULL) {
		zeModuleBuildLogDestroy(logHandle);
	}
	return (int)res;
}

static int lzKernelCreate(ze_module_handle_t mod, const char* name, ze_kernel_handle_t* out) {
	lz_kernel_desc_t desc;
	memset(&desc, 0, sizeof(desc));
	desc.stype = LZ_STRUCTURE_TYPE_KERNEL_DESC;
	desc.pKernelName = name;
	return (int)zeKernelCreate(mod, &desc, out);
}

static int lzAllocShared(ze_context_handle_t ctx, ze_device_handle_t dev, size_t size, size_t alignment, void** out) {
	lz_device_mem_alloc_desc_t deviceDesc;
	lz_host_mem_alloc_desc_t hostDesc;
	memset(&deviceDesc, 0, sizeof(deviceDesc));
	memset(&hostDesc, 0, sizeof(hostDesc));
	deviceDesc.stype = LZ_STRUCTURE_TYPE_DEVICE_MEM_ALLOC_DESC;
	hostDesc.stype = LZ_STRUCTURE_TYPE_HOST_MEM_ALLOC_DESC;
	return (int)zeMemAllocShared(ctx, &deviceDesc, &hostDesc, size, alignment, dev, out);
}

static const char* lzLastError(ze_driver_handle_t drv) {
	const char* s = NULL;
	if (drv == NULL) {
		return "";
	}
	if (zeDriverGetLastErrorDescription(drv, &s) != 0 || s == NULL) {
		return "";
	}
	return s;
}

static int lzExecute(ze_command_queue_handle_t q, ze_command_list_handle_t list) {
	return (int)zeCommandQueueExecuteCommandLists(q, 1, &list, NULL);
}
*/
import "C"

import (
	"sync"
	"unsafe"
)

// moduleLogCap bounds the build log copied back from the driver.
// SPIR-V validation diagnostics fit comfortably; anything longer is
// truncated rather than reallocated.
const moduleLogCap = 16 * 1024

// zeAPI is the real binding to the Level Zero loader.
type zeAPI struct {
	mu         sync.Mutex
	lastDriver C.ze_driver_handle_t
}

func (z *zeAPI) Init() Result {
	return Result(C.zeInit(0))
}

func (z *zeAPI) Drivers() ([]DriverHandle, Result) {
	var count C.uint32_t
	if res := C.zeDriverGet(&count, nil); res != 0 {
		return nil, Result(res)
	}
	if count == 0 {
		return nil, ResultSuccess
	}
	raw := make([]C.ze_driver_handle_t, count)
	if res := C.zeDriverGet(&count, &raw[0]); res != 0 {
		return nil, Result(res)
	}
	z.mu.Lock()
	z.lastDriver = raw[0]
	z.mu.Unlock()
	out := make([]DriverHandle, count)
	for i, h := range raw[:count] {
		out[i] = DriverHandle(uintptr(h))
	}
	return out, ResultSuccess
}

func (z *zeAPI) Devices(drv DriverHandle) ([]DeviceHandle, Result) {
	h := C.ze_driver_handle_t(unsafe.Pointer(uintptr(drv)))
	var count C.uint32_t
	if res := C.zeDeviceGet(h, &count, nil); res != 0 {
		return nil, Result(res)
	}
	if count == 0 {
		return nil, ResultSuccess
	}
	raw := make([]C.ze_device_handle_t, count)
	if res := C.zeDeviceGet(h, &count, &raw[0]); res != 0 {
		return nil, Result(res)
	}
	out := make([]DeviceHandle, count)
	for i, d := range raw[:count] {
		out[i] = DeviceHandle(uintptr(d))
	}
	return out, ResultSuccess
}

func (z *zeAPI) DeviceName(dev DeviceHandle) (string, Result) {
	buf := make([]C.char, 256)
	res := C.lzDeviceName(C.ze_device_handle_t(unsafe.Pointer(uintptr(dev))), &buf[0], C.size_t(len(buf)))
	if res != 0 {
		return "", Result(res)
	}
	return C.GoString(&buf[0]), ResultSuccess
}

func (z *zeAPI) ContextCreate(drv DriverHandle) (ContextHandle, Result) {
	var out C.ze_context_handle_t
	res := C.lzContextCreate(C.ze_driver_handle_t(unsafe.Pointer(uintptr(drv))), &out)
	return ContextHandle(uintptr(out)), Result(res)
}

func (z *zeAPI) ContextDestroy(ctx ContextHandle) Result {
	return Result(C.zeContextDestroy(C.ze_context_handle_t(unsafe.Pointer(uintptr(ctx)))))
}

func (z *zeAPI) QueueCreate(ctx ContextHandle, dev DeviceHandle) (QueueHandle, Result) {
	var out C.ze_command_queue_handle_t
	res := C.lzQueueCreate(
		C.ze_context_handle_t(unsafe.Pointer(uintptr(ctx))),
		C.ze_device_handle_t(unsafe.Pointer(uintptr(dev))),
		&out,
	)
	return QueueHandle(uintptr(out)), Result(res)
}

func (z *zeAPI) QueueDestroy(q QueueHandle) Result {
	return Result(C.zeCommandQueueDestroy(C.ze_command_queue_handle_t(unsafe.Pointer(uintptr(q)))))
}

func (z *zeAPI) QueueExecute(q QueueHandle, list ListHandle) Result {
	return Result(C.lzExecute(
		C.ze_command_queue_handle_t(unsafe.Pointer(uintptr(q))),
		C.ze_command_list_handle_t(unsafe.Pointer(uintptr(list))),
	))
}

func (z *zeAPI) QueueSynchronize(q QueueHandle, timeoutNS uint64) Result {
	return Result(C.zeCommandQueueSynchronize(
		C.ze_command_queue_handle_t(unsafe.Pointer(uintptr(q))),
		C.uint64_t(timeoutNS),
	))
}

func (z *zeAPI) ListCreate(ctx ContextHandle, dev DeviceHandle) (ListHandle, Result) {
	var out C.ze_command_list_handle_t
	res := C.lzListCreate(
		C.ze_context_handle_t(unsafe.Pointer(uintptr(ctx))),
		C.ze_device_handle_t(unsafe.Pointer(uintptr(dev))),
		&out,
	)
	return ListHandle(uintptr(out)), Result(res)
}

func (z *zeAPI) ListDestroy(list ListHandle) Result {
	return Result(C.zeCommandListDestroy(C.ze_command_list_handle_t(unsafe.Pointer(uintptr(list)))))
}

func (z *zeAPI) ListReset(list ListHandle) Result {
	return Result(C.zeCommandListReset(C.ze_command_list_handle_t(unsafe.Pointer(uintptr(list)))))
}

func (z *zeAPI) ListClose(list ListHandle) Result {
	return Result(C.zeCommandListClose(C.ze_command_list_handle_t(unsafe.Pointer(uintptr(list)))))
}

func (z *zeAPI) AppendLaunch(list ListHandle, k KernelHandle, gx, gy, gz uint32) Result {
	return Result(C.lzAppendLaunch(
		C.ze_command_list_handle_t(unsafe.Pointer(uintptr(list))),
		C.ze_kernel_handle_t(unsafe.Pointer(uintptr(k))),
		C.uint32_t(gx), C.uint32_t(gy), C.uint32_t(gz),
	))
}

func (z *zeAPI) AppendBarrier(list ListHandle) Result {
	return Result(C.zeCommandListAppendBarrier(
		C.ze_command_list_handle_t(unsafe.Pointer(uintptr(list))), nil, 0, nil,
	))
}

func (z *zeAPI) AppendCopy(list ListHandle, dst, src unsafe.Pointer, size uint64) Result {
	return Result(C.zeCommandListAppendMemoryCopy(
		C.ze_command_list_handle_t(unsafe.Pointer(uintptr(list))),
		dst, src, C.size_t(size), nil, 0, nil,
	))
}

func (z *zeAPI) ModuleCreate(ctx ContextHandle, dev DeviceHandle, spirv []byte, logCap int) (ModuleHandle, string, Result) {
	if logCap <= 0 {
		logCap = moduleLogCap
	}
	logBuf := make([]C.char, logCap)
	var out C.ze_module_handle_t
	var input *C.uint8_t
	if len(spirv) > 0 {
		input = (*C.uint8_t)(unsafe.Pointer(&spirv[0]))
	}
	res := C.lzModuleCreate(
		C.ze_context_handle_t(unsafe.Pointer(uintptr(ctx))),
		C.ze_device_handle_t(unsafe.Pointer(uintptr(dev))),
		input, C.size_t(len(spirv)),
		&out, &logBuf[0], C.size_t(logCap),
	)
	return ModuleHandle(uintptr(out)), C.GoString(&logBuf[0]), Result(res)
}

func (z *zeAPI) ModuleDestroy(m ModuleHandle) Result {
	return Result(C.zeModuleDestroy(C.ze_module_handle_t(unsafe.Pointer(uintptr(m)))))
}

func (z *zeAPI) KernelCreate(m ModuleHandle, name string) (KernelHandle, Result) {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	var out C.ze_kernel_handle_t
	res := C.lzKernelCreate(C.ze_module_handle_t(unsafe.Pointer(uintptr(m))), cname, &out)
	return KernelHandle(uintptr(out)), Result(res)
}

func (z *zeAPI) KernelDestroy(k KernelHandle) Result {
	return Result(C.zeKernelDestroy(C.ze_kernel_handle_t(unsafe.Pointer(uintptr(k)))))
}

func (z *zeAPI) KernelSetGroupSize(k KernelHandle, x, y, zz uint32) Result {
	return Result(C.zeKernelSetGroupSize(
		C.ze_kernel_handle_t(unsafe.Pointer(uintptr(k))),
		C.uint32_t(x), C.uint32_t(y), C.uint32_t(zz),
	))
}

func (z *zeAPI) KernelSetArgValue(k KernelHandle, index uint32, size uint64, p unsafe.Pointer) Result {
	return Result(C.zeKernelSetArgumentValue(
		C.ze_kernel_handle_t(unsafe.Pointer(uintptr(k))),
		C.uint32_t(index), C.size_t(size), p,
	))
}

func (z *zeAPI) KernelSetArgBuffer(k KernelHandle, index uint32, p unsafe.Pointer) Result {
	// Buffer arguments pass the pointer value itself by pointer width.
	return Result(C.zeKernelSetArgumentValue(
		C.ze_kernel_handle_t(unsafe.Pointer(uintptr(k))),
		C.uint32_t(index), C.size_t(unsafe.Sizeof(p)), unsafe.Pointer(&p),
	))
}

func (z *zeAPI) AllocShared(ctx ContextHandle, dev DeviceHandle, size, alignment uint64) (unsafe.Pointer, Result) {
	var out unsafe.Pointer
	res := C.lzAllocShared(
		C.ze_context_handle_t(unsafe.Pointer(uintptr(ctx))),
		C.ze_device_handle_t(unsafe.Pointer(uintptr(dev))),
		C.size_t(size), C.size_t(alignment), &out,
	)
	return out, Result(res)
}

func (z *zeAPI) Free(ctx ContextHandle, p unsafe.Pointer) Result {
	return Result(C.zeMemFree(C.ze_context_handle_t(unsafe.Pointer(uintptr(ctx))), p))
}

func (z *zeAPI) LastError() string {
	z.mu.Lock()
	drv := z.lastDriver
	z.mu.Unlock()
	return C.GoString(C.lzLastError(drv))
}
