package driver

import "fmt"

// Result is a native ze_result_t value. Zero is success.
type Result int32

const (
	ResultSuccess                 Result = 0
	ResultNotReady                Result = 1
	ResultErrorDeviceLost         Result = 0x70000001
	ResultErrorOutOfHostMemory    Result = 0x70000002
	ResultErrorOutOfDeviceMemory  Result = 0x70000003
	ResultErrorModuleBuildFailure Result = 0x70000004
	ResultErrorUninitialized      Result = 0x78000001
	ResultErrorUnsupportedFeature Result = 0x78000003
	ResultErrorInvalidArgument    Result = 0x78000004
	ResultErrorInvalidNullHandle  Result = 0x78000005
	ResultErrorInvalidNullPointer Result = 0x78000007
	ResultErrorInvalidSize        Result = 0x78000008
	ResultErrorInvalidKernelName  Result = 0x7800000d
	ResultErrorUnknown            Result = 0x7ffffffe
)

// Ok reports whether the call succeeded.
func (r Result) Ok() bool { return r == ResultSuccess }

func (r Result) String() string {
	switch r {
	case ResultSuccess:
		return "ZE_RESULT_SUCCESS"
	case ResultNotReady:
		return "ZE_RESULT_NOT_READY"
	case ResultErrorDeviceLost:
		return "ZE_RESULT_ERROR_DEVICE_LOST"
	case ResultErrorOutOfHostMemory:
		return "ZE_RESULT_ERROR_OUT_OF_HOST_MEMORY"
	case ResultErrorOutOfDeviceMemory:
		return "ZE_RESULT_ERROR_OUT_OF_DEVICE_MEMORY"
	case ResultErrorModuleBuildFailure:
		return "ZE_RESULT_ERROR_MODULE_BUILD_FAILURE"
	case ResultErrorUninitialized:
		return "ZE_RESULT_ERROR_UNINITIALIZED"
	case ResultErrorUnsupportedFeature:
		return "ZE_RESULT_ERROR_UNSUPPORTED_FEATURE"
	case ResultErrorInvalidArgument:
		return "ZE_RESULT_ERROR_INVALID_ARGUMENT"
	case ResultErrorInvalidNullHandle:
		return "ZE_RESULT_ERROR_INVALID_NULL_HANDLE"
	case ResultErrorInvalidNullPointer:
		return "ZE_RESULT_ERROR_INVALID_NULL_POINTER"
	case ResultErrorInvalidSize:
		return "ZE_RESULT_ERROR_INVALID_SIZE"
	case ResultErrorInvalidKernelName:
		return "ZE_RESULT_ERROR_INVALID_KERNEL_NAME"
	case ResultErrorUnknown:
		return "ZE_RESULT_ERROR_UNKNOWN"
	default:
		return fmt.Sprintf("ZE_RESULT(0x%x)", int32(r))
	}
}
