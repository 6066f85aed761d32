package driver

import (
	"testing"
	"unsafe"
)

func TestMockEnumeration(t *testing.T) {
	t.Parallel()

	m := NewMock("Intel(R) Iris(R) Xe Graphics", "Intel(R) Arc(TM) A770 Graphics")

	drivers, res := m.Drivers()
	if !res.Ok() || len(drivers) != 1 {
		t.Fatalf("Drivers() = %v, %v", drivers, res)
	}
	devices, res := m.Devices(drivers[0])
	if !res.Ok() || len(devices) != 2 {
		t.Fatalf("Devices() = %v, %v", devices, res)
	}
	name, res := m.DeviceName(devices[1])
	if !res.Ok() || name != "Intel(R) Arc(TM) A770 Graphics" {
		t.Fatalf("DeviceName() = %q, %v", name, res)
	}
}

func TestMockFailInjection(t *testing.T) {
	t.Parallel()

	m := NewMock("dev")
	m.Fail["zeDriverGet"] = ResultErrorUninitialized

	if _, res := m.Drivers(); res != ResultErrorUninitialized {
		t.Fatalf("expected injected failure, got %v", res)
	}
	if m.CallCount("zeDriverGet") != 1 {
		t.Fatalf("call not recorded")
	}
}

func TestMockAllocBookkeeping(t *testing.T) {
	t.Parallel()

	m := NewMock("dev")
	p, res := m.AllocShared(1, 1, 64, 64)
	if !res.Ok() || p == nil {
		t.Fatalf("AllocShared failed: %v", res)
	}
	if m.OutstandingAllocs() != 1 {
		t.Fatalf("expected 1 outstanding alloc, got %d", m.OutstandingAllocs())
	}
	if res := m.Free(1, p); !res.Ok() {
		t.Fatalf("Free failed: %v", res)
	}
	if m.OutstandingAllocs() != 0 {
		t.Fatalf("expected 0 outstanding allocs, got %d", m.OutstandingAllocs())
	}
	if res := m.Free(1, p); res.Ok() {
		t.Fatal("double free should fail")
	}
}

func TestMockAppendCopy(t *testing.T) {
	t.Parallel()

	m := NewMock("dev")
	src := []byte{1, 2, 3, 4}
	dst := make([]byte, 4)
	res := m.AppendCopy(1, unsafe.Pointer(&dst[0]), unsafe.Pointer(&src[0]), 4)
	if !res.Ok() {
		t.Fatalf("AppendCopy failed: %v", res)
	}
	for i := range src {
		if dst[i] != src[i] {
			t.Fatalf("copy mismatch at %d: %d != %d", i, dst[i], src[i])
		}
	}
}

func TestMockKernelNameGate(t *testing.T) {
	t.Parallel()

	m := NewMock("dev")
	m.KernelNames = []string{"fitness_count"}

	if _, res := m.KernelCreate(1, "fitness_count"); !res.Ok() {
		t.Fatalf("expected known kernel to resolve: %v", res)
	}
	if _, res := m.KernelCreate(1, "fitness_matrix"); res != ResultErrorInvalidKernelName {
		t.Fatalf("expected ZE_RESULT_ERROR_INVALID_KERNEL_NAME, got %v", res)
	}
}
