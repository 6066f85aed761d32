package compute

import (
	"errors"
	"slices"
	"testing"

	"github.com/samcharles93/levelz/internal/logger"
	"github.com/samcharles93/levelz/pkg/driver"
)

func openTestSession(t *testing.T, m *driver.Mock) *Session {
	t.Helper()
	s, err := Open(m, WithLogger(logger.Discard()))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return s
}

func TestOpenCapturesDeviceName(t *testing.T) {
	t.Parallel()

	m := driver.NewMock("Intel(R) Arc(TM) B580 Graphics")
	s := openTestSession(t, m)
	defer s.Close()

	if s.DeviceName() != "Intel(R) Arc(TM) B580 Graphics" {
		t.Fatalf("DeviceName = %q", s.DeviceName())
	}
	if s.ID() == "" {
		t.Fatal("expected non-empty session id")
	}
}

func TestOpenUnwindsOnQueueFailure(t *testing.T) {
	t.Parallel()

	m := driver.NewMock("dev")
	m.Fail["zeCommandQueueCreate"] = driver.ResultErrorOutOfHostMemory

	if _, err := Open(m, WithLogger(logger.Discard())); err == nil {
		t.Fatal("expected Open to fail")
	}
	if n := m.CallCount("zeContextDestroy"); n != 1 {
		t.Fatalf("context not unwound: %d destroys", n)
	}
}

func TestOpenUnwindsOnListFailure(t *testing.T) {
	t.Parallel()

	m := driver.NewMock("dev")
	m.Fail["zeCommandListCreate"] = driver.ResultErrorOutOfHostMemory

	if _, err := Open(m, WithLogger(logger.Discard())); err == nil {
		t.Fatal("expected Open to fail")
	}
	if n := m.CallCount("zeCommandQueueDestroy"); n != 1 {
		t.Fatalf("queue not unwound: %d destroys", n)
	}
	if n := m.CallCount("zeContextDestroy"); n != 1 {
		t.Fatalf("context not unwound: %d destroys", n)
	}
}

func TestOpenDeviceIndexOutOfRange(t *testing.T) {
	t.Parallel()

	m := driver.NewMock()
	if _, err := Open(m, WithLogger(logger.Discard())); err == nil {
		t.Fatal("expected Open to fail with zero devices")
	}
	// Nothing was acquired, so nothing may be destroyed.
	if m.CallCount("zeContextCreate") != 0 {
		t.Fatal("context should not be created when no device matches")
	}
}

func TestLaunchProtocolOrder(t *testing.T) {
	t.Parallel()

	m := driver.NewMock("dev")
	s := openTestSession(t, m)
	defer s.Close()

	mod, err := s.LoadModule([]byte{0x03, 0x02, 0x23, 0x07})
	if err != nil {
		t.Fatalf("LoadModule: %v", err)
	}
	defer mod.Close()
	k, err := mod.Kernel("main")
	if err != nil {
		t.Fatalf("Kernel: %v", err)
	}
	defer k.Close()

	if err := s.Launch(k, 4, 1, 1); err != nil {
		t.Fatalf("Launch: %v", err)
	}

	want := []string{
		"zeCommandListReset",
		"zeCommandListAppendLaunchKernel",
		"zeCommandListClose",
		"zeCommandQueueExecuteCommandLists",
		"zeCommandQueueSynchronize",
	}
	calls := m.Calls()
	start := slices.Index(calls, "zeCommandListReset")
	if start < 0 {
		t.Fatalf("reset never issued; calls: %v", calls)
	}
	got := calls[start:]
	if len(got) < len(want) {
		t.Fatalf("launch sequence truncated: %v", got)
	}
	for i, op := range want {
		if got[i] != op {
			t.Fatalf("launch step %d = %s, want %s (full: %v)", i, got[i], op, got)
		}
	}

	launches := m.Launches()
	if len(launches) != 1 || launches[0] != [3]uint32{4, 1, 1} {
		t.Fatalf("recorded launches = %v", launches)
	}
}

func TestLaunchFailureSurfacesNativeError(t *testing.T) {
	t.Parallel()

	m := driver.NewMock("dev")
	m.ErrorText = "queue in invalid state"
	s := openTestSession(t, m)
	defer s.Close()

	mod, _ := s.LoadModule(nil)
	k, _ := mod.Kernel("main")
	m.Fail["zeCommandQueueSynchronize"] = driver.ResultErrorDeviceLost

	err := s.Launch(k, 1, 1, 1)
	var callErr *driver.CallError
	if !errors.As(err, &callErr) {
		t.Fatalf("expected CallError, got %v", err)
	}
	if callErr.Code != driver.ResultErrorDeviceLost {
		t.Fatalf("code = %v", callErr.Code)
	}
	if callErr.Detail != "queue in invalid state" {
		t.Fatalf("detail = %q", callErr.Detail)
	}
}

func TestCloseIdempotentFixedOrder(t *testing.T) {
	t.Parallel()

	m := driver.NewMock("dev")
	s := openTestSession(t, m)

	if err := s.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}

	for _, op := range []string{"zeCommandListDestroy", "zeCommandQueueDestroy", "zeContextDestroy"} {
		if n := m.CallCount(op); n != 1 {
			t.Errorf("%s called %d times, want 1", op, n)
		}
	}

	calls := m.Calls()
	listIdx := slices.Index(calls, "zeCommandListDestroy")
	queueIdx := slices.Index(calls, "zeCommandQueueDestroy")
	ctxIdx := slices.Index(calls, "zeContextDestroy")
	if !(listIdx < queueIdx && queueIdx < ctxIdx) {
		t.Fatalf("teardown order wrong: list=%d queue=%d ctx=%d", listIdx, queueIdx, ctxIdx)
	}
}

func TestOperationsAfterClose(t *testing.T) {
	t.Parallel()

	m := driver.NewMock("dev")
	s := openTestSession(t, m)

	mod, _ := s.LoadModule(nil)
	k, _ := mod.Kernel("main")

	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	before := len(m.Calls())

	if err := s.Launch(k, 1, 1, 1); !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("Launch after close = %v, want ErrSessionClosed", err)
	}
	if _, err := s.LoadModule(nil); !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("LoadModule after close = %v, want ErrSessionClosed", err)
	}
	if _, err := NewBuffer[float32](s, 8); !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("NewBuffer after close = %v, want ErrSessionClosed", err)
	}

	// Disposed-object errors must not reach the driver.
	if after := len(m.Calls()); after != before {
		t.Fatalf("native calls attempted after close: %v", m.Calls()[before:])
	}
}
