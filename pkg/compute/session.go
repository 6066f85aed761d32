// Package compute owns the host-side lifecycle for accelerator work:
// the driver→device→context→queue→command-list handle chain, module
// and kernel creation, shared memory, and synchronous kernel launches.
//
// Ownership is single-owner and hierarchical, without reference
// counting: a Session exclusively owns its context, queue, and command
// list; Modules, Kernels, and Buffers created under a Session must be
// released before the Session is closed. That ordering is a caller
// obligation, not an enforced invariant.
package compute

import (
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"

	"github.com/samcharles93/levelz/internal/logger"
	"github.com/samcharles93/levelz/pkg/driver"
)

// moduleLogCap bounds the build log retained from module compilation.
const moduleLogCap = 16 * 1024

// Session owns one driver→device→context→queue→command-list chain.
// A single command list is reset and reused per launch, so a session
// never has more than one launch in flight; independent sessions may
// run concurrently.
type Session struct {
	api driver.API
	log logger.Logger

	id          string
	name        string
	driverIndex int
	deviceIndex int
	deviceName  string

	drv   driver.DriverHandle
	dev   driver.DeviceHandle
	ctx   driver.ContextHandle
	queue driver.QueueHandle
	list  driver.ListHandle

	mu     sync.Mutex
	closed bool
}

type options struct {
	driverIndex int
	deviceIndex int
	name        string
	log         logger.Logger
}

// Option configures Open.
type Option func(*options)

// WithDriverIndex selects which enumerated driver to open. Default 0.
func WithDriverIndex(i int) Option { return func(o *options) { o.driverIndex = i } }

// WithDeviceIndex selects which device on the driver to open. Default 0.
func WithDeviceIndex(i int) Option { return func(o *options) { o.deviceIndex = i } }

// WithName sets a human-readable session name used in logs.
func WithName(name string) Option { return func(o *options) { o.name = name } }

// WithLogger sets the session logger.
func WithLogger(l logger.Logger) Option { return func(o *options) { o.log = l } }

// Open acquires the full handle chain on the selected device. It is
// all-or-nothing: any native failure unwinds the handles acquired so
// far and returns the error, so a half-open session is never
// observable.
func Open(api driver.API, opts ...Option) (*Session, error) {
	o := options{name: "session"}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logger.Default()
	}

	if err := driver.Check(api, "zeInit", api.Init()); err != nil {
		return nil, err
	}

	drivers, res := api.Drivers()
	if err := driver.Check(api, "zeDriverGet", res); err != nil {
		return nil, err
	}
	if o.driverIndex < 0 || o.driverIndex >= len(drivers) {
		return nil, fmt.Errorf("compute: driver index %d out of range (%d present)", o.driverIndex, len(drivers))
	}
	drv := drivers[o.driverIndex]

	devices, res := api.Devices(drv)
	if err := driver.Check(api, "zeDeviceGet", res); err != nil {
		return nil, err
	}
	if o.deviceIndex < 0 || o.deviceIndex >= len(devices) {
		return nil, fmt.Errorf("compute: device index %d out of range (%d present)", o.deviceIndex, len(devices))
	}
	dev := devices[o.deviceIndex]

	deviceName, res := api.DeviceName(dev)
	if err := driver.Check(api, "zeDeviceGetProperties", res); err != nil {
		return nil, err
	}

	ctx, res := api.ContextCreate(drv)
	if err := driver.Check(api, "zeContextCreate", res); err != nil {
		return nil, err
	}

	queue, res := api.QueueCreate(ctx, dev)
	if err := driver.Check(api, "zeCommandQueueCreate", res); err != nil {
		_ = api.ContextDestroy(ctx)
		return nil, err
	}

	list, res := api.ListCreate(ctx, dev)
	if err := driver.Check(api, "zeCommandListCreate", res); err != nil {
		_ = api.QueueDestroy(queue)
		_ = api.ContextDestroy(ctx)
		return nil, err
	}

	s := &Session{
		api:         api,
		id:          uuid.NewString(),
		name:        o.name,
		driverIndex: o.driverIndex,
		deviceIndex: o.deviceIndex,
		deviceName:  deviceName,
		drv:         drv,
		dev:         dev,
		ctx:         ctx,
		queue:       queue,
		list:        list,
	}
	s.log = o.log.With("session", s.id, "device", deviceName)
	s.log.Debug("session opened", "driver", o.driverIndex, "device_index", o.deviceIndex)
	return s, nil
}

// ID returns the unique session identifier.
func (s *Session) ID() string { return s.id }

// Name returns the session name given at Open.
func (s *Session) Name() string { return s.name }

// DeviceName returns the device name captured at Open.
func (s *Session) DeviceName() string { return s.deviceName }

// Launch records a single kernel launch over the given group counts,
// submits it, and blocks until the queue signals completion. Launches
// on one session are serialized; the command list is reset and reused.
func (s *Session) Launch(k *Kernel, gx, gy, gz uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	if k.released {
		return ErrKernelReleased
	}

	if err := driver.Check(s.api, "zeCommandListReset", s.api.ListReset(s.list)); err != nil {
		return err
	}
	if err := driver.Check(s.api, "zeCommandListAppendLaunchKernel", s.api.AppendLaunch(s.list, k.handle, gx, gy, gz)); err != nil {
		return err
	}
	if err := driver.Check(s.api, "zeCommandListClose", s.api.ListClose(s.list)); err != nil {
		return err
	}
	if err := driver.Check(s.api, "zeCommandQueueExecuteCommandLists", s.api.QueueExecute(s.queue, s.list)); err != nil {
		return err
	}
	if err := driver.Check(s.api, "zeCommandQueueSynchronize", s.api.QueueSynchronize(s.queue, driver.TimeoutInfinite)); err != nil {
		return err
	}

	s.log.Debug("kernel launched", "kernel", k.name, "groups_x", gx, "groups_y", gy, "groups_z", gz)
	return nil
}

// LoadModule compiles a SPIR-V binary for the session's device. On
// failure the returned *BuildError carries both the native result code
// and the accumulated build log.
func (s *Session) LoadModule(spirv []byte) (*Module, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrSessionClosed
	}

	handle, buildLog, res := s.api.ModuleCreate(s.ctx, s.dev, spirv, moduleLogCap)
	if !res.Ok() {
		return nil, &BuildError{Code: res, Detail: s.api.LastError(), Log: buildLog}
	}
	s.log.Debug("module loaded", "bytes", len(spirv))
	return &Module{api: s.api, handle: handle, buildLog: buildLog}, nil
}

// TryLoadModule is the non-failing variant of LoadModule for probing
// candidate binaries; diagnostics are discarded.
func (s *Session) TryLoadModule(spirv []byte) (*Module, bool) {
	m, err := s.LoadModule(spirv)
	if err != nil {
		return nil, false
	}
	return m, true
}

// LoadModuleFile reads a SPIR-V binary from disk and compiles it.
func (s *Session) LoadModuleFile(path string) (*Module, error) {
	spirv, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("compute: read module %s: %w", path, err)
	}
	return s.LoadModule(spirv)
}

// Close releases the session's handles in fixed order: command list,
// queue, context. Device and driver handles are owned by the loader
// and are never destroyed here. Close is idempotent; after it returns,
// every session operation fails with ErrSessionClosed.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	var err error
	if s.list != 0 {
		if e := driver.Check(s.api, "zeCommandListDestroy", s.api.ListDestroy(s.list)); e != nil {
			err = e
		}
		s.list = 0
	}
	if s.queue != 0 {
		if e := driver.Check(s.api, "zeCommandQueueDestroy", s.api.QueueDestroy(s.queue)); e != nil && err == nil {
			err = e
		}
		s.queue = 0
	}
	if s.ctx != 0 {
		if e := driver.Check(s.api, "zeContextDestroy", s.api.ContextDestroy(s.ctx)); e != nil && err == nil {
			err = e
		}
		s.ctx = 0
	}
	s.log.Debug("session closed")
	return err
}
