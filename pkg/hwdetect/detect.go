package hwdetect

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	json "github.com/goccy/go-json"

	"github.com/samcharles93/levelz/internal/logger"
	"github.com/samcharles93/levelz/pkg/driver"
)

// SnapshotFile is the default file name of the persisted device record,
// stored next to the executable.
const SnapshotFile = "levelz_device.json"

// Sentinel device names for degraded detection results. They make the
// two failure shapes distinguishable in logs and persisted records.
const (
	NameNoHardware  = "(none)"
	NameProbeFailed = "(probe failed)"
)

// Snapshot is the durable result of one hardware detection.
type Snapshot struct {
	DeviceTarget    string    `json:"device_target"`
	Architecture    string    `json:"architecture"`
	DeviceName      string    `json:"device_name"`
	DetectedAt      time.Time `json:"detected_at"`
	HardwarePresent bool      `json:"hardware_present"`
}

// Detector probes the driver for a device and classifies it. Detection
// never fails: every error path degrades to a fallback snapshot.
type Detector struct {
	api   driver.API
	log   logger.Logger
	path  string
	probe func() bool

	mu     sync.Mutex
	cached *Snapshot
}

// Option configures a Detector.
type Option func(*Detector)

// WithLogger sets the detector logger.
func WithLogger(l logger.Logger) Option { return func(d *Detector) { d.log = l } }

// WithSnapshotPath overrides where the snapshot is persisted.
func WithSnapshotPath(path string) Option { return func(d *Detector) { d.path = path } }

// WithRenderProbe overrides the pre-check that decides whether a GPU
// device node is present before the driver is touched.
func WithRenderProbe(f func() bool) Option { return func(d *Detector) { d.probe = f } }

// New creates a Detector over the given driver. api may be nil when no
// driver binding is available; detection then reports no hardware.
func New(api driver.API, opts ...Option) *Detector {
	d := &Detector{
		api:   api,
		path:  DefaultSnapshotPath(),
		probe: renderNodePresent,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.log == nil {
		d.log = logger.Default()
	}
	return d
}

// DefaultSnapshotPath returns SnapshotFile in the executable's
// directory, falling back to the working directory.
func DefaultSnapshotPath() string {
	exe, err := os.Executable()
	if err != nil {
		return SnapshotFile
	}
	return filepath.Join(filepath.Dir(exe), SnapshotFile)
}

func fallbackSnapshot(deviceName string) Snapshot {
	fb := Fallback()
	return Snapshot{
		DeviceTarget:    fb.Target,
		Architecture:    fb.Family,
		DeviceName:      deviceName,
		DetectedAt:      time.Now().UTC(),
		HardwarePresent: false,
	}
}

// Detect probes the driver once and classifies the first device. It
// always returns a usable snapshot: missing hardware yields the
// fallback target with DeviceName "(none)", a failure during probing
// yields it with DeviceName "(probe failed)".
func (d *Detector) Detect() Snapshot {
	if d.api == nil {
		d.log.Debug("no driver binding, assuming no hardware")
		return fallbackSnapshot(NameNoHardware)
	}
	if !d.probe() {
		d.log.Debug("no render node present, skipping driver probe")
		return fallbackSnapshot(NameNoHardware)
	}

	if r := d.api.Init(); !r.Ok() {
		if r == driver.ResultErrorUninitialized {
			// The loader found no driver to initialize.
			return fallbackSnapshot(NameNoHardware)
		}
		d.log.Warn("driver init failed during detection", "result", r.String())
		return fallbackSnapshot(NameProbeFailed)
	}

	drivers, r := d.api.Drivers()
	if !r.Ok() {
		d.log.Warn("driver enumeration failed during detection", "result", r.String())
		return fallbackSnapshot(NameProbeFailed)
	}
	if len(drivers) == 0 {
		return fallbackSnapshot(NameNoHardware)
	}

	devices, r := d.api.Devices(drivers[0])
	if !r.Ok() {
		d.log.Warn("device enumeration failed during detection", "result", r.String())
		return fallbackSnapshot(NameProbeFailed)
	}
	if len(devices) == 0 {
		return fallbackSnapshot(NameNoHardware)
	}

	name, r := d.api.DeviceName(devices[0])
	if !r.Ok() {
		d.log.Warn("device properties query failed during detection", "result", r.String())
		return fallbackSnapshot(NameProbeFailed)
	}

	level := MatchDevice(name)
	d.log.Info("device detected",
		"device", name, "target", level.Target, "architecture", level.Family)
	return Snapshot{
		DeviceTarget:    level.Target,
		Architecture:    level.Family,
		DeviceName:      name,
		DetectedAt:      time.Now().UTC(),
		HardwarePresent: true,
	}
}

// Load reads the persisted snapshot.
func (d *Detector) Load() (Snapshot, error) {
	data, err := os.ReadFile(d.path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("hwdetect: read snapshot: %w", err)
	}
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("hwdetect: decode snapshot %s: %w", d.path, err)
	}
	return s, nil
}

// Save persists the snapshot.
func (d *Detector) Save(s Snapshot) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("hwdetect: encode snapshot: %w", err)
	}
	if err := os.WriteFile(d.path, data, 0o644); err != nil {
		return fmt.Errorf("hwdetect: write snapshot: %w", err)
	}
	return nil
}

// LoadOrDetect returns the persisted snapshot if one exists, otherwise
// detects once, persists the result, and caches it. The hardware probe
// runs at most once per Detector unless the record is removed before
// the first call.
func (d *Detector) LoadOrDetect() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cached != nil {
		return *d.cached
	}

	if s, err := d.Load(); err == nil {
		d.cached = &s
		return s
	}

	s := d.Detect()
	if err := d.Save(s); err != nil {
		d.log.Warn("could not persist device snapshot", "error", err)
	}
	d.cached = &s
	return s
}
