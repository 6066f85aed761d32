// Package diag exposes a small HTTP surface for inspecting the driver,
// the detected device, and the architecture table.
package diag

import (
	"net/http"

	json "github.com/goccy/go-json"
	"github.com/labstack/echo/v5"

	"github.com/samcharles93/levelz/internal/logger"
	"github.com/samcharles93/levelz/internal/version"
	"github.com/samcharles93/levelz/pkg/driver"
	"github.com/samcharles93/levelz/pkg/hwdetect"
)

// Server serves the diagnostic endpoints. The driver API may be nil
// when no binding is available; enumeration then degrades to an empty
// device list.
type Server struct {
	api driver.API
	det *hwdetect.Detector
	log logger.Logger
}

// NewServer creates a diagnostic server over the given driver and
// detector.
func NewServer(api driver.API, det *hwdetect.Detector, log logger.Logger) *Server {
	if log == nil {
		log = logger.Default()
	}
	return &Server{api: api, det: det, log: log}
}

// Register mounts the diagnostic routes.
func (s *Server) Register(e *echo.Echo) {
	e.GET("/healthz", s.handleHealth)
	e.GET("/v1/devices", s.handleDevices)
	e.GET("/v1/target", s.handleTarget)
	e.GET("/v1/levels", s.handleLevels)
}

// DeviceInfo describes one enumerated device.
type DeviceInfo struct {
	Index        int    `json:"index"`
	Name         string `json:"name"`
	Target       string `json:"target"`
	Architecture string `json:"architecture"`
}

// LevelInfo mirrors one architecture table entry.
type LevelInfo struct {
	Rank     int      `json:"rank"`
	Target   string   `json:"target"`
	Family   string   `json:"family"`
	Label    string   `json:"label"`
	Patterns []string `json:"patterns"`
}

func writeJSON(c *echo.Context, status int, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	res := c.Response()
	res.Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	res.WriteHeader(status)
	_, err = res.Write(data)
	return err
}

func (s *Server) handleHealth(c *echo.Context) error {
	return writeJSON(c, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": version.String(),
	})
}

func (s *Server) handleDevices(c *echo.Context) error {
	return writeJSON(c, http.StatusOK, map[string]any{
		"devices": s.listDevices(),
	})
}

// listDevices enumerates driver 0's devices. Any failure along the way
// yields an empty list; diagnostics must work on driverless hosts.
func (s *Server) listDevices() []DeviceInfo {
	out := []DeviceInfo{}
	if s.api == nil {
		return out
	}
	if r := s.api.Init(); !r.Ok() {
		s.log.Debug("device enumeration degraded", "op", "zeInit", "result", r.String())
		return out
	}
	drivers, r := s.api.Drivers()
	if !r.Ok() || len(drivers) == 0 {
		return out
	}
	devices, r := s.api.Devices(drivers[0])
	if !r.Ok() {
		return out
	}
	for i, dev := range devices {
		name, r := s.api.DeviceName(dev)
		if !r.Ok() {
			continue
		}
		level := hwdetect.MatchDevice(name)
		out = append(out, DeviceInfo{
			Index:        i,
			Name:         name,
			Target:       level.Target,
			Architecture: level.Family,
		})
	}
	return out
}

func (s *Server) handleTarget(c *echo.Context) error {
	return writeJSON(c, http.StatusOK, s.det.LoadOrDetect())
}

func (s *Server) handleLevels(c *echo.Context) error {
	levels := hwdetect.Levels()
	out := make([]LevelInfo, 0, len(levels))
	for _, l := range levels {
		out = append(out, LevelInfo{
			Rank:     l.Rank,
			Target:   l.Target,
			Family:   l.Family,
			Label:    l.Label,
			Patterns: l.Patterns,
		})
	}
	return writeJSON(c, http.StatusOK, map[string]any{
		"levels": out,
	})
}
