package diag

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/labstack/echo/v5"

	"github.com/samcharles93/levelz/internal/logger"
	"github.com/samcharles93/levelz/pkg/driver"
	"github.com/samcharles93/levelz/pkg/hwdetect"
)

func newTestEcho(t *testing.T, api driver.API) *echo.Echo {
	t.Helper()
	det := hwdetect.New(api,
		hwdetect.WithLogger(logger.Discard()),
		hwdetect.WithSnapshotPath(filepath.Join(t.TempDir(), hwdetect.SnapshotFile)),
		hwdetect.WithRenderProbe(func() bool { return true }),
	)
	s := NewServer(api, det, logger.Discard())
	e := echo.New()
	s.Register(e)
	return e
}

func doGet(t *testing.T, e *echo.Echo, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	e := newTestEcho(t, driver.NewMock("dev"))
	rec := doGet(t, e, "/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d body=%s", rec.Code, rec.Body.String())
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode health response: %v", err)
	}
	if body["status"] != "ok" {
		t.Fatalf("status field = %q", body["status"])
	}
	if body["version"] == "" {
		t.Fatal("expected version field")
	}
}

func TestDevicesEnumeration(t *testing.T) {
	t.Parallel()

	e := newTestEcho(t, driver.NewMock(
		"Intel(R) Arc(TM) B580 Graphics",
		"Intel(R) Iris(R) Xe Graphics",
	))
	rec := doGet(t, e, "/v1/devices")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d body=%s", rec.Code, rec.Body.String())
	}
	var body struct {
		Devices []DeviceInfo `json:"devices"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode devices response: %v", err)
	}
	if len(body.Devices) != 2 {
		t.Fatalf("device count = %d", len(body.Devices))
	}
	if body.Devices[0].Target != "bmg-g21" || body.Devices[0].Architecture != "Xe2-HPG" {
		t.Fatalf("device 0 classified as %s/%s", body.Devices[0].Target, body.Devices[0].Architecture)
	}
	if body.Devices[1].Target != "tgllp" {
		t.Fatalf("device 1 classified as %s", body.Devices[1].Target)
	}
}

func TestDevicesDegradesToEmptyList(t *testing.T) {
	t.Parallel()

	m := driver.NewMock("dev")
	m.Fail["zeInit"] = driver.ResultErrorUninitialized
	e := newTestEcho(t, m)

	rec := doGet(t, e, "/v1/devices")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d body=%s", rec.Code, rec.Body.String())
	}
	var body struct {
		Devices []DeviceInfo `json:"devices"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode devices response: %v", err)
	}
	if len(body.Devices) != 0 {
		t.Fatalf("expected empty list, got %v", body.Devices)
	}
}

func TestDevicesNilAPI(t *testing.T) {
	t.Parallel()

	e := newTestEcho(t, nil)
	rec := doGet(t, e, "/v1/devices")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestTargetEndpoint(t *testing.T) {
	t.Parallel()

	e := newTestEcho(t, driver.NewMock("Intel(R) Arc(TM) A770 Graphics"))
	rec := doGet(t, e, "/v1/target")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d body=%s", rec.Code, rec.Body.String())
	}
	var snap hwdetect.Snapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode target response: %v", err)
	}
	if !snap.HardwarePresent {
		t.Fatal("HardwarePresent = false")
	}
	if snap.DeviceTarget != "acm-g10" {
		t.Fatalf("DeviceTarget = %q", snap.DeviceTarget)
	}
}

func TestLevelsEndpoint(t *testing.T) {
	t.Parallel()

	e := newTestEcho(t, driver.NewMock("dev"))
	rec := doGet(t, e, "/v1/levels")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d body=%s", rec.Code, rec.Body.String())
	}
	var body struct {
		Levels []LevelInfo `json:"levels"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode levels response: %v", err)
	}
	if len(body.Levels) == 0 {
		t.Fatal("empty levels table")
	}
	for i, l := range body.Levels {
		if l.Rank != i {
			t.Fatalf("level %d has rank %d", i, l.Rank)
		}
	}
	last := body.Levels[len(body.Levels)-1]
	if last.Target != "bmg-g21" {
		t.Fatalf("newest level target = %q", last.Target)
	}
}
