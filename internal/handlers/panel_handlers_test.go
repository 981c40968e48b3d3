package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"srvpanel/internal/models"
	"srvpanel/internal/panel"
)

func newTestRouter(vm *panel.ViewModel) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewPanelHandlers("smp-one", vm, nil, nil)
	r := gin.New()
	r.GET("/api/server", h.GetServer)
	r.GET("/api/server/resources", h.GetResources)
	r.GET("/healthz", h.Health)
	return r
}

func TestGetServerReturnsDisplayModel(t *testing.T) {
	vm := panel.NewViewModel(
		models.ResourceLimits{CPUPercent: 50, MemoryMiB: 512, DiskMiB: 1024},
		[]models.Allocation{{IP: "10.0.0.2", Port: 25566, Alias: "play", IsDefault: true}},
	)
	vm.SetStatus(models.StatusRunning)
	vm.ApplySnapshot(models.ResourceSnapshot{
		MemoryBytes: 1048576,
		CPUPercent:  12.345,
		DiskBytes:   2000000000,
		UptimeMS:    5000,
	})

	w := httptest.NewRecorder()
	newTestRouter(vm).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/server", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", w.Code, w.Body.String())
	}

	var resp struct {
		Name  string             `json:"name"`
		Model panel.DisplayModel `json:"model"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Name != "smp-one" {
		t.Errorf("name = %q, want smp-one", resp.Name)
	}
	if resp.Model.CPU.Text != "12.35% / 50%" {
		t.Errorf("cpu text = %q", resp.Model.CPU.Text)
	}
	if resp.Model.Address != "play:25566" {
		t.Errorf("address = %q", resp.Model.Address)
	}
}

func TestGetResourcesReturnsRawSnapshot(t *testing.T) {
	vm := panel.NewViewModel(models.ResourceLimits{}, nil)
	vm.ApplySnapshot(models.ResourceSnapshot{MemoryBytes: 42, CPUPercent: 1.5, DiskBytes: 7, UptimeMS: 1000})

	w := httptest.NewRecorder()
	newTestRouter(vm).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/server/resources", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var snap models.ResourceSnapshot
	if err := json.Unmarshal(w.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if snap.MemoryBytes != 42 || snap.UptimeMS != 1000 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}

func TestHealth(t *testing.T) {
	vm := panel.NewViewModel(models.ResourceLimits{}, nil)

	w := httptest.NewRecorder()
	newTestRouter(vm).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode health response: %v", err)
	}
	if resp["status"] != "ok" {
		t.Fatalf("status = %v, want ok", resp["status"])
	}
}
