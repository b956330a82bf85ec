package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/slotwise/slotwise/internal/store"
)

func newTestServerContext(t *testing.T) *ServerContext {
	t.Helper()
	sc, err := NewServerContext(context.Background())
	if err != nil {
		t.Fatalf("NewServerContext() error = %v", err)
	}
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

func TestLivenessHandler(t *testing.T) {
	h := NewHealthChecker(newTestServerContext(t))

	rec := httptest.NewRecorder()
	h.LivenessHandler().ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var body HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Status != healthStatusOK {
		t.Errorf("status = %q, want %q", body.Status, healthStatusOK)
	}
}

func TestReadinessHandler(t *testing.T) {
	t.Run("ready", func(t *testing.T) {
		h := NewHealthChecker(newTestServerContext(t))

		rec := httptest.NewRecorder()
		h.ReadinessHandler().ServeHTTP(rec, httptest.NewRequest("GET", "/readyz", nil))

		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
		}

		var body HealthResponse
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if body.Checks["ready"] != healthStatusOK || body.Checks["shutdown"] != healthStatusOK {
			t.Errorf("checks = %v, want all ok", body.Checks)
		}
	})

	t.Run("not ready", func(t *testing.T) {
		h := NewHealthChecker(newTestServerContext(t))
		h.SetReady(false)

		rec := httptest.NewRecorder()
		h.ReadinessHandler().ServeHTTP(rec, httptest.NewRequest("GET", "/readyz", nil))

		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
		}
	})

	t.Run("shutting down", func(t *testing.T) {
		sc := newTestServerContext(t)
		h := NewHealthChecker(sc)
		_ = sc.Shutdown()

		rec := httptest.NewRecorder()
		h.ReadinessHandler().ServeHTTP(rec, httptest.NewRequest("GET", "/readyz", nil))

		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
		}

		var body HealthResponse
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if body.Checks["shutdown"] != healthStatusShuttingDown {
			t.Errorf("shutdown check = %q, want %q", body.Checks["shutdown"], healthStatusShuttingDown)
		}
	})

	t.Run("healthy store", func(t *testing.T) {
		sc := newTestServerContext(t)
		db, err := store.Open(":memory:")
		if err != nil {
			t.Fatalf("store.Open() error = %v", err)
		}
		t.Cleanup(func() { _ = db.Close() })
		sc.SetStore(db)

		h := NewHealthChecker(sc)
		rec := httptest.NewRecorder()
		h.ReadinessHandler().ServeHTTP(rec, httptest.NewRequest("GET", "/readyz", nil))

		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
		}
	})

	t.Run("unavailable store", func(t *testing.T) {
		sc := newTestServerContext(t)
		db, err := store.Open(":memory:")
		if err != nil {
			t.Fatalf("store.Open() error = %v", err)
		}
		_ = db.Close()
		sc.SetStore(db)

		h := NewHealthChecker(sc)
		rec := httptest.NewRecorder()
		h.ReadinessHandler().ServeHTTP(rec, httptest.NewRequest("GET", "/readyz", nil))

		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
		}

		var body HealthResponse
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if body.Checks["store"] != healthStatusUnavailable {
			t.Errorf("store check = %q, want %q", body.Checks["store"], healthStatusUnavailable)
		}
	})
}

func TestDetailedHealthHandler(t *testing.T) {
	h := NewHealthChecker(newTestServerContext(t))

	rec := httptest.NewRecorder()
	h.DetailedHealthHandler().ServeHTTP(rec, httptest.NewRequest("GET", "/healthz/detailed", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var body DetailedHealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Status != healthStatusOK {
		t.Errorf("status = %q, want %q", body.Status, healthStatusOK)
	}
	if body.Uptime == "" {
		t.Error("uptime should be populated")
	}
}

func TestRegisterHealthEndpoints(t *testing.T) {
	h := NewHealthChecker(newTestServerContext(t))
	mux := http.NewServeMux()
	h.RegisterHealthEndpoints(mux)

	for _, path := range []string{"/healthz", "/readyz", "/healthz/detailed"} {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest("GET", path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s status = %d, want %d", path, rec.Code, http.StatusOK)
		}
	}
}
