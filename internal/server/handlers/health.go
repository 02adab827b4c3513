package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// HealthChecker reports the health of one subsystem.
type HealthChecker interface {
	CheckHealth(ctx context.Context) error
}

// HealthManager aggregates registered checkers into the health endpoints.
type HealthManager struct {
	mu       sync.RWMutex
	version  string
	started  time.Time
	checkers map[string]HealthChecker
}

// NewHealthManager creates a health manager for the given build version.
func NewHealthManager(version string) *HealthManager {
	return &HealthManager{
		version:  version,
		started:  time.Now().UTC(),
		checkers: make(map[string]HealthChecker),
	}
}

// RegisterChecker adds a named subsystem check.
func (m *HealthManager) RegisterChecker(name string, checker HealthChecker) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checkers[name] = checker
}

// HealthResponse is the aggregate health report.
type HealthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Uptime  string            `json:"uptime"`
	Checks  map[string]string `json:"checks"`
}

// HealthHandler handles GET /health: 200 when every check passes, 503
// otherwise, with per-check statuses either way.
func (m *HealthManager) HealthHandler(w http.ResponseWriter, r *http.Request) {
	checks := m.runChecks(r.Context())

	status := "healthy"
	code := http.StatusOK
	for _, result := range checks {
		if result != "healthy" {
			status = "unhealthy"
			code = http.StatusServiceUnavailable
			break
		}
	}

	writeJSON(w, code, HealthResponse{
		Status:  status,
		Version: m.version,
		Uptime:  time.Since(m.started).Round(time.Second).String(),
		Checks:  checks,
	})
}

// LivenessHandler handles GET /health/live: the process is up.
func (m *HealthManager) LivenessHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// ReadinessHandler handles GET /health/ready: same gate as /health.
func (m *HealthManager) ReadinessHandler(w http.ResponseWriter, r *http.Request) {
	m.HealthHandler(w, r)
}

func (m *HealthManager) runChecks(ctx context.Context) map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	results := make(map[string]string, len(m.checkers))
	for name, checker := range m.checkers {
		checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := checker.CheckHealth(checkCtx); err != nil {
			results[name] = "unhealthy"
		} else {
			results[name] = "healthy"
		}
		cancel()
	}
	return results
}
