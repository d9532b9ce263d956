package http

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/catalog/internal/database"
)

const healthCheckTimeout = 2 * time.Second

// HealthCheck reports whether one dependency of the catalog is usable.
type HealthCheck func(ctx context.Context) error

type HealthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version,omitempty"`
	Uptime  string            `json:"uptime"`
	Checks  map[string]string `json:"checks"`
}

type HealthController struct {
	version string
	started time.Time
	checks  map[string]HealthCheck
}

func NewHealthController(version string) *HealthController {
	return &HealthController{
		version: version,
		started: time.Now(),
		checks:  make(map[string]HealthCheck),
	}
}

// AddCheck registers a named dependency check. Not safe to call once the
// controller is serving.
func (h *HealthController) AddCheck(name string, check HealthCheck) {
	h.checks[name] = check
}

// databaseCheck pings the catalog store. A missing handle is reported as a
// failure, the catalog cannot serve a page without it.
func databaseCheck(db *database.Database) HealthCheck {
	return func(ctx context.Context) error {
		if db == nil {
			return errors.New("not configured")
		}
		return db.Ping(ctx)
	}
}

// Status runs every check concurrently and answers 503 if any failed.
// GET /health
func (h *HealthController) Status(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make([]error, len(names))
	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func(i int, check HealthCheck) {
			defer wg.Done()
			results[i] = check(ctx)
		}(i, h.checks[name])
	}
	wg.Wait()

	response := HealthResponse{
		Status:  "healthy",
		Version: h.version,
		Uptime:  time.Since(h.started).Round(time.Second).String(),
		Checks:  make(map[string]string, len(names)),
	}
	statusCode := http.StatusOK
	for i, name := range names {
		if err := results[i]; err != nil {
			response.Checks[name] = err.Error()
			response.Status = "unhealthy"
			statusCode = http.StatusServiceUnavailable
			continue
		}
		response.Checks[name] = "ok"
	}

	c.IndentedJSON(statusCode, response)
}

// Ping is a liveness probe that never touches the database.
// GET /ping
func (h *HealthController) Ping(c *gin.Context) {
	c.String(http.StatusOK, "pong")
}
