package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	redislib "github.com/redis/go-redis/v9"

	"github.com/carelink/care-service/internal/observability"
	"github.com/carelink/care-service/internal/persistence"
)

// HealthHandler serves liveness, readiness and counter snapshots.
type HealthHandler struct {
	serviceName string
	version     string
	postgres    *persistence.Postgres
	redis       *redislib.Client
	metrics     *observability.Metrics
	startedAt   time.Time
}

// NewHealthHandler constructs handler.
func NewHealthHandler(serviceName, version string, postgres *persistence.Postgres, redis *redislib.Client, metrics *observability.Metrics) *HealthHandler {
	return &HealthHandler{
		serviceName: serviceName,
		version:     version,
		postgres:    postgres,
		redis:       redis,
		metrics:     metrics,
		startedAt:   time.Now(),
	}
}

// Live GET /healthz.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return ok(c, http.StatusOK, fiber.Map{
		"service": h.serviceName,
		"version": h.version,
		"uptime":  time.Since(h.startedAt).String(),
	})
}

// Ready GET /readyz. Checks the backing stores.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	checks := fiber.Map{}
	healthy := true

	if err := h.postgres.Ping(c.Context()); err != nil {
		checks["postgres"] = err.Error()
		healthy = false
	} else {
		checks["postgres"] = "ok"
	}

	if h.redis != nil {
		if err := h.redis.Ping(c.Context()).Err(); err != nil {
			checks["redis"] = err.Error()
			healthy = false
		} else {
			checks["redis"] = "ok"
		}
	}

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}
	return ok(c, status, checks)
}

// Metrics GET /metrics.
func (h *HealthHandler) Metrics(c *fiber.Ctx) error {
	requests, errors := h.metrics.Snapshot()
	return ok(c, http.StatusOK, fiber.Map{
		"requests": requests,
		"errors":   errors,
	})
}
