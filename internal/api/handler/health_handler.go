package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/estatehub/listing-api/internal/relay"
)

const probeTimeout = 3 * time.Second

// HealthHandler serves the liveness and readiness probes. Liveness answers
// unconditionally; readiness pings Mongo and Redis within probeTimeout.
type HealthHandler struct {
	db  *mongo.Database
	rdb *redis.Client
	hub *relay.Hub
}

func NewHealthHandler(db *mongo.Database, rdb *redis.Client, hub *relay.Hub) *HealthHandler {
	return &HealthHandler{db: db, rdb: rdb, hub: hub}
}

type probeResult struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type readinessResponse struct {
	Status      string                 `json:"status"`
	Checks      map[string]probeResult `json:"checks"`
	Connections int                    `json:"liveConnections"`
}

// Liveness handles GET /health.
func (h *HealthHandler) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Readiness handles GET /health/ready. Responds 503 when any dependency is
// unreachable so load balancers stop routing here.
func (h *HealthHandler) Readiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), probeTimeout)
	defer cancel()

	checks := map[string]probeResult{
		"mongodb": h.pingMongo(ctx),
		"redis":   h.pingRedis(ctx),
	}

	resp := readinessResponse{Status: "ok", Checks: checks}
	if h.hub != nil {
		resp.Connections = h.hub.Connections()
	}

	code := http.StatusOK
	for _, r := range checks {
		if r.Status != "ok" {
			resp.Status = "degraded"
			code = http.StatusServiceUnavailable
			break
		}
	}
	return c.JSON(code, resp)
}

func (h *HealthHandler) pingMongo(ctx context.Context) probeResult {
	if err := h.db.RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err(); err != nil {
		return probeResult{Status: "unreachable", Error: err.Error()}
	}
	return probeResult{Status: "ok"}
}

func (h *HealthHandler) pingRedis(ctx context.Context) probeResult {
	if err := h.rdb.Ping(ctx).Err(); err != nil {
		return probeResult{Status: "unreachable", Error: err.Error()}
	}
	return probeResult{Status: "ok"}
}
