// Package health keeps the gRPC health service in sync with the backing store.
package health

import (
	"context"
	"time"

	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/dtroode/taskflow-server/internal/logger"
	"github.com/dtroode/taskflow-server/internal/model"
)

// ServiceName is the health service name reported next to the overall ("") status.
const ServiceName = "taskflow.TaskFlow"

const pingTimeout = 3 * time.Second

// Checker periodically pings the store and publishes the result to a health server.
type Checker struct {
	server   *health.Server
	pinger   model.Pinger
	interval time.Duration
	logger   *logger.Logger
}

func NewChecker(server *health.Server, pinger model.Pinger, interval time.Duration, logger *logger.Logger) *Checker {
	return &Checker{
		server:   server,
		pinger:   pinger,
		interval: interval,
		logger:   logger,
	}
}

// Run checks once immediately and then every interval until ctx is done.
// On exit every service is marked NOT_SERVING.
func (c *Checker) Run(ctx context.Context) {
	c.Check(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.server.Shutdown()
			return
		case <-ticker.C:
			c.Check(ctx)
		}
	}
}

// Check pings the store once and updates the serving status.
func (c *Checker) Check(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	if err := c.pinger.Ping(pingCtx); err != nil {
		c.logger.Warn("Health checker: store ping failed", "error", err.Error())
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}

	c.server.SetServingStatus("", status)
	c.server.SetServingStatus(ServiceName, status)

	return status
}
