package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
)

// InitMetrics creates the HTTP metrics collector on reg.
func InitMetrics(reg *prometheus.Registry, serviceName string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.NewWithRegistry(reg, serviceName, "floorview", "http", nil)
}

// MetricsMiddleware records request counts, latency and in-flight requests.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}
