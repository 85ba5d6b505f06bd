package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RedisErrors counts Redis command errors by operation type.
var RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "chronicle_redis_errors_total",
	Help: "Total number of Redis errors by operation type",
}, []string{"operation"})

// PostWrites counts post write operations by kind (create, update, delete).
var PostWrites = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "chronicle_post_writes_total",
	Help: "Total number of post write operations by kind",
}, []string{"kind"})

// InitMetrics creates the Prometheus HTTP middleware for the given service name.
func InitMetrics(service string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(service)
}

// MetricsMiddleware adapts the Prometheus middleware for app.Use.
func MetricsMiddleware(p *fiberprometheus.FiberPrometheus) fiber.Handler {
	return p.Middleware
}
