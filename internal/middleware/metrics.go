package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RedisErrors counts Redis command failures, labeled by command name.
var RedisErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "driftchat_redis_errors_total",
		Help: "Total number of Redis command errors",
	},
	[]string{"command"},
)

// PrunedEntities counts rows removed by the background prune sweep.
var PrunedEntities = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "driftchat_pruned_entities_total",
		Help: "Total number of rows removed by the prune sweep",
	},
	[]string{"entity"},
)

// InitMetrics creates the Prometheus middleware for the given service name.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(serviceName)
}

// MetricsMiddleware returns the request-metrics handler.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}
