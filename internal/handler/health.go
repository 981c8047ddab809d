package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/deppfellow/itemsvc/internal/middleware"
	"github.com/deppfellow/itemsvc/internal/server"
	"github.com/labstack/echo/v4"
)

// defaultCheckTimeout bounds each dependency ping when
// observability.health_checks.timeout is unset.
const defaultCheckTimeout = 5 * time.Second

// HealthResponse is the liveness body of GET /api/health.
type HealthResponse struct {
	OK   bool  `json:"ok"`
	Time int64 `json:"time"`
}

// HealthHandler serves liveness and readiness endpoints.
type HealthHandler struct {
	Handler
	now func() time.Time
}

func NewHealthHandler(s *server.Server) *HealthHandler {
	return &HealthHandler{
		Handler: NewHandler(s),
		now:     time.Now,
	}
}

// Health reports that the process is up. It touches no dependency.
func (h *HealthHandler) Health(c echo.Context, _ *EmptyRequest) (HealthResponse, error) {
	return HealthResponse{OK: true, Time: h.now().UnixMilli()}, nil
}

type checkFunc func(ctx context.Context) error

// CheckHealth is the readiness check. It pings the database and, when
// configured, redis. Any failed check turns the response into a 503.
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	start := time.Now()

	logger := middleware.GetLogger(c).With().
		Str("operation", "health_check").
		Logger()

	checks := map[string]interface{}{}
	isHealthy := true

	timeout := h.server.Config.Observability.HealthChecks.Timeout
	if timeout <= 0 {
		timeout = defaultCheckTimeout
	}

	run := func(name string, check checkFunc) {
		if !h.server.Config.Observability.HasCheck(name) {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request().Context(), timeout)
		defer cancel()

		checkStart := time.Now()
		err := check(ctx)
		elapsed := time.Since(checkStart)

		if err != nil {
			isHealthy = false
			checks[name] = map[string]interface{}{
				"status":        "unhealthy",
				"response_time": elapsed.String(),
				"error":         err.Error(),
			}

			logger.Error().
				Err(err).
				Str("check", name).
				Dur("response_time", elapsed).
				Msg("health check failed")

			h.recordHealthCheckError(name, elapsed, err)
			return
		}

		checks[name] = map[string]interface{}{
			"status":        "healthy",
			"response_time": elapsed.String(),
		}
		logger.Debug().
			Str("check", name).
			Dur("response_time", elapsed).
			Msg("health check passed")
	}

	run("database", h.server.DB.Ping)

	if h.server.Redis != nil {
		run("redis", func(ctx context.Context) error {
			return h.server.Redis.Ping(ctx).Err()
		})
	}

	response := map[string]interface{}{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"environment": h.server.Config.Primary.Env,
		"store":       h.server.DB.Driver,
		"checks":      checks,
	}

	if !isHealthy {
		response["status"] = "unhealthy"

		logger.Warn().
			Dur("total_duration", time.Since(start)).
			Msg("health check failed")

		return c.JSON(http.StatusServiceUnavailable, response)
	}

	return c.JSON(http.StatusOK, response)
}

func (h *HealthHandler) recordHealthCheckError(check string, elapsed time.Duration, err error) {
	app := h.server.LoggerService.GetApplication()
	if app == nil {
		return
	}

	app.RecordCustomEvent("HealthCheckError", map[string]interface{}{
		"check_type":       check,
		"operation":        "health_check",
		"error_type":       check + "_unhealthy",
		"response_time_ms": elapsed.Milliseconds(),
		"error_message":    err.Error(),
	})
}
