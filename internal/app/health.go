package app

import (
	"context"
	"fmt"
	"time"

	"github.com/deppfellow/go-shopdb/internal/database"
	"github.com/rs/zerolog"

	loggerPkg "github.com/deppfellow/go-shopdb/internal/logger"
)

const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
	StatusSkipped   = "skipped"
)

// CheckResult is the outcome of one dependency check.
type CheckResult struct {
	Status       string `json:"status"`
	ResponseTime string `json:"response_time"`
	Error        string `json:"error,omitempty"`
}

// HealthReport is what the health command prints.
type HealthReport struct {
	Status      string                 `json:"status"`
	Timestamp   time.Time              `json:"timestamp"`
	Environment string                 `json:"environment"`
	Checks      map[string]CheckResult `json:"checks"`
}

// Healthy reports whether every check passed.
func (r HealthReport) Healthy() bool {
	return r.Status == StatusHealthy
}

type healthCheck func(ctx context.Context) error

// CheckHealth runs the checks named in the observability config. With
// health checks disabled the report is healthy and empty.
//
// Known checks:
//   - database: the pool answers a ping
//   - schema: the applied schema version is the latest one
func (a *App) CheckHealth(ctx context.Context) HealthReport {
	hc := a.Config.Observability.HealthChecks

	known := map[string]healthCheck{
		"database": func(ctx context.Context) error {
			return a.DB.Pool.Ping(ctx)
		},
		"schema": func(ctx context.Context) error {
			version, err := a.DB.SchemaVersion(ctx)
			if err != nil {
				return err
			}
			if latest := database.LatestSchemaVersion(); version != latest {
				return fmt.Errorf("schema version %d, want %d: run migrate", version, latest)
			}
			return nil
		},
	}

	h := healthRunner{
		logger:        a.Logger.With().Str("operation", "health_check").Logger(),
		loggerService: a.LoggerService,
		timeout:       hc.Timeout,
	}

	var names []string
	if hc.Enabled {
		names = hc.Checks
	}

	report := h.run(ctx, names, known)
	report.Environment = a.Config.Primary.Env
	return report
}

type healthRunner struct {
	logger        zerolog.Logger
	loggerService *loggerPkg.LoggerService
	timeout       time.Duration
}

func (h healthRunner) run(ctx context.Context, names []string, known map[string]healthCheck) HealthReport {
	start := time.Now()

	report := HealthReport{
		Status:    StatusHealthy,
		Timestamp: start.UTC(),
		Checks:    make(map[string]CheckResult, len(names)),
	}

	for _, name := range names {
		check, ok := known[name]
		if !ok {
			report.Checks[name] = CheckResult{Status: StatusSkipped, Error: "unknown check"}
			h.logger.Warn().Str("check", name).Msg("unknown health check skipped")
			continue
		}

		result := h.runOne(ctx, name, check)
		if result.Status != StatusHealthy {
			report.Status = StatusUnhealthy
		}
		report.Checks[name] = result
	}

	if report.Status != StatusHealthy {
		h.logger.Warn().
			Dur("total_duration", time.Since(start)).
			Msg("health check failed")

		h.recordFailure(map[string]any{
			"check_type":        "overall",
			"error_type":        "overall_unhealthy",
			"total_duration_ms": time.Since(start).Milliseconds(),
		})
		return report
	}

	h.logger.Info().
		Dur("total_duration", time.Since(start)).
		Msg("health check passed")

	return report
}

func (h healthRunner) runOne(ctx context.Context, name string, check healthCheck) CheckResult {
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	checkStart := time.Now()
	err := check(ctx)
	elapsed := time.Since(checkStart)

	if err != nil {
		h.logger.Error().
			Err(err).
			Str("check", name).
			Dur("response_time", elapsed).
			Msg("health check failed")

		h.recordFailure(map[string]any{
			"check_type":       name,
			"error_type":       name + "_unhealthy",
			"response_time_ms": elapsed.Milliseconds(),
			"error_message":    err.Error(),
		})

		return CheckResult{
			Status:       StatusUnhealthy,
			ResponseTime: elapsed.String(),
			Error:        err.Error(),
		}
	}

	h.logger.Debug().
		Str("check", name).
		Dur("response_time", elapsed).
		Msg("health check passed")

	return CheckResult{
		Status:       StatusHealthy,
		ResponseTime: elapsed.String(),
	}
}

// recordFailure sends a HealthCheckError custom event when New Relic is on.
func (h healthRunner) recordFailure(attrs map[string]any) {
	nrApp := h.loggerService.GetApplication()
	if nrApp == nil {
		return
	}
	attrs["operation"] = "health_check"
	nrApp.RecordCustomEvent("HealthCheckError", attrs)
}
