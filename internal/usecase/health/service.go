package health

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/matsearch/internal/logger"
)

// Status is the overall service state.
type Status string

// Overall states.
const (
	Healthy   Status = "ok"
	Degraded  Status = "degraded"
	Unhealthy Status = "error"
)

// CheckResult is the outcome for one component.
type CheckResult string

// Component outcomes.
const (
	CheckOK    CheckResult = "ok"
	CheckError CheckResult = "error"
)

// DefaultCheckTimeout bounds each component check.
const DefaultCheckTimeout = 3 * time.Second

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Component is a named dependency to check.
type Component struct {
	Name   string
	Pinger Pinger
}

// Service coordinates health checks.
type Service struct {
	components []Component
	timeout    time.Duration
	logger     *zap.Logger
}

// New creates a Service. Components with a nil Pinger are ignored.
func New(timeout time.Duration, logger *zap.Logger, components ...Component) *Service {
	if timeout <= 0 {
		timeout = DefaultCheckTimeout
	}
	var kept []Component
	for _, c := range components {
		if c.Pinger != nil {
			kept = append(kept, c)
		}
	}
	return &Service{components: kept, timeout: timeout, logger: logger}
}

// Check pings every component concurrently, each under its own timeout.
// All failing is Unhealthy, some failing is Degraded.
func (s *Service) Check(ctx context.Context) Report {
	results := make([]CheckResult, len(s.components))
	var g errgroup.Group
	for i, c := range s.components {
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()
			results[i] = CheckOK
			if err := c.Pinger.Ping(cctx); err != nil {
				results[i] = CheckError
				logger.FromContextOr(ctx, s.logger).Warn("Health check failed",
					zap.String("component", c.Name), zap.Error(err))
			}
			return nil
		})
	}
	_ = g.Wait()

	report := Report{Status: Healthy, Checks: make(map[string]CheckResult, len(results))}
	failed := 0
	for i, res := range results {
		report.Checks[s.components[i].Name] = res
		if res == CheckError {
			failed++
		}
	}
	if failed > 0 {
		report.Status = Degraded
		if failed == len(results) {
			report.Status = Unhealthy
		}
	}
	return report
}
