// Package runner re-invokes retryable tasks the way the pipeline engine does:
// at the task's declared backoff period until the task stops reporting RUNNING
// or its declared timeout elapses.
package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/jervi/orca/internal/task"
)

var errStillRunning = errors.New("task still running")

// Runner drives a RetryableTask to a terminal result.
type Runner struct {
	log         *logrus.Entry
	invocations metric.Int64Counter
	duration    metric.Float64Histogram
}

// New creates a new Runner. Metrics are registered against the global meter
// provider; without one configured they are no-ops.
func New(log *logrus.Entry) *Runner {
	meter := otel.Meter("github.com/jervi/orca/internal/runner")
	invocations, _ := meter.Int64Counter("orca.task.invocations",
		metric.WithDescription("Number of task invocations"))
	duration, _ := meter.Float64Histogram("orca.task.duration",
		metric.WithDescription("Duration of a single task invocation"),
		metric.WithUnit("s"))

	return &Runner{log: log, invocations: invocations, duration: duration}
}

// Run invokes t until it returns SUCCEEDED or TERMINAL. A RUNNING result is
// retried after the task's backoff period. When the task's timeout elapses
// first, the stage is abandoned and a timeout error returned. An Execute
// error ends the run immediately: tasks reserve errors for configuration and
// input problems that retrying cannot fix.
func (r *Runner) Run(ctx context.Context, t task.RetryableTask, stage *task.Stage) (task.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, t.Timeout())
	defer cancel()

	taskAttr := attribute.String("task", fmt.Sprintf("%T", t))

	var result task.Result
	operation := func() error {
		start := time.Now()
		res, err := t.Execute(ctx, stage)
		r.invocations.Add(ctx, 1, metric.WithAttributes(taskAttr))
		r.duration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(taskAttr))

		if err != nil {
			return backoff.Permanent(err)
		}
		if res.Status == task.StatusRunning {
			r.log.WithField("executionId", stage.ExecutionID).Debug("task still running, backing off")
			return errStillRunning
		}
		result = res
		return nil
	}

	policy := backoff.WithContext(backoff.NewConstantBackOff(t.BackoffPeriod()), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		if errors.Is(err, errStillRunning) || errors.Is(err, context.DeadlineExceeded) {
			return task.Result{}, fmt.Errorf("task did not complete within %s", t.Timeout())
		}
		return task.Result{}, err
	}
	return result, nil
}
