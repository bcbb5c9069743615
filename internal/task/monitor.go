package task

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jervi/orca/internal/front50"
	"github.com/jervi/orca/pkg/models"
)

const (
	monitorBackoffPeriod = 5 * time.Second
	monitorTimeout       = 90 * time.Second
)

// FreshnessPolicy bounds the verification loop run inside a single Execute
// call. Several storage backends are only eventually consistent, and the
// store itself may be a set of load-balanced instances with independent
// caches; requiring SuccessThreshold consecutive confirmations, spaced
// ProbeSpacing apart, makes it probabilistically likely every instance has
// caught up.
type FreshnessPolicy struct {
	// SuccessThreshold is the number of consecutive confirmations required.
	// Zero disables verification entirely.
	SuccessThreshold int
	// ProbeSpacing is the fixed delay between consecutive confirmations.
	ProbeSpacing time.Duration
	// GracePeriod absorbs storage backends that round last-modified times to
	// the nearest second while stage start times keep millisecond precision.
	GracePeriod time.Duration
}

// DefaultFreshnessPolicy returns the policy used when nothing is configured:
// verification disabled, 1s probe spacing, 5s grace.
func DefaultFreshnessPolicy() FreshnessPolicy {
	return FreshnessPolicy{
		SuccessThreshold: 0,
		ProbeSpacing:     time.Second,
		GracePeriod:      5 * time.Second,
	}
}

// Fresh reports whether a record modified at lastModified (epoch ms) is at or
// after the stage start time, allowing for the grace period.
func (p FreshnessPolicy) Fresh(lastModified, startTime int64) bool {
	return lastModified >= startTime-p.GracePeriod.Milliseconds()
}

// MonitorStoreTask confirms that an object just written to the metadata store
// has propagated: its last-modified timestamp must be at or after the stage's
// start time on every probe. Exactly one target kind is checked per
// invocation, chosen by which identifier the stage context carries, in the
// order pipeline, delivery config, service account.
type MonitorStoreTask struct {
	store  front50.Client
	policy FreshnessPolicy
	log    *logrus.Entry

	sleep func(time.Duration)
}

// NewMonitorStoreTask creates a new MonitorStoreTask. A nil store means the
// metadata store is not wired into this process.
func NewMonitorStoreTask(store front50.Client, policy FreshnessPolicy, log *logrus.Entry) *MonitorStoreTask {
	return &MonitorStoreTask{store: store, policy: policy, log: log, sleep: time.Sleep}
}

// BackoffPeriod implements RetryableTask.
func (t *MonitorStoreTask) BackoffPeriod() time.Duration { return monitorBackoffPeriod }

// Timeout implements RetryableTask.
func (t *MonitorStoreTask) Timeout() time.Duration { return monitorTimeout }

// Execute runs one verification pass. Transient lookup failures never end the
// stage: they are logged and converted to RUNNING, leaving the engine's
// timeout as the only circuit breaker.
func (t *MonitorStoreTask) Execute(ctx context.Context, stage *Stage) (Result, error) {
	if t.store == nil {
		return Result{}, errors.New("metadata store is not enabled; set front50.enabled to verify writes")
	}

	if t.policy.SuccessThreshold == 0 {
		return Succeeded(nil), nil
	}

	if id := stage.StringValue("pipeline.id"); id != "" {
		result, err := t.monitor(ctx, t.getPipeline, id, stage.StartTime)
		if err != nil {
			t.log.WithError(err).WithFields(logrus.Fields{
				"executionId": stage.ExecutionID,
				"pipeline":    stage.StringValue("pipeline.name"),
			}).Error("unable to verify that pipeline has been updated")
			return Running(), nil
		}
		return result, nil
	}

	if id := stage.DeliveryConfigID(); id != "" {
		result, err := t.monitor(ctx, t.getDeliveryConfig, id, stage.StartTime)
		if err != nil {
			t.log.WithError(err).WithFields(logrus.Fields{
				"executionId": stage.ExecutionID,
				"configId":    id,
			}).Error("unable to verify that delivery config has been updated")
			return Running(), nil
		}
		return result, nil
	}

	if id := stage.StringValue("pipeline.serviceAccount"); id != "" {
		result, err := t.monitor(ctx, t.getServiceAccount, id, stage.StartTime)
		if err != nil {
			t.log.WithError(err).WithFields(logrus.Fields{
				"executionId":    stage.ExecutionID,
				"serviceAccount": id,
			}).Error("unable to verify that service account has been updated")
			return Running(), nil
		}
		return result, nil
	}

	// Verification is best effort: without an identifier there is nothing to
	// check, and failing the stage would punish pipelines that never needed
	// verification in the first place.
	t.log.WithField("executionId", stage.ExecutionID).
		Warn("no id found, unable to verify that the object has been updated")
	return Succeeded(nil), nil
}

// lookupFunc fetches one target object. found=false means the object does not
// exist (yet) as far as the store is concerned.
type lookupFunc func(ctx context.Context, id string) (obj models.TrackedObject, found bool, err error)

func (t *MonitorStoreTask) monitor(ctx context.Context, lookup lookupFunc, id string, startTime int64) (Result, error) {
	for confirmed := 0; confirmed < t.policy.SuccessThreshold; confirmed++ {
		obj, found, err := lookup(ctx, id)
		if err != nil {
			return Result{}, err
		}
		if !found {
			return Running(), nil
		}

		lastModified, ok := obj.LastModified()
		if !ok {
			// The store broke its contract; treat the record as not yet fresh
			// rather than failing the stage.
			return Running(), nil
		}

		if !t.policy.Fresh(lastModified, startTime) {
			return Running(), nil
		}

		if confirmed+1 < t.policy.SuccessThreshold {
			t.sleep(t.policy.ProbeSpacing)
		}
	}

	return Succeeded(nil), nil
}

func (t *MonitorStoreTask) getPipeline(ctx context.Context, id string) (models.TrackedObject, bool, error) {
	history, err := t.store.GetPipelineHistory(ctx, id, 1)
	if err != nil {
		return nil, false, err
	}
	if len(history) == 0 {
		return nil, false, nil
	}
	return history[0], true, nil
}

func (t *MonitorStoreTask) getDeliveryConfig(ctx context.Context, id string) (models.TrackedObject, bool, error) {
	config, err := t.store.GetDeliveryConfig(ctx, id)
	if err != nil {
		if front50.IsAbsent(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return config, true, nil
}

func (t *MonitorStoreTask) getServiceAccount(ctx context.Context, id string) (models.TrackedObject, bool, error) {
	if err := t.store.InvalidateServiceAccountCache(ctx, id); err != nil {
		return nil, false, err
	}

	account, err := t.store.GetServiceAccount(ctx, id)
	if err != nil {
		if front50.IsAbsent(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return account, true, nil
}
