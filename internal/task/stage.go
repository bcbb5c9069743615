package task

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jervi/orca/pkg/models"
)

// Stage is the engine-owned snapshot of the executing stage handed to a task
// on each invocation. Tasks treat it as read-only; each invocation is a
// complete unit of work reconstructed from this snapshot.
type Stage struct {
	// ExecutionID identifies the owning pipeline execution.
	ExecutionID string
	// StartTime is the stage start time in epoch milliseconds.
	StartTime int64
	// Context is the free-form stage context map.
	Context map[string]any
	// TriggerUser is the user that triggered the execution, or "" when the
	// execution has no triggering user.
	TriggerUser string
}

// StringValue returns the context value under key when it is a string, or "".
func (s *Stage) StringValue(key string) string {
	v, _ := s.Context[key].(string)
	return v
}

// DeliveryConfigID returns the id of the delivery config reference in the
// stage context, or "" when none is present.
func (s *Stage) DeliveryConfigID() string {
	config, _ := s.Context["deliveryConfig"].(map[string]any)
	id, _ := config["id"].(string)
	return id
}

// DecodePipeline decodes the base64-encoded pipeline definition carried under
// the "pipeline" context key.
func (s *Stage) DecodePipeline() (models.Pipeline, error) {
	raw, ok := s.Context["pipeline"]
	if !ok {
		return nil, errors.New("pipeline context must be provided")
	}

	encoded, ok := raw.(string)
	if !ok {
		return nil, errors.New("'pipeline' context key must be a base64-encoded string")
	}

	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("pipeline must be encoded as base64: %w", err)
	}

	var pipeline models.Pipeline
	if err := json.Unmarshal(decoded, &pipeline); err != nil {
		return nil, fmt.Errorf("pipeline must decode as a json object: %w", err)
	}
	return pipeline, nil
}
