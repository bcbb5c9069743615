// Package front50 provides the client for the pipeline metadata store.
package front50

import (
	"context"

	"github.com/jervi/orca/pkg/models"
)

// Client is the interface for the metadata store consumed by the tasks.
type Client interface {
	// GetPipelineHistory returns the most recent history entries for a
	// pipeline, newest first.
	GetPipelineHistory(ctx context.Context, id string, limit int) ([]models.TrackedObject, error)
	// GetDeliveryConfig fetches a delivery config by id.
	GetDeliveryConfig(ctx context.Context, id string) (models.TrackedObject, error)
	// GetServiceAccount fetches a service account by id.
	GetServiceAccount(ctx context.Context, id string) (models.TrackedObject, error)
	// InvalidateServiceAccountCache evicts any cached copy of the service
	// account so the next fetch reads through to storage.
	InvalidateServiceAccountCache(ctx context.Context, id string) error
	// SaveServiceAccount creates or overwrites a service account and returns
	// the store's response status code.
	SaveServiceAccount(ctx context.Context, account *models.ServiceAccount) (int, error)
	// SavePipeline persists a pipeline definition and returns the store's
	// response status code.
	SavePipeline(ctx context.Context, pipeline models.Pipeline) (int, error)
}
