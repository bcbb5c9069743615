package task

import (
	"context"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"

	"github.com/jervi/orca/internal/fiat"
	"github.com/jervi/orca/pkg/models"
)

// mockStoreClient satisfies front50.Client
type mockStoreClient struct {
	mock.Mock
}

func (m *mockStoreClient) GetPipelineHistory(ctx context.Context, id string, limit int) ([]models.TrackedObject, error) {
	args := m.Called(ctx, id, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TrackedObject), args.Error(1)
}

func (m *mockStoreClient) GetDeliveryConfig(ctx context.Context, id string) (models.TrackedObject, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(models.TrackedObject), args.Error(1)
}

func (m *mockStoreClient) GetServiceAccount(ctx context.Context, id string) (models.TrackedObject, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(models.TrackedObject), args.Error(1)
}

func (m *mockStoreClient) InvalidateServiceAccountCache(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockStoreClient) SaveServiceAccount(ctx context.Context, account *models.ServiceAccount) (int, error) {
	args := m.Called(ctx, account)
	return args.Int(0), args.Error(1)
}

func (m *mockStoreClient) SavePipeline(ctx context.Context, pipeline models.Pipeline) (int, error) {
	args := m.Called(ctx, pipeline)
	return args.Int(0), args.Error(1)
}

// mockPermissionEvaluator satisfies fiat.PermissionEvaluator
type mockPermissionEvaluator struct {
	mock.Mock
}

func (m *mockPermissionEvaluator) GetPermission(ctx context.Context, id string) (*fiat.Permission, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fiat.Permission), args.Error(1)
}

func discardLogger() *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logrus.NewEntry(logger)
}
