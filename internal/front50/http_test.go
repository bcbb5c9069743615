package front50

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jervi/orca/internal/stubstore"
	"github.com/jervi/orca/pkg/models"
)

func newTestClient(t *testing.T) (*HTTPClient, *stubstore.Store) {
	t.Helper()
	store := stubstore.New()
	server := httptest.NewServer(store.Handler())
	t.Cleanup(server.Close)
	return NewHTTPClient(server.URL, server.Client()), store
}

func TestHTTPClient_PipelineRoundTrip(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	status, err := client.SavePipeline(ctx, models.Pipeline{"id": "p1", "name": "Deploy"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)

	history, err := client.GetPipelineHistory(ctx, "p1", 1)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "Deploy", history[0]["name"])

	_, ok := history[0].LastModified()
	assert.True(t, ok, "saved pipeline should carry a timestamp")
}

func TestHTTPClient_PipelineHistoryEmptyForUnknownID(t *testing.T) {
	client, _ := newTestClient(t)

	history, err := client.GetPipelineHistory(context.Background(), "nope", 1)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestHTTPClient_DeliveryConfigNotFound(t *testing.T) {
	client, _ := newTestClient(t)

	_, err := client.GetDeliveryConfig(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, IsAbsent(err))
}

func TestHTTPClient_DeliveryConfigFound(t *testing.T) {
	client, store := newTestClient(t)
	store.PutDeliveryConfig("dc1", models.TrackedObject{"application": "demo"})

	config, err := client.GetDeliveryConfig(context.Background(), "dc1")
	require.NoError(t, err)
	assert.Equal(t, "demo", config["application"])
}

func TestHTTPClient_ServiceAccountRoundTrip(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	status, err := client.SaveServiceAccount(ctx, &models.ServiceAccount{
		Name:     "p1@managed-service-account",
		MemberOf: []string{"role-a"},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)

	require.NoError(t, client.InvalidateServiceAccountCache(ctx, "p1@managed-service-account"))

	account, err := client.GetServiceAccount(ctx, "p1@managed-service-account")
	require.NoError(t, err)
	assert.Equal(t, "p1@managed-service-account", account["name"])
}

func TestHTTPClient_ServiceAccountNotFound(t *testing.T) {
	client, _ := newTestClient(t)

	_, err := client.GetServiceAccount(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, IsAbsent(err))
}

func TestIsAbsent(t *testing.T) {
	assert.True(t, IsAbsent(&StatusError{StatusCode: http.StatusNotFound}))
	assert.True(t, IsAbsent(&StatusError{StatusCode: http.StatusUnauthorized}))
	assert.True(t, IsAbsent(&StatusError{StatusCode: http.StatusForbidden}))
	assert.False(t, IsAbsent(&StatusError{StatusCode: http.StatusInternalServerError}))
	assert.False(t, IsAbsent(context.DeadlineExceeded))
	assert.False(t, IsAbsent(nil))
}
