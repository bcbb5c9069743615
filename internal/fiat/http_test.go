package fiat

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jervi/orca/internal/stubstore"
)

func newTestEvaluator(t *testing.T) (*HTTPEvaluator, *stubstore.Store) {
	t.Helper()
	store := stubstore.New()
	server := httptest.NewServer(store.Handler())
	t.Cleanup(server.Close)
	return NewHTTPEvaluator(server.URL, server.Client()), store
}

func TestHTTPEvaluator_KnownIdentity(t *testing.T) {
	evaluator, store := newTestEvaluator(t)
	store.PutPermission("alice", false, "role-a", "role-b")

	permission, err := evaluator.GetPermission(context.Background(), "alice")
	require.NoError(t, err)
	require.NotNil(t, permission)
	assert.False(t, permission.Admin)
	assert.Equal(t, []string{"role-a", "role-b"}, permission.Roles)
}

func TestHTTPEvaluator_Admin(t *testing.T) {
	evaluator, store := newTestEvaluator(t)
	store.PutPermission("root", true)

	permission, err := evaluator.GetPermission(context.Background(), "root")
	require.NoError(t, err)
	require.NotNil(t, permission)
	assert.True(t, permission.Admin)
}

func TestHTTPEvaluator_UnknownIdentityIsNil(t *testing.T) {
	evaluator, _ := newTestEvaluator(t)

	permission, err := evaluator.GetPermission(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, permission)
}

func TestPermission_HasAllRoles(t *testing.T) {
	permission := &Permission{Roles: []string{"role-a", "role-b"}}

	assert.True(t, permission.HasAllRoles(nil))
	assert.True(t, permission.HasAllRoles([]string{"role-a"}))
	assert.True(t, permission.HasAllRoles([]string{"role-b", "role-a"}))
	assert.False(t, permission.HasAllRoles([]string{"role-a", "role-c"}))
}
