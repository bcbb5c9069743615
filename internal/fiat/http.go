package fiat

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// permissionView is the wire form of a resolved permission.
type permissionView struct {
	Admin bool `json:"admin"`
	Roles []struct {
		Name string `json:"name"`
	} `json:"roles"`
}

// HTTPEvaluator is an HTTP implementation of the PermissionEvaluator interface.
type HTTPEvaluator struct {
	baseURL string
	client  *http.Client
}

// NewHTTPEvaluator creates a new HTTPEvaluator. A nil httpClient falls back to
// http.DefaultClient.
func NewHTTPEvaluator(baseURL string, httpClient *http.Client) *HTTPEvaluator {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &HTTPEvaluator{baseURL: strings.TrimRight(baseURL, "/"), client: httpClient}
}

// GetPermission resolves the permission granted to a user or service account.
// An unknown identity yields (nil, nil).
func (e *HTTPEvaluator) GetPermission(ctx context.Context, id string) (*Permission, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL+"/authorize/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fiat: %s returned status %d", req.URL, resp.StatusCode)
	}

	var view permissionView
	if err := json.NewDecoder(resp.Body).Decode(&view); err != nil {
		return nil, fmt.Errorf("failed to decode response body: %w", err)
	}

	permission := &Permission{Admin: view.Admin}
	for _, role := range view.Roles {
		permission.Roles = append(permission.Roles, role.Name)
	}
	return permission, nil
}
