package front50

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/jervi/orca/pkg/models"
)

// HTTPClient is an HTTP implementation of the Client interface.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient creates a new HTTPClient. A nil httpClient falls back to
// http.DefaultClient.
func NewHTTPClient(baseURL string, httpClient *http.Client) *HTTPClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &HTTPClient{baseURL: strings.TrimRight(baseURL, "/"), client: httpClient}
}

// GetPipelineHistory returns the most recent history entries for a pipeline.
func (c *HTTPClient) GetPipelineHistory(ctx context.Context, id string, limit int) ([]models.TrackedObject, error) {
	path := "/pipelines/" + url.PathEscape(id) + "/history?limit=" + strconv.Itoa(limit)
	var history []models.TrackedObject
	if err := c.getJSON(ctx, path, &history); err != nil {
		return nil, err
	}
	return history, nil
}

// GetDeliveryConfig fetches a delivery config by id.
func (c *HTTPClient) GetDeliveryConfig(ctx context.Context, id string) (models.TrackedObject, error) {
	var config models.TrackedObject
	if err := c.getJSON(ctx, "/deliveries/"+url.PathEscape(id), &config); err != nil {
		return nil, err
	}
	return config, nil
}

// GetServiceAccount fetches a service account by id.
func (c *HTTPClient) GetServiceAccount(ctx context.Context, id string) (models.TrackedObject, error) {
	var account models.TrackedObject
	if err := c.getJSON(ctx, "/serviceAccounts/"+url.PathEscape(id), &account); err != nil {
		return nil, err
	}
	return account, nil
}

// InvalidateServiceAccountCache evicts any cached copy of the service account.
func (c *HTTPClient) InvalidateServiceAccountCache(ctx context.Context, id string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/cache/serviceAccounts/"+url.PathEscape(id), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &StatusError{StatusCode: resp.StatusCode, URL: req.URL.String()}
	}
	return nil
}

// SaveServiceAccount creates or overwrites a service account.
func (c *HTTPClient) SaveServiceAccount(ctx context.Context, account *models.ServiceAccount) (int, error) {
	return c.postJSON(ctx, "/serviceAccounts", account)
}

// SavePipeline persists a pipeline definition.
func (c *HTTPClient) SavePipeline(ctx context.Context, pipeline models.Pipeline) (int, error) {
	return c.postJSON(ctx, "/pipelines", pipeline)
}

func (c *HTTPClient) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &StatusError{StatusCode: resp.StatusCode, URL: req.URL.String()}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response body: %w", err)
	}
	return nil
}

func (c *HTTPClient) postJSON(ctx context.Context, path string, body any) (int, error) {
	requestBody, err := json.Marshal(body)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewBuffer(requestBody))
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	return resp.StatusCode, nil
}
