package requests

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"cryptotracker/src/utils"
)

// ExternalAPIService is a thin JSON-over-HTTP helper shared by the external clients.
type ExternalAPIService struct {
	client  *http.Client
	headers map[string]string
}

// NewExternalAPIService creates a new instance of ExternalAPIService. A nil
// client gets a default one bounded by timeout.
func NewExternalAPIService(client *http.Client, timeout time.Duration) *ExternalAPIService {
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &ExternalAPIService{client: client, headers: map[string]string{}}
}

// SetHeader adds a header sent with every request.
func (s *ExternalAPIService) SetHeader(key, value string) {
	s.headers[key] = value
}

func (s *ExternalAPIService) makeRequest(ctx context.Context, method, endpoint string, params url.Values, body interface{}) (*http.Response, error) {
	if len(params) > 0 {
		endpoint = endpoint + "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range s.headers {
		req.Header.Set(key, value)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, utils.NewHTTPError(resp.StatusCode, fmt.Sprintf("%s %s: %s", method, endpoint, resp.Status))
	}
	return resp, nil
}

// Get makes a GET request to the external service, accepting optional query parameters
func (s *ExternalAPIService) Get(ctx context.Context, endpoint string, params url.Values) (*http.Response, error) {
	return s.makeRequest(ctx, http.MethodGet, endpoint, params, nil)
}

// GetJSON makes a GET request and decodes the JSON response into result.
func (s *ExternalAPIService) GetJSON(ctx context.Context, endpoint string, params url.Values, result interface{}) error {
	resp, err := s.Get(ctx, endpoint, params)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", endpoint, err)
	}
	return nil
}
