// Copyright (c) 2026 Meridia Health. All rights reserved.

package prefs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// mirrorPath is the remote endpoint the full document is pushed to.
const mirrorPath = "/api/v1/user/preferences"

// HTTPMirror pushes documents to the preference mirror service over HTTP.
type HTTPMirror struct {
	baseURL string
	client  *http.Client
}

/*
NewHTTPMirror constructs a mirror client.

Parameters:
  - baseURL: Service root, e.g. https://sync.meridia.app
  - client: HTTP client (nil uses http.DefaultClient)

Returns:
  - *HTTPMirror: The mirror client
*/
func NewHTTPMirror(baseURL string, client *http.Client) *HTTPMirror {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPMirror{baseURL: baseURL, client: client}
}

// Push sends the full document with a bearer credential when one is
// present. Any non-2xx status is a failure; the response body is ignored
// beyond that.
func (m *HTTPMirror) Push(ctx context.Context, job SyncJob) error {
	body, err := json.Marshal(job.Document)
	if err != nil {
		return fmt.Errorf("mirror_encode_failed: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPut, m.baseURL+mirrorPath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("mirror_request_failed: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")
	if job.Credential != "" {
		request.Header.Set("Authorization", "Bearer "+job.Credential)
	}

	response, err := m.client.Do(request)
	if err != nil {
		return fmt.Errorf("mirror_push_failed: %w", err)
	}
	defer response.Body.Close()
	_, _ = io.Copy(io.Discard, response.Body)

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return fmt.Errorf("mirror_push_rejected: status %d", response.StatusCode)
	}
	return nil
}
