// Package remote is a typed HTTP client for the managed codebase indexing
// service: upsert, search, delete, and manifest retrieval over a bearer
// authenticated HTTPS API.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v5"
)

const maxUpsertBatch = 60

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying *http.Client, e.g. for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the underlying *http.Client's Timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// Client talks to the remote indexing service.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// NewClient builds a Client authenticated with token. deriveBaseURL decides
// the API host from the token (region/tenancy encoding); pass
// DefaultDeriveBaseURL in production, or a fixed stub in tests.
func NewClient(token string, deriveBaseURL func(token string) string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    deriveBaseURL(token),
		token:      token,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("remote: marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("remote: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Cause: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Cause: err}
	}

	if resp.StatusCode >= 400 {
		return &RemoteError{Status: resp.StatusCode, Body: string(respBody)}
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("remote: decode response: %w", err)
		}
	}
	return nil
}

// Upsert writes chunks to the server index. Callers must not exceed the
// 60-chunk batch cap; Upsert rejects larger batches rather than silently
// splitting them.
func (c *Client) Upsert(ctx context.Context, chunks []Chunk) error {
	if len(chunks) > maxUpsertBatch {
		return fmt.Errorf("remote: upsert batch of %d exceeds max %d", len(chunks), maxUpsertBatch)
	}

	op := func() (struct{}, error) {
		err := c.do(ctx, http.MethodPut, "/api/codebase-indexing/upsert", nil, upsertRequest{Chunks: chunks}, nil)
		if err != nil {
			var remoteErr *RemoteError
			if errors.As(err, &remoteErr) && remoteErr.Status < 500 {
				return struct{}{}, backoff.Permanent(err)
			}
			return struct{}{}, err
		}
		return struct{}{}, nil
	}

	_, err := backoff.Retry(ctx, op, backoff.WithBackOff(retryBackOff()), backoff.WithMaxTries(3))
	return err
}

// Search queries the remote index.
func (c *Client) Search(ctx context.Context, req SearchRequest) ([]SearchResult, error) {
	var results []SearchResult
	err := c.do(ctx, http.MethodPost, "/api/codebase-indexing/search", nil, req, &results)
	if err != nil {
		return nil, err
	}
	return results, nil
}

// DeleteFiles removes specific files from the branch's server index.
func (c *Client) DeleteFiles(ctx context.Context, org, project, branch string, filePaths []string) error {
	return c.do(ctx, http.MethodDelete, "/api/codebase-indexing/files", nil, deleteFilesRequest{
		OrganizationID: org,
		ProjectID:      project,
		GitBranch:      branch,
		FilePaths:      filePaths,
	}, nil)
}

// DeleteBranch removes all indexed data for a branch.
func (c *Client) DeleteBranch(ctx context.Context, org, project, branch string) error {
	return c.do(ctx, http.MethodDelete, "/api/codebase-indexing/branch", nil, deleteBranchRequest{
		OrganizationID: org,
		ProjectID:      project,
		GitBranch:      branch,
	}, nil)
}

// DeleteProject removes all indexed data for a project across all branches.
func (c *Client) DeleteProject(ctx context.Context, org, project string) error {
	return c.do(ctx, http.MethodDelete, "/api/codebase-indexing/project", nil, deleteProjectRequest{
		OrganizationID: org,
		ProjectID:      project,
	}, nil)
}

// Manifest fetches the server's advisory view of a branch's indexed state.
// A 404 is not an error: ok is false and the caller should treat the branch
// as having no chunks yet.
func (c *Client) Manifest(ctx context.Context, org, project, branch string) (*Manifest, bool, error) {
	q := url.Values{
		"organizationId": {org},
		"projectId":      {project},
		"gitBranch":      {branch},
	}

	var m Manifest
	err := c.do(ctx, http.MethodGet, "/api/codebase-indexing/manifest", q, nil, &m)
	var remoteErr *RemoteError
	if errors.As(err, &remoteErr) && remoteErr.Status == http.StatusNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &m, true, nil
}

func retryBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.Multiplier = 2
	b.RandomizationFactor = 0.2
	return b
}
