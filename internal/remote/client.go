// Package remote implements statesync.Remote over the backend's
// /api/state endpoints.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hongminglow/medtour-be/internal/access"
	"github.com/hongminglow/medtour-be/internal/http/respond"
	"github.com/hongminglow/medtour-be/internal/models"
	"github.com/hongminglow/medtour-be/internal/models/dto"
	"github.com/hongminglow/medtour-be/internal/statesync"
)

var _ statesync.Remote = (*Client)(nil)

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("remote: %d %s", e.Status, e.Message)
}

// Client talks to the backend with a bearer token.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// New returns a Client for baseURL.
func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Read fetches the caller's state document. The server derives the subject
// from the token, so key.SubjectID is not sent.
func (c *Client) Read(ctx context.Context, key models.StateKey) (json.RawMessage, bool, error) {
	resp, err := c.do(ctx, http.MethodGet, statePath(key), nil)
	if err != nil {
		return nil, false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, false, nil
	}
	if err := checkStatus(resp); err != nil {
		return nil, false, err
	}
	env, err := respond.Decode[models.StateRecord](resp.Body)
	if err != nil {
		return nil, false, err
	}
	return env.Data.Payload, true, nil
}

// Upsert replaces the caller's state document.
func (c *Client) Upsert(ctx context.Context, key models.StateKey, payload json.RawMessage) error {
	resp, err := c.do(ctx, http.MethodPut, statePath(key), payload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return checkStatus(resp)
}

// Access asks the backend for the gate decision on path, previewing viewAs
// when the caller is an admin.
func (c *Client) Access(ctx context.Context, path string, viewAs access.ViewAs) (dto.AccessResponse, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/access?path="+url.QueryEscape(path), nil)
	if err != nil {
		return dto.AccessResponse{}, err
	}
	if viewAs != "" {
		req.Header.Set(access.HeaderViewAs, string(viewAs))
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return dto.AccessResponse{}, fmt.Errorf("remote: %w", err)
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return dto.AccessResponse{}, err
	}
	env, err := respond.Decode[dto.AccessResponse](resp.Body)
	if err != nil {
		return dto.AccessResponse{}, err
	}
	return env.Data, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("remote: %w", err)
	}
	return resp, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body []byte) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("remote: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func statePath(key models.StateKey) string {
	return "/api/state/" + url.PathEscape(key.ScopeID) + "/" + url.PathEscape(key.StateKey)
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	e := &StatusError{Status: resp.StatusCode}
	if env, err := respond.Decode[json.RawMessage](resp.Body); err == nil {
		e.Message = env.Message
	}
	return e
}
