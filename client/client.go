package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// refreshPath is the token exchange endpoint. Requests to it are never
// themselves retried on 401.
const refreshPath = "token/refresh/"

// Client is the single configured HTTP transport for the garage API. It
// holds the base URL, attaches the session's bearer token to every request,
// and transparently performs the refresh-and-retry dance on 401 responses:
// at most one refresh per original request, with concurrent refreshes
// deduplicated into a single in-flight attempt.
type Client struct {
	baseURL string
	http    *http.Client
	session *Session
	log     *logrus.Logger

	refreshMu sync.Mutex
	inflight  *refreshAttempt
}

// refreshAttempt is one shared in-flight token refresh
type refreshAttempt struct {
	done chan struct{}
	err  error
}

// New creates a client for the API rooted at baseURL
func New(baseURL string, session *Session, log *logrus.Logger) *Client {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}
	return &Client{
		baseURL: baseURL,
		session: session,
		log:     log,
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Session returns the session this client authenticates with
func (c *Client) Session() *Session {
	return c.session
}

// Get issues a GET request and decodes the response into out
func (c *Client) Get(ctx context.Context, path string, query url.Values, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

// Post issues a POST request with a JSON body and decodes the response into out
func (c *Client) Post(ctx context.Context, path string, body interface{}, out interface{}) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

// Patch issues a PATCH request with a JSON body and decodes the response into out
func (c *Client) Patch(ctx context.Context, path string, body interface{}, out interface{}) error {
	return c.do(ctx, http.MethodPatch, path, nil, body, out)
}

// Delete issues a DELETE request
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

// do runs one request. On a 401 it refreshes the token pair and replays the
// request exactly once; a second 401 propagates so a broken token cannot
// cause a retry loop.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body interface{}, out interface{}) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	err := c.send(ctx, method, path, query, payload, out)
	if !IsUnauthorized(err) || path == refreshPath {
		return err
	}

	if refreshErr := c.refreshTokens(ctx); refreshErr != nil {
		return refreshErr
	}

	err = c.send(ctx, method, path, query, payload, out)
	if IsUnauthorized(err) {
		// The replayed request was rejected with a fresh token: hard auth
		// failure, not an expiry.
		c.log.Warn("request unauthorized after token refresh, logging out")
		c.session.Logout()
	}
	return err
}

// send executes a single HTTP round trip without any retry behavior
func (c *Client) send(ctx context.Context, method, path string, query url.Values, payload []byte, out interface{}) error {
	u := c.baseURL + strings.TrimPrefix(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.session.AccessToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.log.WithError(closeErr).Warn("failed to close response body")
		}
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return parseAPIError(resp.StatusCode, data)
	}

	if out != nil && len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// refreshTokens exchanges the refresh token for a new pair. Concurrent
// callers share a single in-flight attempt: the first one performs the
// exchange, the rest wait for its outcome.
func (c *Client) refreshTokens(ctx context.Context) error {
	c.refreshMu.Lock()
	if attempt := c.inflight; attempt != nil {
		c.refreshMu.Unlock()
		select {
		case <-attempt.done:
			return attempt.err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	attempt := &refreshAttempt{done: make(chan struct{})}
	c.inflight = attempt
	c.refreshMu.Unlock()

	attempt.err = c.doRefresh(ctx)

	c.refreshMu.Lock()
	c.inflight = nil
	c.refreshMu.Unlock()
	close(attempt.done)

	return attempt.err
}

// tokenPair is the refresh endpoint's response shape. The endpoint may
// rotate the refresh token or leave it out to keep the current one.
type tokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

func (c *Client) doRefresh(ctx context.Context) error {
	refresh := c.session.RefreshToken()
	if refresh == "" {
		c.session.Logout()
		return ErrLoggedOut
	}

	payload, err := json.Marshal(map[string]string{"refresh": refresh})
	if err != nil {
		return fmt.Errorf("failed to encode refresh request: %w", err)
	}

	var pair tokenPair
	if err := c.send(ctx, http.MethodPost, refreshPath, nil, payload, &pair); err != nil {
		c.log.WithError(err).Warn("token refresh rejected, logging out")
		c.session.Logout()
		return fmt.Errorf("token refresh failed: %w", ErrLoggedOut)
	}

	if pair.Refresh == "" {
		pair.Refresh = refresh
	}
	if err := c.session.SetTokens(pair.Access, pair.Refresh); err != nil {
		return err
	}

	c.log.Debug("access token refreshed")
	return nil
}

// parseAPIError turns an error response into an APIError. It understands the
// backend's {"success":false,"error":{code,message}} envelope and falls back
// to the raw body for anything else.
func parseAPIError(status int, data []byte) error {
	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(data, &envelope); err == nil && envelope.Error.Message != "" {
		return &APIError{StatusCode: status, Code: envelope.Error.Code, Message: envelope.Error.Message}
	}

	message := strings.TrimSpace(string(data))
	if message == "" {
		message = http.StatusText(status)
	}
	return &APIError{StatusCode: status, Message: message}
}
