/*
Copyright 2024-2025 the Unikorn Authors.
Copyright 2026 Nscale.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

//nolint:revive // naming conventions acceptable in test code
package api

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-resty/resty/v2"
)

var (
	// ErrTransport wraps failures where no HTTP response was received.
	ErrTransport = errors.New("http request failed")

	// ErrEmptyToken is returned when a session is requested without a token.
	ErrEmptyToken = errors.New("empty bearer token")

	// ErrMissingCredentials is returned when a username or password is empty.
	ErrMissingCredentials = errors.New("username and password are required")

	// ErrClientClosed is returned by any use of a client after Close.
	ErrClientClosed = errors.New("api client closed")
)

// Response is the status and raw body of a completed request. Non-2xx
// statuses are not errors; callers assert on them.
type Response struct {
	StatusCode  int
	Body        []byte
	TraceParent string
	TraceID     string
	Duration    time.Duration
}

func (r *Response) String() string {
	return string(r.Body)
}

// JSON decodes the response body into target.
func (r *Response) JSON(target any) error {
	if err := json.Unmarshal(r.Body, target); err != nil {
		return fmt.Errorf("unmarshaling response body: %w (trace ID: %s)", err, r.TraceID)
	}

	return nil
}

// APIClient sends requests to one Foody API base URL. A client built by
// NewSessionClient attaches its bearer token to every request; the token
// cannot be changed afterwards.
type APIClient struct {
	client    *resty.Client
	config    *TestConfig
	endpoints *Endpoints
	logger    logr.Logger
	closed    atomic.Bool
}

// NewAPIClient returns an unauthenticated client, used for login.
func NewAPIClient(config *TestConfig, logger logr.Logger) *APIClient {
	return newAPIClientWithConfig(config, logger)
}

// NewSessionClient returns a client bound to the given bearer token.
func NewSessionClient(config *TestConfig, token string, logger logr.Logger) (*APIClient, error) {
	if token == "" {
		return nil, ErrEmptyToken
	}

	c := newAPIClientWithConfig(config, logger)
	c.client.SetAuthToken(token)

	return c, nil
}

// common constructor logic.
func newAPIClientWithConfig(config *TestConfig, logger logr.Logger) *APIClient {
	client := resty.New().
		SetBaseURL(strings.TrimSuffix(config.BaseURL, "/")).
		SetTimeout(config.RequestTimeout).
		SetHeader("Accept", "application/json").
		SetLogger(&restyLogger{logger: logger.WithName("resty")})

	return &APIClient{
		client:    client,
		config:    config,
		endpoints: NewEndpoints(),
		logger:    logger,
	}
}

// Close releases pooled connections. Only the first call succeeds.
func (c *APIClient) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return ErrClientClosed
	}

	c.client.GetClient().CloseIdleConnections()

	return nil
}

// logError logs a generic error with trace context.
func (c *APIClient) logError(method, path string, duration time.Duration, traceParent string, err error, context string) {
	c.logger.Error(err, context, "method", method, "path", path, "duration", duration, "traceparent", traceParent)
	c.logTraceContext(traceParent)
}

// logUnexpectedStatus logs an unexpected HTTP status code.
func (c *APIClient) logUnexpectedStatus(method, path string, expectedStatus, actualStatus int, body, traceParent string) {
	c.logger.Info("unexpected status", "method", method, "path", path, "expected", expectedStatus, "got", actualStatus, "body", body, "traceparent", traceParent)
	c.logTraceContext(traceParent)
}

// logTraceContext logs the trace context information.
func (c *APIClient) logTraceContext(traceParent string) {
	c.logger.Info(fmt.Sprintf("TRACE CONTEXT: Use trace ID '%s' to search logs for this request", extractTraceID(traceParent)))
}

// generateTraceID creates a new W3C trace ID.
// A fresh trace ID per request lets a failure be found in the server logs.
func generateTraceID() string {
	bytes := make([]byte, 16)
	_, _ = rand.Read(bytes)

	return hex.EncodeToString(bytes)
}

// generateSpanID creates a new W3C span ID.
func generateSpanID() string {
	bytes := make([]byte, 8)
	_, _ = rand.Read(bytes)

	return hex.EncodeToString(bytes)
}

// createTraceParent creates a W3C traceparent header value.
func createTraceParent() string {
	traceID := generateTraceID()
	spanID := generateSpanID()

	return fmt.Sprintf("00-%s-%s-01", traceID, spanID)
}

// extractTraceID extracts the trace ID from a traceparent header value.
func extractTraceID(traceParent string) string {
	parts := strings.Split(traceParent, "-")
	if len(parts) >= 2 {
		return parts[1]
	}

	return traceParent
}

// Execute sends one request and returns the response whatever its status.
// The error is only set when no response was received.
func (c *APIClient) Execute(ctx context.Context, method, path string, body any) (*Response, error) {
	if c.closed.Load() {
		return nil, ErrClientClosed
	}

	// Add W3C Trace Context headers
	traceParent := createTraceParent()

	request := c.client.R().
		SetContext(ctx).
		SetHeader("Traceparent", traceParent).
		SetHeader("Tracestate", "test-automation=foody")

	if body != nil {
		request.SetHeader("Content-Type", "application/json").SetBody(body)
	}

	start := time.Now()
	resp, err := request.Execute(method, path)
	duration := time.Since(start)

	if err != nil {
		c.logError(method, path, duration, traceParent, err, "http request failed")
		return nil, fmt.Errorf("%w: %s %s: %w (trace ID: %s)", ErrTransport, method, path, err, extractTraceID(traceParent))
	}

	if c.config.LogRequests {
		c.logger.Info("request", "method", method, "path", path, "status", resp.StatusCode(), "duration", duration, "traceparent", traceParent)
	}

	if c.config.LogResponses && len(resp.Body()) > 0 {
		c.logger.Info("response body", "method", method, "path", path, "body", resp.String())
	}

	return &Response{
		StatusCode:  resp.StatusCode(),
		Body:        resp.Body(),
		TraceParent: traceParent,
		TraceID:     extractTraceID(traceParent),
		Duration:    duration,
	}, nil
}

// Authenticate exchanges credentials for an access token. A response that is
// not JSON, or lacks a string accessToken, yields an empty token and no
// error; only transport failures are errors.
func (c *APIClient) Authenticate(ctx context.Context, credentials Credentials) (string, error) {
	if credentials.Username == "" || credentials.Password == "" {
		return "", ErrMissingCredentials
	}

	resp, err := c.Execute(ctx, http.MethodPost, c.endpoints.Authentication(), credentials)
	if err != nil {
		return "", fmt.Errorf("authenticating: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logUnexpectedStatus(http.MethodPost, c.endpoints.Authentication(), http.StatusOK, resp.StatusCode, resp.String(), resp.TraceParent)
	}

	return extractAccessToken(resp.Body), nil
}

func extractAccessToken(body []byte) string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}

	token, _ := payload["accessToken"].(string)

	return token
}

// Authenticate performs a one-off login against the configured base URL.
func Authenticate(ctx context.Context, config *TestConfig, credentials Credentials, logger logr.Logger) (string, error) {
	login := NewAPIClient(config, logger.WithName("login"))
	defer func() { _ = login.Close() }()

	return login.Authenticate(ctx, credentials)
}

// CreateFood posts a new food.
func (c *APIClient) CreateFood(ctx context.Context, food FoodDTO) (*Response, error) {
	return c.Execute(ctx, http.MethodPost, c.endpoints.CreateFood(), food)
}

// EditFood applies patch operations to a food.
func (c *APIClient) EditFood(ctx context.Context, foodID string, operations []PatchOperation) (*Response, error) {
	return c.Execute(ctx, http.MethodPatch, c.endpoints.EditFood(foodID), operations)
}

// ListFoods lists every food.
func (c *APIClient) ListFoods(ctx context.Context) (*Response, error) {
	return c.Execute(ctx, http.MethodGet, c.endpoints.ListFoods(), nil)
}

// DeleteFood deletes a food.
func (c *APIClient) DeleteFood(ctx context.Context, foodID string) (*Response, error) {
	return c.Execute(ctx, http.MethodDelete, c.endpoints.DeleteFood(foodID), nil)
}

// restyLogger routes resty's own warnings through logr.
type restyLogger struct {
	logger logr.Logger
}

func (l *restyLogger) Errorf(format string, v ...any) {
	l.logger.Error(nil, strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l *restyLogger) Warnf(format string, v ...any) {
	l.logger.Info(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l *restyLogger) Debugf(format string, v ...any) {
	l.logger.V(1).Info(strings.TrimSpace(fmt.Sprintf(format, v...)))
}
