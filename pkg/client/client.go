// Package client is the Go SDK for the FamilyCare HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/FamilyCare-Analytics/pkg/errors"
	"github.com/turtacn/FamilyCare-Analytics/pkg/types/common"
)

const Version = "0.1.0"

const apiPrefix = "/api/v1"

// Logger receives request traces.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

type noopLogger struct{}

func (noopLogger) Debugf(string, ...interface{}) {}
func (noopLogger) Infof(string, ...interface{})  {}
func (noopLogger) Errorf(string, ...interface{}) {}

// Client talks to one FamilyCare API server.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	userAgent    string
	logger       Logger
	retryMax     int
	retryWaitMin time.Duration
	retryWaitMax time.Duration

	scores       *ScoresClient
	scoresOnce   sync.Once
	sessions     *SessionsClient
	sessionsOnce sync.Once
	visits       *VisitsClient
	visitsOnce   sync.Once
	reports      *ReportsClient
	reportsOnce  sync.Once
}

// APIError is a non-2xx response.
type APIError struct {
	StatusCode int              `json:"status_code"`
	Code       errors.ErrorCode `json:"code"`
	Message    string           `json:"message"`
	Detail     string           `json:"detail,omitempty"`
	RequestID  string           `json:"request_id"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("famcare: %s (HTTP %d): %s [request_id=%s]", e.Code, e.StatusCode, e.Message, e.RequestID)
}

func (e *APIError) IsNotFound() bool { return e.StatusCode == http.StatusNotFound }
func (e *APIError) IsConflict() bool { return e.StatusCode == http.StatusConflict }

func (e *APIError) IsServerError() bool {
	return e.StatusCode >= 500 && e.StatusCode < 600
}

// IsCode reports whether err is an APIError carrying code.
func IsCode(err error, code errors.ErrorCode) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}

// NewClient creates a client for the server at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.NewValidation("base URL is required")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeValidation, "invalid base URL")
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, errors.NewValidation("base URL scheme must be http or https")
	}

	c := &Client{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		userAgent:    fmt.Sprintf("famcare-go-sdk/%s", Version),
		logger:       noopLogger{},
		retryMax:     3,
		retryWaitMin: 500 * time.Millisecond,
		retryWaitMax: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Scores returns the scoring and forms sub-client.
func (c *Client) Scores() *ScoresClient {
	c.scoresOnce.Do(func() { c.scores = &ScoresClient{client: c} })
	return c.scores
}

// Sessions returns the form-session sub-client.
func (c *Client) Sessions() *SessionsClient {
	c.sessionsOnce.Do(func() { c.sessions = &SessionsClient{client: c} })
	return c.sessions
}

// Visits returns the visit-log sub-client.
func (c *Client) Visits() *VisitsClient {
	c.visitsOnce.Do(func() { c.visits = &VisitsClient{client: c} })
	return c.visits
}

// Reports returns the community-report sub-client.
func (c *Client) Reports() *ReportsClient {
	c.reportsOnce.Do(func() { c.reports = &ReportsClient{client: c} })
	return c.reports
}

// do sends one API call and unwraps the response envelope into result.
// Network errors and 5xx responses are
// retried for GETs and for POSTs that only compute.
func (c *Client) do(ctx context.Context, method, path string, body, result interface{}) error {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	fullURL := c.baseURL + apiPrefix + path

	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal request body")
		}
		payload = b
	}

	retryMax := c.retryMax
	if method != http.MethodGet && !idempotent(path) {
		retryMax = 0
	}

	var lastErr error
	for attempt := 0; attempt <= retryMax; attempt++ {
		if attempt > 0 {
			backoff := c.calculateBackoff(attempt)
			c.logger.Debugf("retry attempt %d after %v", attempt, backoff)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		var bodyReader io.Reader
		if payload != nil {
			bodyReader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeBadRequest, "failed to create request")
		}
		requestID := uuid.New().String()
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("X-Request-ID", requestID)

		start := time.Now()
		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Errorf("request failed: %v", err)
			lastErr = errors.Wrap(err, errors.ErrCodeServiceUnavailable, "request failed")
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		c.logger.Debugf("%s %s %d (%v)", method, path, resp.StatusCode, time.Since(start))
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeServiceUnavailable, "failed to read response body")
		}

		if resp.StatusCode >= 400 {
			apiErr := decodeError(resp.StatusCode, respBody)
			if apiErr.RequestID == "" {
				apiErr.RequestID = requestID
			}
			if rid := resp.Header.Get("X-Request-ID"); rid != "" {
				apiErr.RequestID = rid
			}
			lastErr = apiErr
			if apiErr.IsServerError() {
				continue
			}
			return apiErr
		}

		if result != nil && len(respBody) > 0 {
			env := common.APIResponse[json.RawMessage]{}
			if err := json.Unmarshal(respBody, &env); err != nil {
				return errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode response envelope")
			}
			if err := json.Unmarshal(env.Data, result); err != nil {
				return errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode response data")
			}
		}
		return nil
	}
	return lastErr
}

// idempotent lists the POST endpoints that are safe to repeat.
func idempotent(path string) bool {
	return strings.HasPrefix(path, "/scores/") || strings.HasSuffix(path, "/calculate")
}

func decodeError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}
	var env common.APIResponse[json.RawMessage]
	if err := json.Unmarshal(body, &env); err == nil && env.Error != nil {
		apiErr.Code = errors.ErrorCode(env.Error.Code)
		apiErr.Message = env.Error.Message
		apiErr.Detail = env.Error.Detail
		return apiErr
	}
	apiErr.Code = errors.CodeUnknown
	apiErr.Message = strings.TrimSpace(string(body))
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}

func (c *Client) get(ctx context.Context, path string, result interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, result)
}

func (c *Client) post(ctx context.Context, path string, body, result interface{}) error {
	if body == nil {
		body = struct{}{}
	}
	return c.do(ctx, http.MethodPost, path, body, result)
}

func (c *Client) calculateBackoff(attempt int) time.Duration {
	backoff := c.retryWaitMin * time.Duration(1<<uint(attempt-1))
	if backoff > c.retryWaitMax {
		backoff = c.retryWaitMax
	}
	if quarter := int64(backoff / 4); quarter > 0 {
		backoff += time.Duration(rand.Int63n(quarter))
	}
	return backoff
}

func escape(segment string) string { return url.PathEscape(segment) }
