// Package apiclient is the single fetch collaborator used by the client core to
// talk to the remote API. It attaches the bearer credential and a request ID,
// maps failure statuses onto typed errors and checks the shape of every
// decoded response before handing it back.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/academic-tracker/pkg/errors"
	"github.com/noah-isme/academic-tracker/pkg/middleware/requestid"
)

const maxBodyBytes = 8 << 20

// Credentials supplies the bearer token for authenticated calls.
type Credentials interface {
	BearerToken() string
}

// Observer records the outcome of every call.
type Observer interface {
	ObserveAPICall(operation string, status int, duration time.Duration)
}

// Config configures the transport.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Request describes one API call.
type Request struct {
	// Operation labels the call in logs and metrics, e.g. "stages.list".
	Operation string
	Method    string
	// Path is joined to the base URL. Callers escape dynamic segments.
	Path  string
	Query url.Values
	Body  interface{}
	// Anonymous skips the Authorization header (login and register).
	Anonymous bool
}

// Client performs JSON requests against the remote API.
type Client struct {
	baseURL     string
	http        *http.Client
	credentials Credentials
	validator   *validator.Validate
	logger      *zap.Logger
	observer    Observer
}

// New constructs a Client. credentials may be nil for an anonymous client.
func New(cfg Config, credentials Credentials, validate *validator.Validate, logger *zap.Logger, observer Observer) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		http:        &http.Client{Timeout: timeout},
		credentials: credentials,
		validator:   validate,
		logger:      logger,
		observer:    observer,
	}
}

// WithCredentials returns a copy of the client bound to other credentials,
// typically the session obtained from a login.
func (c *Client) WithCredentials(credentials Credentials) *Client {
	clone := *c
	clone.credentials = credentials
	return &clone
}

// WithHTTPClient swaps the underlying transport, mainly for tests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	clone := *c
	clone.http = hc
	return &clone
}

// Do executes req and decodes a successful JSON response into out when out is non-nil.
func (c *Client) Do(ctx context.Context, req Request, out interface{}) error {
	httpReq, reqID, err := c.newRequest(ctx, req)
	if err != nil {
		return err
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.observe(req.Operation, 0, time.Since(start))
		c.logger.Warn("api call failed", zap.String("operation", req.Operation), zap.String("request_id", reqID), zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrTransport.Code, appErrors.ErrTransport.Status, appErrors.ErrTransport.Message)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	duration := time.Since(start)
	c.observe(req.Operation, resp.StatusCode, duration)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrTransport.Code, appErrors.ErrTransport.Status, "failed to read response body")
	}

	fields := []zap.Field{
		zap.String("operation", req.Operation),
		zap.String("request_id", reqID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", duration),
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := appErrors.FromStatus(resp.StatusCode, remoteMessage(body))
		c.logger.Info("api call refused", append(fields, zap.String("message", apiErr.Message))...)
		return apiErr
	}
	c.logger.Debug("api call", fields...)

	if out == nil {
		return nil
	}
	if err := c.decode(body, out); err != nil {
		c.logger.Warn("api response rejected", append(fields, zap.Error(err))...)
		return err
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, req Request) (*http.Request, string, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	path := req.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	target := c.baseURL + path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to encode request body")
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to build request")
	}
	reqID := requestid.New()
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(requestid.Header, reqID)
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if !req.Anonymous && c.credentials != nil {
		if token := c.credentials.BearerToken(); token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return httpReq, reqID, nil
}

// decode unmarshals the body and validates its shape. A top-level array must
// be present and each of its struct elements must pass validation.
func (c *Client) decode(body []byte, out interface{}) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return appErrors.Clone(appErrors.ErrParse, "empty response body")
	}
	if err := json.Unmarshal(body, out); err != nil {
		return appErrors.Wrap(err, appErrors.ErrParse.Code, appErrors.ErrParse.Status, appErrors.ErrParse.Message)
	}

	v := reflect.ValueOf(out)
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Struct:
		if err := c.validator.Struct(v.Interface()); err != nil {
			return shapeError(err)
		}
	case reflect.Slice:
		if v.IsNil() {
			return appErrors.Clone(appErrors.ErrParse, "expected a JSON array")
		}
		for i := 0; i < v.Len(); i++ {
			elem := v.Index(i)
			if elem.Kind() != reflect.Struct {
				continue
			}
			if err := c.validator.Struct(elem.Interface()); err != nil {
				return shapeError(fmt.Errorf("element %d: %w", i, err))
			}
		}
	}
	return nil
}

func shapeError(err error) *appErrors.Error {
	return appErrors.Wrap(err, appErrors.ErrParse.Code, appErrors.ErrParse.Status, appErrors.ErrParse.Message)
}

func (c *Client) observe(operation string, status int, d time.Duration) {
	if c.observer != nil {
		c.observer.ObserveAPICall(operation, status, d)
	}
}

// remoteMessage extracts {"message": "..."} from an error body when present.
func remoteMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return strings.TrimSpace(payload.Message)
}

// IsTransport reports whether err is a connectivity failure with no response.
func IsTransport(err error) bool {
	return errors.Is(err, appErrors.ErrTransport)
}
