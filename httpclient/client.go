package httpclient

import (
	"bytes"
	"context"
	"io"
	nethttp "net/http"
	"time"

	"github.com/gaborage/go-resilience/fault"
	"github.com/gaborage/go-resilience/logger"
	"github.com/gaborage/go-resilience/retry"
	"github.com/gaborage/go-resilience/trace"
)

// client implements the Client interface.
type client struct {
	httpClient *nethttp.Client
	executor   *retry.Executor
	log        logger.Logger
	config     *Config
}

// DefaultPolicy returns the retry policy used by the client when none is
// configured: the stock defaults plus external-api failures, since upstream
// 5xx responses are usually transient.
func DefaultPolicy() retry.Policy {
	p := retry.Default()
	p.RetryableKinds = append(p.RetryableKinds, fault.KindExternalAPI)
	return p
}

// Builder provides a fluent interface for configuring the REST client.
type Builder struct {
	config     *Config
	classifier *fault.Classifier
	log        logger.Logger
}

// NewBuilder creates a client builder with default configuration.
func NewBuilder(log logger.Logger) *Builder {
	return &Builder{
		config: &Config{
			Timeout:        DefaultTimeout,
			Policy:         DefaultPolicy(),
			DefaultHeaders: make(map[string]string),
		},
		log: log,
	}
}

// WithTimeout sets the per-request timeout.
func (b *Builder) WithTimeout(timeout time.Duration) *Builder {
	b.config.Timeout = timeout
	return b
}

// WithPolicy sets the retry policy.
func (b *Builder) WithPolicy(p retry.Policy) *Builder {
	b.config.Policy = p
	return b
}

// WithClassifier sets a custom fault classifier, typically one extended with
// vendor adapters.
func (b *Builder) WithClassifier(c *fault.Classifier) *Builder {
	b.classifier = c
	return b
}

// WithBasicAuth sets basic authentication credentials.
func (b *Builder) WithBasicAuth(username, password string) *Builder {
	b.config.BasicAuth = &BasicAuth{Username: username, Password: password}
	return b
}

// WithDefaultHeader adds a header sent with every request.
func (b *Builder) WithDefaultHeader(key, value string) *Builder {
	b.config.DefaultHeaders[key] = value
	return b
}

// Build creates the REST client.
func (b *Builder) Build() Client {
	classifier := b.classifier
	if classifier == nil {
		classifier = fault.NewClassifier()
	}
	return &client{
		httpClient: &nethttp.Client{Timeout: b.config.Timeout},
		executor:   retry.NewExecutor(b.config.Policy, classifier, b.log),
		log:        b.log,
		config:     b.config,
	}
}

// NewClient creates a REST client with default configuration.
func NewClient(log logger.Logger) Client {
	return NewBuilder(log).Build()
}

// Get performs a GET request.
func (c *client) Get(ctx context.Context, req *Request) (*Response, error) {
	return c.Do(ctx, nethttp.MethodGet, req)
}

// Post performs a POST request.
func (c *client) Post(ctx context.Context, req *Request) (*Response, error) {
	return c.Do(ctx, nethttp.MethodPost, req)
}

// Put performs a PUT request.
func (c *client) Put(ctx context.Context, req *Request) (*Response, error) {
	return c.Do(ctx, nethttp.MethodPut, req)
}

// Patch performs a PATCH request.
func (c *client) Patch(ctx context.Context, req *Request) (*Response, error) {
	return c.Do(ctx, nethttp.MethodPatch, req)
}

// Delete performs a DELETE request.
func (c *client) Delete(ctx context.Context, req *Request) (*Response, error) {
	return c.Do(ctx, nethttp.MethodDelete, req)
}

// Do performs an HTTP request with the specified method. Transport failures
// and non-2xx statuses are retried per the configured policy; the terminal
// error is always a *fault.Error.
func (c *client) Do(ctx context.Context, method string, req *Request) (*Response, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	return retry.DoValue(ctx, c.executor, func(ctx context.Context) (*Response, error) {
		return c.attempt(ctx, method, req)
	})
}

// attempt executes a single request/response cycle.
func (c *client) attempt(ctx context.Context, method string, req *Request) (*Response, error) {
	start := time.Now()

	httpReq, err := c.buildRequest(ctx, method, req)
	if err != nil {
		return nil, err
	}

	if c.log != nil {
		c.log.Debug().Str("method", method).Str("url", req.URL).Msg("Sending HTTP request")
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, err
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Body:       respBody,
		Headers:    httpResp.Header,
		Elapsed:    time.Since(start),
	}

	if c.log != nil {
		c.log.Debug().
			Str("method", method).
			Str("url", req.URL).
			Int("status", resp.StatusCode).
			Dur("elapsed", resp.Elapsed).
			Msg("Received HTTP response")
	}

	if !IsSuccessStatus(resp.StatusCode) {
		return nil, &StatusError{Status: resp.StatusCode, Body: respBody}
	}
	return resp, nil
}

// buildRequest constructs an *http.Request and applies headers and auth.
func (c *client) buildRequest(ctx context.Context, method string, req *Request) (*nethttp.Request, error) {
	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := nethttp.NewRequestWithContext(ctx, method, req.URL, body)
	if err != nil {
		return nil, fault.NewValidationError("failed to build HTTP request").WithCause(err)
	}

	for key, value := range c.config.DefaultHeaders {
		httpReq.Header.Set(key, value)
	}
	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}
	if httpReq.Header.Get("Content-Type") == "" && req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if httpReq.Header.Get(trace.HeaderXRequestID) == "" {
		httpReq.Header.Set(trace.HeaderXRequestID, trace.EnsureRequestID(ctx))
	}

	auth := req.Auth
	if auth == nil {
		auth = c.config.BasicAuth
	}
	if auth != nil {
		httpReq.SetBasicAuth(auth.Username, auth.Password)
	}

	return httpReq, nil
}

func validateRequest(req *Request) error {
	if req == nil {
		return fault.NewValidationError("request cannot be nil")
	}
	if req.URL == "" {
		return fault.NewValidationError("URL cannot be empty")
	}
	return nil
}
