// Package httpclient provides a REST client whose every request runs through
// the retry executor and fault classifier, so callers receive either a
// successful response or a normalized *fault.Error.
package httpclient

import (
	"context"
	nethttp "net/http"
	"time"

	"github.com/gaborage/go-resilience/retry"
)

// Client defines the REST client interface for making HTTP requests.
type Client interface {
	Get(ctx context.Context, req *Request) (*Response, error)
	Post(ctx context.Context, req *Request) (*Response, error)
	Put(ctx context.Context, req *Request) (*Response, error)
	Patch(ctx context.Context, req *Request) (*Response, error)
	Delete(ctx context.Context, req *Request) (*Response, error)
	Do(ctx context.Context, method string, req *Request) (*Response, error)
}

// Request represents an outbound HTTP request.
type Request struct {
	URL     string
	Headers map[string]string
	Body    []byte
	Auth    *BasicAuth
}

// Response represents a successful HTTP response.
type Response struct {
	StatusCode int
	Body       []byte
	Headers    nethttp.Header
	Elapsed    time.Duration
}

// BasicAuth contains basic authentication credentials.
type BasicAuth struct {
	Username string
	Password string
}

// Config holds the REST client configuration.
type Config struct {
	Timeout        time.Duration
	Policy         retry.Policy
	BasicAuth      *BasicAuth
	DefaultHeaders map[string]string
}

// DefaultTimeout is the default request timeout duration.
const DefaultTimeout = 30 * time.Second
