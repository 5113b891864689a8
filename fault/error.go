package fault

import (
	"errors"
	"time"
)

// Context carries request metadata attached to a classified error.
type Context struct {
	UserID    string    `json:"user_id,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	Endpoint  string    `json:"endpoint,omitempty"`
	Method    string    `json:"method,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Error is the canonical normalized error record. The underlying cause is
// retained for diagnostics but deliberately unexported so it is never
// serialized to external callers.
type Error struct {
	Kind       Kind     `json:"kind"`
	Code       string   `json:"code,omitempty"`
	Message    string   `json:"message"`
	HTTPStatus int      `json:"http_status"`
	Severity   Severity `json:"severity"`
	Retryable  bool     `json:"retryable"`
	Context    Context  `json:"context"`

	cause error
}

// New creates an Error of the given kind with per-kind defaults applied.
// An empty message falls back to the kind's default message.
func New(kind Kind, message string) *Error {
	p := profileFor(kind)
	if message == "" {
		message = p.message
	}
	return &Error{
		Kind:       kind,
		Code:       p.code,
		Message:    message,
		HTTPStatus: p.httpStatus,
		Severity:   p.severity,
		Retryable:  p.retryable,
		Context:    Context{Timestamp: time.Now().UTC()},
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Code == "" {
		return e.Message
	}
	return e.Code + ": " + e.Message
}

// Unwrap exposes the underlying cause to errors.Is/As chains.
func (e *Error) Unwrap() error {
	return e.cause
}

// Cause returns the original underlying error, if any.
func (e *Error) Cause() error {
	return e.cause
}

// WithCause attaches the original underlying error.
func (e *Error) WithCause(cause error) *Error {
	e.cause = cause
	return e
}

// WithCode overrides the vendor/application-specific code.
func (e *Error) WithCode(code string) *Error {
	e.Code = code
	return e
}

// WithRetryable overrides the kind's default retryability. This is the only
// sanctioned way to break the kind/retryable pairing.
func (e *Error) WithRetryable(retryable bool) *Error {
	e.Retryable = retryable
	return e
}

// WithSeverity overrides the kind's default severity.
func (e *Error) WithSeverity(severity Severity) *Error {
	e.Severity = severity
	return e
}

// WithHTTPStatus overrides the surfaced HTTP status.
func (e *Error) WithHTTPStatus(status int) *Error {
	e.HTTPStatus = status
	return e
}

// WithContext merges the supplied request metadata into the error. A zero
// timestamp is preserved from the existing context.
func (e *Error) WithContext(ctx Context) *Error {
	if ctx.Timestamp.IsZero() {
		ctx.Timestamp = e.Context.Timestamp
	}
	if ctx.Timestamp.IsZero() {
		ctx.Timestamp = time.Now().UTC()
	}
	e.Context = ctx
	return e
}

// NewNetworkError creates a network-kind error.
func NewNetworkError(message string) *Error {
	return New(KindNetwork, message)
}

// NewTimeoutError creates a timeout-kind error.
func NewTimeoutError(message string) *Error {
	return New(KindTimeout, message)
}

// NewAuthenticationError creates an authentication-kind error.
func NewAuthenticationError(message string) *Error {
	return New(KindAuthentication, message)
}

// NewAuthorizationError creates an authorization-kind error.
func NewAuthorizationError(message string) *Error {
	return New(KindAuthorization, message)
}

// NewValidationError creates a validation-kind error.
func NewValidationError(message string) *Error {
	return New(KindValidation, message)
}

// NewRateLimitError creates a rate-limit-kind error.
func NewRateLimitError(message string) *Error {
	return New(KindRateLimit, message)
}

// NewServiceUnavailableError creates a service-unavailable-kind error.
func NewServiceUnavailableError(message string) *Error {
	return New(KindServiceUnavailable, message)
}

// NewInternalError creates an internal-kind error.
func NewInternalError(message string) *Error {
	return New(KindInternal, message)
}

// NewExternalAPIError creates an external-api-kind error.
func NewExternalAPIError(message string) *Error {
	return New(KindExternalAPI, message)
}

// NewDatabaseError creates a database-kind error.
func NewDatabaseError(message string) *Error {
	return New(KindDatabase, message)
}

// NewUploadError creates an upload-kind error.
func NewUploadError(message string) *Error {
	return New(KindUpload, message)
}

// NewAIServiceError creates an ai-service-kind error.
func NewAIServiceError(message string) *Error {
	return New(KindAIService, message)
}

// NewFaceRecognitionError creates a face-recognition-kind error.
func NewFaceRecognitionError(message string) *Error {
	return New(KindFaceRecognition, message)
}

// As extracts a *fault.Error from an error chain.
func As(err error) (*Error, bool) {
	var fe *Error
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

// IsKind reports whether err is (or wraps) a fault.Error of the given kind.
func IsKind(err error, kind Kind) bool {
	fe, ok := As(err)
	return ok && fe.Kind == kind
}

// IsRetryable reports whether err is (or wraps) a fault.Error flagged
// retryable. Unclassified errors are not retryable.
func IsRetryable(err error) bool {
	fe, ok := As(err)
	return ok && fe.Retryable
}
