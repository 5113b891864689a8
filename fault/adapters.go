package fault

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"net/http"
	"syscall"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/labstack/echo/v4"
)

// StatusCarrier is implemented by errors that expose an HTTP status, such as
// typed API errors from upstream clients.
type StatusCarrier interface {
	HTTPStatus() int
}

// statusCoder matches the StatusCode() convention used by several HTTP client
// error types.
type statusCoder interface {
	StatusCode() int
}

// normalizeStatus classifies errors that carry an explicit HTTP status:
// *echo.HTTPError plus the StatusCarrier and StatusCode conventions.
func normalizeStatus(err error) (*Error, bool) {
	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		return classifyStatus(echoErr.Code, fmt.Sprintf("%v", echoErr.Message)), true
	}

	var carrier StatusCarrier
	if errors.As(err, &carrier) {
		return classifyStatus(carrier.HTTPStatus(), err.Error()), true
	}

	var coder statusCoder
	if errors.As(err, &coder) {
		return classifyStatus(coder.StatusCode(), err.Error()), true
	}

	return nil, false
}

// classifyStatus maps an HTTP status code to a kind per the fixed precedence:
// 401 authentication, 403 authorization, 429 rate-limit, 503
// service-unavailable, other 4xx validation, 5xx external-api.
func classifyStatus(status int, message string) *Error {
	var e *Error
	switch {
	case status == http.StatusUnauthorized:
		e = New(KindAuthentication, message)
	case status == http.StatusForbidden:
		e = New(KindAuthorization, message)
	case status == http.StatusTooManyRequests:
		e = New(KindRateLimit, message)
	case status == http.StatusServiceUnavailable:
		e = New(KindServiceUnavailable, message)
	case status >= 400 && status < 500:
		e = New(KindValidation, message)
	case status >= 500:
		e = New(KindExternalAPI, message)
	default:
		e = New(KindInternal, message)
	}
	return e.WithHTTPStatus(normalizeSurfacedStatus(status))
}

// normalizeSurfacedStatus keeps the original status when it is a valid HTTP
// error status, otherwise falls back to 500.
func normalizeSurfacedStatus(status int) int {
	if status >= 400 && status < 600 {
		return status
	}
	return http.StatusInternalServerError
}

// normalizeDatabase classifies database driver failures: pgx wire errors and
// the generic bad-connection sentinel.
func normalizeDatabase(err error) (*Error, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		e := New(KindDatabase, pgErr.Message).WithCode(pgErr.Code)
		// Integrity and syntax violations (SQLSTATE classes 22, 23, 42) are
		// caller bugs, not transient conditions.
		if len(pgErr.Code) >= 2 {
			switch pgErr.Code[:2] {
			case "22", "23", "42":
				e.WithRetryable(false)
			}
		}
		return e, true
	}

	if errors.Is(err, driver.ErrBadConn) {
		return New(KindDatabase, "database connection is in a bad state"), true
	}

	return nil, false
}

// normalizeNative classifies native Go error signatures: timeouts,
// DNS/connection failures, and context deadline expiry.
func normalizeNative(err error) (*Error, bool) {
	if errors.Is(err, context.DeadlineExceeded) {
		return New(KindTimeout, err.Error()), true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return New(KindTimeout, err.Error()), true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return New(KindNetwork, err.Error()), true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return New(KindNetwork, err.Error()), true
	}

	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return New(KindNetwork, err.Error()), true
	}

	return nil, false
}
