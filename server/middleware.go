package server

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/gaborage/go-resilience/fault"
	"github.com/gaborage/go-resilience/handler"
	"github.com/gaborage/go-resilience/logger"
	"github.com/gaborage/go-resilience/trace"
)

// HeaderXRequestID is the request tracing header honored and emitted by the
// middleware.
const HeaderXRequestID = trace.HeaderXRequestID

// requestIDKey is the echo context key holding the effective request ID.
const requestIDKey = "resilience.request_id"

// RequestIDFromContext returns the request ID assigned by the middleware, or
// empty when it did not run.
func RequestIDFromContext(c echo.Context) string {
	if id, ok := c.Get(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// ErrorHandler returns middleware that guarantees every error escaping a
// route handler reaches the client as the standard JSON envelope. The error
// is classified, recorded to the monitoring sink, and logged at a level
// matching its severity. A request ID is ensured on the way in and echoed on
// the response.
func ErrorHandler(h *handler.Handler, log logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requestID := c.Request().Header.Get(HeaderXRequestID)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			c.Set(requestIDKey, requestID)
			c.Response().Header().Set(HeaderXRequestID, requestID)

			// Propagate the ID through the request context so outbound
			// calls and deep classification sites can pick it up.
			req := c.Request()
			c.SetRequest(req.WithContext(trace.WithRequestID(req.Context(), requestID)))

			err := next(c)
			if err == nil {
				return nil
			}

			fe := h.Classify(err, fault.Context{
				RequestID: requestID,
				Endpoint:  c.Path(),
				Method:    c.Request().Method,
			})
			h.Record(fe, nil)
			logFault(log, fe, requestID)

			if c.Response().Committed {
				return nil
			}
			return c.JSON(fe.HTTPStatus, NewErrorResponse(fe, requestID))
		}
	}
}

// logFault logs a classified error at a level matching its severity.
func logFault(log logger.Logger, fe *fault.Error, requestID string) {
	if log == nil {
		return
	}
	event := log.Error()
	switch fe.Severity {
	case fault.SeverityLow:
		event = log.Info()
	case fault.SeverityMedium:
		event = log.Warn()
	}
	event.
		Str("request_id", requestID).
		Str("kind", string(fe.Kind)).
		Str("code", fe.Code).
		Int("status", fe.HTTPStatus).
		Err(fe).
		Msg("Request failed")
}

// JSON writes a success envelope with the request's ID. Handlers use it for
// consistent response shapes.
func JSON(c echo.Context, status int, data any) error {
	return c.JSON(status, NewSuccessResponse(data, RequestIDFromContext(c)))
}
