// Package fault provides the normalized error model and classification used
// by the retry executor, monitoring sink, and consuming handlers. Every error
// that passes through this library is reduced to exactly one *fault.Error
// carrying a kind, severity, HTTP status, and retryability flag.
package fault

import "net/http"

// Kind is the enumerated failure category.
type Kind string

const (
	KindNetwork            Kind = "network"
	KindTimeout            Kind = "timeout"
	KindAuthentication     Kind = "authentication"
	KindAuthorization      Kind = "authorization"
	KindValidation         Kind = "validation"
	KindRateLimit          Kind = "rate-limit"
	KindServiceUnavailable Kind = "service-unavailable"
	KindInternal           Kind = "internal"
	KindExternalAPI        Kind = "external-api"
	KindDatabase           Kind = "database"
	KindUpload             Kind = "upload"
	KindAIService          Kind = "ai-service"
	KindFaceRecognition    Kind = "face-recognition"
)

// Severity is the impact level attached to a classified error.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// kindProfile fixes the per-kind defaults. A given kind always classifies to
// the same retryable flag unless the caller overrides it explicitly on a
// directly constructed error.
type kindProfile struct {
	code       string
	message    string
	httpStatus int
	severity   Severity
	retryable  bool
}

var kindProfiles = map[Kind]kindProfile{
	KindNetwork: {
		code:       "NETWORK_ERROR",
		message:    "Network operation failed",
		httpStatus: http.StatusServiceUnavailable,
		severity:   SeverityHigh,
		retryable:  true,
	},
	KindTimeout: {
		code:       "TIMEOUT",
		message:    "Operation timed out",
		httpStatus: http.StatusGatewayTimeout,
		severity:   SeverityMedium,
		retryable:  true,
	},
	KindAuthentication: {
		code:       "AUTHENTICATION_FAILED",
		message:    "Authentication required",
		httpStatus: http.StatusUnauthorized,
		severity:   SeverityHigh,
		retryable:  false,
	},
	KindAuthorization: {
		code:       "AUTHORIZATION_FAILED",
		message:    "Access denied",
		httpStatus: http.StatusForbidden,
		severity:   SeverityHigh,
		retryable:  false,
	},
	KindValidation: {
		code:       "VALIDATION_FAILED",
		message:    "Request validation failed",
		httpStatus: http.StatusBadRequest,
		severity:   SeverityLow,
		retryable:  false,
	},
	KindRateLimit: {
		code:       "RATE_LIMITED",
		message:    "Rate limit exceeded",
		httpStatus: http.StatusTooManyRequests,
		severity:   SeverityMedium,
		retryable:  true,
	},
	KindServiceUnavailable: {
		code:       "SERVICE_UNAVAILABLE",
		message:    "Service temporarily unavailable",
		httpStatus: http.StatusServiceUnavailable,
		severity:   SeverityHigh,
		retryable:  true,
	},
	KindInternal: {
		code:       "INTERNAL_ERROR",
		message:    "An internal error occurred",
		httpStatus: http.StatusInternalServerError,
		severity:   SeverityMedium,
		retryable:  false,
	},
	KindExternalAPI: {
		code:       "EXTERNAL_API_ERROR",
		message:    "External service call failed",
		httpStatus: http.StatusBadGateway,
		severity:   SeverityMedium,
		retryable:  true,
	},
	KindDatabase: {
		code:       "DATABASE_ERROR",
		message:    "Database operation failed",
		httpStatus: http.StatusInternalServerError,
		severity:   SeverityHigh,
		retryable:  true,
	},
	KindUpload: {
		code:       "UPLOAD_ERROR",
		message:    "File upload failed",
		httpStatus: http.StatusBadRequest,
		severity:   SeverityMedium,
		retryable:  false,
	},
	KindAIService: {
		code:       "AI_SERVICE_ERROR",
		message:    "AI service call failed",
		httpStatus: http.StatusBadGateway,
		severity:   SeverityMedium,
		retryable:  true,
	},
	KindFaceRecognition: {
		code:       "FACE_RECOGNITION_ERROR",
		message:    "Face recognition call failed",
		httpStatus: http.StatusBadGateway,
		severity:   SeverityMedium,
		retryable:  true,
	},
}

// profileFor returns the defaults for a kind, falling back to the internal
// profile for unknown kinds.
func profileFor(kind Kind) kindProfile {
	if p, ok := kindProfiles[kind]; ok {
		return p
	}
	return kindProfiles[KindInternal]
}

// Kinds returns all known kinds. The order is unspecified.
func Kinds() []Kind {
	out := make([]Kind, 0, len(kindProfiles))
	for k := range kindProfiles {
		out = append(out, k)
	}
	return out
}
