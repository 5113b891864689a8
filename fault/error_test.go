package fault

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAppliesKindDefaults(t *testing.T) {
	tests := []struct {
		name           string
		createError    func() *Error
		expectedKind   Kind
		expectedCode   string
		expectedStatus int
		expectedSev    Severity
		retryable      bool
	}{
		{
			name:           "network_error",
			createError:    func() *Error { return NewNetworkError("connection refused") },
			expectedKind:   KindNetwork,
			expectedCode:   "NETWORK_ERROR",
			expectedStatus: http.StatusServiceUnavailable,
			expectedSev:    SeverityHigh,
			retryable:      true,
		},
		{
			name:           "timeout_error",
			createError:    func() *Error { return NewTimeoutError("deadline exceeded") },
			expectedKind:   KindTimeout,
			expectedCode:   "TIMEOUT",
			expectedStatus: http.StatusGatewayTimeout,
			expectedSev:    SeverityMedium,
			retryable:      true,
		},
		{
			name:           "authentication_error",
			createError:    func() *Error { return NewAuthenticationError("") },
			expectedKind:   KindAuthentication,
			expectedCode:   "AUTHENTICATION_FAILED",
			expectedStatus: http.StatusUnauthorized,
			expectedSev:    SeverityHigh,
			retryable:      false,
		},
		{
			name:           "authorization_error",
			createError:    func() *Error { return NewAuthorizationError("") },
			expectedKind:   KindAuthorization,
			expectedCode:   "AUTHORIZATION_FAILED",
			expectedStatus: http.StatusForbidden,
			expectedSev:    SeverityHigh,
			retryable:      false,
		},
		{
			name:           "validation_error",
			createError:    func() *Error { return NewValidationError("missing field") },
			expectedKind:   KindValidation,
			expectedCode:   "VALIDATION_FAILED",
			expectedStatus: http.StatusBadRequest,
			expectedSev:    SeverityLow,
			retryable:      false,
		},
		{
			name:           "rate_limit_error",
			createError:    func() *Error { return NewRateLimitError("") },
			expectedKind:   KindRateLimit,
			expectedCode:   "RATE_LIMITED",
			expectedStatus: http.StatusTooManyRequests,
			expectedSev:    SeverityMedium,
			retryable:      true,
		},
		{
			name:           "service_unavailable_error",
			createError:    func() *Error { return NewServiceUnavailableError("") },
			expectedKind:   KindServiceUnavailable,
			expectedCode:   "SERVICE_UNAVAILABLE",
			expectedStatus: http.StatusServiceUnavailable,
			expectedSev:    SeverityHigh,
			retryable:      true,
		},
		{
			name:           "internal_error",
			createError:    func() *Error { return NewInternalError("") },
			expectedKind:   KindInternal,
			expectedCode:   "INTERNAL_ERROR",
			expectedStatus: http.StatusInternalServerError,
			expectedSev:    SeverityMedium,
			retryable:      false,
		},
		{
			name:           "external_api_error",
			createError:    func() *Error { return NewExternalAPIError("") },
			expectedKind:   KindExternalAPI,
			expectedCode:   "EXTERNAL_API_ERROR",
			expectedStatus: http.StatusBadGateway,
			expectedSev:    SeverityMedium,
			retryable:      true,
		},
		{
			name:           "database_error",
			createError:    func() *Error { return NewDatabaseError("") },
			expectedKind:   KindDatabase,
			expectedCode:   "DATABASE_ERROR",
			expectedStatus: http.StatusInternalServerError,
			expectedSev:    SeverityHigh,
			retryable:      true,
		},
		{
			name:           "upload_error",
			createError:    func() *Error { return NewUploadError("") },
			expectedKind:   KindUpload,
			expectedCode:   "UPLOAD_ERROR",
			expectedStatus: http.StatusBadRequest,
			expectedSev:    SeverityMedium,
			retryable:      false,
		},
		{
			name:           "ai_service_error",
			createError:    func() *Error { return NewAIServiceError("") },
			expectedKind:   KindAIService,
			expectedCode:   "AI_SERVICE_ERROR",
			expectedStatus: http.StatusBadGateway,
			expectedSev:    SeverityMedium,
			retryable:      true,
		},
		{
			name:           "face_recognition_error",
			createError:    func() *Error { return NewFaceRecognitionError("") },
			expectedKind:   KindFaceRecognition,
			expectedCode:   "FACE_RECOGNITION_ERROR",
			expectedStatus: http.StatusBadGateway,
			expectedSev:    SeverityMedium,
			retryable:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.createError()
			assert.Equal(t, tt.expectedKind, err.Kind)
			assert.Equal(t, tt.expectedCode, err.Code)
			assert.Equal(t, tt.expectedStatus, err.HTTPStatus)
			assert.Equal(t, tt.expectedSev, err.Severity)
			assert.Equal(t, tt.retryable, err.Retryable)
			assert.NotEmpty(t, err.Message)
			assert.False(t, err.Context.Timestamp.IsZero())
		})
	}
}

func TestErrorString(t *testing.T) {
	t.Run("with_code", func(t *testing.T) {
		err := NewValidationError("name is required")
		assert.Equal(t, "VALIDATION_FAILED: name is required", err.Error())
	})

	t.Run("without_code", func(t *testing.T) {
		err := NewInternalError("boom")
		err.Code = ""
		assert.Equal(t, "boom", err.Error())
	})

	t.Run("nil_receiver", func(t *testing.T) {
		var err *Error
		assert.Equal(t, "", err.Error())
	})
}

func TestUnknownKindFallsBackToInternalProfile(t *testing.T) {
	err := New(Kind("martian"), "unexpected")
	assert.Equal(t, "INTERNAL_ERROR", err.Code)
	assert.Equal(t, http.StatusInternalServerError, err.HTTPStatus)
	assert.False(t, err.Retryable)
}

func TestBuilders(t *testing.T) {
	cause := errors.New("underlying")
	err := NewDatabaseError("insert failed").
		WithCause(cause).
		WithCode("23505").
		WithRetryable(false).
		WithSeverity(SeverityCritical).
		WithHTTPStatus(http.StatusConflict)

	assert.Equal(t, cause, err.Cause())
	assert.Equal(t, "23505", err.Code)
	assert.False(t, err.Retryable)
	assert.Equal(t, SeverityCritical, err.Severity)
	assert.Equal(t, http.StatusConflict, err.HTTPStatus)
	assert.ErrorIs(t, err, cause)
}

func TestWithContextPreservesTimestamp(t *testing.T) {
	err := NewInternalError("boom")
	original := err.Context.Timestamp

	err.WithContext(Context{UserID: "u-1", RequestID: "r-1", Endpoint: "/users", Method: "POST"})

	assert.Equal(t, "u-1", err.Context.UserID)
	assert.Equal(t, "r-1", err.Context.RequestID)
	assert.Equal(t, original, err.Context.Timestamp)
}

func TestWithContextExplicitTimestampWins(t *testing.T) {
	ts := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	err := NewInternalError("boom").WithContext(Context{Timestamp: ts})
	assert.Equal(t, ts, err.Context.Timestamp)
}

func TestCauseNeverSerialized(t *testing.T) {
	err := NewNetworkError("dial failed").WithCause(errors.New("secret internals"))

	raw, jerr := json.Marshal(err)
	require.NoError(t, jerr)
	assert.NotContains(t, string(raw), "secret internals")
	assert.Contains(t, string(raw), "dial failed")
}

func TestHelpers(t *testing.T) {
	base := NewTimeoutError("slow upstream")
	wrapped := fmt.Errorf("call users: %w", base)

	t.Run("as", func(t *testing.T) {
		fe, ok := As(wrapped)
		require.True(t, ok)
		assert.Equal(t, KindTimeout, fe.Kind)

		_, ok = As(errors.New("plain"))
		assert.False(t, ok)
	})

	t.Run("is_kind", func(t *testing.T) {
		assert.True(t, IsKind(wrapped, KindTimeout))
		assert.False(t, IsKind(wrapped, KindNetwork))
		assert.False(t, IsKind(nil, KindTimeout))
	})

	t.Run("is_retryable", func(t *testing.T) {
		assert.True(t, IsRetryable(wrapped))
		assert.False(t, IsRetryable(errors.New("plain")))
	})
}
