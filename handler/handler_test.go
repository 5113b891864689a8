package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaborage/go-resilience/fault"
	"github.com/gaborage/go-resilience/logger"
	"github.com/gaborage/go-resilience/monitoring"
	"github.com/gaborage/go-resilience/retry"
)

type instantClock struct{}

func (instantClock) Now() time.Time { return time.Now() }

func (instantClock) Sleep(context.Context, time.Duration) error { return nil }

func testLogger() logger.Logger {
	return logger.New("disabled", false)
}

func TestHandlerClassify(t *testing.T) {
	h := New(testLogger())

	fe := h.Classify(errors.New("boom"))
	require.NotNil(t, fe)
	assert.Equal(t, fault.KindInternal, fe.Kind)
	assert.Equal(t, http.StatusInternalServerError, fe.HTTPStatus)
	assert.NotEmpty(t, fe.Message)
}

func TestHandlerDoRetriesUnderPolicy(t *testing.T) {
	h := New(testLogger(), WithExecutor(
		retry.NewExecutor(retry.Policy{
			MaxAttempts:    3,
			BaseDelay:      time.Millisecond,
			MaxDelay:       time.Second,
			Multiplier:     2,
			RetryableKinds: []fault.Kind{fault.KindNetwork},
		}, fault.NewClassifier(), testLogger()).WithClock(instantClock{}),
	))

	calls := 0
	err := h.Do(context.Background(), func(context.Context) error {
		calls++
		return fault.NewNetworkError("down")
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.True(t, fault.IsKind(err, fault.KindNetwork))
}

func TestHandlerDoPropagatesNormalizedError(t *testing.T) {
	h := New(testLogger())

	err := h.Do(context.Background(), func(context.Context) error {
		return errors.New("raw failure")
	})

	require.Error(t, err)
	fe, ok := fault.As(err)
	require.True(t, ok)
	assert.NotEmpty(t, fe.Message)
	assert.GreaterOrEqual(t, fe.HTTPStatus, 400)
}

func TestHandlerDoRecordsTerminalFailureToSink(t *testing.T) {
	var mu sync.Mutex
	received := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var payload struct {
			Events []json.RawMessage `json:"events"`
		}
		_ = json.Unmarshal(body, &payload)
		mu.Lock()
		received += len(payload.Events)
		mu.Unlock()
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	sink := monitoring.NewSink(monitoring.Config{
		Endpoint:      srv.URL,
		ServiceName:   "learning-api",
		Environment:   "test",
		BatchSize:     10,
		FlushInterval: time.Hour,
	}, testLogger())

	h := New(testLogger(), WithSink(sink))

	_ = h.Do(context.Background(), func(context.Context) error {
		return fault.NewValidationError("bad request")
	})

	require.NoError(t, h.Flush(context.Background()))

	mu.Lock()
	got := received
	mu.Unlock()
	assert.Equal(t, 1, got)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, h.Shutdown(ctx))
}

func TestHandlerRecordWithoutSinkIsNoop(t *testing.T) {
	h := New(testLogger())

	h.Record(errors.New("boom"), nil)
	assert.NoError(t, h.Flush(context.Background()))
	assert.NoError(t, h.Shutdown(context.Background()))
}

func TestHandlerWithCustomClassifier(t *testing.T) {
	vendor := fault.AdapterFunc(func(err error) (*fault.Error, bool) {
		if err.Error() == "sms gateway busy" {
			return fault.New(fault.KindExternalAPI, err.Error()), true
		}
		return nil, false
	})
	h := New(testLogger(), WithClassifier(fault.NewClassifier(vendor)))

	fe := h.Classify(errors.New("sms gateway busy"))
	assert.Equal(t, fault.KindExternalAPI, fe.Kind)
}

func TestHandlerWithPolicy(t *testing.T) {
	h := New(testLogger(), WithPolicy(retry.Policy{
		MaxAttempts: 1,
		BaseDelay:   time.Millisecond,
		MaxDelay:    time.Second,
		Multiplier:  2,
	}))

	calls := 0
	err := h.Do(context.Background(), func(context.Context) error {
		calls++
		return fault.NewNetworkError("down")
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoValue(t *testing.T) {
	h := New(testLogger())

	got, err := DoValue(context.Background(), h, func(context.Context) (int, error) {
		return 7, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 7, got)

	_, err = DoValue(context.Background(), h, func(context.Context) (int, error) {
		return 0, fault.NewValidationError("nope")
	})
	require.Error(t, err)
	assert.True(t, fault.IsKind(err, fault.KindValidation))
}
