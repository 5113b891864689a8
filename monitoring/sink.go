package monitoring

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/gaborage/go-resilience/fault"
	"github.com/gaborage/go-resilience/logger"
)

// Default sink configuration values.
const (
	DefaultBatchSize     = 10
	DefaultFlushInterval = 30 * time.Second
	DefaultTimeout       = 5 * time.Second

	// recordBufferFactor sizes the intake channel relative to the batch size
	// so short bursts do not drop events while the worker is delivering.
	recordBufferFactor = 4

	apiKeyHeader = "X-API-Key"
)

// Config holds the sink's collector and batching settings, typically read
// once at startup from process configuration.
type Config struct {
	Endpoint      string
	APIKey        string
	ServiceName   string
	Environment   string
	Version       string
	BatchSize     int
	FlushInterval time.Duration
	Timeout       time.Duration
}

func (c Config) withDefaults() Config {
	if c.BatchSize < 1 {
		c.BatchSize = DefaultBatchSize
	}
	if c.FlushInterval <= 0 {
		c.FlushInterval = DefaultFlushInterval
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}

// flushRequest asks the worker for an immediate flush; the reply channel
// receives the delivery outcome.
type flushRequest struct {
	reply chan error
}

// Sink accumulates events and delivers them in batches. All queue state is
// owned by a single worker goroutine; Record never blocks the caller and
// delivery failures never propagate to it.
type Sink struct {
	cfg    Config
	log    logger.Logger
	client *resty.Client

	records  chan Event
	flushes  chan flushRequest
	stop     chan struct{}
	stopOnce sync.Once
	stopped  chan struct{}
}

// NewSink creates and starts a Sink delivering to cfg.Endpoint.
func NewSink(cfg Config, log logger.Logger) *Sink {
	ensureMeterInitialized()
	cfg = cfg.withDefaults()

	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json")
	if cfg.APIKey != "" {
		client.SetHeader(apiKeyHeader, cfg.APIKey)
	}

	s := &Sink{
		cfg:     cfg,
		log:     log,
		client:  client,
		records: make(chan Event, cfg.BatchSize*recordBufferFactor),
		flushes: make(chan flushRequest),
		stop:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go s.run()
	return s
}

// Record queues a derived event for delivery. It returns immediately; if the
// intake buffer is full the event is dropped and the drop is logged. Nil
// errors are ignored.
func (s *Sink) Record(fe *fault.Error, extra map[string]any) {
	if fe == nil {
		return
	}
	ev := newEvent(fe, s.cfg, extra)
	select {
	case s.records <- ev:
		addCounter(context.Background(), eventsRecorded, 1)
	default:
		addCounter(context.Background(), eventsDropped, 1)
		s.log.Warn().Str("kind", ev.Kind).Msg("Monitoring intake full, event dropped")
	}
}

// Flush forces delivery of everything currently queued and reports the
// delivery outcome. Unlike the automatic flushes, callers asking explicitly
// get to see the error.
func (s *Sink) Flush(ctx context.Context) error {
	req := flushRequest{reply: make(chan error, 1)}
	select {
	case s.flushes <- req:
	case <-s.stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-req.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown stops the timer and performs one final best-effort flush. It
// returns once the worker has exited or ctx expires.
func (s *Sink) Shutdown(ctx context.Context) error {
	s.stopOnce.Do(func() { close(s.stop) })
	select {
	case <-s.stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run is the worker loop. It alone mutates the queue, so no locking is
// needed anywhere in the sink.
func (s *Sink) run() {
	defer close(s.stopped)

	ticker := time.NewTicker(s.cfg.FlushInterval)
	defer ticker.Stop()

	var queue []Event
	retried := false

	flush := func() error {
		if len(queue) == 0 {
			return nil
		}
		batch := queue
		queue = nil

		err := s.deliver(batch)
		if err == nil {
			retried = false
			addCounter(context.Background(), eventsDelivered, int64(len(batch)))
			return nil
		}

		if retried {
			// Second consecutive failure for this batch: drop it.
			retried = false
			addCounter(context.Background(), eventsDropped, int64(len(batch)))
			s.log.Error().
				Err(err).
				Int("events", len(batch)).
				Msg("Monitoring delivery failed twice, dropping batch")
			return err
		}

		// Push the batch back to the front for one more try.
		retried = true
		queue = append(batch, queue...)
		s.log.Warn().
			Err(err).
			Int("events", len(batch)).
			Msg("Monitoring delivery failed, batch requeued")
		return err
	}

	// drain moves everything already sitting in the intake channel into the
	// queue so a flush sees all events recorded before it was requested.
	drain := func() {
		for {
			select {
			case ev := <-s.records:
				queue = append(queue, ev)
			default:
				return
			}
		}
	}

	for {
		select {
		case ev := <-s.records:
			queue = append(queue, ev)
			if len(queue) >= s.cfg.BatchSize {
				_ = flush()
			}
		case <-ticker.C:
			drain()
			_ = flush()
		case req := <-s.flushes:
			drain()
			req.reply <- flush()
		case <-s.stop:
			drain()
			_ = flush()
			return
		}
	}
}

// deliver posts one batch to the collector, bounded by the configured
// timeout.
func (s *Sink) deliver(batch []Event) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Timeout)
	defer cancel()

	payload := batchPayload{
		Service:     s.cfg.ServiceName,
		Environment: s.cfg.Environment,
		Version:     s.cfg.Version,
		Events:      batch,
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(payload).
		Post(s.cfg.Endpoint)
	if err != nil {
		return fmt.Errorf("collector request failed: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("collector returned status %d", resp.StatusCode())
	}
	return nil
}
