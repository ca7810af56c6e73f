// Package client is the producer-side SDK for the telemetry ingestion
// service. Transport buffers events in memory and delivers them in batches,
// reacting to the server's status codes: partial acceptance is logged,
// rate limiting and outages are retried with backoff, and an authentication
// rejection permanently stops delivery. Telemetry must never take the
// producing process down, so Send never blocks and never returns an error.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Version is the SDK version declared in every batch envelope.
const Version = "0.1.0"

// Event is one telemetry record as submitted by the producer. The server
// validates its shape; the transport treats it as opaque.
type Event = map[string]any

// Config configures a Transport. Zero-valued fields fall back to defaults.
type Config struct {
	// Endpoint is the full URL of the ingestion endpoint, e.g.
	// "https://ingest.example.com/v1/events".
	Endpoint string
	// Credential is the tenant API key or scoped widget token sent as a
	// Bearer credential.
	Credential string

	// BatchSize is the flush threshold and the per-request batch ceiling.
	BatchSize int
	// FlushInterval is the periodic flush cadence.
	FlushInterval time.Duration
	// BufferCap is the hard cap on buffered events. Exceeding it drops the
	// oldest events.
	BufferCap int

	// MaxRetries bounds delivery attempts per batch beyond the first.
	MaxRetries int
	// RetryBaseDelay is the first backoff delay; it doubles per attempt.
	RetryBaseDelay time.Duration

	HTTPClient *http.Client
	Logger     zerolog.Logger
}

const (
	defaultBatchSize      = 100
	defaultFlushInterval  = 5 * time.Second
	defaultBufferCap      = 10_000
	defaultMaxRetries     = 3
	defaultRetryBaseDelay = time.Second
	defaultRequestTimeout = 10 * time.Second
)

type deliveryOutcome int

const (
	outcomeDelivered deliveryOutcome = iota
	outcomeDiscarded
	outcomePoisoned
)

// Transport is a buffering, retrying event sender. All methods are safe for
// concurrent use.
type Transport struct {
	cfg        Config
	httpClient *http.Client
	logger     zerolog.Logger

	mu      sync.Mutex
	buffer  []Event
	stopped bool
	dropped int

	flushMu sync.Mutex
	flushCh chan struct{}

	wg       sync.WaitGroup
	stopOnce sync.Once
	stopCh   chan struct{}

	sleep func(ctx context.Context, d time.Duration) bool
}

func NewTransport(cfg Config) *Transport {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = defaultFlushInterval
	}
	if cfg.BufferCap <= 0 {
		cfg.BufferCap = defaultBufferCap
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.RetryBaseDelay <= 0 {
		cfg.RetryBaseDelay = defaultRetryBaseDelay
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultRequestTimeout}
	}

	t := &Transport{
		cfg:        cfg,
		httpClient: httpClient,
		logger:     cfg.Logger,
		flushCh:    make(chan struct{}, 1),
		stopCh:     make(chan struct{}),
		sleep:      waitForRetry,
	}

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		t.run()
	}()

	return t
}

// Send buffers events for delivery. It never blocks: when the buffer is at
// its hard cap the oldest events are dropped with a warning. Events sent
// after Shutdown, or after the server rejected the credential, are discarded.
func (t *Transport) Send(events ...Event) {
	if len(events) == 0 {
		return
	}

	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return
	}
	t.buffer = append(t.buffer, events...)
	var droppedNow int
	if overflow := len(t.buffer) - t.cfg.BufferCap; overflow > 0 {
		t.buffer = t.buffer[overflow:]
		t.dropped += overflow
		droppedNow = overflow
	}
	shouldFlush := len(t.buffer) >= t.cfg.BatchSize
	t.mu.Unlock()

	if droppedNow > 0 {
		t.logger.Warn().Int("dropped", droppedNow).Msg("event buffer full, oldest events dropped")
	}
	if shouldFlush {
		t.signalFlush()
	}
}

// BufferedCount reports the number of events awaiting delivery.
func (t *Transport) BufferedCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.buffer)
}

// Shutdown stops the periodic flush and drains the buffer with best-effort
// delivery until ctx expires. Whatever remains after the deadline is
// discarded with a warning.
func (t *Transport) Shutdown(ctx context.Context) error {
	t.mu.Lock()
	t.stopped = true
	t.mu.Unlock()

	t.stopOnce.Do(func() { close(t.stopCh) })
	t.wg.Wait()

	for {
		if t.BufferedCount() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			remaining := t.BufferedCount()
			t.logger.Warn().Int("remaining", remaining).Msg("shutdown drain timed out, buffered events discarded")
			t.mu.Lock()
			t.buffer = nil
			t.mu.Unlock()
			return ctx.Err()
		default:
		}
		t.flush(ctx)
		if t.poisoned() {
			return nil
		}
	}
}

func (t *Transport) poisoned() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped && t.buffer == nil
}

func (t *Transport) signalFlush() {
	select {
	case t.flushCh <- struct{}{}:
	default:
	}
}

func (t *Transport) run() {
	// Background flushes run under a context cancelled by Shutdown so a
	// mid-retry wait never holds up the drain.
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-t.stopCh
		cancel()
	}()

	ticker := time.NewTicker(t.cfg.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-t.stopCh:
			return
		case <-ticker.C:
			t.flush(ctx)
		case <-t.flushCh:
			t.flush(ctx)
		}
	}
}

// flush delivers the oldest batch-size slice as one request. The flushMu
// guard keeps a timer flush and a threshold flush from racing over the same
// slice; events buffered while a flush is in flight stay eligible for the
// next one.
func (t *Transport) flush(ctx context.Context) {
	t.flushMu.Lock()
	defer t.flushMu.Unlock()

	t.mu.Lock()
	if len(t.buffer) == 0 {
		t.mu.Unlock()
		return
	}
	n := t.cfg.BatchSize
	if n > len(t.buffer) {
		n = len(t.buffer)
	}
	batch := t.buffer[:n]
	t.buffer = append([]Event(nil), t.buffer[n:]...)
	t.mu.Unlock()

	switch t.deliver(ctx, batch) {
	case outcomePoisoned:
		t.mu.Lock()
		t.stopped = true
		discarded := len(t.buffer)
		t.buffer = nil
		t.mu.Unlock()
		t.logger.Warn().Int("discarded", discarded).Msg("credential rejected, transport stopped")
	case outcomeDiscarded:
		t.logger.Warn().Int("batch_size", len(batch)).Msg("batch delivery gave up, events discarded")
	case outcomeDelivered:
		t.mu.Lock()
		pending := len(t.buffer)
		t.mu.Unlock()
		if pending >= t.cfg.BatchSize {
			t.signalFlush()
		}
	}
}

// deliver posts one batch, retrying 429/5xx/network failures with doubling
// backoff. A server-supplied Retry-After (seconds) replaces the computed
// delay for that attempt. Cancelling ctx aborts the retry wait and gives up
// on the batch, so Shutdown's deadline caps the total drain time.
func (t *Transport) deliver(ctx context.Context, batch []Event) deliveryOutcome {
	body, err := json.Marshal(envelope{Events: batch, SDKVersion: Version})
	if err != nil {
		t.logger.Warn().Err(err).Msg("batch not serializable, discarded")
		return outcomeDiscarded
	}

	delay := t.cfg.RetryBaseDelay
	for attempt := 0; ; attempt++ {
		status, retryAfter, err := t.post(ctx, body)
		if err == nil {
			switch {
			case status == http.StatusOK:
				return outcomeDelivered
			case status == http.StatusMultiStatus:
				t.logger.Warn().Msg("batch partially accepted, rejected records will not be retried")
				return outcomeDelivered
			case status == http.StatusUnauthorized:
				return outcomePoisoned
			case status == http.StatusTooManyRequests || status >= 500:
				// retryable
			default:
				t.logger.Warn().Int("status", status).Msg("batch rejected, events discarded")
				return outcomeDiscarded
			}
		} else {
			t.logger.Debug().Err(err).Msg("batch delivery attempt failed")
		}

		if attempt >= t.cfg.MaxRetries {
			return outcomeDiscarded
		}

		wait := delay
		if retryAfter > 0 {
			wait = retryAfter
		}
		if !t.sleep(ctx, wait) {
			return outcomeDiscarded
		}
		delay *= 2
	}
}

// waitForRetry blocks for the backoff delay unless ctx is cancelled first,
// reporting whether delivery should try again.
func waitForRetry(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func (t *Transport) post(ctx context.Context, body []byte) (status int, retryAfter time.Duration, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+t.cfg.Credential)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return 0, 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if v := resp.Header.Get("Retry-After"); v != "" {
		if seconds, parseErr := strconv.Atoi(v); parseErr == nil && seconds > 0 {
			retryAfter = time.Duration(seconds) * time.Second
		}
	}
	return resp.StatusCode, retryAfter, nil
}

type envelope struct {
	Events     []Event `json:"events"`
	SDKVersion string  `json:"sdk_version,omitempty"`
}
