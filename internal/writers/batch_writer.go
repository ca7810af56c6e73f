package writers

import (
	"context"
	"sync"
	"time"

	"telemetry-ingest/internal/models"
	"telemetry-ingest/internal/shared/loggers"
	"telemetry-ingest/internal/shared/metrics"
)

// Sink is the durable destination of one flush. Implementations perform one
// bulk write per call; the store tolerates duplicate inserts, reconciled
// later by its dedup key.
//
//go:generate mockgen -source=batch_writer.go -destination=./mocks/batch_writer_mock.go -package=mocks
type Sink interface {
	WriteBatch(ctx context.Context, events []*models.Event) error
}

// Writer is the enqueue surface the ingestion pipeline sees.
type Writer interface {
	// Enqueue appends events to the internal buffer. It never blocks and
	// never drops: when the buffer is at or over its hard cap the events are
	// still accepted and the return value reports active backpressure, which
	// the caller turns into a retryable 503.
	Enqueue(events []*models.Event) (backpressureActive bool)
}

// BatchWriter buffers enriched events and flushes them to its sink when the
// buffer reaches flushSize or flushInterval elapses, whichever comes first.
// The flush's bulk write runs outside the buffer lock so Enqueue stays
// non-blocking while a flush is in flight.
// drainRetryDelay spaces out drain flushes when the sink keeps failing, so
// the shutdown loop does not hot-spin until its deadline.
const drainRetryDelay = 100 * time.Millisecond

type BatchWriter struct {
	name            string
	sink            Sink
	flushSize       int
	flushInterval   time.Duration
	bufferCap       int
	drainRetryDelay time.Duration

	mu     sync.Mutex
	buffer []*models.Event
	closed bool

	flushCh  chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
	stopCh   chan struct{}

	logger loggers.Logger
}

func NewBatchWriter(name string, sink Sink, flushSize int, flushInterval time.Duration, bufferCap int, logger loggers.Logger) *BatchWriter {
	return &BatchWriter{
		name:            name,
		sink:            sink,
		flushSize:       flushSize,
		flushInterval:   flushInterval,
		bufferCap:       bufferCap,
		drainRetryDelay: drainRetryDelay,
		flushCh:         make(chan struct{}, 1),
		stopCh:          make(chan struct{}),
		logger:          logger.With().Str(loggers.FieldSink, name).Logger(),
	}
}

// Start spawns the background flush loop.
func (w *BatchWriter) Start(ctx context.Context) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.run(ctx)
	}()
}

// Enqueue implements Writer.
func (w *BatchWriter) Enqueue(events []*models.Event) bool {
	if len(events) == 0 {
		return false
	}

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		w.logger.Warn().Int(loggers.FieldEventCount, len(events)).Msg("enqueue after shutdown, events discarded")
		return true
	}
	w.buffer = append(w.buffer, events...)
	buffered := len(w.buffer)
	w.mu.Unlock()

	metricWriterEnqueuedTotal.WithLabelValues(w.name).Add(float64(len(events)))
	metricWriterBufferSize.WithLabelValues(w.name).Set(float64(buffered))

	if buffered >= w.flushSize {
		// Non-blocking: a pending signal already guarantees a flush.
		select {
		case w.flushCh <- struct{}{}:
		default:
		}
	}

	if buffered >= w.bufferCap {
		metricWriterBackpressureTotal.WithLabelValues(w.name).Inc()
		return true
	}
	return false
}

// BufferedCount returns the current buffer length.
func (w *BatchWriter) BufferedCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.buffer)
}

// Shutdown disables intake, stops the flush loop, and drains the buffer.
// Every buffered event is flushed before return unless ctx expires first.
func (w *BatchWriter) Shutdown(ctx context.Context) error {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()

	w.stopOnce.Do(func() { close(w.stopCh) })
	w.wg.Wait()

	for {
		if err := ctx.Err(); err != nil {
			w.logger.Error().Int(loggers.FieldEventCount, w.BufferedCount()).Msg("shutdown drain aborted, buffered events lost")
			return err
		}
		if w.BufferedCount() == 0 {
			return nil
		}
		if err := w.flush(ctx); err != nil {
			select {
			case <-ctx.Done():
			case <-time.After(w.drainRetryDelay):
			}
		}
	}
}

func (w *BatchWriter) run(ctx context.Context) {
	ticker := time.NewTicker(w.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.flush(ctx)
		case <-w.flushCh:
			w.flush(ctx)
		}
	}
}

// flush atomically swaps the buffer out and performs one bulk write. Events
// enqueued while the write is in flight land in the fresh buffer and are
// never lost or duplicated. A failed write re-queues its batch in front so
// delivery stays at-least-once.
func (w *BatchWriter) flush(ctx context.Context) error {
	w.mu.Lock()
	batch := w.buffer
	w.buffer = nil
	w.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}

	start := time.Now()
	err := w.sink.WriteBatch(ctx, batch)
	metricWriterFlushDuration.WithLabelValues(w.name).Observe(time.Since(start).Seconds())

	if err != nil {
		metricWriterFlushTotal.WithLabelValues(w.name, "error").Inc()
		w.logger.Error().Err(err).Int(loggers.FieldEventCount, len(batch)).Msg("bulk write failed, batch re-queued")

		w.mu.Lock()
		w.buffer = append(batch, w.buffer...)
		w.mu.Unlock()
		return err
	}

	metricWriterFlushTotal.WithLabelValues(w.name, metrics.ValueNoError).Inc()
	w.mu.Lock()
	buffered := len(w.buffer)
	w.mu.Unlock()
	metricWriterBufferSize.WithLabelValues(w.name).Set(float64(buffered))
	return nil
}
