package analytics

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/searchfoundry/docsearch/pkg/kafka"
	"github.com/searchfoundry/docsearch/pkg/resilience"
)

// publisher is the Kafka surface the collector needs; *kafka.Producer
// satisfies it.
type publisher interface {
	PublishBatch(ctx context.Context, events []kafka.Event) error
}

// Collector buffers analytics events in memory and flushes them to Kafka in
// batches, either when the buffer reaches batchSize or on a timer. Publishes
// run through a circuit breaker: a down broker drops events instead of
// stalling searches.
type Collector struct {
	producer      publisher
	breaker       *resilience.CircuitBreaker
	mu            sync.Mutex
	buffer        []kafka.Event
	batchSize     int
	flushInterval time.Duration
	logger        *slog.Logger
	done          chan struct{}
}

// NewCollector creates a Collector that flushes when the buffer reaches
// batchSize events or after flushInterval, whichever comes first.
func NewCollector(producer publisher, batchSize int, flushInterval time.Duration) *Collector {
	if batchSize <= 0 {
		batchSize = 100
	}
	if flushInterval <= 0 {
		flushInterval = 5 * time.Second
	}
	return &Collector{
		producer:      producer,
		breaker:       resilience.NewCircuitBreaker("analytics-kafka", resilience.CircuitBreakerConfig{}),
		buffer:        make([]kafka.Event, 0, batchSize),
		batchSize:     batchSize,
		flushInterval: flushInterval,
		logger:        slog.Default().With("component", "analytics-collector"),
		done:          make(chan struct{}),
	}
}

// Start launches the background flush loop, which runs until ctx is
// cancelled.
func (c *Collector) Start(ctx context.Context) {
	go func() {
		defer close(c.done)
		ticker := time.NewTicker(c.flushInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				c.flush(ctx)
			case <-ctx.Done():
				flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				c.flush(flushCtx)
				cancel()
				return
			}
		}
	}()
	c.logger.Info("analytics collector started",
		"batch_size", c.batchSize,
		"flush_interval", c.flushInterval,
	)
}

// Track buffers an event. If the buffer reaches batchSize, a flush is
// triggered in the background. Track never blocks the caller on Kafka.
func (c *Collector) Track(event any) {
	c.mu.Lock()
	c.buffer = append(c.buffer, kafka.Event{Key: "analytics", Value: event})
	shouldFlush := len(c.buffer) >= c.batchSize
	c.mu.Unlock()

	if shouldFlush {
		go c.flush(context.Background())
	}
}

// Close waits for the background flush loop to finish.
func (c *Collector) Close() {
	<-c.done
}

// BufferLen returns the current number of buffered events.
func (c *Collector) BufferLen() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.buffer)
}

func (c *Collector) flush(ctx context.Context) {
	c.mu.Lock()
	if len(c.buffer) == 0 {
		c.mu.Unlock()
		return
	}
	batch := c.buffer
	c.buffer = make([]kafka.Event, 0, c.batchSize)
	c.mu.Unlock()

	err := c.breaker.Execute(func() error {
		return c.producer.PublishBatch(ctx, batch)
	})
	if err != nil {
		// Analytics is best-effort: events from a failed flush are dropped
		// rather than re-queued without bound.
		c.logger.Warn("analytics flush failed, events dropped",
			"events", len(batch),
			"error", err,
		)
		return
	}
	c.logger.Debug("analytics batch flushed", "events", len(batch))
}
