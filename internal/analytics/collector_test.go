package analytics

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/searchfoundry/docsearch/pkg/kafka"
)

// capturePublisher records published batches; failing makes every publish
// error.
type capturePublisher struct {
	mu      sync.Mutex
	batches [][]kafka.Event
	failing bool
}

func (p *capturePublisher) PublishBatch(ctx context.Context, events []kafka.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failing {
		return errors.New("broker unavailable")
	}
	batch := make([]kafka.Event, len(events))
	copy(batch, events)
	p.batches = append(p.batches, batch)
	return nil
}

func (p *capturePublisher) published() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	total := 0
	for _, b := range p.batches {
		total += len(b)
	}
	return total
}

func TestCollectorFlushesOnShutdown(t *testing.T) {
	pub := &capturePublisher{}
	// Large batch and interval so only the shutdown flush fires.
	c := NewCollector(pub, 1000, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	c.Start(ctx)

	c.Track(SearchEvent{Type: EventCacheMiss, Query: "a"})
	c.Track(SearchEvent{Type: EventCacheMiss, Query: "b"})
	c.Track(IndexEvent{Type: EventIndexDoc, DocumentID: "doc-1"})
	assert.Equal(t, 3, c.BufferLen())

	cancel()
	c.Close()

	assert.Equal(t, 3, pub.published())
	assert.Zero(t, c.BufferLen())
}

func TestCollectorFlushesOnInterval(t *testing.T) {
	pub := &capturePublisher{}
	c := NewCollector(pub, 1000, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c.Start(ctx)

	c.Track(SearchEvent{Type: EventCacheMiss, Query: "interval"})
	require.Eventually(t, func() bool { return pub.published() == 1 },
		time.Second, 5*time.Millisecond)
}

func TestCollectorDropsEventsWhenPublishFails(t *testing.T) {
	pub := &capturePublisher{failing: true}
	c := NewCollector(pub, 1000, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	c.Start(ctx)
	c.Track(SearchEvent{Type: EventCacheMiss, Query: "lost"})
	cancel()
	c.Close()

	// Best-effort: the failed batch is dropped, not requeued.
	assert.Zero(t, c.BufferLen())
	assert.Zero(t, pub.published())
}

func TestCollectorTrackNeverBlocks(t *testing.T) {
	pub := &capturePublisher{failing: true}
	c := NewCollector(pub, 2, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c.Start(ctx)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			c.Track(SearchEvent{Type: EventCacheMiss, Query: "burst"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Track blocked on a failing publisher")
	}
}
