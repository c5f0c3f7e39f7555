package queue

import (
	"context"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/joxgallardo/sparkchat-sub001/internal/api/metrics"
	"github.com/joxgallardo/sparkchat-sub001/internal/core/ports"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
)

// Dispatcher routes inbound chat messages to a fixed set of workers,
// sharded by platform ID. One identity always lands on the same worker, so
// its binding and session transitions are observed in message order; no
// ordering is guaranteed (or needed) across identities.
type Dispatcher struct {
	workers   []chan ports.InboundMessage
	processor ports.MessageProcessor
	log       zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, processor ports.MessageProcessor, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:   make([]chan ports.InboundMessage, numWorkers),
		processor: processor,
		log:       log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.InboundMessage, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue sends a message to the worker responsible for its platform ID.
// The call is non-blocking up to channelBuffer capacity.
func (d *Dispatcher) Enqueue(msg ports.InboundMessage) {
	idx := d.shardIndex(msg.PlatformID)
	d.workers[idx] <- msg
	metrics.MessagesQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
}

// shardIndex maps a platform ID deterministically to a worker index.
func (d *Dispatcher) shardIndex(platformID int64) int {
	idx := platformID % int64(len(d.workers))
	if idx < 0 {
		idx = -idx
	}
	return int(idx)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.InboundMessage) {
	workerID := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if err := d.processor.Process(ctx, msg); err != nil {
				d.log.Error().Err(err).
					Int64("platform_id", msg.PlatformID).
					Int("worker_id", id).
					Msg("message processing failed")
			}
			metrics.MessagesQueueDepth.WithLabelValues(workerID).Set(float64(len(ch)))
		}
	}
}
