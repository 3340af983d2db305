// Package batcher decouples "a record became available" from "a network
// send happens". Records accumulate into an exclusively owned batch that
// is flushed on a size threshold, a time threshold, or a lifecycle signal,
// whichever comes first.
package batcher

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/vitalwatch/telemetry-agent/internal/event"
	"github.com/vitalwatch/telemetry-agent/internal/transport"
)

// Config configures the batcher.
type Config struct {
	MaxBatchSize  int
	FlushInterval time.Duration
	// Hidden reports the page visibility at flush time; size and timer
	// flushes consult it to pick the delivery path. Nil means never
	// hidden.
	Hidden func() bool
}

// flushRequest asks for an immediate flush. Hidden carries the visibility
// at the time of the request so hide/teardown flushes take the
// unload-safe path.
type flushRequest struct {
	hidden bool
}

// Batcher consumes the event stream and hands ordered batches to the
// sender. It owns the batch exclusively; collectors only ever append
// through the channel and never read back.
type Batcher struct {
	sender  transport.Sender
	cfg     Config
	log     *zap.Logger
	flushCh chan flushRequest
}

// New creates a batcher writing to sender.
func New(sender transport.Sender, cfg Config, log *zap.Logger) *Batcher {
	return &Batcher{
		sender:  sender,
		cfg:     cfg,
		log:     log,
		flushCh: make(chan flushRequest, 16),
	}
}

// RequestFlush schedules an immediate flush of whatever is queued. It
// never blocks; a flush already pending covers the request.
func (b *Batcher) RequestFlush(hidden bool) {
	select {
	case b.flushCh <- flushRequest{hidden: hidden}:
	default:
	}
}

// Start runs the accumulate/flush loop until the input channel closes or
// the context is cancelled. Both terminations flush the remainder on the
// unload-safe path, so no record is stranded at teardown.
func (b *Batcher) Start(ctx context.Context, in <-chan event.Event) {
	ticker := time.NewTicker(b.cfg.FlushInterval)
	defer ticker.Stop()

	batch := make([]event.Event, 0, b.cfg.MaxBatchSize)

	// flush swaps the batch out atomically and resets the timer, so a
	// record is never visible to two flushes and an early flush cancels
	// the pending timer flush. Empty flushes are no-ops.
	flush := func(ctx context.Context, hidden bool) {
		if len(batch) == 0 {
			return
		}

		taken := batch
		batch = make([]event.Event, 0, b.cfg.MaxBatchSize)
		ticker.Reset(b.cfg.FlushInterval)

		b.log.Debug("Flushing batch",
			zap.Int("event_count", len(taken)),
			zap.Bool("hidden", hidden))
		b.sender.Send(ctx, taken, hidden)
	}

	// drain moves everything already sitting on the input channel into the
	// batch without blocking. A flush request and the records enqueued
	// before it race through two separate channels; draining first
	// guarantees the flush observes every record that preceded it. Returns
	// false once the input channel is closed.
	drain := func() bool {
		for {
			select {
			case e, ok := <-in:
				if !ok {
					return false
				}
				batch = append(batch, e)
			default:
				return true
			}
		}
	}

	for {
		select {
		case <-ctx.Done():
			b.log.Debug("Batcher shutting down")
			drain()
			// The loop context is gone; the teardown flush runs on its
			// own bounded context inside the sender.
			flush(context.Background(), true)
			return

		case e, ok := <-in:
			if !ok {
				b.log.Debug("Batcher input channel closed")
				flush(context.Background(), true)
				return
			}

			if len(batch) == 0 {
				// Timer measures from the first record of the batch.
				ticker.Reset(b.cfg.FlushInterval)
			}
			batch = append(batch, e)

			if len(batch) >= b.cfg.MaxBatchSize {
				flush(ctx, b.hidden())
			}

		case <-ticker.C:
			if !drain() {
				flush(context.Background(), true)
				return
			}
			flush(ctx, b.hidden())

		case req := <-b.flushCh:
			if !drain() {
				flush(context.Background(), true)
				return
			}
			flush(ctx, req.hidden || b.hidden())
		}
	}
}

func (b *Batcher) hidden() bool {
	if b.cfg.Hidden == nil {
		return false
	}
	return b.cfg.Hidden()
}
