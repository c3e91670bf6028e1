package animation

import (
	"context"

	"github.com/soyeahso/lively/internal/logging"
)

// Surface is whatever renders the character, reachable one way only.
type Surface interface {
	Deliver(ctx context.Context, sig Signal) error
}

// DefaultQueueSize is used when a non-positive size is requested.
const DefaultQueueSize = 8

// Outbox is a bounded queue between the bridge and the surface.
type Outbox struct {
	ch  chan Signal
	log *logging.Logger
}

// NewOutbox creates an outbox holding up to size pending signals.
func NewOutbox(size int, log *logging.Logger) *Outbox {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Outbox{ch: make(chan Signal, size), log: log.Sub("outbox")}
}

// Post enqueues sig. It never blocks and reports false if the queue was full.
func (o *Outbox) Post(sig Signal) bool {
	select {
	case o.ch <- sig:
		return true
	default:
		return false
	}
}

// Len returns the number of queued signals.
func (o *Outbox) Len() int { return len(o.ch) }

// Run delivers queued signals to s until ctx is done. Delivery errors are
// logged and the signal is discarded.
func (o *Outbox) Run(ctx context.Context, s Surface) {
	for {
		select {
		case <-ctx.Done():
			return
		case sig := <-o.ch:
			if err := s.Deliver(ctx, sig); err != nil {
				o.log.Warn().Err(err).Str("signal", string(sig)).Msg("signal delivery failed")
			}
		}
	}
}
