package broadcast

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"reflexa/internal/events"
	"reflexa/internal/logger"
	"reflexa/internal/metrics"
)

// sinkQueueSize bounds how far a slow sink may fall behind before it starts
// losing events.
const sinkQueueSize = 256

// Sink receives every event the relay drains from the bus.
type Sink interface {
	Deliver(ctx context.Context, ev events.Event) error
}

// Relay drains the event bus and hands each event to its sinks in order.
type Relay struct {
	bus   *events.Bus
	sinks []Sink
	log   *logger.Logger
}

func NewRelay(bus *events.Bus, log *logger.Logger, sinks ...Sink) *Relay {
	return &Relay{bus: bus, sinks: sinks, log: log}
}

// Add registers another sink. Call before Run.
func (r *Relay) Add(s Sink) {
	r.sinks = append(r.sinks, s)
}

// Run blocks until ctx is cancelled and every sink has returned from its
// last Deliver. Each sink is fed from its own queue, so a slow or failing
// sink only drops its own events once that queue is full.
func (r *Relay) Run(ctx context.Context) {
	var wg sync.WaitGroup
	queues := make([]chan events.Event, len(r.sinks))
	for i, s := range r.sinks {
		queues[i] = make(chan events.Event, sinkQueueSize)
		wg.Add(1)
		go func(name string, s Sink, q <-chan events.Event) {
			defer wg.Done()
			r.drain(ctx, name, s, q)
		}(fmt.Sprintf("%T", s), s, queues[i])
	}
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-r.bus.C:
			for i, q := range queues {
				select {
				case q <- ev:
				default:
					metrics.EventsDroppedTotal.Inc()
					r.log.Warn("sink queue full, dropping event",
						zap.String("sink", fmt.Sprintf("%T", r.sinks[i])),
						zap.String("type", string(ev.Type)))
				}
			}
		}
	}
}

func (r *Relay) drain(ctx context.Context, name string, s Sink, q <-chan events.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-q:
			if err := s.Deliver(ctx, ev); err != nil {
				r.log.Warn("event delivery failed",
					zap.String("sink", name),
					zap.String("type", string(ev.Type)),
					zap.String("wallet", ev.Wallet),
					zap.Error(err))
			}
		}
	}
}
