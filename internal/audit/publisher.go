package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Publisher captures structured audit events. It is append-only: each event
// is written to the store and then to every forwarder. Forwarder failures
// are logged and never fail the caller.
type Publisher struct {
	store      Store
	forwarders []Sink
	events     chan Event
	wg         sync.WaitGroup
	logger     *slog.Logger
	async      bool
	now        func() time.Time
	dropped    prometheus.Counter
}

// PublisherOption configures the Publisher.
type PublisherOption func(*Publisher)

// WithAsyncBuffer enables async processing with the specified buffer size.
// Events are queued and persisted in a background goroutine.
func WithAsyncBuffer(size int) PublisherOption {
	return func(p *Publisher) {
		if size > 0 {
			p.events = make(chan Event, size)
			p.async = true
		}
	}
}

// WithPublisherLogger sets a logger for async error reporting.
func WithPublisherLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// WithForwarder adds a downstream sink such as the Kafka forwarder.
func WithForwarder(s Sink) PublisherOption {
	return func(p *Publisher) {
		if s != nil {
			p.forwarders = append(p.forwarders, s)
		}
	}
}

// WithDroppedCounter counts events dropped because the async buffer was full.
func WithDroppedCounter(c prometheus.Counter) PublisherOption {
	return func(p *Publisher) {
		p.dropped = c
	}
}

func NewPublisher(store Store, opts ...PublisherOption) *Publisher {
	p := &Publisher{store: store, logger: slog.Default(), now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	if p.async {
		p.wg.Add(1)
		go p.processEvents()
	}
	return p
}

// processEvents runs in a goroutine and persists events from the channel.
func (p *Publisher) processEvents() {
	defer p.wg.Done()
	for event := range p.events {
		if err := p.write(context.Background(), event); err != nil {
			p.logger.Error("failed to persist audit event",
				"error", err,
				"action", event.Action,
				"subject", event.Subject,
			)
		}
	}
}

func (p *Publisher) write(ctx context.Context, event Event) error {
	if err := p.store.Append(ctx, event); err != nil {
		return err
	}
	for _, f := range p.forwarders {
		if err := f.Append(ctx, event); err != nil {
			p.logger.Warn("audit forward failed",
				"error", err,
				"action", event.Action,
				"subject", event.Subject,
			)
		}
	}
	return nil
}

// Close shuts down the async publisher and waits for pending events to drain.
func (p *Publisher) Close() {
	if p.async && p.events != nil {
		close(p.events)
		p.wg.Wait()
	}
}

// Emit records an event, stamping it when Timestamp is zero. In async mode a
// full buffer drops the event rather than blocking the caller.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = p.now().UTC()
	}
	if p.async {
		select {
		case p.events <- event:
		default:
			if p.dropped != nil {
				p.dropped.Inc()
			}
			p.logger.Warn("audit buffer full, event dropped",
				"action", event.Action,
				"subject", event.Subject,
			)
		}
		return nil
	}
	return p.write(ctx, event)
}

// ListBySubject returns the events recorded for a request or artefact id.
func (p *Publisher) ListBySubject(ctx context.Context, subject string) ([]Event, error) {
	return p.store.ListBySubject(ctx, subject)
}
