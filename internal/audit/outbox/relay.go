package outbox

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"carebridge/internal/platform/kafka/producer"
	"carebridge/pkg/platform/clock"
)

const (
	defaultBatchSize    = 100
	defaultPollInterval = 500 * time.Millisecond
	drainTimeout        = 10 * time.Second
)

// Producer is the subset of the Kafka producer the relay needs.
type Producer interface {
	Produce(ctx context.Context, msg *producer.Message) error
}

// Relay polls the outbox and publishes pending entries to Kafka. Delivery
// is at-least-once: an entry published but not marked is sent again on the
// next poll, keyed by its entry id so consumers can deduplicate.
type Relay struct {
	store        Store
	producer     Producer
	topic        string
	batchSize    int
	pollInterval time.Duration
	clock        clock.Clock
	metrics      *Metrics
	logger       *slog.Logger
}

// Option configures the Relay.
type Option func(*Relay)

func WithTopic(topic string) Option {
	return func(r *Relay) {
		if topic != "" {
			r.topic = topic
		}
	}
}

func WithBatchSize(size int) Option {
	return func(r *Relay) {
		if size > 0 {
			r.batchSize = size
		}
	}
}

func WithPollInterval(interval time.Duration) Option {
	return func(r *Relay) {
		if interval > 0 {
			r.pollInterval = interval
		}
	}
}

func WithMetrics(m *Metrics) Option {
	return func(r *Relay) {
		r.metrics = m
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Relay) {
		r.logger = logger
	}
}

func WithClock(c clock.Clock) Option {
	return func(r *Relay) {
		r.clock = c
	}
}

// NewRelay creates a relay over store and prod.
func NewRelay(store Store, prod Producer, opts ...Option) (*Relay, error) {
	if store == nil {
		return nil, errors.New("outbox store is required")
	}
	if prod == nil {
		return nil, errors.New("kafka producer is required")
	}
	r := &Relay{
		store:        store,
		producer:     prod,
		topic:        "carebridge.audit.consent",
		batchSize:    defaultBatchSize,
		pollInterval: defaultPollInterval,
		clock:        clock.System{},
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Run polls until ctx is cancelled, then makes a bounded final pass so
// events written during shutdown still leave the process.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.drain()
			return ctx.Err()
		case <-ticker.C:
			if _, err := r.RelayOnce(ctx); err != nil {
				r.logger.ErrorContext(ctx, "audit outbox poll failed", "error", err)
			}
		}
	}
}

// RelayOnce publishes one batch and returns how many entries were relayed.
// A failed entry is left pending and does not stop the batch.
func (r *Relay) RelayOnce(ctx context.Context) (int, error) {
	entries, err := r.store.FetchUnprocessed(ctx, r.batchSize)
	if err != nil {
		r.metrics.incFailure()
		return 0, err
	}
	r.metrics.observeBatch(len(entries))

	relayed := 0
	for _, entry := range entries {
		if err := r.publish(ctx, entry); err != nil {
			r.metrics.incFailure()
			r.logger.ErrorContext(ctx, "failed to relay audit event",
				"id", entry.ID,
				"event_type", entry.EventType,
				"error", err,
			)
			continue
		}
		if err := r.store.MarkProcessed(ctx, entry.ID, r.clock.Now()); err != nil {
			r.logger.ErrorContext(ctx, "failed to mark audit event relayed",
				"id", entry.ID,
				"error", err,
			)
			continue
		}
		r.metrics.incPublished()
		relayed++
	}

	if pending, err := r.store.CountPending(ctx); err == nil {
		r.metrics.setPending(pending)
	}
	return relayed, nil
}

func (r *Relay) publish(ctx context.Context, entry *Entry) error {
	start := time.Now()
	err := r.producer.Produce(ctx, &producer.Message{
		Topic: r.topic,
		Key:   []byte(entry.ID.String()),
		Value: entry.Payload,
		Headers: map[string]string{
			"aggregate_id": entry.AggregateID,
			"event_type":   entry.EventType,
		},
	})
	if err != nil {
		return err
	}
	r.metrics.observePublish(time.Since(start).Seconds())
	return nil
}

func (r *Relay) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	for ctx.Err() == nil {
		n, err := r.RelayOnce(ctx)
		if err != nil {
			r.logger.Error("failed to drain audit outbox", "error", err)
			return
		}
		if n == 0 {
			return
		}
	}
}

// Prune deletes entries relayed before now minus retention.
func (r *Relay) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	return r.store.DeleteProcessedBefore(ctx, r.clock.Now().Add(-retention))
}
