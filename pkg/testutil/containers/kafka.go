//go:build integration

package containers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
)

// KafkaContainer is a single-node KRaft broker.
type KafkaContainer struct {
	Brokers string
	admin   *kadm.Client
}

func startKafka(ctx context.Context) (*KafkaContainer, error) {
	c, err := kafka.Run(ctx, "confluentinc/confluent-local:7.5.0",
		kafka.WithClusterID("carebridge-test"),
	)
	if err != nil {
		return nil, err
	}
	brokers, err := c.Brokers(ctx)
	if err != nil {
		return nil, fmt.Errorf("brokers: %w", err)
	}
	cl, err := kgo.NewClient(kgo.SeedBrokers(brokers...))
	if err != nil {
		return nil, fmt.Errorf("admin client: %w", err)
	}
	return &KafkaContainer{Brokers: brokers[0], admin: kadm.NewClient(cl)}, nil
}

// CreateTopic makes a single-partition topic. An existing topic is fine.
func (k *KafkaContainer) CreateTopic(ctx context.Context, topic string) error {
	resp, err := k.admin.CreateTopic(ctx, 1, 1, nil, topic)
	if err != nil {
		return err
	}
	if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
		return resp.Err
	}
	return nil
}

// NewConsumer joins group and reads topics from the earliest offset.
func (k *KafkaContainer) NewConsumer(group string, topics ...string) (*kgo.Client, error) {
	return kgo.NewClient(
		kgo.SeedBrokers(k.Brokers),
		kgo.ConsumerGroup(group),
		kgo.ConsumeTopics(topics...),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
		kgo.DisableAutoCommit(),
	)
}

// FirstRecord polls consumer until a record satisfies match or wait runs
// out, in which case it returns nil.
func FirstRecord(ctx context.Context, consumer *kgo.Client, wait time.Duration, match func(*kgo.Record) bool) *kgo.Record {
	ctx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	for ctx.Err() == nil {
		fetches := consumer.PollFetches(ctx)
		if fetches.IsClientClosed() {
			return nil
		}
		iter := fetches.RecordIter()
		for !iter.Done() {
			if r := iter.Next(); match(r) {
				return r
			}
		}
	}
	return nil
}
