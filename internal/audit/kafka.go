package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"carebridge/internal/platform/kafka/producer"
)

// Producer is the subset of the Kafka producer the forwarder needs.
type Producer interface {
	ProduceAsync(ctx context.Context, msg *producer.Message) error
}

// KafkaForwarder publishes audit events as JSON to a topic, keyed by subject
// so events for one request or artefact stay ordered within a partition.
type KafkaForwarder struct {
	producer Producer
	topic    string
}

func NewKafkaForwarder(p Producer, topic string) *KafkaForwarder {
	return &KafkaForwarder{producer: p, topic: topic}
}

func (k *KafkaForwarder) Append(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode audit event: %w", err)
	}
	return k.producer.ProduceAsync(ctx, &producer.Message{
		Topic: k.topic,
		Key:   []byte(event.Subject),
		Value: payload,
		Headers: map[string]string{
			"action":   event.Action,
			"decision": event.Decision,
		},
	})
}
