//go:build integration

package producer_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	"carebridge/internal/platform/kafka/producer"
	"carebridge/pkg/testutil/containers"
)

// ProducerBrokerSuite talks to a real broker: sync delivery with headers,
// buffered delivery after Flush, and behaviour once closed.
type ProducerBrokerSuite struct {
	suite.Suite
	kafka *containers.KafkaContainer
	ctx   context.Context
}

func TestProducerBrokerSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(ProducerBrokerSuite))
}

func (s *ProducerBrokerSuite) SetupSuite() {
	s.kafka = containers.Kafka(s.T())
	s.ctx = context.Background()
}

func (s *ProducerBrokerSuite) newProducer() *producer.Producer {
	cfg := producer.DefaultConfig(s.kafka.Brokers)
	cfg.DeliveryTimeout = 10 * time.Second
	p, err := producer.New(cfg, nil)
	s.Require().NoError(err)
	s.T().Cleanup(p.Close)
	return p
}

func (s *ProducerBrokerSuite) freshTopic(prefix string) string {
	topic := prefix + "-" + time.Now().UTC().Format("150405.000000")
	s.Require().NoError(s.kafka.CreateTopic(s.ctx, topic))
	return topic
}

// collect reads until every key in want has been seen or the wait expires.
func (s *ProducerBrokerSuite) collect(topic string, want ...string) map[string]*kgo.Record {
	consumer, err := s.kafka.NewConsumer("it-"+topic, topic)
	s.Require().NoError(err)
	defer consumer.Close()

	got := map[string]*kgo.Record{}
	containers.FirstRecord(s.ctx, consumer, 15*time.Second, func(r *kgo.Record) bool {
		got[string(r.Key)] = r
		return len(got) >= len(want)
	})
	return got
}

func (s *ProducerBrokerSuite) TestSyncDeliveryKeepsHeaders() {
	p := s.newProducer()
	topic := s.freshTopic("carebridge-audit-sync")

	s.Require().NoError(p.Produce(s.ctx, &producer.Message{
		Topic:   topic,
		Key:     []byte("req-1"),
		Value:   []byte(`{"action":"consent_granted"}`),
		Headers: map[string]string{"event_type": "consent_granted"},
	}))

	got := s.collect(topic, "req-1")
	rec := got["req-1"]
	s.Require().NotNil(rec)
	s.JSONEq(`{"action":"consent_granted"}`, string(rec.Value))
	s.Require().Len(rec.Headers, 1)
	s.Equal("event_type", rec.Headers[0].Key)
	s.Equal("consent_granted", string(rec.Headers[0].Value))
}

func (s *ProducerBrokerSuite) TestAsyncDeliveryAfterFlush() {
	p := s.newProducer()
	topic := s.freshTopic("carebridge-audit-async")

	keys := []string{"a", "b", "c"}
	for _, k := range keys {
		s.Require().NoError(p.ProduceAsync(s.ctx, &producer.Message{Topic: topic, Key: []byte(k), Value: []byte(k)}))
	}
	flushCtx, cancel := context.WithTimeout(s.ctx, 10*time.Second)
	defer cancel()
	s.Require().NoError(p.Flush(flushCtx))
	s.Zero(p.Buffered())

	got := s.collect(topic, keys...)
	for _, k := range keys {
		s.Contains(got, k)
	}
}

func (s *ProducerBrokerSuite) TestClosedProducerRefusesWork() {
	p := s.newProducer()
	s.Require().NoError(p.Health(s.ctx))

	p.Close()
	p.Close()

	s.ErrorIs(p.Produce(s.ctx, &producer.Message{Topic: "unused", Value: []byte("x")}), producer.ErrClosed)
	s.ErrorIs(p.ProduceAsync(s.ctx, &producer.Message{Topic: "unused", Value: []byte("x")}), producer.ErrClosed)
	s.ErrorIs(p.Health(s.ctx), producer.ErrClosed)
}
