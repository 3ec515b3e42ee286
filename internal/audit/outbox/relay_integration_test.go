//go:build integration

package outbox_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	"carebridge/internal/audit/outbox"
	"carebridge/internal/platform/kafka/producer"
	"carebridge/pkg/testutil/containers"
)

// RelayFlowSuite moves outbox rows from Postgres onto a real broker.
type RelayFlowSuite struct {
	suite.Suite
	pg       *containers.PostgresContainer
	kafka    *containers.KafkaContainer
	store    *outbox.PostgresStore
	producer *producer.Producer
	ctx      context.Context
}

func TestRelayFlowSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RelayFlowSuite))
}

func (s *RelayFlowSuite) SetupSuite() {
	s.ctx = context.Background()
	s.pg = containers.Postgres(s.T())
	s.kafka = containers.Kafka(s.T())
	s.store = outbox.NewPostgres(s.pg.DB)

	prod, err := producer.New(producer.DefaultConfig(s.kafka.Brokers), nil)
	s.Require().NoError(err)
	s.producer = prod
}

func (s *RelayFlowSuite) TearDownSuite() {
	if s.producer != nil {
		s.producer.Close()
	}
}

func (s *RelayFlowSuite) SetupTest() {
	s.Require().NoError(s.pg.Truncate(s.ctx, "audit_outbox"))
}

func (s *RelayFlowSuite) TestPendingRowsReachTheTopicOnce() {
	topic := "carebridge-relay-" + time.Now().UTC().Format("150405.000")
	s.Require().NoError(s.kafka.CreateTopic(s.ctx, topic))

	now := time.Now().UTC()
	want := map[string]string{}
	for i, action := range []string{"consent_request_created", "consent_granted", "consent_access_recorded"} {
		e := outbox.NewEntry("req-flow", action, []byte(`{"action":"`+action+`"}`), now.Add(time.Duration(i)*time.Millisecond))
		s.Require().NoError(s.store.Append(s.ctx, e))
		want[e.ID.String()] = action
	}

	relay, err := outbox.NewRelay(s.store, s.producer,
		outbox.WithTopic(topic),
		outbox.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	s.Require().NoError(err)

	n, err := relay.RelayOnce(s.ctx)
	s.Require().NoError(err)
	s.Equal(3, n)

	again, err := relay.RelayOnce(s.ctx)
	s.Require().NoError(err)
	s.Zero(again, "relayed rows are not picked up twice")

	consumer, err := s.kafka.NewConsumer("relay-flow-"+topic, topic)
	s.Require().NoError(err)
	defer consumer.Close()

	seen := map[string]string{}
	containers.FirstRecord(s.ctx, consumer, 15*time.Second, func(r *kgo.Record) bool {
		for _, h := range r.Headers {
			if h.Key == "event_type" {
				seen[string(r.Key)] = string(h.Value)
			}
		}
		return len(seen) == len(want)
	})
	s.Equal(want, seen)

	pending, err := s.store.CountPending(s.ctx)
	s.Require().NoError(err)
	s.Zero(pending)
}
