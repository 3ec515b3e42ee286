package main

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"

	"carebridge/internal/audit"
	"carebridge/internal/audit/outbox"
	consentmetrics "carebridge/internal/consent/metrics"
	consentservice "carebridge/internal/consent/service"
	"carebridge/internal/consent/signing"
	consentstore "carebridge/internal/consent/store"
	"carebridge/internal/patient/directory"
	"carebridge/internal/platform/config"
	id "carebridge/pkg/domain"
	"carebridge/pkg/platform/circuit"
	"carebridge/pkg/platform/tracer"
)

const auditBufferSize = 1024

// consentApp is the assembled consent engine with its audit pipeline.
type consentApp struct {
	service   *consentservice.Service
	publisher *audit.Publisher
	// relay is nil unless both postgres and kafka are configured.
	relay *outbox.Relay
}

// buildConsent assembles the consent engine over whichever store the
// configuration selects. The publisher must be closed on shutdown so
// buffered audit events are written.
func buildConsent(cfg config.Server, log *slog.Logger, in *infra, reg prometheus.Registerer, m *consentmetrics.Metrics) (*consentApp, error) {
	signer, err := signing.NewJWS(cfg.Consent.SigningKey)
	if err != nil {
		return nil, err
	}

	app := &consentApp{}
	auditStore, relay, err := newAuditPipeline(cfg, log, in, reg)
	if err != nil {
		return nil, err
	}
	app.relay = relay

	publisherOpts := []audit.PublisherOption{
		audit.WithAsyncBuffer(auditBufferSize),
		audit.WithPublisherLogger(log),
		audit.WithDroppedCounter(m.AuditDropped),
	}
	if in.db == nil && in.producer != nil {
		publisherOpts = append(publisherOpts, audit.WithForwarder(audit.NewKafkaForwarder(in.producer, cfg.Kafka.AuditTopic)))
	}
	app.publisher = audit.NewPublisher(auditStore, publisherOpts...)

	opts := []consentservice.Option{
		consentservice.WithLogger(log),
		consentservice.WithAuditor(app.publisher),
		consentservice.WithMetrics(m),
		consentservice.WithTracer(tracer.NewOTel(otel.Tracer("carebridge/consent"))),
	}

	var store consentservice.Store
	if in.db != nil {
		store = consentstore.NewPostgres(in.db.DB())
		opts = append(opts, consentservice.WithStoreTx(newConsentPostgresTx(in.db.DB(), m)))
		log.Info("using postgres consent store")
	} else {
		store = consentstore.New()
		log.Warn("DATABASE_URL not set; consent state is kept in memory and lost on restart")
	}

	app.service = consentservice.NewService(store, newPatientDirectory(cfg, log, in, m), signer, opts...)
	return app, nil
}

// newAuditPipeline keeps audit events in the postgres outbox when a
// database is configured, relaying them to kafka when brokers are set too.
// Without a database, events stay in memory and are forwarded best-effort.
func newAuditPipeline(cfg config.Server, log *slog.Logger, in *infra, reg prometheus.Registerer) (audit.Store, *outbox.Relay, error) {
	if in.db == nil {
		return audit.NewInMemoryStore(), nil, nil
	}
	ob := outbox.NewPostgres(in.db.DB())
	if in.producer == nil {
		log.Info("audit events stored in outbox; KAFKA_BROKERS not set so nothing relays them")
		return audit.NewOutboxStore(ob), nil, nil
	}
	relay, err := outbox.NewRelay(ob, in.producer,
		outbox.WithTopic(cfg.Kafka.AuditTopic),
		outbox.WithPollInterval(cfg.Kafka.OutboxPollInterval),
		outbox.WithMetrics(outbox.NewMetrics(reg)),
		outbox.WithLogger(log),
	)
	if err != nil {
		return nil, nil, err
	}
	return audit.NewOutboxStore(ob), relay, nil
}

// newPatientDirectory picks the HTTP directory when a URL is configured and
// a static seed list otherwise, optionally fronted by the redis cache.
func newPatientDirectory(cfg config.Server, log *slog.Logger, in *infra, m *consentmetrics.Metrics) consentservice.PatientDirectory {
	var lookup directory.Lookup
	if cfg.Directory.URL != "" {
		breaker := circuit.New("patient_directory",
			circuit.WithStateChange(func(name string, from, to circuit.State) {
				log.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
			}),
		)
		lookup = directory.NewHTTP(directory.HTTPConfig{
			BaseURL: cfg.Directory.URL,
			Timeout: cfg.Directory.Timeout,
			Breaker: breaker,
		})
	} else {
		seed := make([]id.PatientID, 0, len(cfg.Directory.SeedPatientIDs))
		for _, p := range cfg.Directory.SeedPatientIDs {
			seed = append(seed, id.PatientID(p))
		}
		lookup = directory.NewStatic(seed...)
		log.Info("using static patient directory", "patients", len(seed))
	}

	if in.redis != nil {
		lookup = directory.NewCached(lookup, in.redis, cfg.Directory.CacheTTL,
			directory.WithLogger(log),
			directory.WithLookupCounter(m.PatientCacheLookups),
		)
	}
	return lookup
}
