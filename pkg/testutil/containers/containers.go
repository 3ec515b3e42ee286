//go:build integration

// Package containers starts the PostgreSQL and Kafka dependencies of the
// integration suites. Each dependency is started at most once per test
// binary; the testcontainers reaper removes it when the binary exits.
package containers

import (
	"context"
	"sync"
	"testing"
	"time"
)

const startTimeout = 2 * time.Minute

// shared starts a fixture on first use and hands the same one (or the same
// start failure) to every later caller.
type shared[T any] struct {
	once sync.Once
	val  T
	err  error
}

func (s *shared[T]) get(t testing.TB, name string, start func(context.Context) (T, error)) T {
	t.Helper()
	s.once.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), startTimeout)
		defer cancel()
		s.val, s.err = start(ctx)
	})
	if s.err != nil {
		t.Fatalf("start %s: %v", name, s.err)
	}
	return s.val
}

var (
	sharedPostgres shared[*PostgresContainer]
	sharedKafka    shared[*KafkaContainer]
)

// Postgres returns the package-wide database with every migration applied.
func Postgres(t testing.TB) *PostgresContainer {
	t.Helper()
	return sharedPostgres.get(t, "postgres", startPostgres)
}

// Kafka returns the package-wide broker.
func Kafka(t testing.TB) *KafkaContainer {
	t.Helper()
	return sharedKafka.get(t, "kafka", startKafka)
}
