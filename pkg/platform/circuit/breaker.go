// Package circuit provides a small circuit breaker for calls to remote
// collaborators such as the patient directory.
package circuit

import (
	"errors"
	"sync"
	"time"
)

// ErrOpen is returned by Do while the circuit is open.
var ErrOpen = errors.New("circuit open")

// State represents the circuit breaker state.
type State int

const (
	// StateClosed lets calls through.
	StateClosed State = iota
	// StateOpen rejects calls until the cooldown elapses.
	StateOpen
	// StateHalfOpen lets probe calls through; enough successes close the circuit.
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "closed"
	}
}

// Breaker opens after FailureThreshold consecutive failures, rejects calls
// for the cooldown period, then admits probes. SuccessThreshold consecutive
// probe successes close it again; any probe failure reopens it.
type Breaker struct {
	mu               sync.Mutex
	name             string
	state            State
	failureCount     int
	successCount     int
	failureThreshold int
	successThreshold int
	cooldown         time.Duration
	openedAt         time.Time
	now              func() time.Time
	onChange         func(name string, from, to State)
}

// Option configures a Breaker instance.
type Option func(*Breaker)

// WithFailureThreshold sets the consecutive failures needed to open. Default 5.
func WithFailureThreshold(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.failureThreshold = n
		}
	}
}

// WithSuccessThreshold sets the consecutive probe successes needed to close. Default 2.
func WithSuccessThreshold(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.successThreshold = n
		}
	}
}

// WithCooldown sets how long the circuit stays open before probing. Default 10s.
func WithCooldown(d time.Duration) Option {
	return func(b *Breaker) {
		if d > 0 {
			b.cooldown = d
		}
	}
}

// WithNow overrides the time source.
func WithNow(now func() time.Time) Option {
	return func(b *Breaker) {
		if now != nil {
			b.now = now
		}
	}
}

// WithStateChange registers a callback fired on every transition, outside the lock.
func WithStateChange(fn func(name string, from, to State)) Option {
	return func(b *Breaker) {
		b.onChange = fn
	}
}

func New(name string, opts ...Option) *Breaker {
	b := &Breaker{
		name:             name,
		failureThreshold: 5,
		successThreshold: 2,
		cooldown:         10 * time.Second,
		now:              time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

func (b *Breaker) Name() string { return b.name }

// State returns the current state, promoting open to half-open once the
// cooldown has elapsed.
func (b *Breaker) State() State {
	b.mu.Lock()
	from, to := b.refreshLocked()
	state := b.state
	b.mu.Unlock()
	b.notify(from, to)
	return state
}

// Do runs fn unless the circuit is open. fn's error counts as a failure;
// callers should only pass errors that indicate the remote side is unhealthy.
func (b *Breaker) Do(fn func() error) error {
	if b.State() == StateOpen {
		return ErrOpen
	}
	err := fn()
	if err != nil {
		b.RecordFailure()
		return err
	}
	b.RecordSuccess()
	return nil
}

func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	from := b.state
	b.successCount = 0
	b.failureCount++
	if b.state == StateHalfOpen || (b.state == StateClosed && b.failureCount >= b.failureThreshold) {
		b.state = StateOpen
		b.openedAt = b.now()
	}
	to := b.state
	b.mu.Unlock()
	b.notify(from, to)
}

func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	from := b.state
	b.failureCount = 0
	if b.state == StateHalfOpen {
		b.successCount++
		if b.successCount >= b.successThreshold {
			b.state = StateClosed
			b.successCount = 0
		}
	}
	to := b.state
	b.mu.Unlock()
	b.notify(from, to)
}

// Reset closes the circuit and clears counters.
func (b *Breaker) Reset() {
	b.mu.Lock()
	from := b.state
	b.state = StateClosed
	b.failureCount = 0
	b.successCount = 0
	b.mu.Unlock()
	b.notify(from, StateClosed)
}

func (b *Breaker) refreshLocked() (State, State) {
	from := b.state
	if b.state == StateOpen && b.now().Sub(b.openedAt) >= b.cooldown {
		b.state = StateHalfOpen
		b.successCount = 0
	}
	return from, b.state
}

func (b *Breaker) notify(from, to State) {
	if from != to && b.onChange != nil {
		b.onChange(b.name, from, to)
	}
}
