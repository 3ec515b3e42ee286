package circuit

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testClock struct{ t time.Time }

func (c *testClock) now() time.Time { return c.t }

func TestBreakerLifecycle(t *testing.T) {
	clk := &testClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	var transitions []string
	b := New("patient-directory",
		WithFailureThreshold(2),
		WithSuccessThreshold(2),
		WithCooldown(time.Second),
		WithNow(clk.now),
		WithStateChange(func(_ string, from, to State) {
			transitions = append(transitions, from.String()+"->"+to.String())
		}),
	)
	boom := errors.New("boom")

	require.ErrorIs(t, b.Do(func() error { return boom }), boom)
	assert.Equal(t, StateClosed, b.State())
	require.ErrorIs(t, b.Do(func() error { return boom }), boom)
	assert.Equal(t, StateOpen, b.State())

	called := false
	err := b.Do(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrOpen)
	assert.False(t, called)

	clk.t = clk.t.Add(time.Second)
	assert.Equal(t, StateHalfOpen, b.State())

	// probe failure reopens immediately
	require.ErrorIs(t, b.Do(func() error { return boom }), boom)
	assert.Equal(t, StateOpen, b.State())

	clk.t = clk.t.Add(time.Second)
	require.NoError(t, b.Do(func() error { return nil }))
	assert.Equal(t, StateHalfOpen, b.State())
	require.NoError(t, b.Do(func() error { return nil }))
	assert.Equal(t, StateClosed, b.State())

	assert.Equal(t, []string{
		"closed->open", "open->half_open", "half_open->open",
		"open->half_open", "half_open->closed",
	}, transitions)
}

func TestBreakerSuccessResetsFailureStreak(t *testing.T) {
	b := New("x", WithFailureThreshold(2))
	b.RecordFailure()
	b.RecordSuccess()
	b.RecordFailure()
	assert.Equal(t, StateClosed, b.State())

	b.RecordFailure()
	assert.Equal(t, StateOpen, b.State())
	b.Reset()
	assert.Equal(t, StateClosed, b.State())
}
