package model

import (
	"context"
	"errors"
	"testing"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockModel_CannedAndEchoResponses(t *testing.T) {
	m := NewMockModel("test-model")
	m.AddResponse("ping", "pong")

	resp, err := m.Generate(context.Background(), Request{Prompt: "ping"})
	require.NoError(t, err)
	assert.Equal(t, "pong", resp.Text)

	resp, err = m.Generate(context.Background(), Request{Prompt: "something else"})
	require.NoError(t, err)
	assert.Equal(t, "Mock response to: something else", resp.Text)

	assert.Equal(t, Info{Name: "test-model", Provider: "mock"}, m.Info())
}

func TestMockModel_FailWith(t *testing.T) {
	m := NewMockModel("test-model")
	sentinel := errors.New("boom")
	m.FailWith(sentinel)

	_, err := m.Generate(context.Background(), Request{Prompt: "ping"})
	assert.ErrorIs(t, err, sentinel)

	m.FailWith(nil)
	_, err = m.Generate(context.Background(), Request{Prompt: "ping"})
	assert.NoError(t, err)
}

func TestMockModel_HonorsCancelledContext(t *testing.T) {
	m := NewMockModel("test-model")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.Generate(ctx, Request{Prompt: "ping"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBreakerModel_PassesThroughWhileClosed(t *testing.T) {
	inner := NewMockModel("wrapped")
	inner.AddResponse("ping", "pong")
	bm := NewBreakerModel(inner, BreakerConfig{}, nil)

	resp, err := bm.Generate(context.Background(), Request{Prompt: "ping"})
	require.NoError(t, err)
	assert.Equal(t, "pong", resp.Text)
	assert.Equal(t, gobreaker.StateClosed, bm.State())
	assert.Equal(t, inner.Info(), bm.Info())
}

func TestBreakerModel_OpensAfterConsecutiveFailures(t *testing.T) {
	inner := NewMockModel("flaky")
	inner.FailWith(errors.New("provider down"))
	bm := NewBreakerModel(inner, BreakerConfig{MaxFailures: 3}, nil)

	for i := 0; i < 3; i++ {
		_, err := bm.Generate(context.Background(), Request{Prompt: "ping"})
		require.Error(t, err)
		assert.NotContains(t, err.Error(), "circuit open", "provider errors pass through until the circuit trips")
	}
	assert.Equal(t, gobreaker.StateOpen, bm.State())

	// The provider recovers but the open circuit fails fast without calling it.
	inner.FailWith(nil)
	_, err := bm.Generate(context.Background(), Request{Prompt: "ping"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circuit open")
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
}

func TestBreakerModel_SuccessResetsFailureCount(t *testing.T) {
	inner := NewMockModel("recovering")
	bm := NewBreakerModel(inner, BreakerConfig{MaxFailures: 2}, nil)

	inner.FailWith(errors.New("blip"))
	_, err := bm.Generate(context.Background(), Request{Prompt: "ping"})
	require.Error(t, err)

	inner.FailWith(nil)
	_, err = bm.Generate(context.Background(), Request{Prompt: "ping"})
	require.NoError(t, err)

	// One more failure is not enough to trip after the reset.
	inner.FailWith(errors.New("blip"))
	_, err = bm.Generate(context.Background(), Request{Prompt: "ping"})
	require.Error(t, err)
	assert.Equal(t, gobreaker.StateClosed, bm.State())
}
