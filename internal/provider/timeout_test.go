package provider

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticGateway struct {
	name string
	text string
	err  error
}

func (g *staticGateway) Name() string { return g.name }

func (g *staticGateway) Generate(ctx context.Context, req Request) (Response, error) {
	if g.err != nil {
		return Response{}, g.err
	}
	return Response{Text: g.text}, nil
}

// chunkGateway streams the given chunks with a fixed gap between them,
// then optionally stalls until the context is cancelled.
type chunkGateway struct {
	name   string
	chunks []string
	gap    time.Duration
	stall  bool
}

func (g *chunkGateway) Name() string { return g.name }

func (g *chunkGateway) Generate(ctx context.Context, req Request) (Response, error) {
	return Response{}, errors.New("streaming only")
}

func (g *chunkGateway) GenerateStream(ctx context.Context, req Request, onDelta func(string)) (Response, error) {
	for _, chunk := range g.chunks {
		select {
		case <-time.After(g.gap):
		case <-ctx.Done():
			return Response{}, ctx.Err()
		}
		onDelta(chunk)
	}
	if g.stall {
		<-ctx.Done()
		return Response{}, ctx.Err()
	}
	return Response{}, nil
}

func fastTimeouts() TimeoutConfig {
	return TimeoutConfig{
		Call:       time.Second,
		FirstChunk: 200 * time.Millisecond,
		Idle:       100 * time.Millisecond,
	}
}

func TestBounded_NonStreamingGenerate(t *testing.T) {
	b := NewBounded(&staticGateway{name: "claude", text: "answer"}, fastTimeouts())

	resp, err := b.Generate(context.Background(), Request{Prompt: "q"})
	require.NoError(t, err)
	assert.Equal(t, "claude", resp.Provider)
	assert.Equal(t, "answer", resp.Text)
	assert.False(t, resp.Partial)
}

func TestBounded_GenerateErrorNamesProvider(t *testing.T) {
	b := NewBounded(&staticGateway{name: "gpt", err: errors.New("rate limited")}, fastTimeouts())

	_, err := b.Generate(context.Background(), Request{Prompt: "q"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gpt")
	assert.Contains(t, err.Error(), "rate limited")
}

func TestBounded_StreamAccumulatesChunks(t *testing.T) {
	g := &chunkGateway{name: "claude", chunks: []string{"first ", "second ", "third"}, gap: 5 * time.Millisecond}
	b := NewBounded(g, fastTimeouts())

	var deltas []string
	resp, err := b.GenerateStream(context.Background(), Request{Prompt: "q"}, func(c string) {
		deltas = append(deltas, c)
	})
	require.NoError(t, err)
	assert.Equal(t, "first second third", resp.Text)
	assert.Equal(t, []string{"first ", "second ", "third"}, deltas)
	assert.False(t, resp.Partial)
}

func TestBounded_IdleTimeoutKeepsPartialText(t *testing.T) {
	g := &chunkGateway{name: "claude", chunks: []string{"partial answer"}, gap: 5 * time.Millisecond, stall: true}
	b := NewBounded(g, fastTimeouts())

	resp, err := b.GenerateStream(context.Background(), Request{Prompt: "q"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "partial answer", resp.Text)
	assert.True(t, resp.Partial)
}

func TestBounded_FirstChunkTimeoutWithNoOutputFails(t *testing.T) {
	g := &chunkGateway{name: "claude", stall: true}
	b := NewBounded(g, fastTimeouts())

	_, err := b.GenerateStream(context.Background(), Request{Prompt: "q"}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoOutput)
}

func TestBounded_CancellationReturnsPartialText(t *testing.T) {
	g := &chunkGateway{name: "claude", chunks: []string{"early text"}, gap: 5 * time.Millisecond, stall: true}
	cfg := fastTimeouts()
	cfg.Idle = time.Second
	b := NewBounded(g, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	resp, err := b.GenerateStream(ctx, Request{Prompt: "q"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "early text", resp.Text)
	assert.True(t, resp.Partial)
}

func TestBounded_StreamFallbackForNonStreamingGateway(t *testing.T) {
	b := NewBounded(&staticGateway{name: "mistral", text: "whole answer"}, fastTimeouts())

	var deltas []string
	resp, err := b.GenerateStream(context.Background(), Request{Prompt: "q"}, func(c string) {
		deltas = append(deltas, c)
	})
	require.NoError(t, err)
	assert.Equal(t, "whole answer", resp.Text)
	assert.Equal(t, []string{"whole answer"}, deltas)
}

func TestRegistry_ResolvesAndRejects(t *testing.T) {
	r := NewRegistry(
		&staticGateway{name: "gpt"},
		&staticGateway{name: "claude"},
	)

	g, err := r.Get("claude")
	require.NoError(t, err)
	assert.Equal(t, "claude", g.Name())

	_, err = r.Get("nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown provider")

	assert.Equal(t, []string{"claude", "gpt"}, r.Names())
}
