package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNoOutput is returned when a call times out before any text arrived.
var ErrNoOutput = errors.New("provider: call produced no output before timeout")

// TimeoutConfig bounds a single provider call. FirstChunk is the stricter
// bound before the first streamed chunk arrives; Idle applies between
// subsequent chunks; Call caps the whole request either way.
type TimeoutConfig struct {
	Call       time.Duration `json:"call" yaml:"call"`
	FirstChunk time.Duration `json:"first_chunk" yaml:"first_chunk"`
	Idle       time.Duration `json:"idle" yaml:"idle"`
}

// DefaultTimeoutConfig returns the standard per-call bounds.
func DefaultTimeoutConfig() TimeoutConfig {
	return TimeoutConfig{
		Call:       120 * time.Second,
		FirstChunk: 30 * time.Second,
		Idle:       60 * time.Second,
	}
}

// Bounded wraps a gateway with the timeout discipline. Streaming calls
// that stall return the partial text accumulated so far instead of
// discarding it; cancellation propagates to the wrapped gateway's
// context, which must close the underlying connection.
type Bounded struct {
	gateway Gateway
	config  TimeoutConfig
}

// NewBounded wraps gateway with the given timeouts.
func NewBounded(gateway Gateway, config TimeoutConfig) *Bounded {
	return &Bounded{gateway: gateway, config: config}
}

// Name returns the wrapped gateway's name.
func (b *Bounded) Name() string {
	return b.gateway.Name()
}

// Generate runs a non-streaming call under the overall call timeout.
// When the wrapped gateway can stream, streaming is preferred so a stall
// still yields partial text.
func (b *Bounded) Generate(ctx context.Context, req Request) (Response, error) {
	if sg, ok := b.gateway.(StreamGateway); ok {
		return b.stream(ctx, sg, req, nil)
	}

	callCtx, cancel := context.WithTimeout(ctx, b.config.Call)
	defer cancel()

	start := time.Now()
	resp, err := b.gateway.Generate(callCtx, req)
	if err != nil {
		return Response{}, fmt.Errorf("provider %s: %w", b.gateway.Name(), err)
	}
	resp.Provider = b.gateway.Name()
	resp.Duration = time.Since(start)
	return resp, nil
}

// GenerateStream runs a streaming call with first-chunk and idle bounds.
func (b *Bounded) GenerateStream(ctx context.Context, req Request, onDelta func(string)) (Response, error) {
	sg, ok := b.gateway.(StreamGateway)
	if !ok {
		// Transparent fallback for providers without streaming support.
		resp, err := b.Generate(ctx, req)
		if err == nil && onDelta != nil && resp.Text != "" {
			onDelta(resp.Text)
		}
		return resp, err
	}
	return b.stream(ctx, sg, req, onDelta)
}

func (b *Bounded) stream(ctx context.Context, sg StreamGateway, req Request, onDelta func(string)) (Response, error) {
	callCtx, cancel := context.WithTimeout(ctx, b.config.Call)
	defer cancel()

	chunks := make(chan string)
	result := make(chan error, 1)
	go func() {
		_, err := sg.GenerateStream(callCtx, req, func(chunk string) {
			select {
			case chunks <- chunk:
			case <-callCtx.Done():
			}
		})
		result <- err
	}()

	var accumulated strings.Builder
	start := time.Now()
	deadline := b.config.FirstChunk
	timer := time.NewTimer(deadline)
	defer timer.Stop()

	for {
		select {
		case chunk := <-chunks:
			accumulated.WriteString(chunk)
			if onDelta != nil {
				onDelta(chunk)
			}
			deadline = b.config.Idle
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(deadline)

		case err := <-result:
			if err != nil {
				if accumulated.Len() > 0 {
					return b.partial(accumulated.String(), start), nil
				}
				return Response{}, fmt.Errorf("provider %s: stream: %w", sg.Name(), err)
			}
			return Response{
				Provider: sg.Name(),
				Text:     accumulated.String(),
				Duration: time.Since(start),
			}, nil

		case <-timer.C:
			// Stalled stream. Cancel so the wrapped gateway closes its
			// connection, then keep whatever arrived.
			cancel()
			<-result
			if accumulated.Len() == 0 {
				return Response{}, fmt.Errorf("provider %s: no chunk within %s: %w",
					sg.Name(), deadline, ErrNoOutput)
			}
			return b.partial(accumulated.String(), start), nil

		case <-ctx.Done():
			cancel()
			<-result
			if accumulated.Len() > 0 {
				return b.partial(accumulated.String(), start), nil
			}
			return Response{}, fmt.Errorf("provider %s: %w", sg.Name(), ctx.Err())
		}
	}
}

func (b *Bounded) partial(text string, start time.Time) Response {
	return Response{
		Provider: b.gateway.Name(),
		Text:     text,
		Partial:  true,
		Duration: time.Since(start),
	}
}
