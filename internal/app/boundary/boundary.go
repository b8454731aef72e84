// Package boundary isolates render failures of a component subtree behind a
// fallback with a retry action.
package boundary

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/a-h/templ"
	"go.uber.org/zap"
)

// DefaultMessage is shown when no fallback message is configured.
const DefaultMessage = "Something went wrong"

// PanicError carries the value recovered from a panicking render.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("render panicked: %v", e.Value)
}

// Outcome is the result of evaluating a subtree: its markup or the failure.
type Outcome struct {
	HTML []byte
	Err  error
}

// Evaluate renders c into memory. A returned error and a panic both end up
// in Outcome.Err, and in that case no markup is kept.
func Evaluate(ctx context.Context, c templ.Component) (out Outcome) {
	var buf bytes.Buffer
	defer func() {
		if r := recover(); r != nil {
			out = Outcome{Err: &PanicError{Value: r}}
		}
	}()
	if c == nil {
		return Outcome{}
	}
	if err := c.Render(ctx, &buf); err != nil {
		return Outcome{Err: err}
	}
	return Outcome{HTML: buf.Bytes()}
}

// FallbackFunc builds the markup shown in place of a failed subtree.
type FallbackFunc func(message, retryURL string) templ.Component

// Boundary holds the captured failure of one subtree. Once captured, the
// subtree is not rendered again until Retry is called.
type Boundary struct {
	mu        sync.Mutex
	name      string
	err       error
	message   string
	retryURL  string
	onRetry   func()
	onCapture func(error)
	fallback  FallbackFunc
	logger    *zap.Logger
}

type Option func(*Boundary)

func WithMessage(msg string) Option {
	return func(b *Boundary) { b.message = msg }
}

// WithRetryURL sets where the fallback's retry button posts.
func WithRetryURL(u string) Option {
	return func(b *Boundary) { b.retryURL = u }
}

// WithOnRetry registers a callback run after the captured error is cleared.
func WithOnRetry(f func()) Option {
	return func(b *Boundary) { b.onRetry = f }
}

// WithOnCapture registers a callback run for every captured failure.
func WithOnCapture(f func(error)) Option {
	return func(b *Boundary) { b.onCapture = f }
}

func WithFallback(f FallbackFunc) Option {
	return func(b *Boundary) {
		if f != nil {
			b.fallback = f
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(b *Boundary) {
		if l != nil {
			b.logger = l
		}
	}
}

func New(name string, opts ...Option) *Boundary {
	b := &Boundary{
		name:     name,
		message:  DefaultMessage,
		fallback: DefaultFallback,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Wrap returns a component that renders child, or the fallback when child
// fails or a failure is already captured.
func (b *Boundary) Wrap(child templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		b.mu.Lock()
		captured := b.err
		b.mu.Unlock()
		if captured != nil {
			return b.renderFallback(ctx, w)
		}

		out := Evaluate(ctx, child)
		if out.Err != nil {
			b.capture(out.Err)
			return b.renderFallback(ctx, w)
		}
		_, err := w.Write(out.HTML)
		return err
	})
}

func (b *Boundary) capture(err error) {
	b.mu.Lock()
	b.err = err
	onCapture := b.onCapture
	b.mu.Unlock()

	b.logger.Error("Error caught by boundary", zap.String("boundary", b.name), zap.Error(err))
	if onCapture != nil {
		onCapture(err)
	}
}

func (b *Boundary) renderFallback(ctx context.Context, w io.Writer) error {
	return b.fallback(b.message, b.retryURL).Render(ctx, w)
}

// Err returns the captured failure, if any.
func (b *Boundary) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err
}

// Retry clears the captured failure and runs the retry callback, so the next
// render evaluates the subtree from scratch.
func (b *Boundary) Retry() {
	b.mu.Lock()
	b.err = nil
	onRetry := b.onRetry
	b.mu.Unlock()

	b.logger.Info("Boundary retry", zap.String("boundary", b.name))
	if onRetry != nil {
		onRetry()
	}
}
