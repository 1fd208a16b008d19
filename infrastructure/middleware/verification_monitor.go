package middleware

import (
	"context"
	"time"

	"github.com/ahrav/go-scrutineer/internal/domain"
	"github.com/ahrav/go-scrutineer/internal/ports"
)

// VerifyObserver provides observability hooks around a verification.
// Implementations can add tracing, metrics and logging without coupling
// observability concerns to the gate.
type VerifyObserver interface {
	// PreVerify is called before the gate runs. The returned context is
	// handed to PostVerify.
	PreVerify(ctx context.Context, c *domain.Competition) context.Context

	// PostVerify is called with the verdict and the time the gate took.
	PostVerify(ctx context.Context, c *domain.Competition, v domain.Verdict, elapsed time.Duration)
}

// VerificationMonitor wraps a Verifier and reports every verdict to its
// observers. It holds no mutable state and is safe for concurrent use
// whenever the wrapped Verifier is.
type VerificationMonitor struct {
	// next is the verifier that produces the verdict.
	next ports.Verifier

	// observers are notified in order before and after each verification.
	observers []VerifyObserver
}

// NewVerificationMonitor creates a monitor around next. Nil observers are
// skipped.
func NewVerificationMonitor(next ports.Verifier, observers ...VerifyObserver) *VerificationMonitor {
	if next == nil {
		panic("verification monitor: next verifier is required")
	}
	m := &VerificationMonitor{next: next}
	for _, o := range observers {
		if o != nil {
			m.observers = append(m.observers, o)
		}
	}
	return m
}

// Verify implements ports.Verifier without a request context.
func (m *VerificationMonitor) Verify(c *domain.Competition) domain.Verdict {
	return m.VerifyContext(context.Background(), c)
}

// VerifyContext runs the wrapped verifier between the observer hooks.
// Each observer's PostVerify receives the context its own PreVerify
// returned.
func (m *VerificationMonitor) VerifyContext(ctx context.Context, c *domain.Competition) domain.Verdict {
	ctxs := make([]context.Context, len(m.observers))
	for i, o := range m.observers {
		ctx = o.PreVerify(ctx, c)
		ctxs[i] = ctx
	}

	start := time.Now()
	v := m.next.Verify(c)
	elapsed := time.Since(start)

	for i := len(m.observers) - 1; i >= 0; i-- {
		m.observers[i].PostVerify(ctxs[i], c, v, elapsed)
	}
	return v
}

var (
	_ ports.Verifier        = (*VerificationMonitor)(nil)
	_ ports.ContextVerifier = (*VerificationMonitor)(nil)
)
