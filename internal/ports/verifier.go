package ports

import (
	"context"

	"github.com/ahrav/go-scrutineer/internal/domain"
)

// Verifier decides whether a competition record may be published.
// *fidelity.Gate is the production implementation.
type Verifier interface {
	Verify(c *domain.Competition) domain.Verdict
}

// ContextVerifier is a Verifier that takes part in request-scoped tracing.
// Middleware wrapping a Verifier implements it.
type ContextVerifier interface {
	VerifyContext(ctx context.Context, c *domain.Competition) domain.Verdict
}
