// README: Generation quota; one token per backend call made for an authenticated caller.
package aiusage

import (
	"context"
	"errors"
)

type Service struct {
	store *Store
	quota int
}

// NewService creates a Service granting quota tokens per month.
// quota <= 0 selects DefaultTokens.
func NewService(store *Store, quota int) *Service {
	if quota <= 0 {
		quota = DefaultTokens
	}
	return &Service{store: store, quota: quota}
}

// UseToken deducts one token from the caller's monthly allowance.
// If the caller has no row yet it is initialised and the token is immediately consumed.
func (s *Service) UseToken(ctx context.Context, uid string) error {
	err := s.store.UseToken(ctx, uid, s.quota)
	if !errors.Is(err, ErrInsufficientTokens) {
		return err
	}

	// Row may be missing: try to create it, then retry the deduction once.
	if initErr := s.store.EnsureUser(ctx, uid, s.quota); initErr != nil {
		return initErr
	}
	return s.store.UseToken(ctx, uid, s.quota)
}

// Remaining reports how many tokens the caller has left this month.
func (s *Service) Remaining(ctx context.Context, uid string) (int, error) {
	return s.store.Remaining(ctx, uid, s.quota)
}
