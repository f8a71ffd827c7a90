package checkout

import (
	"context"
	"sync"

	"lastbite/internal/cart"
	"lastbite/internal/events"
	"lastbite/internal/repository"
	"lastbite/internal/voucher"

	"github.com/rs/zerolog"
)

// Service owns one checkout machine per user session, created lazily and
// bound to that user's cart.
type Service struct {
	mu       sync.Mutex
	machines map[string]*Machine

	carts     *cart.Store
	backend   BackendClient
	vouchers  voucher.Validator
	journal   repository.CheckoutRepository
	publisher events.Publisher
	logger    zerolog.Logger
}

// NewService creates a checkout service. The voucher validator and journal
// may be nil when those features are disabled.
func NewService(
	carts *cart.Store,
	backendClient BackendClient,
	vouchers voucher.Validator,
	journal repository.CheckoutRepository,
	publisher events.Publisher,
	logger zerolog.Logger,
) *Service {
	return &Service{
		machines:  make(map[string]*Machine),
		carts:     carts,
		backend:   backendClient,
		vouchers:  vouchers,
		journal:   journal,
		publisher: publisher,
		logger:    logger,
	}
}

// For returns the user's checkout machine, creating it if necessary.
func (s *Service) For(ctx context.Context, userID string) *Machine {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m, ok := s.machines[userID]; ok {
		return m
	}

	m := NewMachine(
		userID,
		s.carts.Get(ctx, userID),
		s.backend,
		s.vouchers,
		s.journal,
		s.publisher,
		s.logger,
	)
	s.machines[userID] = m
	return m
}
