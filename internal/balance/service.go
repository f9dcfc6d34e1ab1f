package balance

import (
	"context"
	"errors"
	"strings"
)

// ErrInvalidCurrency is returned for a currency filter that is not a 3-letter code
var ErrInvalidCurrency = errors.New("currency must be a 3-letter code")

// Service answers who owes whom in a user's own ledger
type Service struct {
	repo *Repository
}

// NewService creates a new balance service
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// List returns ownerID's net balances, optionally for one currency
func (s *Service) List(ctx context.Context, ownerID int64, currency string) ([]*NetBalance, error) {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency != "" && len(currency) != 3 {
		return nil, ErrInvalidCurrency
	}
	return s.repo.NetBalances(ctx, ownerID, currency)
}
