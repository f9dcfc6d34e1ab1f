package split

import "github.com/shopspring/decimal"

// EvenStrategy gives every debtor the same weight
type EvenStrategy struct{}

// Mode returns the split mode identifier
func (EvenStrategy) Mode() Mode {
	return ModeEven
}

// Allocate splits pong evenly; leftover minor units go to the first debtors
func (EvenStrategy) Allocate(pong int64, debtors []Share) ([]Share, error) {
	weights := make([]decimal.Decimal, len(debtors))
	for i := range weights {
		weights[i] = decimal.NewFromInt(1)
	}
	return allocate(pong, debtors, weights)
}
