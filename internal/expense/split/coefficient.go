package split

import (
	"sort"

	"github.com/shopspring/decimal"
)

// CoefficientStrategy allocates pong proportionally to per-debtor weights.
// Each debtor gets floor(pong * w / sum(w)); the minor units lost to flooring
// go one each to the largest fractional parts, earlier lines first on ties.
type CoefficientStrategy struct{}

// Mode returns the split mode identifier
func (CoefficientStrategy) Mode() Mode {
	return ModeCoefficient
}

// Allocate computes the debtor amounts from their coefficients
func (CoefficientStrategy) Allocate(pong int64, debtors []Share) ([]Share, error) {
	weights := make([]decimal.Decimal, len(debtors))
	for i, d := range debtors {
		if d.Coefficient == nil {
			return nil, ErrMissingCoefficient
		}
		if d.Coefficient.IsNegative() {
			return nil, ErrNegativeAmount
		}
		weights[i] = *d.Coefficient
	}
	return allocate(pong, debtors, weights)
}

func allocate(pong int64, debtors []Share, weights []decimal.Decimal) ([]Share, error) {
	if len(debtors) == 0 {
		return nil, ErrNoParticipants
	}

	total := decimal.Sum(decimal.Zero, weights...)
	if total.IsZero() {
		return nil, ErrZeroCoefficientSum
	}

	type part struct {
		index int
		frac  decimal.Decimal
	}

	out := make([]Share, len(debtors))
	parts := make([]part, len(debtors))
	amount := decimal.NewFromInt(pong)
	var allocated int64

	for i, d := range debtors {
		exact := amount.Mul(weights[i]).Div(total)
		floor := exact.Floor()
		out[i] = Share{RelationID: d.RelationID, Amount: floor.IntPart(), Coefficient: d.Coefficient}
		parts[i] = part{index: i, frac: exact.Sub(floor)}
		allocated += out[i].Amount
	}

	sort.SliceStable(parts, func(a, b int) bool {
		return parts[a].frac.GreaterThan(parts[b].frac)
	})

	for remainder, k := pong-allocated, 0; remainder > 0; remainder, k = remainder-1, k+1 {
		out[parts[k%len(parts)].index].Amount++
	}

	return out, nil
}
