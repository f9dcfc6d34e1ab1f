package split

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Mode selects how debtor amounts are obtained
type Mode string

const (
	// ModeAmount takes the caller's final per-participant amounts as they are
	ModeAmount Mode = "amount"
	// ModeCoefficient derives amounts from per-debtor weights (legacy)
	ModeCoefficient Mode = "coefficient"
	// ModeEven splits pong evenly over the debtors (legacy)
	ModeEven Mode = "even"
)

// Share is one participant line keyed by contact relation id. Amounts are in
// the currency's minor unit.
type Share struct {
	RelationID  int64            `json:"relation_id"`
	Amount      int64            `json:"amount"`
	Coefficient *decimal.Decimal `json:"coefficient,omitempty"`
}

// Strategy turns the requested debtor lines into final amounts
type Strategy interface {
	Allocate(pong int64, debtors []Share) ([]Share, error)
	Mode() Mode
}

// Factory creates split strategies based on the requested mode
type Factory struct{}

// NewFactory creates a new factory instance
func NewFactory() *Factory {
	return &Factory{}
}

// Create returns the strategy for mode. An empty mode means ModeAmount.
func (f *Factory) Create(mode Mode) (Strategy, error) {
	switch mode {
	case "", ModeAmount:
		return AmountStrategy{}, nil
	case ModeCoefficient:
		return CoefficientStrategy{}, nil
	case ModeEven:
		return EvenStrategy{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownMode, mode)
	}
}

var (
	ErrInvalidRelation     = errors.New("relation does not belong to the acting user")
	ErrInvalidCategory     = errors.New("category does not belong to the acting user")
	ErrInvalidJointAccount = errors.New("acting user is not subscribed to the joint account")
	ErrAmountMismatch      = errors.New("share amounts do not add up to pong")

	ErrUnknownMode        = errors.New("unknown split mode")
	ErrNoParticipants     = errors.New("at least one debtor and one payer are required")
	ErrNonPositivePong    = errors.New("pong must be positive")
	ErrNegativeAmount     = errors.New("amounts cannot be negative")
	ErrMissingCoefficient = errors.New("coefficient required for every debtor")
	ErrZeroCoefficientSum = errors.New("coefficients must not all be zero")
)

// addsUp reports whether the share amounts total exactly pong. The running
// total never passes pong, so it cannot overflow.
func addsUp(shares []Share, pong int64) bool {
	var total int64
	for _, s := range shares {
		if s.Amount < 0 || s.Amount > pong-total {
			return false
		}
		total += s.Amount
	}
	return total == pong
}
