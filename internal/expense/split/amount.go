package split

// AmountStrategy accepts the supplied amounts verbatim. The sum against pong
// is checked by the Calculator for every mode.
type AmountStrategy struct{}

// Mode returns the split mode identifier
func (AmountStrategy) Mode() Mode {
	return ModeAmount
}

// Allocate checks the amounts and returns a copy of debtors
func (AmountStrategy) Allocate(_ int64, debtors []Share) ([]Share, error) {
	out := make([]Share, len(debtors))
	for i, d := range debtors {
		if d.Amount < 0 {
			return nil, ErrNegativeAmount
		}
		out[i] = Share{RelationID: d.RelationID, Amount: d.Amount}
	}
	return out, nil
}
