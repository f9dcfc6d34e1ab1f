package split

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func coef(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func amounts(shares []Share) []int64 {
	out := make([]int64, len(shares))
	for i, s := range shares {
		out[i] = s.Amount
	}
	return out
}

func TestFactory_Create(t *testing.T) {
	f := NewFactory()

	for mode, want := range map[Mode]Mode{
		"":              ModeAmount,
		ModeAmount:      ModeAmount,
		ModeCoefficient: ModeCoefficient,
		ModeEven:        ModeEven,
	} {
		s, err := f.Create(mode)
		require.NoError(t, err)
		assert.Equal(t, want, s.Mode())
	}

	_, err := f.Create("percentage")
	assert.ErrorIs(t, err, ErrUnknownMode)
}

func TestAmountStrategy(t *testing.T) {
	out, err := AmountStrategy{}.Allocate(100, []Share{{RelationID: 2, Amount: 60}, {RelationID: 3, Amount: 40}})
	require.NoError(t, err)
	assert.Equal(t, []int64{60, 40}, amounts(out))

	_, err = AmountStrategy{}.Allocate(100, []Share{{RelationID: 2, Amount: -1}})
	assert.ErrorIs(t, err, ErrNegativeAmount)
}

func TestCoefficientStrategy(t *testing.T) {
	tests := []struct {
		name    string
		pong    int64
		weights []string
		want    []int64
	}{
		{"equal thirds", 100, []string{"1", "1", "1"}, []int64{34, 33, 33}},
		{"largest remainder wins", 10, []string{"1", "2"}, []int64{3, 7}},
		{"exact", 90, []string{"1", "2"}, []int64{30, 60}},
		{"fractional weights", 1000, []string{"0.5", "0.25", "0.25"}, []int64{500, 250, 250}},
		{"zero weight", 7, []string{"0", "1"}, []int64{0, 7}},
		{"many small", 5, []string{"1", "1", "1", "1", "1", "1", "1"}, []int64{1, 1, 1, 1, 1, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			debtors := make([]Share, len(tt.weights))
			for i, w := range tt.weights {
				debtors[i] = Share{RelationID: int64(i + 1), Coefficient: coef(w)}
			}

			out, err := CoefficientStrategy{}.Allocate(tt.pong, debtors)
			require.NoError(t, err)
			assert.Equal(t, tt.want, amounts(out))
			assert.True(t, addsUp(out, tt.pong))
		})
	}
}

func TestCoefficientStrategy_Errors(t *testing.T) {
	_, err := CoefficientStrategy{}.Allocate(10, []Share{{RelationID: 1}})
	assert.ErrorIs(t, err, ErrMissingCoefficient)

	_, err = CoefficientStrategy{}.Allocate(10, []Share{{RelationID: 1, Coefficient: coef("-1")}})
	assert.ErrorIs(t, err, ErrNegativeAmount)

	_, err = CoefficientStrategy{}.Allocate(10, []Share{{RelationID: 1, Coefficient: coef("0")}})
	assert.ErrorIs(t, err, ErrZeroCoefficientSum)
}

func TestEvenStrategy(t *testing.T) {
	out, err := EvenStrategy{}.Allocate(101, []Share{{RelationID: 1}, {RelationID: 2}})
	require.NoError(t, err)
	assert.Equal(t, []int64{51, 50}, amounts(out))
}
