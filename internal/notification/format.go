package notification

import (
	"strings"

	"github.com/shopspring/decimal"
)

// currencies whose minor unit is not 1/100 of the major unit
var minorUnitDigits = map[string]int32{
	"IRR": 0,
	"IRT": 0,
	"JPY": 0,
	"KRW": 0,
	"BHD": 3,
	"KWD": 3,
	"OMR": 3,
}

// FormatAmount renders an amount given in minor units for display
func FormatAmount(amount int64, currency string) string {
	digits, ok := minorUnitDigits[strings.ToUpper(currency)]
	if !ok {
		digits = 2
	}
	return decimal.New(amount, -digits).StringFixed(digits)
}
