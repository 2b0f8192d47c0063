package core

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// Format renders the amount with thousands separators and two decimals,
// prefixed by symbol: "₹1,234.50".
func (m Money) Format(symbol string) string {
	cents := m.Cents
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%s%s.%02d", sign, symbol, humanize.Comma(cents/100), cents%100)
}
