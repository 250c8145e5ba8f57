package currency

import (
	"fmt"
	"math"
)

// RupeeSymbol prefixes every displayed INR amount
const RupeeSymbol = "₹"

// FormatINR renders a rupee amount rounded to whole rupees, e.g. ₹12,450.
func FormatINR(amount float64) string {
	rounded := math.Round(amount)

	negative := rounded < 0
	if negative {
		rounded = -rounded
	}

	result := RupeeSymbol + addThousandsSeparator(fmt.Sprintf("%.0f", rounded), ',')
	if negative {
		result = "-" + result
	}
	return result
}

func addThousandsSeparator(s string, sep byte) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	numSeps := (n - 1) / 3
	result := make([]byte, n+numSeps)

	j := len(result) - 1
	for i := n - 1; i >= 0; i-- {
		result[j] = s[i]
		j--

		pos := n - i
		if pos%3 == 0 && i > 0 {
			result[j] = sep
			j--
		}
	}

	return string(result)
}
