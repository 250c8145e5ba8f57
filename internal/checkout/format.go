package checkout

import (
	"math"
	"strings"
)

// FormatCardNumber keeps the digits of s, grouped in fours, at most 19
// characters long
func FormatCardNumber(s string) string {
	digits := onlyDigits(s)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && i%4 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	out := b.String()
	if len(out) > 19 {
		out = out[:19]
	}
	return out
}

// FormatCardExpiry turns typed digits into MM/YY
func FormatCardExpiry(s string) string {
	digits := onlyDigits(s)
	if len(digits) < 2 {
		return digits
	}
	if len(digits) > 4 {
		digits = digits[:4]
	}
	return digits[:2] + "/" + digits[2:]
}

// FormatCardCVV keeps at most four digits
func FormatCardCVV(s string) string {
	digits := onlyDigits(s)
	if len(digits) > 4 {
		digits = digits[:4]
	}
	return digits
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Installment is one EMI option
type Installment struct {
	Months  int     `json:"months"`
	Monthly float64 `json:"monthly"`
}

var emiTenures = []int{3, 6, 12}

// EMIPlan splits amount into monthly installments, rounding each up to a
// whole rupee
func EMIPlan(amount float64) []Installment {
	plan := make([]Installment, 0, len(emiTenures))
	for _, months := range emiTenures {
		plan = append(plan, Installment{
			Months:  months,
			Monthly: math.Ceil(amount / float64(months)),
		})
	}
	return plan
}

// EMIPlan is the installment plan for the session's payable amount
func (s *Session) EMIPlan() []Installment {
	return EMIPlan(s.FinalPrice())
}
