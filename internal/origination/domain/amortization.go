package domain

import (
	"math"

	"github.com/shopspring/decimal"
)

// MonthlyPayment computes the amortized monthly installment for amount at
// an annual rate (percent) over termMonths, rounded to the nearest whole
// currency unit.
//
// r = rate/1200. A zero rate degenerates to straight-line amount/term.
// When the standard formula produces a non-finite value (pathological
// inputs such as term 0) the simple-interest fallback
// amount/term*(1+rate/1200) is used; if that is still non-finite the
// result is zero rather than a poisoned value.
func MonthlyPayment(amount, annualRatePercent decimal.Decimal, termMonths int) decimal.Decimal {
	a := amount.InexactFloat64()
	rate := annualRatePercent.InexactFloat64()
	r := rate / 1200

	var payment float64
	if r == 0 {
		payment = a / float64(termMonths)
	} else {
		pow := math.Pow(1+r, float64(termMonths))
		payment = a * r * pow / (pow - 1)
	}

	if math.IsNaN(payment) || math.IsInf(payment, 0) {
		payment = a / float64(termMonths) * (1 + rate/1200)
	}
	if math.IsNaN(payment) || math.IsInf(payment, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(math.Round(payment))
}

// TotalRepayment is the rounded monthly payment multiplied by the term.
func TotalRepayment(monthlyPayment decimal.Decimal, termMonths int) decimal.Decimal {
	return monthlyPayment.Mul(decimal.NewFromInt(int64(termMonths)))
}

// Progress converts paid months over term to a percentage clamped to
// [0,100]. Terms below one month report zero.
func Progress(paidMonths, termMonths int) int {
	if termMonths < 1 || paidMonths <= 0 {
		return 0
	}
	pct := int(math.Round(float64(paidMonths) / float64(termMonths) * 100))
	if pct > 100 {
		return 100
	}
	return pct
}

// ClampTerm bounds a requested term to max months. A max of zero means no
// cap. The cap is a business rule of the loan-creation path, not a numeric
// necessity.
func ClampTerm(termMonths, maxMonths int) int {
	if maxMonths > 0 && termMonths > maxMonths {
		return maxMonths
	}
	return termMonths
}
