package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LoanStatus is the closed set of loan states. Defaulted is operational:
// loans are never created defaulted, a servicing decision moves them there.
type LoanStatus string

const (
	LoanStatusPending   LoanStatus = "pending"
	LoanStatusApproved  LoanStatus = "approved"
	LoanStatusActive    LoanStatus = "active"
	LoanStatusCompleted LoanStatus = "completed"
	LoanStatusRejected  LoanStatus = "rejected"
	LoanStatusDefaulted LoanStatus = "defaulted"
)

// IsTerminal reports whether no further servicing transitions apply.
func (s LoanStatus) IsTerminal() bool {
	return s == LoanStatusCompleted || s == LoanStatusRejected
}

// Loan is a monetary contract belonging to exactly one user. A loan funded
// from an application reuses the application's ID so the 1:1 identity is
// traceable. Invariants: 0 <= PaidMonths <= TermMonths, and PaidAmount is
// non-decreasing while the loan is active.
type Loan struct {
	ID             string          `json:"id"`
	UserID         string          `json:"userId"`
	Amount         decimal.Decimal `json:"amount"`
	InterestRate   decimal.Decimal `json:"interestRate"`
	TermMonths     int             `json:"term"`
	MonthlyPayment decimal.Decimal `json:"monthlyPayment"`
	TotalRepayment decimal.Decimal `json:"totalRepayment"`
	PaidAmount     decimal.Decimal `json:"paidAmount"`
	PaidMonths     int             `json:"paidMonths"`
	Purpose        string          `json:"purpose"`
	Status         LoanStatus      `json:"status"`
	DateApplied    time.Time       `json:"dateApplied"`
	DateIssued     *time.Time      `json:"dateIssued,omitempty"`
}

// Progress is the repayment percentage, clamped to [0,100] even if
// PaidMonths transiently exceeds the term.
func (l *Loan) Progress() int {
	return Progress(l.PaidMonths, l.TermMonths)
}

// Outstanding is the remaining repayment balance, floored at zero.
func (l *Loan) Outstanding() decimal.Decimal {
	rest := l.TotalRepayment.Sub(l.PaidAmount)
	if rest.IsNegative() {
		return decimal.Zero
	}
	return rest
}
