package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ApplicationStatus is the closed set of workflow states. Funded is
// reachable only from approved, once a loan has been created for the
// application.
type ApplicationStatus string

const (
	ApplicationPending              ApplicationStatus = "pending"
	ApplicationDocumentVerification ApplicationStatus = "document_verification"
	ApplicationCreditAssessment     ApplicationStatus = "credit_assessment"
	ApplicationFinalReview          ApplicationStatus = "final_review"
	ApplicationApproved             ApplicationStatus = "approved"
	ApplicationRejected             ApplicationStatus = "rejected"
	ApplicationFunded               ApplicationStatus = "funded"
)

// Valid reports whether s is one of the declared statuses.
func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationPending, ApplicationDocumentVerification,
		ApplicationCreditAssessment, ApplicationFinalReview,
		ApplicationApproved, ApplicationRejected, ApplicationFunded:
		return true
	}
	return false
}

// LoanDetails captures the requested terms carried by an application.
type LoanDetails struct {
	Purpose        string          `json:"purpose"`
	Amount         decimal.Decimal `json:"amount"`
	TermMonths     int             `json:"term"`
	MonthlyPayment decimal.Decimal `json:"monthlyPayment"`
	InterestRate   decimal.Decimal `json:"interestRate"`
}

// StatusChange is one entry of an application's audit trail.
type StatusChange struct {
	Status    ApplicationStatus `json:"status"`
	ChangedAt time.Time         `json:"changedAt"`
	Note      string            `json:"note,omitempty"`
}

// Application is a loan request in progress, mutated only through the
// workflow engine.
type Application struct {
	ID            string            `json:"id"`
	UserID        string            `json:"userId"`
	Status        ApplicationStatus `json:"status"`
	LoanDetails   LoanDetails       `json:"loanDetails"`
	DateSubmitted time.Time         `json:"dateSubmitted"`
	StatusHistory []StatusChange    `json:"statusHistory"`
}

// AppendStatus records a transition in the history.
func (a *Application) AppendStatus(status ApplicationStatus, note string, at time.Time) {
	a.StatusHistory = append(a.StatusHistory, StatusChange{
		Status:    status,
		ChangedAt: at,
		Note:      note,
	})
}
