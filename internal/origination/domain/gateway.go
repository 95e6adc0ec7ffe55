package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// The remote gateway is the engine's only path to the backend. Every
// mutator is write-confirmed: the returned canonical record is what the
// local mirror stores, and a gateway error means nothing was applied
// locally. The interfaces are satisfied by the REST client in
// infrastructure and by fakes in tests.

// UserPatch is a partial user update; nil fields are left unchanged.
type UserPatch struct {
	Phone            *string          `json:"phone,omitempty"`
	Email            *string          `json:"email,omitempty"`
	Address          *string          `json:"address,omitempty"`
	MonthlyIncome    *decimal.Decimal `json:"monthlyIncome,omitempty"`
	MonthlyExpenses  *decimal.Decimal `json:"monthlyExpenses,omitempty"`
	BankName         *string          `json:"bankName,omitempty"`
	AccountNumber    *string          `json:"accountNumber,omitempty"`
	AccountType      *string          `json:"accountType,omitempty"`
	EmploymentStatus *string          `json:"employmentStatus,omitempty"`
	Employer         *string          `json:"employer,omitempty"`
	Verified         *bool            `json:"verified,omitempty"`
}

// LoanPatch is a partial loan update.
type LoanPatch struct {
	Status         *LoanStatus      `json:"status,omitempty"`
	MonthlyPayment *decimal.Decimal `json:"monthlyPayment,omitempty"`
	TotalRepayment *decimal.Decimal `json:"totalRepayment,omitempty"`
	PaidAmount     *decimal.Decimal `json:"paidAmount,omitempty"`
	PaidMonths     *int             `json:"paidMonths,omitempty"`
	DateIssued     *time.Time       `json:"dateIssued,omitempty"`
}

// DocumentPatch is a partial document update.
type DocumentPatch struct {
	VerificationStatus *VerificationStatus `json:"verificationStatus,omitempty"`
	VerificationNotes  *string             `json:"verificationNotes,omitempty"`
}

// ApplicationPatch is a partial application update. The backend appends
// the note to the server-side status history; the canonical record it
// returns carries the full history.
type ApplicationPatch struct {
	Status *ApplicationStatus `json:"status,omitempty"`
	Note   *string            `json:"note,omitempty"`
}

// ContractPatch is a partial contract update.
type ContractPatch struct {
	Status             *ContractStatus `json:"status,omitempty"`
	SignatureRequestID *string         `json:"signatureRequestId,omitempty"`
	SignatureURL       *string         `json:"signatureUrl,omitempty"`
	DownloadURL        *string         `json:"downloadUrl,omitempty"`
	SentAt             *time.Time      `json:"sentAt,omitempty"`
	ViewedAt           *time.Time      `json:"viewedAt,omitempty"`
	SignedAt           *time.Time      `json:"signedAt,omitempty"`
	ExpiresAt          *time.Time      `json:"expiresAt,omitempty"`
}

// UserGateway is the backend surface for users.
type UserGateway interface {
	FetchAll(ctx context.Context) ([]User, error)
	FetchByID(ctx context.Context, id string) (*User, error)
	Create(ctx context.Context, u User) (*User, error)
	Update(ctx context.Context, id string, patch UserPatch) (*User, error)
}

// LoanGateway is the backend surface for loans.
type LoanGateway interface {
	FetchAll(ctx context.Context) ([]Loan, error)
	FetchByID(ctx context.Context, id string) (*Loan, error)
	FetchByOwner(ctx context.Context, userID string) ([]Loan, error)
	Create(ctx context.Context, l Loan) (*Loan, error)
	Update(ctx context.Context, id string, patch LoanPatch) (*Loan, error)
}

// DocumentGateway is the backend surface for documents.
type DocumentGateway interface {
	FetchAll(ctx context.Context) ([]Document, error)
	FetchByID(ctx context.Context, id string) (*Document, error)
	FetchByOwner(ctx context.Context, userID string) ([]Document, error)
	Create(ctx context.Context, d Document) (*Document, error)
	Update(ctx context.Context, id string, patch DocumentPatch) (*Document, error)
}

// ApplicationGateway is the backend surface for applications.
type ApplicationGateway interface {
	FetchAll(ctx context.Context) ([]Application, error)
	FetchByID(ctx context.Context, id string) (*Application, error)
	FetchByOwner(ctx context.Context, userID string) ([]Application, error)
	Create(ctx context.Context, a Application) (*Application, error)
	Update(ctx context.Context, id string, patch ApplicationPatch) (*Application, error)
}

// ContractProvision is the backend's answer to a generation request.
type ContractProvision struct {
	ContractID  string `json:"contractId"`
	DownloadURL string `json:"downloadUrl"`
}

// SignatureRequest is the backend's answer to a send-for-signature
// request.
type SignatureRequest struct {
	SignatureRequestID string `json:"signatureRequestId"`
	SignatureURL       string `json:"signatureUrl"`
}

// ContractStatusReport is the provider-side view of a contract.
type ContractStatusReport struct {
	Status      ContractStatus `json:"status"`
	ViewedAt    *time.Time     `json:"viewedAt,omitempty"`
	SignedAt    *time.Time     `json:"signedAt,omitempty"`
	ExpiresAt   *time.Time     `json:"expiresAt,omitempty"`
	DownloadURL string         `json:"downloadUrl,omitempty"`
}

// ContractGateway is the backend surface for contracts, including the
// signature-provider operations.
type ContractGateway interface {
	FetchAll(ctx context.Context) ([]Contract, error)
	FetchByID(ctx context.Context, id string) (*Contract, error)
	FetchByOwner(ctx context.Context, userID string) ([]Contract, error)
	Update(ctx context.Context, id string, patch ContractPatch) (*Contract, error)

	Generate(ctx context.Context, loanID string) (*ContractProvision, error)
	SendForSignature(ctx context.Context, contractID, email string) (*SignatureRequest, error)
	GetStatus(ctx context.Context, contractID string) (*ContractStatusReport, error)
}

// Gateways bundles the per-entity backend surfaces.
type Gateways struct {
	Users        UserGateway
	Loans        LoanGateway
	Documents    DocumentGateway
	Applications ApplicationGateway
	Contracts    ContractGateway
}

// SMSGateway delivers a message to a digits-only phone number. Failures
// are best-effort territory: callers log them and move on.
type SMSGateway interface {
	Send(ctx context.Context, phoneNumber, message string) error
}
