package domain

import "time"

// ContractStatus is the closed set of agreement states driven by the
// signature provider.
type ContractStatus string

const (
	ContractDraft     ContractStatus = "draft"
	ContractSent      ContractStatus = "sent"
	ContractViewed    ContractStatus = "viewed"
	ContractSigned    ContractStatus = "signed"
	ContractDeclined  ContractStatus = "declined"
	ContractExpired   ContractStatus = "expired"
	ContractCompleted ContractStatus = "completed"
)

// Valid reports whether s is one of the declared statuses.
func (s ContractStatus) Valid() bool {
	_, ok := contractTransitions[s]
	return ok
}

// contractTransitions encodes draft -> sent -> viewed ->
// {signed, declined, expired} -> completed. A recipient may sign or
// decline without a recorded view event, so sent also reaches the decision
// states directly.
var contractTransitions = map[ContractStatus][]ContractStatus{
	ContractDraft:     {ContractSent},
	ContractSent:      {ContractViewed, ContractSigned, ContractDeclined, ContractExpired},
	ContractViewed:    {ContractSigned, ContractDeclined, ContractExpired},
	ContractSigned:    {ContractCompleted},
	ContractDeclined:  {},
	ContractExpired:   {},
	ContractCompleted: {},
}

// CanTransition reports whether moving from one status to another is an
// edge of the contract state machine.
func CanTransition(from, to ContractStatus) bool {
	for _, next := range contractTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Contract is a generated agreement tied to one loan and one user.
// Transitions are applied from signature-provider callbacks.
type Contract struct {
	ID                 string         `json:"id"`
	LoanID             string         `json:"loanId"`
	UserID             string         `json:"userId"`
	Status             ContractStatus `json:"status"`
	DownloadURL        string         `json:"downloadUrl,omitempty"`
	SignatureRequestID string         `json:"signatureRequestId,omitempty"`
	SignatureURL       string         `json:"signatureUrl,omitempty"`
	CreatedAt          time.Time      `json:"createdAt"`
	SentAt             *time.Time     `json:"sentAt,omitempty"`
	ViewedAt           *time.Time     `json:"viewedAt,omitempty"`
	SignedAt           *time.Time     `json:"signedAt,omitempty"`
	ExpiresAt          *time.Time     `json:"expiresAt,omitempty"`
}

// Apply moves the contract to a new status, enforcing adjacency.
func (c *Contract) Apply(to ContractStatus, at time.Time) error {
	if !to.Valid() {
		return ErrUnknownContractStatus
	}
	if !CanTransition(c.Status, to) {
		return ErrInvalidContractTransition
	}
	c.Status = to
	switch to {
	case ContractSent:
		c.SentAt = &at
	case ContractViewed:
		c.ViewedAt = &at
	case ContractSigned:
		c.SignedAt = &at
	}
	return nil
}
