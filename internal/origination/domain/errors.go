package domain

import "errors"

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrLoanNotFound        = errors.New("loan not found")
	ErrDocumentNotFound    = errors.New("document not found")
	ErrApplicationNotFound = errors.New("application not found")
	ErrContractNotFound    = errors.New("contract not found")

	ErrEmptyRejectionNotes       = errors.New("rejection notes must not be empty")
	ErrApplicationNotApproved    = errors.New("application is not approved")
	ErrInvalidPaymentAmount      = errors.New("payment amount must be positive")
	ErrLoanNotPayable            = errors.New("loan is not open for payments")
	ErrUnknownWorkflowStep       = errors.New("unknown workflow step")
	ErrInvalidContractTransition = errors.New("invalid contract status transition")
	ErrUnknownContractStatus     = errors.New("unknown contract status")
	ErrUnknownApplicationStatus  = errors.New("unknown application status")
	ErrMissingSignatureRecipient = errors.New("signature recipient email is required")
)
