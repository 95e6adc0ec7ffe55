package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Mthadube/jbcapital-sub001/internal/origination/domain"
)

// Contracts manages the agreement lifecycle against the signature
// provider behind the contract gateway.
type Contracts struct {
	store      *Store
	gw         domain.ContractGateway
	dispatcher *Dispatcher
	logger     *slog.Logger
}

// NewContracts wires the contract service.
func NewContracts(store *Store, gw domain.ContractGateway, dispatcher *Dispatcher, logger *slog.Logger) *Contracts {
	return &Contracts{store: store, gw: gw, dispatcher: dispatcher, logger: logger}
}

// Generate asks the backend to produce an agreement for a loan and caches
// the canonical contract record as a draft.
func (c *Contracts) Generate(ctx context.Context, loanID string) (*domain.Contract, error) {
	loan, ok := c.store.Loan(loanID)
	if !ok {
		return nil, domain.ErrLoanNotFound
	}

	provision, err := c.gw.Generate(ctx, loanID)
	if err != nil {
		return nil, fmt.Errorf("generate contract for loan %s: %w", loanID, err)
	}
	contract, err := c.store.SyncContract(ctx, provision.ContractID)
	if err != nil {
		// The contract exists server-side but the mirror missed it; the
		// next RefreshAll picks it up.
		c.logger.ErrorContext(ctx, "contract generated but not synced",
			"contract_id", provision.ContractID, "error", err)
		return nil, err
	}

	c.dispatcher.LogActivity(loan.UserID, "Contract "+contract.ID+" generated for loan "+loanID)
	return contract, nil
}

// SendForSignature requests a signature from the recipient and moves the
// contract from draft to sent.
func (c *Contracts) SendForSignature(ctx context.Context, contractID, email string) (*domain.Contract, error) {
	if strings.TrimSpace(email) == "" {
		return nil, domain.ErrMissingSignatureRecipient
	}
	contract, ok := c.store.Contract(contractID)
	if !ok {
		return nil, domain.ErrContractNotFound
	}
	if !domain.CanTransition(contract.Status, domain.ContractSent) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidContractTransition, contract.Status, domain.ContractSent)
	}

	request, err := c.gw.SendForSignature(ctx, contractID, email)
	if err != nil {
		return nil, fmt.Errorf("send contract %s for signature: %w", contractID, err)
	}

	status := domain.ContractSent
	now := time.Now()
	updated, err := c.store.UpdateContract(ctx, contractID, domain.ContractPatch{
		Status:             &status,
		SignatureRequestID: &request.SignatureRequestID,
		SignatureURL:       &request.SignatureURL,
		SentAt:             &now,
	})
	if err != nil {
		return nil, err
	}

	c.dispatcher.Notify(domain.Notification{
		UserID:  updated.UserID,
		Type:    domain.NotificationInfo,
		Title:   "Contract ready to sign",
		Message: "Your loan agreement has been sent to " + email + " for signature.",
	})
	return updated, nil
}

// RefreshStatus folds the signature provider's view of a contract into
// the local state machine. A report matching the current status is a
// no-op; a report that is not graph-adjacent is an error rather than a
// silent jump.
func (c *Contracts) RefreshStatus(ctx context.Context, contractID string) (*domain.Contract, error) {
	contract, ok := c.store.Contract(contractID)
	if !ok {
		return nil, domain.ErrContractNotFound
	}

	report, err := c.gw.GetStatus(ctx, contractID)
	if err != nil {
		return nil, fmt.Errorf("contract %s status: %w", contractID, err)
	}
	if report.Status == contract.Status {
		return &contract, nil
	}
	if !domain.CanTransition(contract.Status, report.Status) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidContractTransition, contract.Status, report.Status)
	}

	patch := domain.ContractPatch{
		Status:    &report.Status,
		ViewedAt:  report.ViewedAt,
		SignedAt:  report.SignedAt,
		ExpiresAt: report.ExpiresAt,
	}
	if report.DownloadURL != "" {
		patch.DownloadURL = &report.DownloadURL
	}
	updated, err := c.store.UpdateContract(ctx, contractID, patch)
	if err != nil {
		return nil, err
	}

	switch updated.Status {
	case domain.ContractSigned:
		c.dispatcher.Notify(domain.Notification{
			UserID:  updated.UserID,
			Type:    domain.NotificationSuccess,
			Title:   "Contract signed",
			Message: "Your loan agreement has been signed.",
		})
		c.dispatcher.LogActivity(updated.UserID, "Contract "+updated.ID+" signed")
	case domain.ContractDeclined:
		c.dispatcher.Notify(domain.Notification{
			UserID:  updated.UserID,
			Type:    domain.NotificationWarning,
			Title:   "Contract declined",
			Message: "Your loan agreement was declined.",
		})
	case domain.ContractExpired:
		c.dispatcher.Notify(domain.Notification{
			UserID:  updated.UserID,
			Type:    domain.NotificationWarning,
			Title:   "Contract expired",
			Message: "Your loan agreement expired before it was signed.",
		})
	}
	return updated, nil
}
