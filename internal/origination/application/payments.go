package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/Mthadube/jbcapital-sub001/internal/origination/domain"
	"github.com/Mthadube/jbcapital-sub001/pkg/metrics"
)

// Payments records repayments against active loans.
type Payments struct {
	store      *Store
	dispatcher *Dispatcher
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// NewPayments wires the payment processor. metrics may be nil.
func NewPayments(store *Store, dispatcher *Dispatcher, m *metrics.Metrics, logger *slog.Logger) *Payments {
	return &Payments{store: store, dispatcher: dispatcher, metrics: m, logger: logger}
}

// Record applies one monthly payment. The paid amount only ever grows,
// paid months never exceed the term, and the loan completes when the last
// month is paid. Validation happens before the gateway call; a gateway
// failure leaves the mirror untouched.
func (p *Payments) Record(ctx context.Context, loanID string, amount decimal.Decimal) (*domain.Loan, error) {
	if !amount.IsPositive() {
		return nil, domain.ErrInvalidPaymentAmount
	}
	loan, ok := p.store.Loan(loanID)
	if !ok {
		return nil, domain.ErrLoanNotFound
	}
	if loan.Status.IsTerminal() || loan.Status == domain.LoanStatusDefaulted {
		return nil, fmt.Errorf("%w: status is %s", domain.ErrLoanNotPayable, loan.Status)
	}

	paidAmount := loan.PaidAmount.Add(amount)
	paidMonths := loan.PaidMonths + 1
	if paidMonths > loan.TermMonths {
		paidMonths = loan.TermMonths
	}
	status := domain.LoanStatusActive
	if loan.TermMonths > 0 && paidMonths >= loan.TermMonths {
		status = domain.LoanStatusCompleted
	}

	updated, err := p.store.UpdateLoan(ctx, loanID, domain.LoanPatch{
		Status:     &status,
		PaidAmount: &paidAmount,
		PaidMonths: &paidMonths,
	})
	if err != nil {
		return nil, err
	}

	if p.metrics != nil {
		p.metrics.PaymentsTotal.Inc()
	}
	message := fmt.Sprintf("Payment of %s received. Loan progress: %d%%.",
		amount.StringFixed(2), updated.Progress())
	if updated.Status == domain.LoanStatusCompleted {
		message = fmt.Sprintf("Final payment of %s received. Your loan is fully repaid.",
			amount.StringFixed(2))
	}
	p.dispatcher.Notify(domain.Notification{
		UserID:  updated.UserID,
		Type:    domain.NotificationSuccess,
		Title:   "Payment received",
		Message: message,
	})
	p.dispatcher.LogActivity(updated.UserID,
		fmt.Sprintf("Payment of %s recorded on loan %s", amount.StringFixed(2), loanID))
	return updated, nil
}
