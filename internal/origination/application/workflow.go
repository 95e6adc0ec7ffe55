package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Mthadube/jbcapital-sub001/internal/origination/domain"
	"github.com/Mthadube/jbcapital-sub001/pkg/metrics"
)

// AdvanceOutcome tells the caller what the guided advance did.
type AdvanceOutcome string

const (
	// AdvanceMoved means the application transitioned to the next step.
	AdvanceMoved AdvanceOutcome = "moved"
	// AdvanceTerminal means the application sits on a terminal node and
	// nothing changed.
	AdvanceTerminal AdvanceOutcome = "terminal"
	// AdvanceAwaitingDecision means the next step is the approve/reject
	// decision, which the caller must make explicitly.
	AdvanceAwaitingDecision AdvanceOutcome = "awaiting_decision"
)

// Workflow drives applications through the origination step graph and
// converts approved applications into loans.
type Workflow struct {
	store         *Store
	dispatcher    *Dispatcher
	maxTermMonths int
	metrics       *metrics.Metrics
	logger        *slog.Logger
}

// NewWorkflow wires the workflow engine. maxTermMonths caps the loan term
// on conversion; zero disables the cap. metrics may be nil.
func NewWorkflow(store *Store, dispatcher *Dispatcher, maxTermMonths int, m *metrics.Metrics, logger *slog.Logger) *Workflow {
	return &Workflow{
		store:         store,
		dispatcher:    dispatcher,
		maxTermMonths: maxTermMonths,
		metrics:       m,
		logger:        logger,
	}
}

// Advance moves an application to its declared successor. Terminal nodes
// and the decision sentinel are informational no-ops: the status is not
// mutated and no error is returned.
func (w *Workflow) Advance(ctx context.Context, applicationID string) (AdvanceOutcome, error) {
	app, ok := w.store.Application(applicationID)
	if !ok {
		return "", domain.ErrApplicationNotFound
	}
	step, ok := domain.StepFor(app.Status)
	if !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrUnknownWorkflowStep, app.Status)
	}
	if step.Next == "" {
		return AdvanceTerminal, nil
	}
	if step.Next == domain.NextDecision {
		return AdvanceAwaitingDecision, nil
	}
	note := "advanced from " + domain.StepName(app.Status)
	if err := w.SetStatus(ctx, applicationID, step.Next, note); err != nil {
		return "", err
	}
	if w.metrics != nil {
		w.metrics.ApplicationsAdvanced.Inc()
	}
	return AdvanceMoved, nil
}

// SetStatus persists the new status through the store, then fans out the
// admin notification, the user notification and the SMS. Any declared
// status may be set directly: the step graph guides Advance but does not
// restrict this admin-facing path. Side-effect delivery is best-effort
// and cannot abort or roll back the transition.
func (w *Workflow) SetStatus(ctx context.Context, applicationID string, status domain.ApplicationStatus, note string) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %s", domain.ErrUnknownApplicationStatus, status)
	}
	if _, ok := w.store.Application(applicationID); !ok {
		return domain.ErrApplicationNotFound
	}

	patch := domain.ApplicationPatch{Status: &status}
	if note != "" {
		patch.Note = &note
	}
	updated, err := w.store.UpdateApplication(ctx, applicationID, patch)
	if err != nil {
		return err
	}

	stepName := domain.StepName(status)
	w.dispatcher.Notify(domain.Notification{
		Audience: domain.AudienceAdmin,
		Type:     domain.NotificationInfo,
		Title:    "Application status changed",
		Message:  fmt.Sprintf("Application %s moved to %s", applicationID, stepName),
	})

	message := statusMessage(status)
	w.dispatcher.Notify(domain.Notification{
		UserID:  updated.UserID,
		Type:    statusNotificationType(status),
		Title:   "Application update",
		Message: message,
	})
	w.dispatcher.LogActivity(updated.UserID,
		fmt.Sprintf("Application %s status changed to %s", applicationID, stepName))

	if user, ok := w.store.User(updated.UserID); ok && user.Phone != "" {
		w.dispatcher.SendSMS(user.Phone, message)
	}
	return nil
}

// ConversionResult reports a two-phase conversion. LoanCreated without
// ApplicationUpdated is the documented partial-failure state: the loan
// exists on the backend but the application is still approved, and the
// caller must remediate (typically by retrying the status move or
// refreshing).
type ConversionResult struct {
	LoanCreated        bool         `json:"loanCreated"`
	ApplicationUpdated bool         `json:"applicationUpdated"`
	Loan               *domain.Loan `json:"loan,omitempty"`
}

// ConvertToLoan turns an approved application into an active loan. The
// loan reuses the application ID, the term is clamped to the configured
// cap and the amortization engine fills the derived monetary fields. On
// success the application moves to funded. There is no rollback: if the
// loan persists but the status move fails, the compound result says so.
func (w *Workflow) ConvertToLoan(ctx context.Context, applicationID string) (ConversionResult, error) {
	app, ok := w.store.Application(applicationID)
	if !ok {
		return ConversionResult{}, domain.ErrApplicationNotFound
	}
	if app.Status != domain.ApplicationApproved {
		return ConversionResult{}, fmt.Errorf("%w: status is %s", domain.ErrApplicationNotApproved, app.Status)
	}

	term := domain.ClampTerm(app.LoanDetails.TermMonths, w.maxTermMonths)
	payment := domain.MonthlyPayment(app.LoanDetails.Amount, app.LoanDetails.InterestRate, term)
	now := time.Now()
	loan := domain.Loan{
		ID:             app.ID,
		UserID:         app.UserID,
		Amount:         app.LoanDetails.Amount,
		InterestRate:   app.LoanDetails.InterestRate,
		TermMonths:     term,
		MonthlyPayment: payment,
		TotalRepayment: domain.TotalRepayment(payment, term),
		PaidAmount:     decimal.Zero,
		Purpose:        app.LoanDetails.Purpose,
		Status:         domain.LoanStatusActive,
		DateApplied:    app.DateSubmitted,
		DateIssued:     &now,
	}

	created, err := w.store.AddLoan(ctx, loan)
	if err != nil {
		return ConversionResult{}, err
	}
	result := ConversionResult{LoanCreated: true, Loan: created}

	if err := w.SetStatus(ctx, applicationID, domain.ApplicationFunded, "loan "+created.ID+" funded"); err != nil {
		w.logger.ErrorContext(ctx, "loan created but application not moved to funded",
			"application_id", applicationID,
			"loan_id", created.ID,
			"error", err,
		)
		return result, fmt.Errorf("loan created but application update failed: %w", err)
	}
	result.ApplicationUpdated = true

	if w.metrics != nil {
		w.metrics.LoansFundedTotal.Inc()
	}
	w.dispatcher.Notify(domain.Notification{
		UserID:  created.UserID,
		Type:    domain.NotificationSuccess,
		Title:   "Loan funded",
		Message: fmt.Sprintf("Your loan of %s has been funded. Monthly payment: %s over %d months.",
			created.Amount.StringFixed(2), created.MonthlyPayment.StringFixed(2), created.TermMonths),
	})
	w.dispatcher.LogActivity(created.UserID, "Loan "+created.ID+" funded")
	return result, nil
}

// statusMessage selects the applicant-facing copy for a status. Approved,
// rejected and pending have bespoke copy; everything else is generic.
func statusMessage(status domain.ApplicationStatus) string {
	switch status {
	case domain.ApplicationApproved:
		return "Congratulations! Your loan application has been approved."
	case domain.ApplicationRejected:
		return "Unfortunately, your loan application was not successful at this time."
	case domain.ApplicationPending:
		return "Your application has been received and is pending review."
	default:
		return fmt.Sprintf("Your application status has been updated to %s.", domain.StepName(status))
	}
}

func statusNotificationType(status domain.ApplicationStatus) domain.NotificationType {
	switch status {
	case domain.ApplicationApproved, domain.ApplicationFunded:
		return domain.NotificationSuccess
	case domain.ApplicationRejected:
		return domain.NotificationError
	default:
		return domain.NotificationInfo
	}
}
