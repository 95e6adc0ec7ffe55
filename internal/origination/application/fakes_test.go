package application

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/Mthadube/jbcapital-sub001/internal/origination/domain"
)

// fakeBackend simulates the backend behind the gateway interfaces: it
// stores canonical records, applies patches server-side and can be told
// to fail specific operations.
type fakeBackend struct {
	mu           sync.Mutex
	users        map[string]domain.User
	loans        map[string]domain.Loan
	documents    map[string]domain.Document
	applications map[string]domain.Application
	contracts    map[string]domain.Contract

	fail  map[string]error
	calls map[string]int

	statusReport *domain.ContractStatusReport
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		users:        make(map[string]domain.User),
		loans:        make(map[string]domain.Loan),
		documents:    make(map[string]domain.Document),
		applications: make(map[string]domain.Application),
		contracts:    make(map[string]domain.Contract),
		fail:         make(map[string]error),
		calls:        make(map[string]int),
	}
}

func (b *fakeBackend) failOn(op string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fail[op] = err
}

func (b *fakeBackend) callCount(op string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[op]
}

// touch records the call and returns the injected failure, if any.
func (b *fakeBackend) touch(op string) error {
	b.calls[op]++
	return b.fail[op]
}

func (b *fakeBackend) gateways() domain.Gateways {
	return domain.Gateways{
		Users:        fakeUserGW{b},
		Loans:        fakeLoanGW{b},
		Documents:    fakeDocumentGW{b},
		Applications: fakeApplicationGW{b},
		Contracts:    fakeContractGW{b},
	}
}

type fakeUserGW struct{ b *fakeBackend }

func (g fakeUserGW) FetchAll(context.Context) ([]domain.User, error) {
	g.b.mu.Lock()
	defer g.b.mu.Unlock()
	if err := g.b.touch("users.fetch_all"); err != nil {
		return nil, err
	}
	out := make([]domain.User, 0, len(g.b.users))
	for _, u := range g.b.users {
		out = append(out, u)
	}
	return out, nil
}

func (g fakeUserGW) FetchByID(_ context.Context, id string) (*domain.User, error) {
	g.b.mu.Lock()
	defer g.b.mu.Unlock()
	if err := g.b.touch("users.fetch_by_id"); err != nil {
		return nil, err
	}
	u, ok := g.b.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (g fakeUserGW) Create(_ context.Context, u domain.User) (*domain.User, error) {
	g.b.mu.Lock()
	defer g.b.mu.Unlock()
	if err := g.b.touch("users.create"); err != nil {
		return nil, err
	}
	// Canonical records never carry client-side lists.
	u.Notifications = nil
	u.Activities = nil
	g.b.users[u.ID] = u
	return &u, nil
}

func (g fakeUserGW) Update(_ context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	g.b.mu.Lock()
	defer g.b.mu.Unlock()
	if err := g.b.touch("users.update"); err != nil {
		return nil, err
	}
	u, ok := g.b.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if patch.Phone != nil {
		u.Phone = *patch.Phone
	}
	if patch.Email != nil {
		u.Email = *patch.Email
	}
	if patch.Address != nil {
		u.Address = *patch.Address
	}
	if patch.Verified != nil {
		u.Verified = *patch.Verified
	}
	u.Notifications = nil
	u.Activities = nil
	g.b.users[id] = u
	return &u, nil
}

type fakeLoanGW struct{ b *fakeBackend }

func (g fakeLoanGW) FetchAll(context.Context) ([]domain.Loan, error) {
	g.b.mu.Lock()
	defer g.b.mu.Unlock()
	if err := g.b.touch("loans.fetch_all"); err != nil {
		return nil, err
	}
	out := make([]domain.Loan, 0, len(g.b.loans))
	for _, l := range g.b.loans {
		out = append(out, l)
	}
	return out, nil
}

func (g fakeLoanGW) FetchByID(_ context.Context, id string) (*domain.Loan, error) {
	g.b.mu.Lock()
	defer g.b.mu.Unlock()
	if err := g.b.touch("loans.fetch_by_id"); err != nil {
		return nil, err
	}
	l, ok := g.b.loans[id]
	if !ok {
		return nil, domain.ErrLoanNotFound
	}
	return &l, nil
}

func (g fakeLoanGW) FetchByOwner(_ context.Context, userID string) ([]domain.Loan, error) {
	g.b.mu.Lock()
	defer g.b.mu.Unlock()
	if err := g.b.touch("loans.fetch_by_owner"); err != nil {
		return nil, err
	}
	var out []domain.Loan
	for _, l := range g.b.loans {
		if l.UserID == userID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (g fakeLoanGW) Create(_ context.Context, l domain.Loan) (*domain.Loan, error) {
	g.b.mu.Lock()
	defer g.b.mu.Unlock()
	if err := g.b.touch("loans.create"); err != nil {
		return nil, err
	}
	g.b.loans[l.ID] = l
	return &l, nil
}

func (g fakeLoanGW) Update(_ context.Context, id string, patch domain.LoanPatch) (*domain.Loan, error) {
	g.b.mu.Lock()
	defer g.b.mu.Unlock()
	if err := g.b.touch("loans.update"); err != nil {
		return nil, err
	}
	l, ok := g.b.loans[id]
	if !ok {
		return nil, domain.ErrLoanNotFound
	}
	if patch.Status != nil {
		l.Status = *patch.Status
	}
	if patch.PaidAmount != nil {
		l.PaidAmount = *patch.PaidAmount
	}
	if patch.PaidMonths != nil {
		l.PaidMonths = *patch.PaidMonths
	}
	if patch.MonthlyPayment != nil {
		l.MonthlyPayment = *patch.MonthlyPayment
	}
	if patch.TotalRepayment != nil {
		l.TotalRepayment = *patch.TotalRepayment
	}
	if patch.DateIssued != nil {
		l.DateIssued = patch.DateIssued
	}
	g.b.loans[id] = l
	return &l, nil
}

type fakeDocumentGW struct{ b *fakeBackend }

func (g fakeDocumentGW) FetchAll(context.Context) ([]domain.Document, error) {
	g.b.mu.Lock()
	defer g.b.mu.Unlock()
	if err := g.b.touch("documents.fetch_all"); err != nil {
		return nil, err
	}
	out := make([]domain.Document, 0, len(g.b.documents))
	for _, d := range g.b.documents {
		out = append(out, d)
	}
	return out, nil
}

func (g fakeDocumentGW) FetchByID(_ context.Context, id string) (*domain.Document, error) {
	g.b.mu.Lock()
	defer g.b.mu.Unlock()
	if err := g.b.touch("documents.fetch_by_id"); err != nil {
		return nil, err
	}
	d, ok := g.b.documents[id]
	if !ok {
		return nil, domain.ErrDocumentNotFound
	}
	return &d, nil
}

func (g fakeDocumentGW) FetchByOwner(_ context.Context, userID string) ([]domain.Document, error) {
	g.b.mu.Lock()
	defer g.b.mu.Unlock()
	if err := g.b.touch("documents.fetch_by_owner"); err != nil {
		return nil, err
	}
	var out []domain.Document
	for _, d := range g.b.documents {
		if d.UserID == userID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (g fakeDocumentGW) Create(_ context.Context, d domain.Document) (*domain.Document, error) {
	g.b.mu.Lock()
	defer g.b.mu.Unlock()
	if err := g.b.touch("documents.create"); err != nil {
		return nil, err
	}
	g.b.documents[d.ID] = d
	return &d, nil
}

func (g fakeDocumentGW) Update(_ context.Context, id string, patch domain.DocumentPatch) (*domain.Document, error) {
	g.b.mu.Lock()
	defer g.b.mu.Unlock()
	if err := g.b.touch("documents.update"); err != nil {
		return nil, err
	}
	d, ok := g.b.documents[id]
	if !ok {
		return nil, domain.ErrDocumentNotFound
	}
	if patch.VerificationStatus != nil {
		d.VerificationStatus = *patch.VerificationStatus
	}
	if patch.VerificationNotes != nil {
		d.VerificationNotes = *patch.VerificationNotes
	}
	g.b.documents[id] = d
	return &d, nil
}

type fakeApplicationGW struct{ b *fakeBackend }

func (g fakeApplicationGW) FetchAll(context.Context) ([]domain.Application, error) {
	g.b.mu.Lock()
	defer g.b.mu.Unlock()
	if err := g.b.touch("applications.fetch_all"); err != nil {
		return nil, err
	}
	out := make([]domain.Application, 0, len(g.b.applications))
	for _, a := range g.b.applications {
		out = append(out, a)
	}
	return out, nil
}

func (g fakeApplicationGW) FetchByID(_ context.Context, id string) (*domain.Application, error) {
	g.b.mu.Lock()
	defer g.b.mu.Unlock()
	if err := g.b.touch("applications.fetch_by_id"); err != nil {
		return nil, err
	}
	a, ok := g.b.applications[id]
	if !ok {
		return nil, domain.ErrApplicationNotFound
	}
	return &a, nil
}

func (g fakeApplicationGW) FetchByOwner(_ context.Context, userID string) ([]domain.Application, error) {
	g.b.mu.Lock()
	defer g.b.mu.Unlock()
	if err := g.b.touch("applications.fetch_by_owner"); err != nil {
		return nil, err
	}
	var out []domain.Application
	for _, a := range g.b.applications {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (g fakeApplicationGW) Create(_ context.Context, a domain.Application) (*domain.Application, error) {
	g.b.mu.Lock()
	defer g.b.mu.Unlock()
	if err := g.b.touch("applications.create"); err != nil {
		return nil, err
	}
	g.b.applications[a.ID] = a
	return &a, nil
}

func (g fakeApplicationGW) Update(_ context.Context, id string, patch domain.ApplicationPatch) (*domain.Application, error) {
	g.b.mu.Lock()
	defer g.b.mu.Unlock()
	if err := g.b.touch("applications.update"); err != nil {
		return nil, err
	}
	a, ok := g.b.applications[id]
	if !ok {
		return nil, domain.ErrApplicationNotFound
	}
	if patch.Status != nil {
		note := ""
		if patch.Note != nil {
			note = *patch.Note
		}
		a.AppendStatus(*patch.Status, note, time.Now())
		a.Status = *patch.Status
	}
	g.b.applications[id] = a
	return &a, nil
}

type fakeContractGW struct{ b *fakeBackend }

func (g fakeContractGW) FetchAll(context.Context) ([]domain.Contract, error) {
	g.b.mu.Lock()
	defer g.b.mu.Unlock()
	if err := g.b.touch("contracts.fetch_all"); err != nil {
		return nil, err
	}
	out := make([]domain.Contract, 0, len(g.b.contracts))
	for _, c := range g.b.contracts {
		out = append(out, c)
	}
	return out, nil
}

func (g fakeContractGW) FetchByID(_ context.Context, id string) (*domain.Contract, error) {
	g.b.mu.Lock()
	defer g.b.mu.Unlock()
	if err := g.b.touch("contracts.fetch_by_id"); err != nil {
		return nil, err
	}
	c, ok := g.b.contracts[id]
	if !ok {
		return nil, domain.ErrContractNotFound
	}
	return &c, nil
}

func (g fakeContractGW) FetchByOwner(_ context.Context, userID string) ([]domain.Contract, error) {
	g.b.mu.Lock()
	defer g.b.mu.Unlock()
	if err := g.b.touch("contracts.fetch_by_owner"); err != nil {
		return nil, err
	}
	var out []domain.Contract
	for _, c := range g.b.contracts {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (g fakeContractGW) Update(_ context.Context, id string, patch domain.ContractPatch) (*domain.Contract, error) {
	g.b.mu.Lock()
	defer g.b.mu.Unlock()
	if err := g.b.touch("contracts.update"); err != nil {
		return nil, err
	}
	c, ok := g.b.contracts[id]
	if !ok {
		return nil, domain.ErrContractNotFound
	}
	if patch.Status != nil {
		c.Status = *patch.Status
	}
	if patch.SignatureRequestID != nil {
		c.SignatureRequestID = *patch.SignatureRequestID
	}
	if patch.SignatureURL != nil {
		c.SignatureURL = *patch.SignatureURL
	}
	if patch.DownloadURL != nil {
		c.DownloadURL = *patch.DownloadURL
	}
	if patch.SentAt != nil {
		c.SentAt = patch.SentAt
	}
	if patch.ViewedAt != nil {
		c.ViewedAt = patch.ViewedAt
	}
	if patch.SignedAt != nil {
		c.SignedAt = patch.SignedAt
	}
	if patch.ExpiresAt != nil {
		c.ExpiresAt = patch.ExpiresAt
	}
	g.b.contracts[id] = c
	return &c, nil
}

func (g fakeContractGW) Generate(_ context.Context, loanID string) (*domain.ContractProvision, error) {
	g.b.mu.Lock()
	defer g.b.mu.Unlock()
	if err := g.b.touch("contracts.generate"); err != nil {
		return nil, err
	}
	c := domain.Contract{
		ID:          "contract-" + loanID,
		LoanID:      loanID,
		UserID:      g.b.loans[loanID].UserID,
		Status:      domain.ContractDraft,
		DownloadURL: "/contracts/" + loanID + ".pdf",
		CreatedAt:   time.Now(),
	}
	g.b.contracts[c.ID] = c
	return &domain.ContractProvision{ContractID: c.ID, DownloadURL: c.DownloadURL}, nil
}

func (g fakeContractGW) SendForSignature(_ context.Context, contractID, _ string) (*domain.SignatureRequest, error) {
	g.b.mu.Lock()
	defer g.b.mu.Unlock()
	if err := g.b.touch("contracts.send"); err != nil {
		return nil, err
	}
	if _, ok := g.b.contracts[contractID]; !ok {
		return nil, domain.ErrContractNotFound
	}
	return &domain.SignatureRequest{
		SignatureRequestID: "sig-" + contractID,
		SignatureURL:       "https://sign.example.com/" + contractID,
	}, nil
}

func (g fakeContractGW) GetStatus(_ context.Context, contractID string) (*domain.ContractStatusReport, error) {
	g.b.mu.Lock()
	defer g.b.mu.Unlock()
	if err := g.b.touch("contracts.status"); err != nil {
		return nil, err
	}
	if g.b.statusReport != nil {
		return g.b.statusReport, nil
	}
	c, ok := g.b.contracts[contractID]
	if !ok {
		return nil, domain.ErrContractNotFound
	}
	return &domain.ContractStatusReport{Status: c.Status}, nil
}

// recordQueue captures enqueued tasks for assertions.
type recordQueue struct {
	mu    sync.Mutex
	tasks []Task
}

func (q *recordQueue) Enqueue(t Task) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.tasks = append(q.tasks, t)
}

func (q *recordQueue) byKind(kind TaskKind) []Task {
	q.mu.Lock()
	defer q.mu.Unlock()
	var out []Task
	for _, t := range q.tasks {
		if t.Kind == kind {
			out = append(out, t)
		}
	}
	return out
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore(t *testing.T) (*Store, *fakeBackend) {
	t.Helper()
	backend := newFakeBackend()
	return NewStore(backend.gateways(), nil, discardLogger()), backend
}
