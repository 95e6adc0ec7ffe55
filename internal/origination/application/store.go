package application

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/Mthadube/jbcapital-sub001/internal/origination/domain"
	"github.com/Mthadube/jbcapital-sub001/pkg/metrics"
)

// Store is the client-resident mirror of the backend's entity collections.
// Every mutation is write-confirmed: the gateway is called first and only
// the canonical record it returns is applied locally, so the cache never
// holds state the backend has not accepted. Failed mutations leave the
// mirror untouched.
//
// Mutations are not queued or deduplicated. Two in-flight updates against
// the same entity race at the network layer and whichever response lands
// last wins locally (last-response-wins). RefreshAll is the consistency
// checkpoint after multi-step operations.
type Store struct {
	gw      domain.Gateways
	metrics *metrics.Metrics
	logger  *slog.Logger

	mu            sync.RWMutex
	users         map[string]domain.User
	loans         map[string]domain.Loan
	documents     map[string]domain.Document
	applications  map[string]domain.Application
	contracts     map[string]domain.Contract
	notifications []domain.Notification
}

// NewStore builds an empty mirror over the given gateways. metrics may be
// nil.
func NewStore(gw domain.Gateways, m *metrics.Metrics, logger *slog.Logger) *Store {
	return &Store{
		gw:           gw,
		metrics:      m,
		logger:       logger,
		users:        make(map[string]domain.User),
		loans:        make(map[string]domain.Loan),
		documents:    make(map[string]domain.Document),
		applications: make(map[string]domain.Application),
		contracts:    make(map[string]domain.Contract),
	}
}

// RefreshAll re-fetches all five collections and replaces the mirror
// wholesale. It overwrites rather than merges, so unflushed local-only
// state (including embedded notification and activity lists) is lost;
// callers must not hold unsaved state across a refresh. The global
// notification list survives because it is not a synchronized collection.
func (s *Store) RefreshAll(ctx context.Context) error {
	users, err := s.gw.Users.FetchAll(ctx)
	if err != nil {
		return s.refreshFailed(fmt.Errorf("refresh users: %w", err))
	}
	loans, err := s.gw.Loans.FetchAll(ctx)
	if err != nil {
		return s.refreshFailed(fmt.Errorf("refresh loans: %w", err))
	}
	documents, err := s.gw.Documents.FetchAll(ctx)
	if err != nil {
		return s.refreshFailed(fmt.Errorf("refresh documents: %w", err))
	}
	applications, err := s.gw.Applications.FetchAll(ctx)
	if err != nil {
		return s.refreshFailed(fmt.Errorf("refresh applications: %w", err))
	}
	contracts, err := s.gw.Contracts.FetchAll(ctx)
	if err != nil {
		return s.refreshFailed(fmt.Errorf("refresh contracts: %w", err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = make(map[string]domain.User, len(users))
	for _, u := range users {
		s.users[u.ID] = u
	}
	s.loans = make(map[string]domain.Loan, len(loans))
	for _, l := range loans {
		s.loans[l.ID] = l
	}
	s.documents = make(map[string]domain.Document, len(documents))
	for _, d := range documents {
		s.documents[d.ID] = d
	}
	s.applications = make(map[string]domain.Application, len(applications))
	for _, a := range applications {
		s.applications[a.ID] = a
	}
	s.contracts = make(map[string]domain.Contract, len(contracts))
	for _, c := range contracts {
		s.contracts[c.ID] = c
	}
	s.logger.InfoContext(ctx, "store refreshed",
		"users", len(users),
		"loans", len(loans),
		"documents", len(documents),
		"applications", len(applications),
		"contracts", len(contracts),
	)
	if s.metrics != nil {
		s.metrics.RefreshesTotal.Inc()
	}
	return nil
}

func (s *Store) refreshFailed(err error) error {
	if s.metrics != nil {
		s.metrics.RefreshFailures.Inc()
	}
	return err
}

func (s *Store) countMutation(entity string) {
	if s.metrics != nil {
		s.metrics.MutationsTotal.WithLabelValues(entity).Inc()
	}
}

// --- Users ---

// AddUser registers a user through the gateway and caches the canonical
// record.
func (s *Store) AddUser(ctx context.Context, u domain.User) (*domain.User, error) {
	created, err := s.gw.Users.Create(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.mu.Lock()
	s.mergeUser(*created)
	s.mu.Unlock()
	s.countMutation("user")
	return created, nil
}

// UpdateUser applies a partial update through the gateway. The server's
// canonical record wins over the locally proposed values.
func (s *Store) UpdateUser(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	updated, err := s.gw.Users.Update(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("update user %s: %w", id, err)
	}
	s.mu.Lock()
	s.mergeUser(*updated)
	s.mu.Unlock()
	s.countMutation("user")
	return updated, nil
}

// mergeUser replaces the cached record with the canonical one while
// preserving the locally-held notification and activity lists, which are
// client-side side-effect records, not synchronized fields.
func (s *Store) mergeUser(u domain.User) {
	if cur, ok := s.users[u.ID]; ok {
		u.Notifications = cur.Notifications
		u.Activities = cur.Activities
	}
	s.users[u.ID] = u
}

// User reads a user from the mirror.
func (s *Store) User(id string) (domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	return u, ok
}

// Users lists the mirrored users, oldest registration first.
func (s *Store) Users() []domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RegisteredAt.Equal(out[j].RegisteredAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].RegisteredAt.Before(out[j].RegisteredAt)
	})
	return out
}

// --- Loans ---

// AddLoan persists a loan through the gateway and caches the canonical
// record.
func (s *Store) AddLoan(ctx context.Context, l domain.Loan) (*domain.Loan, error) {
	created, err := s.gw.Loans.Create(ctx, l)
	if err != nil {
		return nil, fmt.Errorf("create loan: %w", err)
	}
	s.mu.Lock()
	s.loans[created.ID] = *created
	s.mu.Unlock()
	s.countMutation("loan")
	return created, nil
}

// UpdateLoan applies a partial update through the gateway.
func (s *Store) UpdateLoan(ctx context.Context, id string, patch domain.LoanPatch) (*domain.Loan, error) {
	updated, err := s.gw.Loans.Update(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("update loan %s: %w", id, err)
	}
	s.mu.Lock()
	s.loans[updated.ID] = *updated
	s.mu.Unlock()
	s.countMutation("loan")
	return updated, nil
}

// Loan reads a loan from the mirror.
func (s *Store) Loan(id string) (domain.Loan, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.loans[id]
	return l, ok
}

// LoansByUser lists a user's loans, most recent application first.
func (s *Store) LoansByUser(userID string) []domain.Loan {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Loan
	for _, l := range s.loans {
		if l.UserID == userID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].DateApplied.After(out[j].DateApplied)
	})
	return out
}

// --- Documents ---

// AddDocument records an upload through the gateway and caches the
// canonical record.
func (s *Store) AddDocument(ctx context.Context, d domain.Document) (*domain.Document, error) {
	created, err := s.gw.Documents.Create(ctx, d)
	if err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}
	s.mu.Lock()
	s.documents[created.ID] = *created
	s.mu.Unlock()
	s.countMutation("document")
	return created, nil
}

// VerifyDocument marks a document verified. Notes are optional for
// approvals.
func (s *Store) VerifyDocument(ctx context.Context, id, notes string) (*domain.Document, error) {
	status := domain.VerificationVerified
	return s.updateDocument(ctx, id, domain.DocumentPatch{
		VerificationStatus: &status,
		VerificationNotes:  &notes,
	})
}

// RejectDocument marks a document rejected. Empty notes are a local
// validation error raised before any gateway call: a rejection without a
// reason is useless to the applicant.
func (s *Store) RejectDocument(ctx context.Context, id, notes string) (*domain.Document, error) {
	if strings.TrimSpace(notes) == "" {
		return nil, domain.ErrEmptyRejectionNotes
	}
	status := domain.VerificationRejected
	return s.updateDocument(ctx, id, domain.DocumentPatch{
		VerificationStatus: &status,
		VerificationNotes:  &notes,
	})
}

func (s *Store) updateDocument(ctx context.Context, id string, patch domain.DocumentPatch) (*domain.Document, error) {
	updated, err := s.gw.Documents.Update(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("update document %s: %w", id, err)
	}
	s.mu.Lock()
	s.documents[updated.ID] = *updated
	s.mu.Unlock()
	s.countMutation("document")
	return updated, nil
}

// Document reads a document from the mirror.
func (s *Store) Document(id string) (domain.Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.documents[id]
	return d, ok
}

// DocumentsByUser lists a user's documents most-recent-first.
func (s *Store) DocumentsByUser(userID string) []domain.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Document
	for _, d := range s.documents {
		if d.UserID == userID {
			out = append(out, d)
		}
	}
	domain.SortByUploadDesc(out)
	return out
}

// --- Applications ---

// AddApplication submits an application through the gateway and caches
// the canonical record.
func (s *Store) AddApplication(ctx context.Context, a domain.Application) (*domain.Application, error) {
	created, err := s.gw.Applications.Create(ctx, a)
	if err != nil {
		return nil, fmt.Errorf("create application: %w", err)
	}
	s.mu.Lock()
	s.applications[created.ID] = *created
	s.mu.Unlock()
	s.countMutation("application")
	return created, nil
}

// UpdateApplication applies a partial update through the gateway.
func (s *Store) UpdateApplication(ctx context.Context, id string, patch domain.ApplicationPatch) (*domain.Application, error) {
	updated, err := s.gw.Applications.Update(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("update application %s: %w", id, err)
	}
	s.mu.Lock()
	s.applications[updated.ID] = *updated
	s.mu.Unlock()
	s.countMutation("application")
	return updated, nil
}

// Application reads an application from the mirror.
func (s *Store) Application(id string) (domain.Application, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.applications[id]
	return a, ok
}

// ApplicationsByUser lists a user's applications, most recent first.
func (s *Store) ApplicationsByUser(userID string) []domain.Application {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Application
	for _, a := range s.applications {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].DateSubmitted.After(out[j].DateSubmitted)
	})
	return out
}

// --- Contracts ---

// SyncContract fetches the canonical contract record and caches it. Used
// after server-side generation, where the backend mints the entity.
func (s *Store) SyncContract(ctx context.Context, id string) (*domain.Contract, error) {
	fetched, err := s.gw.Contracts.FetchByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch contract %s: %w", id, err)
	}
	s.mu.Lock()
	s.contracts[fetched.ID] = *fetched
	s.mu.Unlock()
	return fetched, nil
}

// UpdateContract applies a partial update through the gateway.
func (s *Store) UpdateContract(ctx context.Context, id string, patch domain.ContractPatch) (*domain.Contract, error) {
	updated, err := s.gw.Contracts.Update(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("update contract %s: %w", id, err)
	}
	s.mu.Lock()
	s.contracts[updated.ID] = *updated
	s.mu.Unlock()
	s.countMutation("contract")
	return updated, nil
}

// Contract reads a contract from the mirror.
func (s *Store) Contract(id string) (domain.Contract, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.contracts[id]
	return c, ok
}

// ContractsByUser lists a user's contracts, newest first.
func (s *Store) ContractsByUser(userID string) []domain.Contract {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Contract
	for _, c := range s.contracts {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// --- Notifications & activities (local-only side-effect records) ---

// PushNotification front-inserts into the global list and, when the
// notification targets a known user, into that user's embedded list.
func (s *Store) PushNotification(n domain.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = append([]domain.Notification{n}, s.notifications...)
	if n.UserID == "" {
		return
	}
	if u, ok := s.users[n.UserID]; ok {
		u.Notifications = append([]domain.Notification{n}, u.Notifications...)
		s.users[n.UserID] = u
	}
}

// PushActivity front-inserts into the user's activity log and evicts
// entries beyond the cap, oldest first.
func (s *Store) PushActivity(userID string, a domain.Activity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return
	}
	u.Activities = append([]domain.Activity{a}, u.Activities...)
	if len(u.Activities) > domain.MaxActivitiesPerUser {
		u.Activities = u.Activities[:domain.MaxActivitiesPerUser]
	}
	s.users[userID] = u
}

// MarkNotificationRead flips the read flag locally.
func (s *Store) MarkNotificationRead(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	found := false
	for i := range s.notifications {
		if s.notifications[i].ID == id {
			s.notifications[i].Read = true
			found = true
			break
		}
	}
	if !found {
		return false
	}
	for userID, u := range s.users {
		for i := range u.Notifications {
			if u.Notifications[i].ID == id {
				u.Notifications[i].Read = true
				s.users[userID] = u
				return true
			}
		}
	}
	return true
}

// Notifications returns a copy of the global list, most-recent-first.
func (s *Store) Notifications() []domain.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Notification, len(s.notifications))
	copy(out, s.notifications)
	return out
}
