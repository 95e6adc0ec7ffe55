// Package gateway implements the remote gateway contracts over the
// backend's REST API.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/Mthadube/jbcapital-sub001/internal/origination/domain"
	"github.com/Mthadube/jbcapital-sub001/pkg/metrics"
)

// Config configures the REST client. A zero Timeout disables the client
// timeout entirely, reproducing the engine's no-timeout synchronization
// model; responses race freely and the last one to land wins in the
// mirror.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client talks to the backend REST API. All responses use the uniform
// {success, data?, error?} envelope.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewClient builds the REST client. metrics may be nil.
func NewClient(cfg Config, m *metrics.Metrics, logger *slog.Logger) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: cfg.Timeout},
		metrics: m,
		logger:  logger,
	}
}

// Gateways exposes the per-entity gateway views over this client.
func (c *Client) Gateways() domain.Gateways {
	return domain.Gateways{
		Users:        userGateway{c},
		Loans:        loanGateway{c},
		Documents:    documentGateway{c},
		Applications: applicationGateway{c},
		Contracts:    contractGateway{c},
	}
}

type envelope[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error"`
}

// do performs one round trip and unwraps the envelope. No retries: a
// failed call is reported to the caller, who decides whether to re-act.
func do[T any](ctx context.Context, c *Client, entity, op, method, path string, body any) (T, error) {
	var zero T

	if c.metrics != nil {
		c.metrics.GatewayCallsTotal.WithLabelValues(entity, op).Inc()
	}
	start := time.Now()
	fail := func(err error) (T, error) {
		if c.metrics != nil {
			c.metrics.GatewayFailuresTotal.WithLabelValues(entity, op).Inc()
		}
		return zero, err
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fail(fmt.Errorf("marshal %s %s request: %w", entity, op, err))
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fail(fmt.Errorf("build %s %s request: %w", entity, op, err))
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fail(fmt.Errorf("%s %s: %w", entity, op, err))
	}
	defer resp.Body.Close()

	if c.metrics != nil {
		c.metrics.GatewayCallDuration.Observe(time.Since(start).Seconds())
	}

	var env envelope[T]
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fail(fmt.Errorf("decode %s %s response: %w", entity, op, err))
	}
	if resp.StatusCode >= http.StatusBadRequest || !env.Success {
		msg := env.Error
		if msg == "" {
			msg = resp.Status
		}
		return fail(fmt.Errorf("%s %s rejected: %s", entity, op, msg))
	}
	return env.Data, nil
}

// --- users ---

type userGateway struct{ c *Client }

func (g userGateway) FetchAll(ctx context.Context) ([]domain.User, error) {
	return do[[]domain.User](ctx, g.c, "user", "fetch_all", http.MethodGet, "/api/users", nil)
}

func (g userGateway) FetchByID(ctx context.Context, id string) (*domain.User, error) {
	return do[*domain.User](ctx, g.c, "user", "fetch_by_id", http.MethodGet, "/api/users/"+url.PathEscape(id), nil)
}

func (g userGateway) Create(ctx context.Context, u domain.User) (*domain.User, error) {
	return do[*domain.User](ctx, g.c, "user", "create", http.MethodPost, "/api/users", u)
}

func (g userGateway) Update(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	return do[*domain.User](ctx, g.c, "user", "update", http.MethodPatch, "/api/users/"+url.PathEscape(id), patch)
}

// --- loans ---

type loanGateway struct{ c *Client }

func (g loanGateway) FetchAll(ctx context.Context) ([]domain.Loan, error) {
	return do[[]domain.Loan](ctx, g.c, "loan", "fetch_all", http.MethodGet, "/api/loans", nil)
}

func (g loanGateway) FetchByID(ctx context.Context, id string) (*domain.Loan, error) {
	return do[*domain.Loan](ctx, g.c, "loan", "fetch_by_id", http.MethodGet, "/api/loans/"+url.PathEscape(id), nil)
}

func (g loanGateway) FetchByOwner(ctx context.Context, userID string) ([]domain.Loan, error) {
	return do[[]domain.Loan](ctx, g.c, "loan", "fetch_by_owner", http.MethodGet, "/api/loans?userId="+url.QueryEscape(userID), nil)
}

func (g loanGateway) Create(ctx context.Context, l domain.Loan) (*domain.Loan, error) {
	return do[*domain.Loan](ctx, g.c, "loan", "create", http.MethodPost, "/api/loans", l)
}

func (g loanGateway) Update(ctx context.Context, id string, patch domain.LoanPatch) (*domain.Loan, error) {
	return do[*domain.Loan](ctx, g.c, "loan", "update", http.MethodPatch, "/api/loans/"+url.PathEscape(id), patch)
}

// --- documents ---

type documentGateway struct{ c *Client }

func (g documentGateway) FetchAll(ctx context.Context) ([]domain.Document, error) {
	return do[[]domain.Document](ctx, g.c, "document", "fetch_all", http.MethodGet, "/api/documents", nil)
}

func (g documentGateway) FetchByID(ctx context.Context, id string) (*domain.Document, error) {
	return do[*domain.Document](ctx, g.c, "document", "fetch_by_id", http.MethodGet, "/api/documents/"+url.PathEscape(id), nil)
}

func (g documentGateway) FetchByOwner(ctx context.Context, userID string) ([]domain.Document, error) {
	return do[[]domain.Document](ctx, g.c, "document", "fetch_by_owner", http.MethodGet, "/api/documents?userId="+url.QueryEscape(userID), nil)
}

func (g documentGateway) Create(ctx context.Context, d domain.Document) (*domain.Document, error) {
	return do[*domain.Document](ctx, g.c, "document", "create", http.MethodPost, "/api/documents", d)
}

func (g documentGateway) Update(ctx context.Context, id string, patch domain.DocumentPatch) (*domain.Document, error) {
	return do[*domain.Document](ctx, g.c, "document", "update", http.MethodPatch, "/api/documents/"+url.PathEscape(id), patch)
}

// --- applications ---

type applicationGateway struct{ c *Client }

func (g applicationGateway) FetchAll(ctx context.Context) ([]domain.Application, error) {
	return do[[]domain.Application](ctx, g.c, "application", "fetch_all", http.MethodGet, "/api/applications", nil)
}

func (g applicationGateway) FetchByID(ctx context.Context, id string) (*domain.Application, error) {
	return do[*domain.Application](ctx, g.c, "application", "fetch_by_id", http.MethodGet, "/api/applications/"+url.PathEscape(id), nil)
}

func (g applicationGateway) FetchByOwner(ctx context.Context, userID string) ([]domain.Application, error) {
	return do[[]domain.Application](ctx, g.c, "application", "fetch_by_owner", http.MethodGet, "/api/applications?userId="+url.QueryEscape(userID), nil)
}

func (g applicationGateway) Create(ctx context.Context, a domain.Application) (*domain.Application, error) {
	return do[*domain.Application](ctx, g.c, "application", "create", http.MethodPost, "/api/applications", a)
}

func (g applicationGateway) Update(ctx context.Context, id string, patch domain.ApplicationPatch) (*domain.Application, error) {
	return do[*domain.Application](ctx, g.c, "application", "update", http.MethodPatch, "/api/applications/"+url.PathEscape(id), patch)
}

// --- contracts ---

type contractGateway struct{ c *Client }

func (g contractGateway) FetchAll(ctx context.Context) ([]domain.Contract, error) {
	return do[[]domain.Contract](ctx, g.c, "contract", "fetch_all", http.MethodGet, "/api/contracts", nil)
}

func (g contractGateway) FetchByID(ctx context.Context, id string) (*domain.Contract, error) {
	return do[*domain.Contract](ctx, g.c, "contract", "fetch_by_id", http.MethodGet, "/api/contracts/"+url.PathEscape(id), nil)
}

func (g contractGateway) FetchByOwner(ctx context.Context, userID string) ([]domain.Contract, error) {
	return do[[]domain.Contract](ctx, g.c, "contract", "fetch_by_owner", http.MethodGet, "/api/contracts?userId="+url.QueryEscape(userID), nil)
}

func (g contractGateway) Update(ctx context.Context, id string, patch domain.ContractPatch) (*domain.Contract, error) {
	return do[*domain.Contract](ctx, g.c, "contract", "update", http.MethodPatch, "/api/contracts/"+url.PathEscape(id), patch)
}

func (g contractGateway) Generate(ctx context.Context, loanID string) (*domain.ContractProvision, error) {
	body := map[string]string{"loanId": loanID}
	return do[*domain.ContractProvision](ctx, g.c, "contract", "generate", http.MethodPost, "/api/contracts/generate", body)
}

func (g contractGateway) SendForSignature(ctx context.Context, contractID, email string) (*domain.SignatureRequest, error) {
	body := map[string]string{"email": email}
	return do[*domain.SignatureRequest](ctx, g.c, "contract", "send_for_signature", http.MethodPost,
		"/api/contracts/"+url.PathEscape(contractID)+"/signature", body)
}

func (g contractGateway) GetStatus(ctx context.Context, contractID string) (*domain.ContractStatusReport, error) {
	return do[*domain.ContractStatusReport](ctx, g.c, "contract", "get_status", http.MethodGet,
		"/api/contracts/"+url.PathEscape(contractID)+"/status", nil)
}
