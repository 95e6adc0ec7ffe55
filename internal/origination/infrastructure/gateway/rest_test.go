package gateway

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Mthadube/jbcapital-sub001/internal/origination/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := NewClient(Config{BaseURL: srv.URL, APIKey: "secret"}, nil, testLogger())
	return client, srv
}

func writeEnvelope(w http.ResponseWriter, status int, success bool, data any, errMsg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": success,
		"data":    data,
		"error":   errMsg,
	})
}

func TestFetchAllUnwrapsEnvelope(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/users" || r.Method != http.MethodGet {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("Authorization = %q", got)
		}
		writeEnvelope(w, http.StatusOK, true, []domain.User{{ID: "u1"}, {ID: "u2"}}, "")
	})

	users, err := client.Gateways().Users.FetchAll(context.Background())
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if len(users) != 2 || users[0].ID != "u1" {
		t.Fatalf("users = %+v", users)
	}
}

func TestEnvelopeErrorSurfaces(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, false, nil, "user quota exceeded")
	})

	_, err := client.Gateways().Users.Create(context.Background(), domain.User{ID: "u1"})
	if err == nil || !strings.Contains(err.Error(), "user quota exceeded") {
		t.Fatalf("err = %v, want the envelope error message", err)
	}
}

func TestHTTPErrorStatusSurfaces(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusBadGateway, false, nil, "")
	})

	_, err := client.Gateways().Loans.FetchByID(context.Background(), "l1")
	if err == nil || !strings.Contains(err.Error(), "502") {
		t.Fatalf("err = %v, want the HTTP status in the message", err)
	}
}

func TestNoRetries(t *testing.T) {
	calls := 0
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		writeEnvelope(w, http.StatusInternalServerError, false, nil, "transient")
	})

	if _, err := client.Gateways().Loans.FetchAll(context.Background()); err == nil {
		t.Fatal("expected an error")
	}
	if calls != 1 {
		t.Fatalf("gateway called %d times, want exactly 1 (no retries)", calls)
	}
}

func TestUpdateSendsPatchBody(t *testing.T) {
	var received map[string]any
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch || r.URL.Path != "/api/applications/app1" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&received)
		writeEnvelope(w, http.StatusOK, true, domain.Application{ID: "app1", Status: domain.ApplicationApproved}, "")
	})

	status := domain.ApplicationApproved
	note := "looks good"
	updated, err := client.Gateways().Applications.Update(context.Background(), "app1",
		domain.ApplicationPatch{Status: &status, Note: &note})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Status != domain.ApplicationApproved {
		t.Fatalf("status = %s", updated.Status)
	}
	if received["status"] != "approved" || received["note"] != "looks good" {
		t.Fatalf("patch body = %v", received)
	}
	if _, ok := received["somethingElse"]; ok {
		t.Fatal("nil patch fields must be omitted")
	}
}

func TestFetchByOwnerQueriesUserID(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("userId"); got != "u 1" {
			t.Errorf("userId = %q", got)
		}
		writeEnvelope(w, http.StatusOK, true, []domain.Document{{ID: "d1"}}, "")
	})

	docs, err := client.Gateways().Documents.FetchByOwner(context.Background(), "u 1")
	if err != nil {
		t.Fatalf("FetchByOwner: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("docs = %+v", docs)
	}
}

func TestContractProviderOperations(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/contracts/generate":
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			if body["loanId"] != "l1" {
				t.Errorf("generate body = %v", body)
			}
			writeEnvelope(w, http.StatusOK, true, domain.ContractProvision{ContractID: "c1"}, "")
		case r.Method == http.MethodPost && r.URL.Path == "/api/contracts/c1/signature":
			writeEnvelope(w, http.StatusOK, true, domain.SignatureRequest{SignatureRequestID: "sig-1"}, "")
		case r.Method == http.MethodGet && r.URL.Path == "/api/contracts/c1/status":
			writeEnvelope(w, http.StatusOK, true, domain.ContractStatusReport{Status: domain.ContractViewed}, "")
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			writeEnvelope(w, http.StatusNotFound, false, nil, "not found")
		}
	})

	contracts := client.Gateways().Contracts

	provision, err := contracts.Generate(context.Background(), "l1")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if provision.ContractID != "c1" {
		t.Fatalf("provision = %+v", provision)
	}

	request, err := contracts.SendForSignature(context.Background(), "c1", "a@b.com")
	if err != nil {
		t.Fatalf("SendForSignature: %v", err)
	}
	if request.SignatureRequestID != "sig-1" {
		t.Fatalf("request = %+v", request)
	}

	report, err := contracts.GetStatus(context.Background(), "c1")
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if report.Status != domain.ContractViewed {
		t.Fatalf("report = %+v", report)
	}
}

func TestMalformedResponseBody(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html>gateway timeout</html>"))
	})

	if _, err := client.Gateways().Users.FetchAll(context.Background()); err == nil {
		t.Fatal("expected a decode error")
	}
}
