package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/joxgallardo/sparkchat-sub001/internal/core/domain"
	"github.com/joxgallardo/sparkchat-sub001/internal/core/ports"
)

type stubIssuer struct {
	token string
	err   error
}

func (s *stubIssuer) Issue(subject, audience string, ttl time.Duration) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.token + "-" + subject, nil
}

func testCredentials() *credentials {
	return &credentials{
		issuer:   &stubIssuer{token: "test-jwt"},
		audience: "https://api.example.com",
		ttl:      5 * time.Minute,
	}
}

func TestRESTClient_CreateInvoice(t *testing.T) {
	var gotAuth, gotIdem, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotIdem = r.Header.Get("Idempotency-Key")
		gotPath = r.URL.Path

		var body restInvoiceRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if body.AmountMsats != 21000 {
			t.Errorf("amount_msats = %d", body.AmountMsats)
		}

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "inv-rest-1",
			"status": "SUCCESS",
			"data": map[string]any{
				"encoded_payment_request": "lnbcrt210u1notdecodable",
				"bitcoin_address":         "bcrt1qexample",
			},
			"created_at": "2026-08-01T12:00:00Z",
		})
	}))
	defer srv.Close()

	client := NewRESTClient(srv.URL, srv.Client(), testCredentials(), zerolog.Nop())

	invoice, err := client.CreateInvoice(context.Background(), ports.CreateInvoiceInput{
		WalletID:       "wallet-abc",
		AmountMsats:    21000,
		Memo:           "coffee",
		ExpirySecs:     3600,
		IdempotencyKey: "idem-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != "/v1/wallets/wallet-abc/invoices" {
		t.Errorf("path = %q", gotPath)
	}
	if !strings.HasPrefix(gotAuth, "Bearer test-jwt-wallet-abc") {
		t.Errorf("bearer token not scoped to the wallet: %q", gotAuth)
	}
	if gotIdem != "idem-1" {
		t.Errorf("idempotency key not forwarded: %q", gotIdem)
	}

	if invoice.ID != "inv-rest-1" {
		t.Errorf("id = %q", invoice.ID)
	}
	if invoice.Status != domain.InvoiceCreated {
		t.Errorf("status = %s, SUCCESS must normalise to CREATED", invoice.Status)
	}
	if invoice.EncodedPaymentRequest == "" {
		t.Error("encoded payment request missing")
	}
	if invoice.BitcoinAddress != "bcrt1qexample" {
		t.Errorf("bitcoin address = %q", invoice.BitcoinAddress)
	}
	if !invoice.CreatedAt.Equal(time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("created_at = %v", invoice.CreatedAt)
	}
	// An undecodable payment request leaves the invoice unannotated.
	if invoice.PaymentHash != "" {
		t.Errorf("payment hash must stay empty for an undecodable request, got %q", invoice.PaymentHash)
	}
}

func TestRESTClient_CreateInvoice_UpstreamRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid bearer token"}`))
	}))
	defer srv.Close()

	client := NewRESTClient(srv.URL, srv.Client(), testCredentials(), zerolog.Nop())

	_, err := client.CreateInvoice(context.Background(), ports.CreateInvoiceInput{
		WalletID: "wallet-abc", AmountMsats: 1000, ExpirySecs: 60,
	})

	var gwErr *domain.GatewayError
	if !errors.As(err, &gwErr) {
		t.Fatalf("expected *domain.GatewayError, got %T: %v", err, err)
	}
	if gwErr.Path != domain.PathREST {
		t.Errorf("path = %s", gwErr.Path)
	}
	if gwErr.UpstreamStatus != http.StatusUnauthorized {
		t.Errorf("upstream status = %d", gwErr.UpstreamStatus)
	}
	if gwErr.Retryable() {
		t.Error("a 401 must not be retryable")
	}
	if !strings.Contains(gwErr.Message, "invalid bearer token") {
		t.Errorf("upstream diagnostic lost: %q", gwErr.Message)
	}
}

func TestRESTClient_CreateInvoice_ServerErrorIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewRESTClient(srv.URL, srv.Client(), testCredentials(), zerolog.Nop())

	_, err := client.CreateInvoice(context.Background(), ports.CreateInvoiceInput{
		WalletID: "wallet-abc", AmountMsats: 1000, ExpirySecs: 60,
	})

	var gwErr *domain.GatewayError
	if !errors.As(err, &gwErr) {
		t.Fatalf("expected *domain.GatewayError, got %T: %v", err, err)
	}
	if !gwErr.Retryable() {
		t.Error("a 502 must be retryable")
	}
}

func TestRESTClient_CreateInvoice_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse every connection

	client := NewRESTClient(srv.URL, &http.Client{Timeout: time.Second}, testCredentials(), zerolog.Nop())

	_, err := client.CreateInvoice(context.Background(), ports.CreateInvoiceInput{
		WalletID: "wallet-abc", AmountMsats: 1000, ExpirySecs: 60,
	})

	var gwErr *domain.GatewayError
	if !errors.As(err, &gwErr) {
		t.Fatalf("expected *domain.GatewayError, got %T: %v", err, err)
	}
	if gwErr.UpstreamStatus != 0 {
		t.Errorf("a request that never completed must carry status 0, got %d", gwErr.UpstreamStatus)
	}
	if !gwErr.Retryable() {
		t.Error("a transport failure must be retryable")
	}
}

func TestRESTClient_CreateInvoice_NoCredential(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request may be sent without a credential")
	}))
	defer srv.Close()

	creds := &credentials{issuer: &stubIssuer{err: domain.ErrSigning}, audience: "aud", ttl: time.Minute}
	client := NewRESTClient(srv.URL, srv.Client(), creds, zerolog.Nop())

	_, err := client.CreateInvoice(context.Background(), ports.CreateInvoiceInput{
		WalletID: "wallet-abc", AmountMsats: 1000, ExpirySecs: 60,
	})
	if !errors.Is(err, domain.ErrSigning) {
		t.Errorf("expected ErrSigning, got %v", err)
	}
}

func TestRESTClient_GetNodeStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/nodes" {
			t.Errorf("path = %q", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"nodes": []map[string]string{
				{"typename": "GraphNode", "id": "node-1", "status": "READY"},
				{"typename": "GraphNode", "id": "node-2", "status": "SYNCING"},
			},
		})
	}))
	defer srv.Close()

	client := NewRESTClient(srv.URL, srv.Client(), testCredentials(), zerolog.Nop())

	nodes, err := client.GetNodeStatus(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(nodes) != 2 {
		t.Fatalf("expected 2 nodes, got %d", len(nodes))
	}
	if nodes[0].ID != "node-1" || nodes[0].Status != "READY" {
		t.Errorf("nodes[0] = %+v", nodes[0])
	}
}
