package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/joxgallardo/sparkchat-sub001/internal/api/metrics"
	"github.com/joxgallardo/sparkchat-sub001/internal/core/domain"
	"github.com/joxgallardo/sparkchat-sub001/internal/core/ports"
)

// RESTClient is the direct signed-REST gateway path: every call carries a
// freshly issued ES256 bearer token scoped to the target wallet.
type RESTClient struct {
	baseURL string
	http    *http.Client
	creds   *credentials
	logger  zerolog.Logger
}

func NewRESTClient(baseURL string, httpClient *http.Client, creds *credentials, logger zerolog.Logger) *RESTClient {
	return &RESTClient{baseURL: baseURL, http: httpClient, creds: creds, logger: logger}
}

func (c *RESTClient) Path() domain.GatewayPath {
	return domain.PathREST
}

type restInvoiceRequest struct {
	AmountMsats int64  `json:"amount_msats"`
	Memo        string `json:"memo,omitempty"`
	ExpirySecs  int64  `json:"expiry_secs"`
}

type restInvoiceResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Data   struct {
		EncodedPaymentRequest string `json:"encoded_payment_request"`
		BitcoinAddress        string `json:"bitcoin_address,omitempty"`
	} `json:"data"`
	CreatedAt string `json:"created_at"`
}

func (c *RESTClient) CreateInvoice(ctx context.Context, in ports.CreateInvoiceInput) (*domain.Invoice, error) {
	payload, err := json.Marshal(restInvoiceRequest{
		AmountMsats: in.AmountMsats,
		Memo:        in.Memo,
		ExpirySecs:  in.ExpirySecs,
	})
	if err != nil {
		return nil, fmt.Errorf("encode invoice request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/wallets/%s/invoices", c.baseURL, in.WalletID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build invoice request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if in.IdempotencyKey != "" {
		req.Header.Set("Idempotency-Key", in.IdempotencyKey)
	}
	if err := c.authorize(req, in.WalletID); err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, transportError(domain.PathREST, err)
	}
	body := readBody(resp)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, upstreamError(domain.PathREST, resp.StatusCode, body)
	}

	var out restInvoiceResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, upstreamError(domain.PathREST, resp.StatusCode, []byte("undecodable invoice response"))
	}

	invoice := &domain.Invoice{
		ID:                    out.ID,
		Status:                normalizeStatus(out.Status),
		EncodedPaymentRequest: out.Data.EncodedPaymentRequest,
		BitcoinAddress:        out.Data.BitcoinAddress,
		AmountMsats:           in.AmountMsats,
		Memo:                  in.Memo,
		CreatedAt:             parseCreatedAt(out.CreatedAt),
	}
	annotateFromBolt11(invoice, c.logger)
	return invoice, nil
}

type restNodeStatusResponse struct {
	Nodes []struct {
		Typename string `json:"typename"`
		ID       string `json:"id"`
		Status   string `json:"status"`
	} `json:"nodes"`
}

func (c *RESTClient) GetNodeStatus(ctx context.Context) ([]domain.NodeStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/nodes", nil)
	if err != nil {
		return nil, fmt.Errorf("build node status request: %w", err)
	}
	if err := c.authorize(req, "node-status"); err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, transportError(domain.PathREST, err)
	}
	body := readBody(resp)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, upstreamError(domain.PathREST, resp.StatusCode, body)
	}

	var out restNodeStatusResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, upstreamError(domain.PathREST, resp.StatusCode, []byte("undecodable node status response"))
	}

	nodes := make([]domain.NodeStatus, 0, len(out.Nodes))
	for _, n := range out.Nodes {
		nodes = append(nodes, domain.NodeStatus{Typename: n.Typename, ID: n.ID, Status: n.Status})
	}
	return nodes, nil
}

func (c *RESTClient) authorize(req *http.Request, subject string) error {
	bearer, err := c.creds.bearer(subject)
	if err != nil {
		return err
	}
	metrics.TokensIssuedTotal.Inc()
	req.Header.Set("Authorization", "Bearer "+bearer)
	return nil
}
