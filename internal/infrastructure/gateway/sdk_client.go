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

// SDKClient speaks the network SDK's GraphQL wire protocol against the
// /graphql endpoint. From the caller's perspective it is interchangeable
// with the REST path; only credential scoping and idempotency transport
// differ (the SDK protocol carries the idempotency key inside the mutation
// variables rather than as a header).
type SDKClient struct {
	baseURL string
	http    *http.Client
	creds   *credentials
	logger  zerolog.Logger
}

func NewSDKClient(baseURL string, httpClient *http.Client, creds *credentials, logger zerolog.Logger) *SDKClient {
	return &SDKClient{baseURL: baseURL, http: httpClient, creds: creds, logger: logger}
}

func (c *SDKClient) Path() domain.GatewayPath {
	return domain.PathSDK
}

const createInvoiceMutation = `mutation CreateInvoice($wallet_id: ID!, $amount_msats: Long!, $memo: String, $expiry_secs: Int!, $idempotency_key: String) {
  create_invoice(input: {wallet_id: $wallet_id, amount_msats: $amount_msats, memo: $memo, expiry_secs: $expiry_secs, idempotency_key: $idempotency_key}) {
    invoice {
      id
      status
      data { encoded_payment_request bitcoin_address }
      created_at
    }
  }
}`

const nodeStatusQuery = `query NodeStatus {
  current_account {
    nodes {
      entities { __typename id status }
    }
  }
}`

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphqlError struct {
	Message string `json:"message"`
}

type sdkInvoicePayload struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Data   struct {
		EncodedPaymentRequest string `json:"encoded_payment_request"`
		BitcoinAddress        string `json:"bitcoin_address"`
	} `json:"data"`
	CreatedAt string `json:"created_at"`
}

func (c *SDKClient) CreateInvoice(ctx context.Context, in ports.CreateInvoiceInput) (*domain.Invoice, error) {
	var out struct {
		Data struct {
			CreateInvoice struct {
				Invoice sdkInvoicePayload `json:"invoice"`
			} `json:"create_invoice"`
		} `json:"data"`
		Errors []graphqlError `json:"errors"`
	}

	err := c.execute(ctx, in.WalletID, graphqlRequest{
		Query: createInvoiceMutation,
		Variables: map[string]any{
			"wallet_id":       in.WalletID,
			"amount_msats":    in.AmountMsats,
			"memo":            in.Memo,
			"expiry_secs":     in.ExpirySecs,
			"idempotency_key": in.IdempotencyKey,
		},
	}, &out)
	if err != nil {
		return nil, err
	}
	if len(out.Errors) > 0 {
		// GraphQL-level failures arrive with HTTP 200; surface them as an
		// upstream validation failure so retry decisions stay possible.
		return nil, &domain.GatewayError{
			Path:           domain.PathSDK,
			UpstreamStatus: http.StatusUnprocessableEntity,
			Message:        out.Errors[0].Message,
		}
	}

	payload := out.Data.CreateInvoice.Invoice
	invoice := &domain.Invoice{
		ID:                    payload.ID,
		Status:                normalizeStatus(payload.Status),
		EncodedPaymentRequest: payload.Data.EncodedPaymentRequest,
		BitcoinAddress:        payload.Data.BitcoinAddress,
		AmountMsats:           in.AmountMsats,
		Memo:                  in.Memo,
		CreatedAt:             parseCreatedAt(payload.CreatedAt),
	}
	annotateFromBolt11(invoice, c.logger)
	return invoice, nil
}

func (c *SDKClient) GetNodeStatus(ctx context.Context) ([]domain.NodeStatus, error) {
	var out struct {
		Data struct {
			CurrentAccount struct {
				Nodes struct {
					Entities []struct {
						Typename string `json:"__typename"`
						ID       string `json:"id"`
						Status   string `json:"status"`
					} `json:"entities"`
				} `json:"nodes"`
			} `json:"current_account"`
		} `json:"data"`
		Errors []graphqlError `json:"errors"`
	}

	err := c.execute(ctx, "node-status", graphqlRequest{Query: nodeStatusQuery}, &out)
	if err != nil {
		return nil, err
	}
	if len(out.Errors) > 0 {
		return nil, &domain.GatewayError{
			Path:           domain.PathSDK,
			UpstreamStatus: http.StatusUnprocessableEntity,
			Message:        out.Errors[0].Message,
		}
	}

	entities := out.Data.CurrentAccount.Nodes.Entities
	nodes := make([]domain.NodeStatus, 0, len(entities))
	for _, e := range entities {
		nodes = append(nodes, domain.NodeStatus{Typename: e.Typename, ID: e.ID, Status: e.Status})
	}
	return nodes, nil
}

// execute posts one GraphQL operation and decodes the response into out.
func (c *SDKClient) execute(ctx context.Context, tokenSubject string, gql graphqlRequest, out any) error {
	payload, err := json.Marshal(gql)
	if err != nil {
		return fmt.Errorf("encode graphql request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/graphql", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build graphql request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	bearer, err := c.creds.bearer(tokenSubject)
	if err != nil {
		return err
	}
	metrics.TokensIssuedTotal.Inc()
	req.Header.Set("Authorization", "Bearer "+bearer)

	resp, err := c.http.Do(req)
	if err != nil {
		return transportError(domain.PathSDK, err)
	}
	body := readBody(resp)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return upstreamError(domain.PathSDK, resp.StatusCode, body)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return upstreamError(domain.PathSDK, resp.StatusCode, []byte("undecodable graphql response"))
	}
	return nil
}
