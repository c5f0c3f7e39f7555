package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/joxgallardo/sparkchat-sub001/internal/core/domain"
	"github.com/joxgallardo/sparkchat-sub001/internal/core/ports"
)

// WalletHandler exposes invoice creation and node status over HTTP.
type WalletHandler struct {
	service ports.WalletService
}

func NewWalletHandler(service ports.WalletService) *WalletHandler {
	return &WalletHandler{service: service}
}

type createInvoiceRequest struct {
	PlatformID  int64  `json:"platform_id" validate:"required"`
	AmountMsats int64  `json:"amount_msats" validate:"required,gt=0"`
	Memo        string `json:"memo"`
	ExpirySecs  int64  `json:"expiry_secs" validate:"required,gt=0"`
}

type invoiceResponse struct {
	ID                    string `json:"id"`
	Status                string `json:"status"`
	EncodedPaymentRequest string `json:"encoded_payment_request"`
	BitcoinAddress        string `json:"bitcoin_address,omitempty"`
	AmountMsats           int64  `json:"amount_msats"`
	Memo                  string `json:"memo,omitempty"`
	PaymentHash           string `json:"payment_hash,omitempty"`
	CreatedAt             string `json:"created_at"`
}

// CreateInvoice handles POST /v1/wallet/invoices.
//
// @Summary      Create an invoice for the identity's wallet
// @Tags         wallet
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string                false  "Idempotency key forwarded to the payment network"
// @Param        body             body      createInvoiceRequest  true   "Invoice details"
// @Success      201              {object}  invoiceResponse
// @Failure      400              {object}  map[string]string
// @Failure      409              {object}  map[string]string
// @Failure      502              {object}  map[string]string
// @Router       /v1/wallet/invoices [post]
func (h *WalletHandler) CreateInvoice(c echo.Context) error {
	var req createInvoiceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	idempotencyKey := c.Request().Header.Get("Idempotency-Key")
	invoice, err := h.service.CreateInvoice(c.Request().Context(),
		req.PlatformID, req.AmountMsats, req.Memo, req.ExpirySecs, idempotencyKey)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, toInvoiceResponse(invoice))
}

// GetNodeStatus handles GET /v1/wallet/nodes.
//
// @Summary      List payment-network node statuses
// @Tags         wallet
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.NodeStatus
// @Failure      502  {object}  map[string]string
// @Router       /v1/wallet/nodes [get]
func (h *WalletHandler) GetNodeStatus(c echo.Context) error {
	nodes, err := h.service.GetNodeStatus(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, nodes)
}

func toInvoiceResponse(inv *domain.Invoice) invoiceResponse {
	return invoiceResponse{
		ID:                    inv.ID,
		Status:                string(inv.Status),
		EncodedPaymentRequest: inv.EncodedPaymentRequest,
		BitcoinAddress:        inv.BitcoinAddress,
		AmountMsats:           inv.AmountMsats,
		Memo:                  inv.Memo,
		PaymentHash:           inv.PaymentHash,
		CreatedAt:             inv.CreatedAt.UTC().Format(time.RFC3339),
	}
}
