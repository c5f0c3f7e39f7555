package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/joxgallardo/sparkchat-sub001/internal/core/ports"
)

// AccountHandler covers administrative binding operations and the wallet
// provisioning hook used by the external provisioning collaborator.
type AccountHandler struct {
	service ports.IdentityService
}

func NewAccountHandler(service ports.IdentityService) *AccountHandler {
	return &AccountHandler{service: service}
}

type registerAccountRequest struct {
	AccountID string `json:"account_id" validate:"required"`
}

// Register handles POST /v1/accounts/:platform_id/register — explicit
// binding set/overwrite for migration or administrative re-linking.
//
// @Summary      Register or re-link an account binding
// @Tags         accounts
// @Accept       json
// @Security     BearerAuth
// @Param        platform_id  path  integer                 true  "Chat platform user ID"
// @Param        body         body  registerAccountRequest  true  "Target account"
// @Success      204
// @Failure      400  {object}  map[string]string
// @Router       /v1/accounts/{platform_id}/register [post]
func (h *AccountHandler) Register(c echo.Context) error {
	platformID, err := parsePlatformID(c)
	if err != nil {
		return err
	}

	var req registerAccountRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	if err := h.service.RegisterAccount(c.Request().Context(), platformID, req.AccountID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

type provisionWalletRequest struct {
	WalletID string `json:"wallet_id" validate:"required"`
}

// ProvisionWallet handles PUT /v1/accounts/:account_id/wallet — stores the
// external wallet handle for an account.
//
// @Summary      Provision the wallet handle for an account
// @Tags         accounts
// @Accept       json
// @Security     BearerAuth
// @Param        account_id  path  string                  true  "Internal account ID"
// @Param        body        body  provisionWalletRequest  true  "Wallet handle"
// @Success      204
// @Failure      400  {object}  map[string]string
// @Router       /v1/accounts/{account_id}/wallet [put]
func (h *AccountHandler) ProvisionWallet(c echo.Context) error {
	accountID := c.Param("account_id")
	if accountID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "account_id is required")
	}

	var req provisionWalletRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	if err := h.service.ProvisionWallet(c.Request().Context(), accountID, req.WalletID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// GetWalletConfig handles GET /v1/accounts/:account_id/wallet.
//
// @Summary      Get the wallet handle bound to an account
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Param        account_id  path      string  true  "Internal account ID"
// @Success      200         {object}  domain.WalletConfig
// @Failure      409         {object}  map[string]string
// @Router       /v1/accounts/{account_id}/wallet [get]
func (h *AccountHandler) GetWalletConfig(c echo.Context) error {
	accountID := c.Param("account_id")
	if accountID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "account_id is required")
	}

	cfg, err := h.service.GetWalletConfig(c.Request().Context(), accountID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cfg)
}
