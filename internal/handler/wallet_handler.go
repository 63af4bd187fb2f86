package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hyoshino/fruitledger/internal/settlement"
)

// WalletHandler is the dev surface of the settlement collaborator: callers
// top up and inspect the balance the purchase flow draws from.
type WalletHandler struct {
	wallet settlement.Wallet
}

func NewWalletHandler(wallet settlement.Wallet) *WalletHandler {
	return &WalletHandler{wallet: wallet}
}

func (h *WalletHandler) Get(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	bal, err := h.wallet.Balance(c.Request().Context(), uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch balance"))
	}
	return c.JSON(http.StatusOK, map[string]uint64{"balance": bal})
}

func (h *WalletHandler) Deposit(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	var body struct {
		Amount uint64 `json:"amount"`
	}
	if err := c.Bind(&body); err != nil || body.Amount == 0 {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid amount"))
	}
	bal, err := h.wallet.Deposit(c.Request().Context(), uid, body.Amount)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to deposit"))
	}
	return c.JSON(http.StatusOK, map[string]uint64{"balance": bal})
}
