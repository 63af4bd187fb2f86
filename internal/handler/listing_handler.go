package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hyoshino/fruitledger/internal/ledger"
	"github.com/hyoshino/fruitledger/internal/model"
	"github.com/hyoshino/fruitledger/internal/settlement"
)

type ListingHandler struct {
	engine *ledger.Engine
}

func NewListingHandler(engine *ledger.Engine) *ListingHandler {
	return &ListingHandler{engine: engine}
}

type ListingResponse struct {
	Index     uint64  `json:"index"`
	Name      string  `json:"name"`
	Price     uint64  `json:"price"`
	SellerUID string  `json:"sellerUid"`
	BuyerUID  *string `json:"buyerUid,omitempty"`
	Sold      bool    `json:"sold"`
	Rated     bool    `json:"rated"`
	CreatedAt string  `json:"createdAt"`
	UpdatedAt string  `json:"updatedAt"`
}

func toListingResponse(l *model.Listing) ListingResponse {
	return ListingResponse{
		Index:     l.Idx,
		Name:      l.Name,
		Price:     l.Price,
		SellerUID: l.SellerUID,
		BuyerUID:  l.BuyerUID,
		Sold:      l.Sold(),
		Rated:     l.Rated,
		CreatedAt: l.CreatedAt.Format(time.RFC3339),
		UpdatedAt: l.UpdatedAt.Format(time.RFC3339),
	}
}

// writeLedgerError maps engine sentinels onto the HTTP surface. NotEligible
// stays a single code: the response must not reveal whether the caller was
// not the buyer or the listing was already rated.
func writeLedgerError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, ledger.ErrInvalidInput):
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid arguments"))
	case errors.Is(err, ledger.ErrNotFound):
		return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "listing not found"))
	case errors.Is(err, ledger.ErrUnauthorized):
		return c.JSON(http.StatusForbidden, NewErrorResponse("forbidden", "only the seller may do that"))
	case errors.Is(err, ledger.ErrAlreadySold):
		return c.JSON(http.StatusConflict, NewErrorResponse("already_sold", "listing already sold"))
	case errors.Is(err, ledger.ErrInsufficientPayment):
		return c.JSON(http.StatusPaymentRequired, NewErrorResponse("insufficient_payment", "attached payment is below the price"))
	case errors.Is(err, ledger.ErrNotEligible):
		return c.JSON(http.StatusConflict, NewErrorResponse("not_eligible", "caller may not rate this listing"))
	case errors.Is(err, settlement.ErrInsufficientFunds):
		return c.JSON(http.StatusPaymentRequired, NewErrorResponse("insufficient_funds", "wallet balance too low"))
	default:
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", err.Error()))
	}
}

func parseIndex(c echo.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("index"), 10, 64)
}

func (h *ListingHandler) Create(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	var body struct {
		Name  string `json:"name"`
		Price uint64 `json:"price"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid body"))
	}
	idx, err := h.engine.Create(c.Request().Context(), uid, body.Name, body.Price)
	if err != nil {
		return writeLedgerError(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]uint64{"index": idx})
}

func (h *ListingHandler) List(c echo.Context) error {
	listings := h.engine.ListAll(c.Request().Context())
	resp := make([]ListingResponse, 0, len(listings))
	for i := range listings {
		resp = append(resp, toListingResponse(&listings[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *ListingHandler) Purchase(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	idx, err := parseIndex(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid listing index"))
	}
	var body struct {
		Payment uint64 `json:"payment"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid body"))
	}
	if err := h.engine.Purchase(c.Request().Context(), uid, idx, body.Payment); err != nil {
		return writeLedgerError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ListingHandler) Reprice(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	idx, err := parseIndex(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid listing index"))
	}
	var body struct {
		Price uint64 `json:"price"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid body"))
	}
	if err := h.engine.Reprice(c.Request().Context(), uid, idx, body.Price); err != nil {
		return writeLedgerError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
