package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hyoshino/fruitledger/internal/ledger"
)

type RatingHandler struct {
	engine *ledger.Engine
}

func NewRatingHandler(engine *ledger.Engine) *RatingHandler {
	return &RatingHandler{engine: engine}
}

func (h *RatingHandler) Rate(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	idx, err := parseIndex(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid listing index"))
	}
	var body struct {
		Score int `json:"score"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid body"))
	}
	if err := h.engine.Rate(c.Request().Context(), uid, idx, body.Score); err != nil {
		return writeLedgerError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type SellerRatingResponse struct {
	SellerUID string  `json:"sellerUid"`
	Rated     bool    `json:"rated"`
	Average   *uint64 `json:"average,omitempty"`
}

// GetSellerRating reports the truncating integer average, or rated=false for
// a seller nobody has rated yet.
func (h *RatingHandler) GetSellerRating(c echo.Context) error {
	sellerUID := c.Param("uid")
	if sellerUID == "" {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "missing seller uid"))
	}
	avg, ok := h.engine.AverageRating(c.Request().Context(), sellerUID)
	resp := SellerRatingResponse{SellerUID: sellerUID, Rated: ok}
	if ok {
		resp.Average = &avg
	}
	return c.JSON(http.StatusOK, resp)
}
