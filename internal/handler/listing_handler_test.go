package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyoshino/fruitledger/internal/ledger"
	"github.com/hyoshino/fruitledger/internal/settlement"
)

type fixture struct {
	engine *ledger.Engine
	wallet *settlement.MemoryWallet
	e      *echo.Echo
}

func newFixture(t *testing.T, funded ...string) *fixture {
	t.Helper()
	wallet := settlement.NewMemoryWallet()
	for _, uid := range funded {
		_, err := wallet.Deposit(context.Background(), uid, 1_000_000)
		require.NoError(t, err)
	}
	return &fixture{
		engine: ledger.New(wallet, nil),
		wallet: wallet,
		e:      echo.New(),
	}
}

// request runs a handler directly, injecting uid the way the auth middleware
// would.
func (f *fixture) request(t *testing.T, method, target, uid, body string, params map[string]string, h echo.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := f.e.NewContext(req, rec)
	if uid != "" {
		c.Set("uid", uid)
	}
	names := make([]string, 0, len(params))
	values := make([]string, 0, len(params))
	for k, v := range params {
		names = append(names, k)
		values = append(values, v)
	}
	c.SetParamNames(names...)
	c.SetParamValues(values...)
	require.NoError(t, h(c))
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Error.Code
}

func TestCreateListing(t *testing.T) {
	f := newFixture(t)
	h := NewListingHandler(f.engine)

	rec := f.request(t, http.MethodPost, "/api/listings", "seller-s", `{"name":"Mango","price":100}`, nil, h.Create)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp map[string]uint64
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, uint64(0), resp["index"])
}

func TestCreateListingRejectsBadInput(t *testing.T) {
	f := newFixture(t)
	h := NewListingHandler(f.engine)

	rec := f.request(t, http.MethodPost, "/api/listings", "seller-s", `{"name":"","price":100}`, nil, h.Create)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "bad_request", errorCode(t, rec))

	rec = f.request(t, http.MethodPost, "/api/listings", "seller-s", `{"name":"Mango","price":0}`, nil, h.Create)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateListingRequiresUID(t *testing.T) {
	f := newFixture(t)
	h := NewListingHandler(f.engine)

	rec := f.request(t, http.MethodPost, "/api/listings", "", `{"name":"Mango","price":100}`, nil, h.Create)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListListings(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	h := NewListingHandler(f.engine)

	_, err := f.engine.Create(ctx, "seller-s", "Mango", 100)
	require.NoError(t, err)
	_, err = f.engine.Create(ctx, "seller-s", "Papaya", 250)
	require.NoError(t, err)

	rec := f.request(t, http.MethodGet, "/api/listings", "", "", nil, h.List)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp []ListingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 2)
	assert.Equal(t, "Mango", resp[0].Name)
	assert.False(t, resp[0].Sold)
	assert.Nil(t, resp[0].BuyerUID)
}

func TestPurchaseFlow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "buyer-b", "buyer-c")
	h := NewListingHandler(f.engine)

	_, err := f.engine.Create(ctx, "seller-s", "Mango", 100)
	require.NoError(t, err)

	params := map[string]string{"index": "0"}
	rec := f.request(t, http.MethodPost, "/api/listings/0/purchase", "buyer-b", `{"payment":100}`, params, h.Purchase)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.request(t, http.MethodPost, "/api/listings/0/purchase", "buyer-c", `{"payment":100}`, params, h.Purchase)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "already_sold", errorCode(t, rec))
}

func TestPurchaseInsufficientPayment(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "buyer-b")
	h := NewListingHandler(f.engine)

	_, err := f.engine.Create(ctx, "seller-s", "Mango", 100)
	require.NoError(t, err)

	rec := f.request(t, http.MethodPost, "/api/listings/0/purchase", "buyer-b", `{"payment":50}`,
		map[string]string{"index": "0"}, h.Purchase)
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)
	assert.Equal(t, "insufficient_payment", errorCode(t, rec))
}

func TestPurchaseEmptyWallet(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	h := NewListingHandler(f.engine)

	_, err := f.engine.Create(ctx, "seller-s", "Mango", 100)
	require.NoError(t, err)

	rec := f.request(t, http.MethodPost, "/api/listings/0/purchase", "buyer-b", `{"payment":100}`,
		map[string]string{"index": "0"}, h.Purchase)
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)
	assert.Equal(t, "insufficient_funds", errorCode(t, rec))
}

func TestPurchaseUnknownIndex(t *testing.T) {
	f := newFixture(t, "buyer-b")
	h := NewListingHandler(f.engine)

	rec := f.request(t, http.MethodPost, "/api/listings/9/purchase", "buyer-b", `{"payment":100}`,
		map[string]string{"index": "9"}, h.Purchase)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.request(t, http.MethodPost, "/api/listings/x/purchase", "buyer-b", `{"payment":100}`,
		map[string]string{"index": "x"}, h.Purchase)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReprice(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "buyer-b")
	h := NewListingHandler(f.engine)

	_, err := f.engine.Create(ctx, "seller-s", "Mango", 100)
	require.NoError(t, err)
	params := map[string]string{"index": "0"}

	rec := f.request(t, http.MethodPut, "/api/listings/0/price", "seller-s", `{"price":200}`, params, h.Reprice)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, uint64(200), f.engine.ListAll(ctx)[0].Price)

	rec = f.request(t, http.MethodPut, "/api/listings/0/price", "someone-else", `{"price":300}`, params, h.Reprice)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "forbidden", errorCode(t, rec))

	require.NoError(t, f.engine.Purchase(ctx, "buyer-b", 0, 200))
	rec = f.request(t, http.MethodPut, "/api/listings/0/price", "seller-s", `{"price":300}`, params, h.Reprice)
	assert.Equal(t, http.StatusConflict, rec.Code)
}
