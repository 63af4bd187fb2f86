package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func soldFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	f := newFixture(t, "buyer-b")
	_, err := f.engine.Create(ctx, "seller-s", "Mango", 100)
	require.NoError(t, err)
	require.NoError(t, f.engine.Purchase(ctx, "buyer-b", 0, 100))
	return f
}

func TestRate(t *testing.T) {
	f := soldFixture(t)
	h := NewRatingHandler(f.engine)
	params := map[string]string{"index": "0"}

	rec := f.request(t, http.MethodPost, "/api/listings/0/rating", "buyer-b", `{"score":4}`, params, h.Rate)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// Repeat by the buyer and an attempt by a stranger return the same code.
	rec = f.request(t, http.MethodPost, "/api/listings/0/rating", "buyer-b", `{"score":5}`, params, h.Rate)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "not_eligible", errorCode(t, rec))

	rec = f.request(t, http.MethodPost, "/api/listings/0/rating", "third-party-c", `{"score":5}`, params, h.Rate)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "not_eligible", errorCode(t, rec))
}

func TestRateScoreOutOfRange(t *testing.T) {
	f := soldFixture(t)
	h := NewRatingHandler(f.engine)
	params := map[string]string{"index": "0"}

	rec := f.request(t, http.MethodPost, "/api/listings/0/rating", "buyer-b", `{"score":6}`, params, h.Rate)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "bad_request", errorCode(t, rec))
}

func TestGetSellerRating(t *testing.T) {
	f := soldFixture(t)
	h := NewRatingHandler(f.engine)

	rec := f.request(t, http.MethodGet, "/api/sellers/seller-s/rating", "", "",
		map[string]string{"uid": "seller-s"}, h.GetSellerRating)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp SellerRatingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Rated)
	assert.Nil(t, resp.Average)

	require.NoError(t, f.engine.Rate(context.Background(), "buyer-b", 0, 4))

	rec = f.request(t, http.MethodGet, "/api/sellers/seller-s/rating", "", "",
		map[string]string{"uid": "seller-s"}, h.GetSellerRating)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Rated)
	require.NotNil(t, resp.Average)
	assert.Equal(t, uint64(4), *resp.Average)
}
