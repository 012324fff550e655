package api

import (
	"bytes"
	"encoding/json"
	"github.com/ZilDuck/nft-marketplace/internal/datastore"
	"github.com/ZilDuck/nft-marketplace/internal/dev"
	"github.com/ZilDuck/nft-marketplace/internal/entity"
	"github.com/ZilDuck/nft-marketplace/internal/ledger"
	"github.com/ZilDuck/nft-marketplace/internal/marketplace"
	"github.com/ZilDuck/nft-marketplace/internal/metrics"
	"github.com/ZilDuck/nft-marketplace/internal/registry"
	"github.com/ZilDuck/nft-marketplace/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"net/http"
	"net/http/httptest"
	"testing"
)

const (
	marketAddr = "0x1000000000000000000000000000000000000001"
	operator   = "0x2000000000000000000000000000000000000002"
	seller     = "0x3000000000000000000000000000000000000003"
	buyer      = "0x4000000000000000000000000000000000000004"
	collection = "0x6000000000000000000000000000000000000006"
	currency   = "0x7000000000000000000000000000000000000007"
)

type testServer struct {
	t      *testing.T
	router http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	ds := datastore.NewMemory()
	bank := ledger.NewBank(entity.MustAddress(currency))
	reg := registry.NewRegistry()
	market := marketplace.NewMarketplace(
		entity.MustAddress(marketAddr),
		repository.NewListingRepository(ds),
		repository.NewConfigRepository(ds, entity.MarketConfig{
			Fee:                decimal.Zero,
			SettlementCurrency: entity.MustAddress(currency),
			Operator:           entity.MustAddress(operator),
		}),
		reg.For(entity.MustAddress(marketAddr)),
		func(c entity.Address) (marketplace.BalanceLedger, error) {
			l, err := bank.Ledger(c, entity.MustAddress(marketAddr))
			if err != nil {
				return nil, err
			}
			return l, nil
		},
		nil,
	)

	server := NewServer(market, nil, metrics.New(), dev.NewSeeder(bank, reg))

	return &testServer{t, server.Router()}
}

func (s *testServer) do(method, path, from string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if from != "" {
		req.Header.Set(CallerHeader, from)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	return rec
}

func (s *testServer) listings(path, from string) []entity.Listing {
	s.t.Helper()

	rec := s.do(http.MethodGet, path, from, nil)
	require.Equal(s.t, http.StatusOK, rec.Code, rec.Body.String())

	var resp listingsResponse
	require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &resp))

	return resp.Listings
}

func requireError(t *testing.T, rec *httptest.ResponseRecorder, status int, kind marketplace.Kind) {
	t.Helper()

	require.Equal(t, status, rec.Code, rec.Body.String())

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, string(kind), resp.Error)
	require.NotEmpty(t, resp.Message)
}

func (s *testServer) seed() {
	s.t.Helper()

	for _, account := range []string{seller, buyer} {
		rec := s.do(http.MethodPost, "/dev/balances", "", map[string]string{"currency": currency, "account": account, "amount": "3000000000000000000000"})
		require.Equal(s.t, http.StatusOK, rec.Code, rec.Body.String())

		rec = s.do(http.MethodPost, "/dev/allowances", account, map[string]string{"currency": currency, "amount": "3000000000000000000000"})
		require.Equal(s.t, http.StatusOK, rec.Code, rec.Body.String())
	}

	for i := 0; i < 3; i++ {
		rec := s.do(http.MethodPost, "/dev/assets", "", map[string]interface{}{"collection": collection, "assetId": i, "owner": seller})
		require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())

		rec = s.do(http.MethodPost, "/dev/approvals", seller, map[string]interface{}{"collection": collection, "assetId": i})
		require.Equal(s.t, http.StatusOK, rec.Code, rec.Body.String())
	}
}

func TestListingLifecycle(t *testing.T) {
	s := newTestServer(t)
	s.seed()

	for i := 0; i < 3; i++ {
		rec := s.do(http.MethodPost, "/listings", seller, map[string]interface{}{"collection": collection, "assetId": i, "price": "1000", "fee": "0"})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var resp map[string]uint64
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, uint64(i), resp["id"])
	}
	require.Len(t, s.listings("/listings/active", ""), 3)

	rec := s.do(http.MethodPost, "/sales", buyer, map[string]interface{}{"collection": collection, "assetId": 1, "payment": "1000"})
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = s.do(http.MethodDelete, "/listings/2", seller, nil)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	active := s.listings("/listings/active", "")
	require.Len(t, active, 1)
	require.Equal(t, uint64(0), active[0].Id)

	purchased := s.listings("/listings/purchased", buyer)
	require.Len(t, purchased, 1)
	require.Equal(t, entity.ListingReleased, purchased[0].State)

	require.Len(t, s.listings("/listings/created", seller), 3)
	require.Len(t, s.listings("/listings", ""), 3)

	rec = s.do(http.MethodGet, "/listings/2", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listing entity.Listing
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
	require.Equal(t, entity.ListingInactive, listing.State)

	rec = s.do(http.MethodGet, "/dev/assets/"+collection+"/1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var asset assetBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &asset))
	require.Equal(t, entity.Address(buyer), asset.Owner)
}

func TestErrorsMapToStatusCodes(t *testing.T) {
	s := newTestServer(t)
	s.seed()

	rec := s.do(http.MethodPost, "/listings", seller, map[string]interface{}{"collection": collection, "assetId": 0, "price": "0", "fee": "0"})
	requireError(t, rec, http.StatusBadRequest, marketplace.InvalidPrice)

	rec = s.do(http.MethodPost, "/listings", buyer, map[string]interface{}{"collection": collection, "assetId": 0, "price": "10", "fee": "0"})
	requireError(t, rec, http.StatusForbidden, marketplace.NotAssetOwner)

	rec = s.do(http.MethodPost, "/listings", seller, map[string]interface{}{"collection": collection, "assetId": 0, "price": "10", "fee": "5"})
	requireError(t, rec, http.StatusConflict, marketplace.FeeMismatch)

	rec = s.do(http.MethodPost, "/listings", "", map[string]interface{}{"collection": collection, "assetId": 0, "price": "10", "fee": "0"})
	requireError(t, rec, http.StatusBadRequest, marketplace.InvalidAddress)

	rec = s.do(http.MethodPost, "/listings", seller, "not an object")
	requireError(t, rec, http.StatusBadRequest, InvalidRequest)

	rec = s.do(http.MethodPost, "/listings", seller, map[string]interface{}{"collection": collection, "assetId": 0, "price": "10", "fee": "0"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do(http.MethodPost, "/sales", buyer, map[string]interface{}{"collection": collection, "assetId": 0, "payment": "9"})
	requireError(t, rec, http.StatusConflict, marketplace.PriceMismatch)

	rec = s.do(http.MethodPost, "/sales", buyer, map[string]interface{}{"collection": collection, "assetId": 2, "payment": "10"})
	requireError(t, rec, http.StatusConflict, marketplace.ListingNotActive)

	rec = s.do(http.MethodDelete, "/listings/0", buyer, nil)
	requireError(t, rec, http.StatusForbidden, marketplace.NotAuthorized)

	rec = s.do(http.MethodDelete, "/listings/7", seller, nil)
	requireError(t, rec, http.StatusNotFound, marketplace.IdOutOfRange)

	rec = s.do(http.MethodGet, "/listings/7", "", nil)
	requireError(t, rec, http.StatusNotFound, marketplace.IdOutOfRange)

	rec = s.do(http.MethodDelete, "/listings/0", seller, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(http.MethodDelete, "/listings/0", seller, nil)
	requireError(t, rec, http.StatusConflict, marketplace.NotActive)
}

func TestFeeAccountRoutes(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/config/fee", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"fee":"0"}`, rec.Body.String())

	rec = s.do(http.MethodPut, "/config/fee", seller, map[string]string{"fee": "5000"})
	requireError(t, rec, http.StatusForbidden, marketplace.NotAuthorized)

	rec = s.do(http.MethodPut, "/config/fee", operator, map[string]string{"fee": "5000"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(http.MethodGet, "/config/fee", "", nil)
	require.JSONEq(t, `{"fee":"5000"}`, rec.Body.String())

	rec = s.do(http.MethodPut, "/config/currency", operator, map[string]string{"currency": buyer})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = s.do(http.MethodGet, "/config/currency", "", nil)
	require.JSONEq(t, `{"currency":"`+buyer+`"}`, rec.Body.String())

	rec = s.do(http.MethodPut, "/config/operator", operator, map[string]string{"operator": seller})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = s.do(http.MethodGet, "/config/operator", "", nil)
	require.JSONEq(t, `{"operator":"`+seller+`"}`, rec.Body.String())

	rec = s.do(http.MethodPut, "/config/fee", operator, map[string]string{"fee": "1"})
	requireError(t, rec, http.StatusForbidden, marketplace.NotAuthorized)
}

func TestSearchWithoutProjection(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/search?state=created", "", nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestParseSearch(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/search?seller="+seller+"&state=released&page=3&size=500", nil)

	search, page, err := parseSearch(req)
	require.NoError(t, err)
	require.Equal(t, 3, page)
	require.Equal(t, maxPageSize, search.Size)
	require.Equal(t, 2*maxPageSize, search.From)
	require.Equal(t, entity.Address(seller), search.Seller)
	require.Equal(t, entity.ListingReleased, *search.State)

	_, _, err = parseSearch(httptest.NewRequest(http.MethodGet, "/search?state=sold", nil))
	require.ErrorIs(t, err, ErrInvalidBody)

	_, _, err = parseSearch(httptest.NewRequest(http.MethodGet, "/search?collection=nope", nil))
	require.ErrorIs(t, err, entity.ErrInvalidAddress)
}

func TestHealthMetricsAndNotFound(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Header().Get(RequestIdHeader))

	rec = s.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "marketplace_http_request_duration_seconds")

	rec = s.do(http.MethodGet, "/nowhere", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}
