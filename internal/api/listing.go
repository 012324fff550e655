package api

import (
	"errors"
	"github.com/ZilDuck/nft-marketplace/internal/entity"
	"github.com/ZilDuck/nft-marketplace/internal/repository"
	"github.com/shopspring/decimal"
	"net/http"
	"strconv"
)

type createListingRequest struct {
	Collection entity.Address  `json:"collection"`
	AssetId    uint64          `json:"assetId"`
	Price      decimal.Decimal `json:"price"`
	Fee        decimal.Decimal `json:"fee"`
}

type sellRequest struct {
	Collection entity.Address  `json:"collection"`
	AssetId    uint64          `json:"assetId"`
	Payment    decimal.Decimal `json:"payment"`
}

type listingsResponse struct {
	Listings []entity.Listing `json:"listings"`
}

type searchResponse struct {
	Listings []entity.ListingDocument `json:"listings"`
	Total    int64                    `json:"total"`
	Page     int                      `json:"page"`
	Size     int                      `json:"size"`
}

func (s Server) handleCreateListing(w http.ResponseWriter, r *http.Request) {
	from, err := caller(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var req createListingRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	id, err := s.market.CreateListing(r.Context(), from, req.Collection, req.AssetId, req.Price, req.Fee)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]uint64{"id": id})
}

func (s Server) handleSell(w http.ResponseWriter, r *http.Request) {
	from, err := caller(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var req sellRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	if err := s.market.Sell(r.Context(), from, req.Collection, req.AssetId, req.Payment); err != nil {
		s.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s Server) handleRetire(w http.ResponseWriter, r *http.Request) {
	from, err := caller(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	listingId, err := getListingId(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if err := s.market.Retire(r.Context(), from, listingId); err != nil {
		s.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s Server) handleGetListing(w http.ResponseWriter, r *http.Request) {
	listingId, err := getListingId(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	listing, err := s.market.GetListing(r.Context(), listingId)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, listing)
}

func (s Server) handleGetListings(w http.ResponseWriter, r *http.Request) {
	listings, err := s.market.GetAllListings(r.Context())
	s.writeListings(w, listings, err)
}

func (s Server) handleFetchActive(w http.ResponseWriter, r *http.Request) {
	listings, err := s.market.FetchActive(r.Context())
	s.writeListings(w, listings, err)
}

func (s Server) handleFetchPurchased(w http.ResponseWriter, r *http.Request) {
	from, err := caller(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	listings, err := s.market.FetchPurchasedBy(r.Context(), from)
	s.writeListings(w, listings, err)
}

func (s Server) handleFetchCreated(w http.ResponseWriter, r *http.Request) {
	from, err := caller(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	listings, err := s.market.FetchCreatedBy(r.Context(), from)
	s.writeListings(w, listings, err)
}

func (s Server) writeListings(w http.ResponseWriter, listings []entity.Listing, err error) {
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, listingsResponse{listings})
}

func (s Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if s.search == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "SearchUnavailable", Message: "search is not configured"})
		return
	}

	search, page, err := parseSearch(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	listings, total, err := s.search.Search(r.Context(), search)
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "SearchUnavailable", Message: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, searchResponse{listings, total, page, search.Size})
}

const maxPageSize = 100

func parseSearch(r *http.Request) (repository.ListingSearch, int, error) {
	q := r.URL.Query()
	search := repository.ListingSearch{Size: 20}

	var err error
	for key, target := range map[string]*entity.Address{
		"collection": &search.Collection,
		"seller":     &search.Seller,
		"buyer":      &search.Buyer,
	} {
		if value := q.Get(key); value != "" {
			if *target, err = entity.NewAddress(value); err != nil {
				return search, 0, err
			}
		}
	}

	if value := q.Get("state"); value != "" {
		state, err := entity.ParseListingState(value)
		if err != nil {
			return search, 0, errors.Join(ErrInvalidBody, err)
		}
		search.State = &state
	}

	if value := q.Get("size"); value != "" {
		if search.Size, err = strconv.Atoi(value); err != nil || search.Size < 1 {
			return search, 0, ErrInvalidBody
		}
		if search.Size > maxPageSize {
			search.Size = maxPageSize
		}
	}

	page := 1
	if value := q.Get("page"); value != "" {
		if page, err = strconv.Atoi(value); err != nil || page < 1 {
			return search, 0, ErrInvalidBody
		}
	}
	search.From = (page - 1) * search.Size

	return search, page, nil
}
