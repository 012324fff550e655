package api

import (
	"encoding/json"
	"errors"
	"github.com/ZilDuck/nft-marketplace/internal/entity"
	"github.com/ZilDuck/nft-marketplace/internal/marketplace"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"net/http"
	"strconv"
)

var (
	ErrMissingCaller = errors.New("missing " + CallerHeader + " header")
	ErrInvalidBody   = errors.New("invalid request body")
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

const InvalidRequest marketplace.Kind = "InvalidRequest"

var statusByKind = map[marketplace.Kind]int{
	InvalidRequest:                      http.StatusBadRequest,
	marketplace.InvalidPrice:            http.StatusBadRequest,
	marketplace.InvalidAddress:          http.StatusBadRequest,
	marketplace.InvalidAmount:           http.StatusBadRequest,
	marketplace.NotAuthorized:           http.StatusForbidden,
	marketplace.NotAssetOwner:           http.StatusForbidden,
	marketplace.IdOutOfRange:            http.StatusNotFound,
	marketplace.ListingNotActive:        http.StatusConflict,
	marketplace.NotActive:               http.StatusConflict,
	marketplace.FeeMismatch:             http.StatusConflict,
	marketplace.PriceMismatch:           http.StatusConflict,
	marketplace.InsufficientBalance:     http.StatusUnprocessableEntity,
	marketplace.CustodyTransferRejected: http.StatusBadGateway,
	marketplace.UnknownCurrency:         http.StatusBadGateway,
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zap.L().With(zap.Error(err)).Warn("Api: Failed to write response")
	}
}

func (s Server) writeError(w http.ResponseWriter, err error) {
	kind := marketplace.KindOf(err)
	switch {
	case errors.Is(err, ErrMissingCaller):
		kind = marketplace.InvalidAddress
	case errors.Is(err, ErrInvalidBody):
		kind = InvalidRequest
	}

	status, ok := statusByKind[kind]
	if !ok {
		status = http.StatusInternalServerError
		zap.L().With(zap.Error(err)).Error("Api: Request failed")
	}
	if s.metrics != nil {
		s.metrics.Failure(string(kind))
	}

	writeJSON(w, status, errorResponse{Error: string(kind), Message: err.Error()})
}

func caller(r *http.Request) (entity.Address, error) {
	value := r.Header.Get(CallerHeader)
	if value == "" {
		return "", ErrMissingCaller
	}

	return entity.NewAddress(value)
}

func decode(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, entity.ErrInvalidAddress) || errors.Is(err, entity.ErrInvalidAmount) {
			return err
		}
		return errors.Join(ErrInvalidBody, err)
	}

	return nil
}

func getListingId(r *http.Request) (uint64, error) {
	listingId, ok := mux.Vars(r)["listingId"]
	if !ok {
		return 0, ErrInvalidBody
	}

	id, err := strconv.ParseUint(listingId, 10, 64)
	if err != nil {
		return 0, errors.Join(ErrInvalidBody, err)
	}

	return id, nil
}
