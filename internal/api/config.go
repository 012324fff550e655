package api

import (
	"github.com/ZilDuck/nft-marketplace/internal/entity"
	"github.com/shopspring/decimal"
	"net/http"
)

type feeBody struct {
	Fee decimal.Decimal `json:"fee"`
}

type currencyBody struct {
	Currency entity.Address `json:"currency"`
}

type operatorBody struct {
	Operator entity.Address `json:"operator"`
}

func (s Server) handleGetFee(w http.ResponseWriter, r *http.Request) {
	fee, err := s.market.Fee(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, feeBody{fee})
}

func (s Server) handleSetFee(w http.ResponseWriter, r *http.Request) {
	from, err := caller(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var body feeBody
	if err := decode(r, &body); err != nil {
		s.writeError(w, err)
		return
	}

	if err := s.market.SetFee(r.Context(), from, body.Fee); err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, body)
}

func (s Server) handleGetCurrency(w http.ResponseWriter, r *http.Request) {
	currency, err := s.market.SettlementCurrency(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, currencyBody{currency})
}

func (s Server) handleSetCurrency(w http.ResponseWriter, r *http.Request) {
	from, err := caller(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var body currencyBody
	if err := decode(r, &body); err != nil {
		s.writeError(w, err)
		return
	}

	if err := s.market.SetSettlementCurrency(r.Context(), from, body.Currency); err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, body)
}

func (s Server) handleGetOperator(w http.ResponseWriter, r *http.Request) {
	operator, err := s.market.Operator(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, operatorBody{operator})
}

func (s Server) handleSetOperator(w http.ResponseWriter, r *http.Request) {
	from, err := caller(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var body operatorBody
	if err := decode(r, &body); err != nil {
		s.writeError(w, err)
		return
	}

	if err := s.market.TransferOperatorRole(r.Context(), from, body.Operator); err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, body)
}
