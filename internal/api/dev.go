package api

import (
	"github.com/ZilDuck/nft-marketplace/internal/entity"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"net/http"
	"strconv"
)

type balanceBody struct {
	Currency entity.Address  `json:"currency"`
	Account  entity.Address  `json:"account"`
	Spender  entity.Address  `json:"spender,omitempty"`
	Amount   decimal.Decimal `json:"amount"`
}

type assetBody struct {
	Collection entity.Address `json:"collection"`
	AssetId    uint64         `json:"assetId"`
	Owner      entity.Address `json:"owner,omitempty"`
	Approved   entity.Address `json:"approved,omitempty"`
}

func (s Server) handleMintBalance(w http.ResponseWriter, r *http.Request) {
	var body balanceBody
	if err := decode(r, &body); err != nil {
		s.writeError(w, err)
		return
	}
	if body.Currency.IsZero() || body.Account.IsZero() {
		s.writeError(w, entity.ErrInvalidAddress)
		return
	}

	if err := s.seeder.MintBalance(body.Currency, body.Account, body.Amount); err != nil {
		s.writeError(w, err)
		return
	}

	body.Amount = s.seeder.Balance(body.Currency, body.Account)
	writeJSON(w, http.StatusOK, body)
}

func (s Server) handleGetBalance(w http.ResponseWriter, r *http.Request) {
	currency, err := entity.NewAddress(mux.Vars(r)["currency"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	account, err := entity.NewAddress(mux.Vars(r)["account"])
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, balanceBody{Currency: currency, Account: account, Amount: s.seeder.Balance(currency, account)})
}

// handleApproveSpender sets the caller's allowance for spender, the marketplace by default.
func (s Server) handleApproveSpender(w http.ResponseWriter, r *http.Request) {
	from, err := caller(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var body balanceBody
	if err := decode(r, &body); err != nil {
		s.writeError(w, err)
		return
	}
	if body.Spender.IsZero() {
		body.Spender = s.market.Address()
	}
	body.Account = from

	if err := s.seeder.ApproveSpender(body.Currency, from, body.Spender, body.Amount); err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, body)
}

func (s Server) handleMintAsset(w http.ResponseWriter, r *http.Request) {
	var body assetBody
	if err := decode(r, &body); err != nil {
		s.writeError(w, err)
		return
	}
	if body.Collection.IsZero() || body.Owner.IsZero() {
		s.writeError(w, entity.ErrInvalidAddress)
		return
	}

	if err := s.seeder.MintAsset(body.Collection, body.AssetId, body.Owner); err != nil {
		writeJSON(w, http.StatusConflict, errorResponse{Error: "AssetExists", Message: err.Error()})
		return
	}

	writeJSON(w, http.StatusCreated, body)
}

func (s Server) handleGetAsset(w http.ResponseWriter, r *http.Request) {
	collection, err := entity.NewAddress(mux.Vars(r)["collection"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	assetId, err := strconv.ParseUint(mux.Vars(r)["assetId"], 10, 64)
	if err != nil {
		s.writeError(w, ErrInvalidBody)
		return
	}

	owner, approved, err := s.seeder.Asset(collection, assetId)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "AssetNotFound", Message: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, assetBody{collection, assetId, owner, approved})
}

// handleApproveOperator lets the caller approve an operator for one of their assets, the
// marketplace by default.
func (s Server) handleApproveOperator(w http.ResponseWriter, r *http.Request) {
	from, err := caller(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var body assetBody
	if err := decode(r, &body); err != nil {
		s.writeError(w, err)
		return
	}
	if body.Approved.IsZero() {
		body.Approved = s.market.Address()
	}

	if err := s.seeder.ApproveOperator(from, body.Collection, body.AssetId, body.Approved); err != nil {
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "NotAuthorized", Message: err.Error()})
		return
	}
	body.Owner = from

	writeJSON(w, http.StatusOK, body)
}
