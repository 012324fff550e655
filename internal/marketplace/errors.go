package marketplace

import (
	"errors"
	"github.com/ZilDuck/nft-marketplace/internal/entity"
)

var (
	ErrInvalidPrice            = errors.New("price must be at least 1")
	ErrNotAssetOwner           = errors.New("caller does not hold the asset")
	ErrFeeMismatch             = errors.New("fee paid does not match the listing fee")
	ErrPriceMismatch           = errors.New("payment does not match the listing price")
	ErrListingNotActive        = errors.New("no active listing for the asset")
	ErrIdOutOfRange            = errors.New("listing id out of range")
	ErrNotActive               = errors.New("listing is not active")
	ErrNotAuthorized           = errors.New("caller is not authorized")
	ErrInsufficientBalance     = errors.New("settlement rejected by the balance ledger")
	ErrCustodyTransferRejected = errors.New("custody transfer rejected by the asset registry")
	ErrUnknownCurrency         = errors.New("settlement currency is not available")
	ErrInvalidAddress          = entity.ErrInvalidAddress
	ErrInvalidAmount           = entity.ErrInvalidAmount
)

type Kind string

const (
	InvalidPrice            Kind = "InvalidPrice"
	NotAssetOwner           Kind = "NotAssetOwner"
	FeeMismatch             Kind = "FeeMismatch"
	PriceMismatch           Kind = "PriceMismatch"
	ListingNotActive        Kind = "ListingNotActive"
	IdOutOfRange            Kind = "IdOutOfRange"
	NotActive               Kind = "NotActive"
	NotAuthorized           Kind = "NotAuthorized"
	InsufficientBalance     Kind = "InsufficientBalance"
	CustodyTransferRejected Kind = "CustodyTransferRejected"
	UnknownCurrency         Kind = "UnknownCurrency"
	InvalidAddress          Kind = "InvalidAddress"
	InvalidAmount           Kind = "InvalidAmount"
	Internal                Kind = "Internal"
)

var kinds = []struct {
	err  error
	kind Kind
}{
	{ErrInvalidPrice, InvalidPrice},
	{ErrNotAssetOwner, NotAssetOwner},
	{ErrFeeMismatch, FeeMismatch},
	{ErrPriceMismatch, PriceMismatch},
	{ErrListingNotActive, ListingNotActive},
	{ErrIdOutOfRange, IdOutOfRange},
	{ErrNotActive, NotActive},
	{ErrNotAuthorized, NotAuthorized},
	{ErrInsufficientBalance, InsufficientBalance},
	{ErrCustodyTransferRejected, CustodyTransferRejected},
	{ErrUnknownCurrency, UnknownCurrency},
	{ErrInvalidAddress, InvalidAddress},
	{ErrInvalidAmount, InvalidAmount},
}

// KindOf returns the machine readable kind of err, or Internal when err is not one of ours.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return Internal
}
