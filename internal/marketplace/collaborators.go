package marketplace

import (
	"context"
	"github.com/ZilDuck/nft-marketplace/internal/entity"
	"github.com/shopspring/decimal"
)

// AssetRegistry holds custody of unique assets. Transfers are made with the marketplace as the
// acting operator.
type AssetRegistry interface {
	OwnerOf(ctx context.Context, collection entity.Address, assetId uint64) (entity.Address, error)
	Approved(ctx context.Context, collection entity.Address, assetId uint64) (entity.Address, error)
	Transfer(ctx context.Context, collection, from, to entity.Address, assetId uint64) error
}

// BalanceLedger settles fungible amounts with the marketplace as the spender of allowances.
type BalanceLedger interface {
	TransferFrom(ctx context.Context, from, to entity.Address, amount decimal.Decimal) error
}

// LedgerResolver returns the balance ledger of a settlement currency.
type LedgerResolver func(currency entity.Address) (BalanceLedger, error)
