package dev

import (
	"github.com/ZilDuck/nft-marketplace/internal/entity"
	"github.com/ZilDuck/nft-marketplace/internal/ledger"
	"github.com/ZilDuck/nft-marketplace/internal/registry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Seeder populates the in-memory ledger and registry so the marketplace can be exercised
// without a chain behind it.
type Seeder struct {
	bank     *ledger.Bank
	registry *registry.Registry
}

func NewSeeder(bank *ledger.Bank, registry *registry.Registry) *Seeder {
	return &Seeder{bank, registry}
}

func (s *Seeder) MintBalance(currency, account entity.Address, amount decimal.Decimal) error {
	if err := s.bank.Token(currency).Mint(account, amount); err != nil {
		return err
	}
	zap.L().With(
		zap.String("currency", currency.String()),
		zap.String("account", account.String()),
		zap.String("amount", amount.String()),
	).Info("Dev: Minted balance")

	return nil
}

func (s *Seeder) ApproveSpender(currency, owner, spender entity.Address, amount decimal.Decimal) error {
	return s.bank.Token(currency).Approve(owner, spender, amount)
}

func (s *Seeder) Balance(currency, account entity.Address) decimal.Decimal {
	return s.bank.Token(currency).BalanceOf(account)
}

func (s *Seeder) MintAsset(collection entity.Address, assetId uint64, owner entity.Address) error {
	if err := s.registry.Mint(collection, assetId, owner); err != nil {
		return err
	}
	zap.L().With(
		zap.String("collection", collection.String()),
		zap.Uint64("assetId", assetId),
		zap.String("owner", owner.String()),
	).Info("Dev: Minted asset")

	return nil
}

func (s *Seeder) ApproveOperator(caller, collection entity.Address, assetId uint64, operator entity.Address) error {
	return s.registry.Approve(caller, collection, assetId, operator)
}

func (s *Seeder) Asset(collection entity.Address, assetId uint64) (owner entity.Address, approved entity.Address, err error) {
	if owner, err = s.registry.OwnerOf(collection, assetId); err != nil {
		return "", "", err
	}
	approved, err = s.registry.Approved(collection, assetId)

	return owner, approved, err
}
