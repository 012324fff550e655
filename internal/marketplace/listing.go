package marketplace

import (
	"context"
	"fmt"
	"github.com/ZilDuck/nft-marketplace/internal/entity"
	"github.com/ZilDuck/nft-marketplace/internal/event"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func (m *marketplace) CreateListing(ctx context.Context, caller, collection entity.Address, assetId uint64, price, feePaid decimal.Decimal) (uint64, error) {
	listing, err := m.createListing(ctx, caller, collection, assetId, price, feePaid)
	if err != nil {
		zap.L().With(
			zap.Error(err),
			zap.String("caller", caller.String()),
			zap.String("collection", collection.String()),
			zap.Uint64("assetId", assetId),
			zap.String("price", price.String()),
		).Info("Marketplace: Listing refused")
		return 0, err
	}

	return listing.Id, nil
}

func (m *marketplace) createListing(ctx context.Context, caller, collection entity.Address, assetId uint64, price, feePaid decimal.Decimal) (entity.Listing, error) {
	if err := entity.ValidateAmount(price); err != nil {
		return entity.Listing{}, fmt.Errorf("%w: %w", ErrInvalidPrice, err)
	}
	if price.LessThan(decimal.NewFromInt(1)) {
		return entity.Listing{}, ErrInvalidPrice
	}
	if err := entity.ValidateAmount(feePaid); err != nil {
		return entity.Listing{}, fmt.Errorf("%w: %w", ErrFeeMismatch, err)
	}
	if caller.IsZero() || collection.IsZero() {
		return entity.Listing{}, ErrInvalidAddress
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	cfg, err := m.configRepo.Get(ctx)
	if err != nil {
		return entity.Listing{}, err
	}
	if !feePaid.Equal(cfg.Fee) {
		return entity.Listing{}, fmt.Errorf("%w: paid %s, fee is %s", ErrFeeMismatch, feePaid, cfg.Fee)
	}

	owner, err := m.registry.OwnerOf(ctx, collection, assetId)
	if err != nil {
		return entity.Listing{}, fmt.Errorf("%w: %w", ErrNotAssetOwner, err)
	}
	if owner != caller {
		return entity.Listing{}, fmt.Errorf("%w: %s/%d is held by %s", ErrNotAssetOwner, collection, assetId, owner)
	}

	approved, err := m.registry.Approved(ctx, collection, assetId)
	if err != nil {
		return entity.Listing{}, fmt.Errorf("%w: %w", ErrCustodyTransferRejected, err)
	}
	if approved != m.address {
		return entity.Listing{}, fmt.Errorf("%w: marketplace is not approved for %s/%d", ErrCustodyTransferRejected, collection, assetId)
	}

	var ledger BalanceLedger
	if cfg.Fee.IsPositive() {
		if ledger, err = m.ledger(cfg.SettlementCurrency); err != nil {
			return entity.Listing{}, err
		}
	}

	if err := ctx.Err(); err != nil {
		return entity.Listing{}, err
	}

	rb := &rollback{}

	if ledger != nil {
		if err := ledger.TransferFrom(ctx, caller, cfg.Operator, cfg.Fee); err != nil {
			return entity.Listing{}, fmt.Errorf("%w: %w", ErrInsufficientBalance, err)
		}
		rb.add("refund listing fee", func(ctx context.Context) error {
			return ledger.TransferFrom(ctx, cfg.Operator, caller, cfg.Fee)
		})
	}

	// Ownership and approval were checked under mu, so cancellation must not split the fee
	// from the custody move.
	if err := m.registry.Transfer(context.WithoutCancel(ctx), collection, caller, m.address, assetId); err != nil {
		rb.run(ctx)
		return entity.Listing{}, fmt.Errorf("%w: %w", ErrCustodyTransferRejected, err)
	}
	rb.add("return custody to seller", func(ctx context.Context) error {
		return m.registry.Transfer(ctx, collection, m.address, caller, assetId)
	})

	now := m.now()
	listing, err := m.listingRepo.Append(ctx, entity.Listing{
		Collection: collection,
		AssetId:    assetId,
		Seller:     caller,
		Buyer:      entity.ZeroAddress,
		Price:      price,
		State:      entity.ListingCreated,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		rb.run(ctx)
		return entity.Listing{}, err
	}

	zap.L().With(
		zap.Uint64("listingId", listing.Id),
		zap.String("collection", collection.String()),
		zap.Uint64("assetId", assetId),
		zap.String("seller", caller.String()),
		zap.String("price", price.String()),
		zap.String("fee", cfg.Fee.String()),
	).Info("Marketplace: Listing created")

	m.emit(event.ListingCreatedEvent, caller, &listing, nil)

	return listing, nil
}

func (m *marketplace) Sell(ctx context.Context, caller, collection entity.Address, assetId uint64, payment decimal.Decimal) error {
	_, err := m.sell(ctx, caller, collection, assetId, payment)
	if err != nil {
		zap.L().With(
			zap.Error(err),
			zap.String("caller", caller.String()),
			zap.String("collection", collection.String()),
			zap.Uint64("assetId", assetId),
			zap.String("payment", payment.String()),
		).Info("Marketplace: Sale refused")
		return err
	}

	return nil
}

func (m *marketplace) sell(ctx context.Context, caller, collection entity.Address, assetId uint64, payment decimal.Decimal) (entity.Listing, error) {
	if err := entity.ValidateAmount(payment); err != nil {
		return entity.Listing{}, fmt.Errorf("%w: %w", ErrPriceMismatch, err)
	}
	if caller.IsZero() {
		return entity.Listing{}, ErrInvalidAddress
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	listing, err := m.findActiveListing(ctx, collection, assetId)
	if err != nil {
		return entity.Listing{}, err
	}
	if !payment.Equal(listing.Price) {
		return entity.Listing{}, fmt.Errorf("%w: paid %s, price is %s", ErrPriceMismatch, payment, listing.Price)
	}

	owner, err := m.registry.OwnerOf(ctx, collection, assetId)
	if err != nil {
		return entity.Listing{}, fmt.Errorf("%w: %w", ErrCustodyTransferRejected, err)
	}
	if owner != m.address {
		return entity.Listing{}, fmt.Errorf("%w: marketplace does not hold %s/%d", ErrCustodyTransferRejected, collection, assetId)
	}

	cfg, err := m.configRepo.Get(ctx)
	if err != nil {
		return entity.Listing{}, err
	}
	ledger, err := m.ledger(cfg.SettlementCurrency)
	if err != nil {
		return entity.Listing{}, err
	}

	rb := &rollback{}

	if err := ledger.TransferFrom(ctx, caller, listing.Seller, listing.Price); err != nil {
		return entity.Listing{}, fmt.Errorf("%w: %w", ErrInsufficientBalance, err)
	}
	rb.add("refund buyer", func(ctx context.Context) error {
		return ledger.TransferFrom(ctx, listing.Seller, caller, listing.Price)
	})

	if err := m.registry.Transfer(ctx, collection, m.address, caller, assetId); err != nil {
		rb.run(ctx)
		return entity.Listing{}, fmt.Errorf("%w: %w", ErrCustodyTransferRejected, err)
	}
	rb.add("reclaim custody from buyer", func(ctx context.Context) error {
		return m.registry.Transfer(ctx, collection, caller, m.address, assetId)
	})

	listing.Buyer = caller
	listing.State = entity.ListingReleased
	listing.UpdatedAt = m.now()
	if err := m.listingRepo.Save(ctx, listing); err != nil {
		rb.run(ctx)
		return entity.Listing{}, err
	}

	zap.L().With(
		zap.Uint64("listingId", listing.Id),
		zap.String("collection", collection.String()),
		zap.Uint64("assetId", assetId),
		zap.String("seller", listing.Seller.String()),
		zap.String("buyer", caller.String()),
		zap.String("price", listing.Price.String()),
	).Info("Marketplace: Listing sold")

	m.emit(event.ListingSoldEvent, caller, &listing, nil)

	return listing, nil
}

// findActiveListing resolves an asset to its most recent Created listing. An asset can be
// listed again after it was sold or retired, so older listings for it are skipped.
func (m *marketplace) findActiveListing(ctx context.Context, collection entity.Address, assetId uint64) (entity.Listing, error) {
	count, err := m.listingRepo.Count(ctx)
	if err != nil {
		return entity.Listing{}, err
	}

	for id := count; id > 0; id-- {
		listing, err := m.listingRepo.Get(ctx, id-1)
		if err != nil {
			return entity.Listing{}, err
		}
		if listing.IsFor(collection, assetId) && listing.IsActive() {
			return listing, nil
		}
	}

	return entity.Listing{}, fmt.Errorf("%w: %s/%d", ErrListingNotActive, collection, assetId)
}

func (m *marketplace) Retire(ctx context.Context, caller entity.Address, listingId uint64) error {
	_, err := m.retire(ctx, caller, listingId)
	if err != nil {
		zap.L().With(
			zap.Error(err),
			zap.String("caller", caller.String()),
			zap.Uint64("listingId", listingId),
		).Info("Marketplace: Retirement refused")
		return err
	}

	return nil
}

func (m *marketplace) retire(ctx context.Context, caller entity.Address, listingId uint64) (entity.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	count, err := m.listingRepo.Count(ctx)
	if err != nil {
		return entity.Listing{}, err
	}
	if listingId >= count {
		return entity.Listing{}, fmt.Errorf("%w: %d of %d", ErrIdOutOfRange, listingId, count)
	}

	listing, err := m.listingRepo.Get(ctx, listingId)
	if err != nil {
		return entity.Listing{}, listingError(err)
	}
	if !listing.IsActive() {
		return entity.Listing{}, fmt.Errorf("%w: listing %d is %s", ErrNotActive, listingId, listing.State)
	}

	owner, err := m.registry.OwnerOf(ctx, listing.Collection, listing.AssetId)
	if err != nil {
		return entity.Listing{}, fmt.Errorf("%w: %w", ErrCustodyTransferRejected, err)
	}
	if caller != listing.Seller && (owner == m.address || caller != owner) {
		return entity.Listing{}, fmt.Errorf("%w: %s cannot retire listing %d", ErrNotAuthorized, caller, listingId)
	}

	previous := listing
	listing.State = entity.ListingInactive
	listing.UpdatedAt = m.now()
	if err := m.listingRepo.Save(ctx, listing); err != nil {
		return entity.Listing{}, err
	}

	if owner == m.address {
		if err := m.registry.Transfer(ctx, listing.Collection, m.address, listing.Seller, listing.AssetId); err != nil {
			if restoreErr := m.listingRepo.Save(context.WithoutCancel(ctx), previous); restoreErr != nil {
				zap.L().With(zap.Error(restoreErr), zap.Uint64("listingId", listingId)).Error("Marketplace: Failed to restore listing")
			}
			return entity.Listing{}, fmt.Errorf("%w: %w", ErrCustodyTransferRejected, err)
		}
	}

	zap.L().With(
		zap.Uint64("listingId", listing.Id),
		zap.String("collection", listing.Collection.String()),
		zap.Uint64("assetId", listing.AssetId),
		zap.String("caller", caller.String()),
	).Info("Marketplace: Listing retired")

	m.emit(event.ListingRetiredEvent, caller, &listing, nil)

	return listing, nil
}
