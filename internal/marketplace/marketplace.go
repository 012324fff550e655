package marketplace

import (
	"context"
	"errors"
	"fmt"
	"github.com/ZilDuck/nft-marketplace/internal/entity"
	"github.com/ZilDuck/nft-marketplace/internal/event"
	"github.com/ZilDuck/nft-marketplace/internal/repository"
	"github.com/nu7hatch/gouuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"sync"
	"time"
)

type Marketplace interface {
	Address() entity.Address

	CreateListing(ctx context.Context, caller, collection entity.Address, assetId uint64, price, feePaid decimal.Decimal) (uint64, error)
	Sell(ctx context.Context, caller, collection entity.Address, assetId uint64, payment decimal.Decimal) error
	Retire(ctx context.Context, caller entity.Address, listingId uint64) error

	GetListing(ctx context.Context, listingId uint64) (entity.Listing, error)
	GetAllListings(ctx context.Context) ([]entity.Listing, error)
	FetchActive(ctx context.Context) ([]entity.Listing, error)
	FetchPurchasedBy(ctx context.Context, caller entity.Address) ([]entity.Listing, error)
	FetchCreatedBy(ctx context.Context, caller entity.Address) ([]entity.Listing, error)

	Fee(ctx context.Context) (decimal.Decimal, error)
	SetFee(ctx context.Context, caller entity.Address, amount decimal.Decimal) error
	SettlementCurrency(ctx context.Context) (entity.Address, error)
	SetSettlementCurrency(ctx context.Context, caller, currency entity.Address) error
	Operator(ctx context.Context) (entity.Address, error)
	TransferOperatorRole(ctx context.Context, caller, newOperator entity.Address) error
}

// marketplace serialises every operation behind mu, collaborator calls included, so an
// operation either commits all of its effects or none of them. Events are emitted before mu is
// released so listeners receive them in commit order.
type marketplace struct {
	mu          sync.Mutex
	address     entity.Address
	listingRepo repository.ListingRepository
	configRepo  repository.ConfigRepository
	registry    AssetRegistry
	ledgers     LedgerResolver
	events      *event.Manager
	now         func() time.Time
}

func NewMarketplace(
	address entity.Address,
	listingRepo repository.ListingRepository,
	configRepo repository.ConfigRepository,
	registry AssetRegistry,
	ledgers LedgerResolver,
	events *event.Manager,
) Marketplace {
	return &marketplace{
		address:     address,
		listingRepo: listingRepo,
		configRepo:  configRepo,
		registry:    registry,
		ledgers:     ledgers,
		events:      events,
		now:         time.Now,
	}
}

func (m *marketplace) Address() entity.Address {
	return m.address
}

func (m *marketplace) Fee(ctx context.Context) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cfg, err := m.configRepo.Get(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return cfg.Fee, nil
}

func (m *marketplace) SetFee(ctx context.Context, caller entity.Address, amount decimal.Decimal) error {
	if err := entity.ValidateAmount(amount); err != nil {
		return err
	}

	return m.updateConfig(ctx, caller, func(cfg *entity.MarketConfig) {
		cfg.Fee = amount
	})
}

func (m *marketplace) SettlementCurrency(ctx context.Context) (entity.Address, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cfg, err := m.configRepo.Get(ctx)
	if err != nil {
		return "", err
	}
	return cfg.SettlementCurrency, nil
}

func (m *marketplace) SetSettlementCurrency(ctx context.Context, caller, currency entity.Address) error {
	if currency.IsZero() {
		return fmt.Errorf("%w: settlement currency cannot be the zero address", ErrInvalidAddress)
	}

	return m.updateConfig(ctx, caller, func(cfg *entity.MarketConfig) {
		cfg.SettlementCurrency = currency
	})
}

func (m *marketplace) Operator(ctx context.Context) (entity.Address, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cfg, err := m.configRepo.Get(ctx)
	if err != nil {
		return "", err
	}
	return cfg.Operator, nil
}

func (m *marketplace) TransferOperatorRole(ctx context.Context, caller, newOperator entity.Address) error {
	if newOperator.IsZero() {
		return fmt.Errorf("%w: operator cannot be the zero address", ErrInvalidAddress)
	}

	return m.updateConfig(ctx, caller, func(cfg *entity.MarketConfig) {
		cfg.Operator = newOperator
	})
}

func (m *marketplace) updateConfig(ctx context.Context, caller entity.Address, update func(cfg *entity.MarketConfig)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cfg, err := m.configRepo.Get(ctx)
	if err != nil {
		return err
	}
	if caller != cfg.Operator {
		zap.L().With(zap.String("caller", caller.String())).Warn("Marketplace: Config change refused")
		return fmt.Errorf("%w: %s is not the operator", ErrNotAuthorized, caller)
	}

	update(&cfg)
	if err := m.configRepo.Save(ctx, cfg); err != nil {
		return err
	}

	zap.L().With(
		zap.String("caller", caller.String()),
		zap.String("fee", cfg.Fee.String()),
		zap.String("currency", cfg.SettlementCurrency.String()),
		zap.String("operator", cfg.Operator.String()),
	).Info("Marketplace: Config updated")

	m.emit(event.ConfigUpdatedEvent, caller, nil, &cfg)

	return nil
}

func (m *marketplace) ledger(currency entity.Address) (BalanceLedger, error) {
	if currency.IsZero() {
		return nil, fmt.Errorf("%w: no settlement currency configured", ErrUnknownCurrency)
	}

	l, err := m.ledgers(currency)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnknownCurrency, err)
	}
	return l, nil
}

func (m *marketplace) emit(eventType event.Type, caller entity.Address, listing *entity.Listing, cfg *entity.MarketConfig) {
	if m.events == nil {
		return
	}

	id, err := uuid.NewV4()
	if err != nil {
		zap.L().With(zap.Error(err)).Error("Marketplace: Failed to create event id")
		return
	}

	m.events.EmitEvent(eventType, entity.ListingEvent{
		Id:      id.String(),
		Type:    string(eventType),
		Caller:  caller,
		Listing: listing,
		Config:  cfg,
		Time:    m.now(),
	})
}

func listingError(err error) error {
	if errors.Is(err, repository.ErrListingNotFound) {
		return fmt.Errorf("%w: %w", ErrIdOutOfRange, err)
	}
	return err
}
