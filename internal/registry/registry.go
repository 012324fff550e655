package registry

import (
	"context"
	"errors"
	"fmt"
	"github.com/ZilDuck/nft-marketplace/internal/entity"
	"go.uber.org/zap"
	"sync"
)

var (
	ErrAssetNotFound      = errors.New("asset not found")
	ErrAssetExists        = errors.New("asset already exists")
	ErrNotOwner           = errors.New("not the asset owner")
	ErrNotOwnerOrApproved = errors.New("not the asset owner or approved operator")
)

type assetKey struct {
	collection entity.Address
	assetId    uint64
}

type custody struct {
	owner    entity.Address
	approved entity.Address
}

// Registry is an in-memory unique asset custody store.
type Registry struct {
	mu     sync.Mutex
	assets map[assetKey]*custody
}

func NewRegistry() *Registry {
	return &Registry{assets: map[assetKey]*custody{}}
}

func (r *Registry) Mint(collection entity.Address, assetId uint64, owner entity.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := assetKey{collection, assetId}
	if _, ok := r.assets[key]; ok {
		return fmt.Errorf("%w: %s/%d", ErrAssetExists, collection, assetId)
	}
	r.assets[key] = &custody{owner: owner, approved: entity.ZeroAddress}

	return nil
}

func (r *Registry) Approve(caller, collection entity.Address, assetId uint64, operator entity.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, err := r.get(collection, assetId)
	if err != nil {
		return err
	}
	if c.owner != caller {
		return fmt.Errorf("%w: %s/%d", ErrNotOwner, collection, assetId)
	}
	c.approved = operator

	return nil
}

func (r *Registry) OwnerOf(collection entity.Address, assetId uint64) (entity.Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, err := r.get(collection, assetId)
	if err != nil {
		return "", err
	}
	return c.owner, nil
}

func (r *Registry) Approved(collection entity.Address, assetId uint64) (entity.Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, err := r.get(collection, assetId)
	if err != nil {
		return "", err
	}
	return c.approved, nil
}

func (r *Registry) get(collection entity.Address, assetId uint64) (*custody, error) {
	c, ok := r.assets[assetKey{collection, assetId}]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%d", ErrAssetNotFound, collection, assetId)
	}
	return c, nil
}

func (r *Registry) transfer(operator, collection, from, to entity.Address, assetId uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, err := r.get(collection, assetId)
	if err != nil {
		return err
	}
	if c.owner != from {
		return fmt.Errorf("%w: %s does not hold %s/%d", ErrNotOwner, from, collection, assetId)
	}
	if operator != c.owner && operator != c.approved {
		return fmt.Errorf("%w: %s on %s/%d", ErrNotOwnerOrApproved, operator, collection, assetId)
	}

	c.owner = to
	c.approved = entity.ZeroAddress

	zap.L().With(
		zap.String("collection", collection.String()),
		zap.Uint64("assetId", assetId),
		zap.String("from", from.String()),
		zap.String("to", to.String()),
	).Debug("Registry: Transfer")

	return nil
}

// Operator is a view of the registry bound to the account moving assets.
type Operator struct {
	registry *Registry
	operator entity.Address
}

func (r *Registry) For(operator entity.Address) Operator {
	return Operator{r, operator}
}

func (o Operator) OwnerOf(_ context.Context, collection entity.Address, assetId uint64) (entity.Address, error) {
	return o.registry.OwnerOf(collection, assetId)
}

func (o Operator) Approved(_ context.Context, collection entity.Address, assetId uint64) (entity.Address, error) {
	return o.registry.Approved(collection, assetId)
}

func (o Operator) Transfer(ctx context.Context, collection, from, to entity.Address, assetId uint64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return o.registry.transfer(o.operator, collection, from, to, assetId)
}
