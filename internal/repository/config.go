package repository

import (
	"context"
	"encoding/json"
	"errors"
	"github.com/ZilDuck/nft-marketplace/internal/entity"
	"github.com/ipfs/go-datastore"
	"github.com/ipfs/go-datastore/namespace"
	"golang.org/x/xerrors"
)

type ConfigRepository interface {
	Get(ctx context.Context) (entity.MarketConfig, error)
	Save(ctx context.Context, cfg entity.MarketConfig) error
}

type configRepository struct {
	ds       datastore.Datastore
	defaults entity.MarketConfig
}

var configKey = datastore.NewKey("/config")

// NewConfigRepository returns a repository that falls back to defaults until a config is saved.
func NewConfigRepository(ds datastore.Batching, defaults entity.MarketConfig) ConfigRepository {
	return configRepository{namespace.Wrap(ds, datastore.NewKey("/marketplace")), defaults}
}

func (r configRepository) Get(ctx context.Context) (entity.MarketConfig, error) {
	b, err := r.ds.Get(ctx, configKey)
	if errors.Is(err, datastore.ErrNotFound) {
		return r.defaults, nil
	}
	if err != nil {
		return entity.MarketConfig{}, xerrors.Errorf("reading market config: %w", err)
	}

	var cfg entity.MarketConfig
	if err := json.Unmarshal(b, &cfg); err != nil {
		return entity.MarketConfig{}, xerrors.Errorf("decoding market config: %w", err)
	}

	return cfg, nil
}

func (r configRepository) Save(ctx context.Context, cfg entity.MarketConfig) error {
	b, err := json.Marshal(cfg)
	if err != nil {
		return err
	}

	return r.ds.Put(ctx, configKey, b)
}
