package di

import (
	"github.com/ZilDuck/nft-marketplace/internal/api"
	"github.com/ZilDuck/nft-marketplace/internal/config"
	"github.com/ZilDuck/nft-marketplace/internal/datastore"
	"github.com/ZilDuck/nft-marketplace/internal/dev"
	"github.com/ZilDuck/nft-marketplace/internal/elastic_search"
	"github.com/ZilDuck/nft-marketplace/internal/entity"
	"github.com/ZilDuck/nft-marketplace/internal/event"
	"github.com/ZilDuck/nft-marketplace/internal/indexer"
	"github.com/ZilDuck/nft-marketplace/internal/ledger"
	"github.com/ZilDuck/nft-marketplace/internal/marketplace"
	"github.com/ZilDuck/nft-marketplace/internal/messenger"
	"github.com/ZilDuck/nft-marketplace/internal/metrics"
	"github.com/ZilDuck/nft-marketplace/internal/notify"
	"github.com/ZilDuck/nft-marketplace/internal/registry"
	"github.com/ZilDuck/nft-marketplace/internal/repository"
	ds "github.com/ipfs/go-datastore"
	"github.com/sarulabs/di/v2"
	"go.uber.org/zap"
	"time"
)

var Definitions = []di.Def{
	{
		Name: "datastore",
		Build: func(ctn di.Container) (interface{}, error) {
			return datastore.New(config.Get().DataDir)
		},
		Close: func(obj interface{}) error {
			return obj.(ds.Batching).Close()
		},
	},
	{
		Name: "event.manager",
		Build: func(ctn di.Container) (interface{}, error) {
			return event.NewManager(), nil
		},
		Close: func(obj interface{}) error {
			obj.(*event.Manager).Close()
			return nil
		},
	},
	{
		Name: "listing.repo",
		Build: func(ctn di.Container) (interface{}, error) {
			return repository.NewListingRepository(ctn.Get("datastore").(ds.Batching)), nil
		},
	},
	{
		Name: "config.repo",
		Build: func(ctn di.Container) (interface{}, error) {
			cfg := config.Get().Marketplace
			return repository.NewConfigRepository(ctn.Get("datastore").(ds.Batching), entity.MarketConfig{
				Fee:                cfg.ListingFee,
				SettlementCurrency: cfg.SettlementCurrency,
				Operator:           cfg.Operator,
			}), nil
		},
	},
	{
		Name: "ledger",
		Build: func(ctn di.Container) (interface{}, error) {
			currency := config.Get().Marketplace.SettlementCurrency
			if currency.IsZero() {
				return ledger.NewBank(), nil
			}
			return ledger.NewBank(currency), nil
		},
	},
	{
		Name: "registry",
		Build: func(ctn di.Container) (interface{}, error) {
			return registry.NewRegistry(), nil
		},
	},
	{
		Name: "marketplace",
		Build: func(ctn di.Container) (interface{}, error) {
			address := config.Get().Marketplace.Address
			bank := ctn.Get("ledger").(*ledger.Bank)
			resolver := func(currency entity.Address) (marketplace.BalanceLedger, error) {
				l, err := bank.Ledger(currency, address)
				if err != nil {
					return nil, err
				}
				return l, nil
			}

			return marketplace.NewMarketplace(
				address,
				ctn.Get("listing.repo").(repository.ListingRepository),
				ctn.Get("config.repo").(repository.ConfigRepository),
				ctn.Get("registry").(*registry.Registry).For(address),
				resolver,
				ctn.Get("event.manager").(*event.Manager),
			), nil
		},
	},
	{
		Name: "elastic",
		Build: func(ctn di.Container) (interface{}, error) {
			elastic, err := elastic_search.New()
			if err != nil {
				zap.L().With(zap.Error(err)).Warn("Search projection disabled")
				return nil, nil
			}
			return elastic, nil
		},
	},
	{
		Name: "listing.search.repo",
		Build: func(ctn di.Container) (interface{}, error) {
			elastic, ok := ctn.Get("elastic").(elastic_search.Index)
			if !ok {
				return nil, nil
			}
			return repository.NewListingSearchRepository(elastic), nil
		},
	},
	{
		Name: "marketplace.indexer",
		Build: func(ctn di.Container) (interface{}, error) {
			elastic, ok := ctn.Get("elastic").(elastic_search.Index)
			if !ok {
				return nil, nil
			}
			return indexer.NewMarketplaceIndexer(elastic), nil
		},
	},
	{
		Name: "messenger",
		Build: func(ctn di.Container) (interface{}, error) {
			cfg := config.Get()
			switch cfg.Messenger.Driver {
			case "amqp":
				return messenger.NewMessenger(cfg.Messenger.AmqpUri, cfg.Messenger.Exchange), nil
			case "sqs":
				return messenger.NewSqsMessenger(cfg.Aws, cfg.Messenger.QueueUrl)
			}
			return nil, nil
		},
		Close: func(obj interface{}) error {
			if m, ok := obj.(messenger.MessageService); ok {
				return m.Close()
			}
			return nil
		},
	},
	{
		Name: "webhook",
		Build: func(ctn di.Container) (interface{}, error) {
			cfg := config.Get().Webhook
			if cfg.Url == "" {
				return nil, nil
			}
			client := notify.NewClient(cfg.Retries, time.Duration(cfg.Timeout)*time.Second)
			return notify.NewWebhook(cfg.Url, cfg.Secret, client), nil
		},
	},
	{
		Name: "metrics",
		Build: func(ctn di.Container) (interface{}, error) {
			return metrics.New(), nil
		},
	},
	{
		Name: "dev.seeder",
		Build: func(ctn di.Container) (interface{}, error) {
			if !config.IsDev() {
				return nil, nil
			}
			return dev.NewSeeder(ctn.Get("ledger").(*ledger.Bank), ctn.Get("registry").(*registry.Registry)), nil
		},
	},
	{
		Name: "api",
		Build: func(ctn di.Container) (interface{}, error) {
			search, _ := ctn.Get("listing.search.repo").(repository.ListingSearchRepository)
			seeder, _ := ctn.Get("dev.seeder").(*dev.Seeder)

			return api.NewServer(
				ctn.Get("marketplace").(marketplace.Marketplace),
				search,
				ctn.Get("metrics").(*metrics.Metrics),
				seeder,
			), nil
		},
	},
}
