package di

import (
	"github.com/ZilDuck/nft-marketplace/internal/api"
	"github.com/ZilDuck/nft-marketplace/internal/elastic_search"
	"github.com/ZilDuck/nft-marketplace/internal/event"
	"github.com/ZilDuck/nft-marketplace/internal/indexer"
	"github.com/ZilDuck/nft-marketplace/internal/marketplace"
	"github.com/ZilDuck/nft-marketplace/internal/messenger"
	"github.com/ZilDuck/nft-marketplace/internal/metrics"
	"github.com/ZilDuck/nft-marketplace/internal/notify"
	"github.com/ZilDuck/nft-marketplace/internal/repository"
	"github.com/sarulabs/di/v2"
)

// Container gives typed access to the services built from Definitions. Optional services
// return nil when they are not configured.
type Container struct {
	ctn di.Container
}

func NewContainer(defs ...di.Def) (*Container, error) {
	builder, err := di.NewBuilder()
	if err != nil {
		return nil, err
	}

	if len(defs) == 0 {
		defs = Definitions
	}
	if err := builder.Add(defs...); err != nil {
		return nil, err
	}

	return &Container{builder.Build()}, nil
}

func (c *Container) Delete() error {
	return c.ctn.Delete()
}

func (c *Container) GetMarketplace() marketplace.Marketplace {
	return c.ctn.Get("marketplace").(marketplace.Marketplace)
}

func (c *Container) GetListingRepo() repository.ListingRepository {
	return c.ctn.Get("listing.repo").(repository.ListingRepository)
}

func (c *Container) GetEventManager() *event.Manager {
	return c.ctn.Get("event.manager").(*event.Manager)
}

func (c *Container) GetElastic() elastic_search.Index {
	e, _ := c.ctn.Get("elastic").(elastic_search.Index)
	return e
}

func (c *Container) GetMarketplaceIndexer() indexer.MarketplaceIndexer {
	i, _ := c.ctn.Get("marketplace.indexer").(indexer.MarketplaceIndexer)
	return i
}

func (c *Container) GetMessenger() messenger.MessageService {
	m, _ := c.ctn.Get("messenger").(messenger.MessageService)
	return m
}

func (c *Container) GetWebhook() notify.Service {
	w, _ := c.ctn.Get("webhook").(notify.Service)
	return w
}

func (c *Container) GetMetrics() *metrics.Metrics {
	return c.ctn.Get("metrics").(*metrics.Metrics)
}

func (c *Container) GetApi() api.Server {
	return c.ctn.Get("api").(api.Server)
}

// Wire attaches every configured event consumer to the event manager.
func (c *Container) Wire() {
	events := c.GetEventManager()

	if i := c.GetMarketplaceIndexer(); i != nil {
		i.Listen(events)
	}
	if m := c.GetMessenger(); m != nil {
		messenger.NewPublisher(m).Listen(events)
	}
	if w := c.GetWebhook(); w != nil {
		w.Listen(events)
	}
	c.GetMetrics().Listen(events)
}
