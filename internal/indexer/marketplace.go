package indexer

import (
	"github.com/ZilDuck/nft-marketplace/internal/elastic_search"
	"github.com/ZilDuck/nft-marketplace/internal/entity"
	"github.com/ZilDuck/nft-marketplace/internal/event"
	"go.uber.org/zap"
)

// MarketplaceIndexer keeps the listing search index in step with the listing table.
type MarketplaceIndexer interface {
	Listen(events *event.Manager)
	IndexEvent(ev entity.ListingEvent)
	Reindex(listings []entity.Listing) (int, error)
}

type marketplaceIndexer struct {
	elastic elastic_search.Index
}

func NewMarketplaceIndexer(elastic elastic_search.Index) MarketplaceIndexer {
	return marketplaceIndexer{elastic}
}

// Listen indexes listing events on a single listener so a sale never overtakes the creation of
// the same listing.
func (i marketplaceIndexer) Listen(events *event.Manager) {
	events.AddListener(func(msg interface{}) {
		ev, ok := msg.(entity.ListingEvent)
		if !ok {
			return
		}
		i.IndexEvent(ev)
	}, event.ListingEvents...)
}

func (i marketplaceIndexer) IndexEvent(ev entity.ListingEvent) {
	if ev.Listing == nil {
		return
	}

	req, ok := requests[event.Type(ev.Type)]
	if !ok {
		return
	}

	switch req.reqType {
	case elastic_search.IndexRequest:
		i.elastic.AddIndexRequest(elastic_search.ListingIndex.Get(), ev.Listing.Document(), req.action)
	case elastic_search.UpdateRequest:
		i.elastic.AddUpdateRequest(elastic_search.ListingIndex.Get(), ev.Listing.Document(), req.action)
	}

	if _, err := i.elastic.Persist(); err != nil {
		zap.L().With(
			zap.Error(err),
			zap.Uint64("listingId", ev.Listing.Id),
			zap.String("type", ev.Type),
		).Warn("MarketplaceIndexer: Listing kept for the next persist")
	}
}

// Reindex replaces the search documents of the given listings.
func (i marketplaceIndexer) Reindex(listings []entity.Listing) (int, error) {
	for _, listing := range listings {
		i.elastic.AddIndexRequest(elastic_search.ListingIndex.Get(), listing.Document(), elastic_search.ListingReindex)
		i.elastic.BatchPersist()
	}

	actions, err := i.elastic.Persist()
	if err != nil {
		zap.L().With(zap.Error(err)).Error("MarketplaceIndexer: Failed to reindex listings")
		return actions, err
	}

	zap.L().With(zap.Int("listings", len(listings))).Info("MarketplaceIndexer: Reindex complete")

	return len(listings), nil
}

type request struct {
	reqType elastic_search.RequestType
	action  elastic_search.RequestAction
}

// A listing document is created once. Sales and retirements update it in place.
var requests = map[event.Type]request{
	event.ListingCreatedEvent: {elastic_search.IndexRequest, elastic_search.ListingCreate},
	event.ListingSoldEvent:    {elastic_search.UpdateRequest, elastic_search.ListingSale},
	event.ListingRetiredEvent: {elastic_search.UpdateRequest, elastic_search.ListingRetire},
}
