package elastic_search

import (
	"github.com/ZilDuck/nft-marketplace/internal/entity"
	"go.uber.org/zap"
)

// mergeRequests folds a new listing document into one still waiting to be persisted. A listing
// that already reached a final state is never moved back to created.
func mergeRequests(index string, cached Request, action RequestAction, e entity.Entity) entity.Entity {
	switch {
	case index == ListingIndex.Get():
		result := cached.Entity.(entity.ListingDocument)
		update := e.(entity.ListingDocument)

		if result.State != entity.ListingCreated && update.State == entity.ListingCreated {
			zap.L().With(
				zap.Uint64("listingId", result.Id),
				zap.String("action", string(action)),
			).Warn("ElasticSearch: Ignoring stale listing update")
			return result
		}

		return update
	}

	zap.L().With(zap.String("index", index)).Error("ElasticSearch: Failed to merge request")
	return e
}
