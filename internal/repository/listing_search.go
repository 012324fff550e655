package repository

import (
	"context"
	"encoding/json"
	"github.com/ZilDuck/nft-marketplace/internal/elastic_search"
	"github.com/ZilDuck/nft-marketplace/internal/entity"
	"github.com/olivere/elastic/v7"
	"go.uber.org/zap"
)

// ListingSearch filters the listing search index. Empty fields are ignored.
type ListingSearch struct {
	Collection entity.Address
	Seller     entity.Address
	Buyer      entity.Address
	State      *entity.ListingState
	From       int
	Size       int
}

type ListingSearchRepository interface {
	Search(ctx context.Context, s ListingSearch) ([]entity.ListingDocument, int64, error)
}

type listingSearchRepository struct {
	elastic elastic_search.Index
}

const maxSearchSize = 100

func NewListingSearchRepository(elastic elastic_search.Index) ListingSearchRepository {
	return listingSearchRepository{elastic}
}

func (r listingSearchRepository) Search(ctx context.Context, s ListingSearch) ([]entity.ListingDocument, int64, error) {
	if r.elastic == nil || r.elastic.GetClient() == nil {
		return nil, 0, elastic_search.ErrNoClient
	}

	size := s.Size
	if size <= 0 || size > maxSearchSize {
		size = maxSearchSize
	}

	result, err := search(ctx, r.elastic.GetClient().
		Search(elastic_search.ListingIndex.Get()).
		Query(buildListingQuery(s)).
		Sort("id", true).
		From(s.From).
		Size(size).
		TrackTotalHits(true))

	return r.findMany(result, err)
}

func buildListingQuery(s ListingSearch) *elastic.BoolQuery {
	query := elastic.NewBoolQuery()
	if s.Collection != "" {
		query.Filter(elastic.NewTermQuery("collection", s.Collection.String()))
	}
	if s.Seller != "" {
		query.Filter(elastic.NewTermQuery("seller", s.Seller.String()))
	}
	if s.Buyer != "" {
		query.Filter(elastic.NewTermQuery("buyer", s.Buyer.String()))
	}
	if s.State != nil {
		query.Filter(elastic.NewTermQuery("state", s.State.String()))
	}

	return query
}

func (r listingSearchRepository) findMany(results *elastic.SearchResult, err error) ([]entity.ListingDocument, int64, error) {
	listings := make([]entity.ListingDocument, 0)

	if err != nil {
		zap.L().With(zap.Error(err)).Error("ListingSearchRepository: Search failed")
		return listings, 0, err
	}

	for _, hit := range results.Hits.Hits {
		var listing entity.ListingDocument
		if err := json.Unmarshal(hit.Source, &listing); err != nil {
			zap.L().With(zap.Error(err), zap.String("id", hit.Id)).Error("ListingSearchRepository: Failed to unmarshal listing")
			continue
		}
		listings = append(listings, listing)
	}

	return listings, results.TotalHits(), nil
}
