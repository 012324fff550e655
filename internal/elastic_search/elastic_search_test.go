package elastic_search

import (
	"github.com/ZilDuck/nft-marketplace/internal/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"testing"
)

func listingDocument(id uint64, state entity.ListingState) entity.ListingDocument {
	buyer := entity.ZeroAddress
	if state == entity.ListingReleased {
		buyer = entity.MustAddress("0x4000000000000000000000000000000000000004")
	}

	return entity.Listing{
		Id:         id,
		Collection: entity.MustAddress("0x6000000000000000000000000000000000000006"),
		AssetId:    id,
		Seller:     entity.MustAddress("0x3000000000000000000000000000000000000003"),
		Buyer:      buyer,
		Price:      decimal.NewFromInt(100),
		State:      state,
	}.Document()
}

func pendingRequest(t *testing.T, i index, id uint64) Request {
	t.Helper()
	item, found := i.cache.Get(entity.CreateListingSlug(id))
	require.True(t, found, "listing %d is not buffered", id)
	return item.(Request)
}

func TestIndexRequestsAreKeyedBySlug(t *testing.T) {
	i := newIndex(nil, "", 10)

	i.AddIndexRequest(ListingIndex.Get(), listingDocument(1, entity.ListingCreated), ListingCreate)
	i.AddIndexRequest(ListingIndex.Get(), listingDocument(2, entity.ListingCreated), ListingCreate)
	i.AddIndexRequest(ListingIndex.Get(), listingDocument(1, entity.ListingReleased), ListingSale)

	require.Len(t, i.getRequests(), 2)
	require.Equal(t, ListingCreate, pendingRequest(t, i, 2).Action)

	req := pendingRequest(t, i, 1)
	require.Equal(t, IndexRequest, req.Type)
	require.Equal(t, ListingSale, req.Action)
	require.Equal(t, entity.ListingReleased, req.Entity.(entity.ListingDocument).State)
	require.NotEmpty(t, req.Entity.(entity.ListingDocument).BuyerBech32)
	require.Equal(t, ListingIndex.Get(), req.Index)
}

func TestFinalStateIsNotOverwrittenByCreated(t *testing.T) {
	i := newIndex(nil, "", 10)

	i.AddIndexRequest(ListingIndex.Get(), listingDocument(1, entity.ListingInactive), ListingRetire)
	i.AddIndexRequest(ListingIndex.Get(), listingDocument(1, entity.ListingCreated), ListingReindex)

	require.Equal(t, entity.ListingInactive, pendingRequest(t, i, 1).Entity.(entity.ListingDocument).State)
}

func TestUpdateRequestKeepsPendingIndexRequest(t *testing.T) {
	i := newIndex(nil, "", 10)

	i.AddIndexRequest(ListingIndex.Get(), listingDocument(1, entity.ListingCreated), ListingCreate)
	i.AddUpdateRequest(ListingIndex.Get(), listingDocument(1, entity.ListingReleased), ListingSale)

	req := pendingRequest(t, i, 1)
	require.Equal(t, IndexRequest, req.Type)
	require.Equal(t, entity.ListingReleased, req.Entity.(entity.ListingDocument).State)

	i.AddUpdateRequest(ListingIndex.Get(), listingDocument(2, entity.ListingInactive), ListingRetire)
	require.Equal(t, UpdateRequest, pendingRequest(t, i, 2).Type)
}

func TestPersistWithoutClient(t *testing.T) {
	i := newIndex(nil, "", 10)
	i.AddIndexRequest(ListingIndex.Get(), listingDocument(1, entity.ListingCreated), ListingCreate)

	_, err := i.Persist()
	require.ErrorIs(t, err, ErrNoClient)
	require.Len(t, i.getRequests(), 1)
	require.False(t, i.BatchPersist())
}
