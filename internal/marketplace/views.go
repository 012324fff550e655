package marketplace

import (
	"context"
	"github.com/ZilDuck/nft-marketplace/internal/entity"
)

func (m *marketplace) GetListing(ctx context.Context, listingId uint64) (entity.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	listing, err := m.listingRepo.Get(ctx, listingId)
	if err != nil {
		return entity.Listing{}, listingError(err)
	}
	return listing, nil
}

func (m *marketplace) GetAllListings(ctx context.Context) ([]entity.Listing, error) {
	return m.filter(ctx, func(entity.Listing) bool { return true })
}

func (m *marketplace) FetchActive(ctx context.Context) ([]entity.Listing, error) {
	return m.filter(ctx, func(l entity.Listing) bool {
		return l.IsActive()
	})
}

func (m *marketplace) FetchPurchasedBy(ctx context.Context, caller entity.Address) ([]entity.Listing, error) {
	if caller.IsZero() {
		return []entity.Listing{}, nil
	}
	return m.filter(ctx, func(l entity.Listing) bool {
		return l.Buyer == caller
	})
}

// FetchCreatedBy returns every listing the caller created, whatever its state.
func (m *marketplace) FetchCreatedBy(ctx context.Context, caller entity.Address) ([]entity.Listing, error) {
	return m.filter(ctx, func(l entity.Listing) bool {
		return l.Seller == caller
	})
}

func (m *marketplace) filter(ctx context.Context, keep func(entity.Listing) bool) ([]entity.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	all, err := m.listingRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	listings := make([]entity.Listing, 0)
	for _, l := range all {
		if keep(l) {
			listings = append(listings, l)
		}
	}

	return listings, nil
}
