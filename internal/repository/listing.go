package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/ZilDuck/nft-marketplace/internal/entity"
	"github.com/ipfs/go-datastore"
	"github.com/ipfs/go-datastore/namespace"
	dsq "github.com/ipfs/go-datastore/query"
	"golang.org/x/xerrors"
	"strconv"
)

var (
	ErrListingNotFound = errors.New("listing not found")
)

// ListingRepository is the append-only listing table. Ids are positions in the table.
type ListingRepository interface {
	Count(ctx context.Context) (uint64, error)
	Get(ctx context.Context, id uint64) (entity.Listing, error)
	GetAll(ctx context.Context) ([]entity.Listing, error)
	Append(ctx context.Context, listing entity.Listing) (entity.Listing, error)
	Save(ctx context.Context, listing entity.Listing) error
}

type listingRepository struct {
	ds datastore.Batching
}

var (
	listingPrefix = datastore.NewKey("/listing")
	countKey      = datastore.NewKey("/meta/count")
)

func NewListingRepository(ds datastore.Batching) ListingRepository {
	return listingRepository{namespace.Wrap(ds, datastore.NewKey("/marketplace"))}
}

func dskeyForListing(id uint64) datastore.Key {
	return listingPrefix.ChildString(fmt.Sprintf("%020d", id))
}

func (r listingRepository) Count(ctx context.Context) (uint64, error) {
	b, err := r.ds.Get(ctx, countKey)
	if errors.Is(err, datastore.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, xerrors.Errorf("reading listing count: %w", err)
	}

	count, err := strconv.ParseUint(string(b), 10, 64)
	if err != nil {
		return 0, xerrors.Errorf("parsing listing count (%q): %w", string(b), err)
	}

	return count, nil
}

func (r listingRepository) Get(ctx context.Context, id uint64) (entity.Listing, error) {
	b, err := r.ds.Get(ctx, dskeyForListing(id))
	if errors.Is(err, datastore.ErrNotFound) {
		return entity.Listing{}, ErrListingNotFound
	}
	if err != nil {
		return entity.Listing{}, xerrors.Errorf("reading listing %d: %w", id, err)
	}

	var listing entity.Listing
	if err := json.Unmarshal(b, &listing); err != nil {
		return entity.Listing{}, xerrors.Errorf("decoding listing %d: %w", id, err)
	}

	return listing, nil
}

func (r listingRepository) GetAll(ctx context.Context) ([]entity.Listing, error) {
	res, err := r.ds.Query(ctx, dsq.Query{
		Prefix: listingPrefix.String(),
		Orders: []dsq.Order{dsq.OrderByKey{}},
	})
	if err != nil {
		return nil, err
	}
	defer res.Close()

	listings := make([]entity.Listing, 0)
	for {
		r, ok := res.NextSync()
		if !ok {
			break
		}
		if r.Error != nil {
			return nil, r.Error
		}

		var listing entity.Listing
		if err := json.Unmarshal(r.Value, &listing); err != nil {
			return nil, xerrors.Errorf("decoding listing (%q): %w", r.Key, err)
		}
		listings = append(listings, listing)
	}

	return listings, nil
}

// Append assigns the next id to the listing and writes it together with the new table length.
func (r listingRepository) Append(ctx context.Context, listing entity.Listing) (entity.Listing, error) {
	count, err := r.Count(ctx)
	if err != nil {
		return entity.Listing{}, err
	}
	listing.Id = count

	b, err := json.Marshal(listing)
	if err != nil {
		return entity.Listing{}, err
	}

	batch, err := r.ds.Batch(ctx)
	if err != nil {
		return entity.Listing{}, err
	}
	if err := batch.Put(ctx, dskeyForListing(listing.Id), b); err != nil {
		return entity.Listing{}, err
	}
	if err := batch.Put(ctx, countKey, []byte(strconv.FormatUint(count+1, 10))); err != nil {
		return entity.Listing{}, err
	}
	if err := batch.Commit(ctx); err != nil {
		return entity.Listing{}, xerrors.Errorf("appending listing %d: %w", listing.Id, err)
	}

	return listing, nil
}

// Save overwrites an existing listing. Listings are never removed from the table.
func (r listingRepository) Save(ctx context.Context, listing entity.Listing) error {
	exists, err := r.ds.Has(ctx, dskeyForListing(listing.Id))
	if err != nil {
		return err
	}
	if !exists {
		return ErrListingNotFound
	}

	b, err := json.Marshal(listing)
	if err != nil {
		return err
	}

	if err := r.ds.Put(ctx, dskeyForListing(listing.Id), b); err != nil {
		return xerrors.Errorf("saving listing %d: %w", listing.Id, err)
	}

	return nil
}
